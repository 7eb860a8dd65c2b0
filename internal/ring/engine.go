package ring

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rzbill/ringlog/internal/flash"
	"github.com/rzbill/ringlog/pkg/log"
)

// Validation failures. These never touch the device.
var (
	ErrNotInitialized = errors.New("ring: cursor not initialized")
	ErrPaused         = errors.New("ring: appends paused")
	ErrInvalidLength  = errors.New("ring: invalid record length")
	ErrOutOfBounds    = errors.New("ring: position out of bounds")
)

// Options configures an Engine.
type Options struct {
	// MaxAppend caps a single append's length. Zero means one block.
	MaxAppend uint32
	Logger    log.Logger
}

// Engine owns the write cursor over a block-erasable device and turns it
// into a circular log: appends advance the cursor, erase each block before
// first writing into it, and wrap from capacity back to address zero,
// overwriting the oldest data.
//
// The cursor lives only in memory. After a restart it must be rebuilt with
// InitFromScan (or forced with SetPosition/Reset) before Append succeeds.
// Appends are not atomic: a device failure mid-append leaves the cursor
// advanced past whatever was successfully written.
type Engine struct {
	dev       flash.Device
	geom      flash.Geometry
	maxAppend uint32
	logger    log.Logger

	mu          sync.Mutex
	cursor      uint32
	paused      bool
	initialized bool
	readyCh     chan struct{} // closed once initialized
}

// New constructs an Engine over dev. The engine starts uninitialized.
func New(dev flash.Device, opts Options) (*Engine, error) {
	geom := dev.Geometry()
	if err := geom.Validate(); err != nil {
		return nil, err
	}
	maxAppend := opts.MaxAppend
	if maxAppend == 0 {
		maxAppend = geom.BlockSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewLogger(log.WithLevel(log.ErrorLevel))
	}
	return &Engine{
		dev:       dev,
		geom:      geom,
		maxAppend: maxAppend,
		logger:    logger,
		readyCh:   make(chan struct{}),
	}, nil
}

// Device returns the underlying device. Collaborators that read or erase
// outside the ring (bulk dump, manual erase) go through the same device
// instance so its internal mutex serializes every raw operation.
func (e *Engine) Device() flash.Device { return e.dev }

// InitFromScan walks the device and seeds the cursor from its contents.
// On a read failure the cursor is left untouched and the engine stays in
// its previous state. The walk itself is uninterruptible; ctx only gates
// whether it starts.
func (e *Engine) InitFromScan(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	cursor, err := Scan(e.dev, e.scanProgress)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.cursor = cursor
	e.markReadyLocked()
	e.mu.Unlock()
	e.logger.Info("cursor recovered",
		log.Uint32("cursor", cursor),
		log.Uint32("block", cursor/e.geom.BlockSize),
		log.Dur("took", time.Since(start)),
	)
	return nil
}

// Append writes data at the cursor, erasing each block on entry and
// wrapping at capacity. It fails fast, without any device operation, when
// the engine is uninitialized or paused or when the length is zero or over
// the configured maximum. Device failures surface verbatim; there are no
// retries.
func (e *Engine) Append(data []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized {
		return ErrNotInitialized
	}
	if e.paused {
		return ErrPaused
	}
	if len(data) == 0 {
		return fmt.Errorf("%w: empty record", ErrInvalidLength)
	}
	if uint32(len(data)) > e.maxAppend {
		return fmt.Errorf("%w: %d bytes exceeds max %d", ErrInvalidLength, len(data), e.maxAppend)
	}

	for len(data) > 0 {
		offsetInBlock := e.cursor % e.geom.BlockSize
		if offsetInBlock == 0 {
			if err := e.dev.EraseBlock(e.cursor / e.geom.BlockSize); err != nil {
				return err
			}
		}
		n := e.geom.BlockSize - offsetInBlock
		if n > uint32(len(data)) {
			n = uint32(len(data))
		}
		if err := e.dev.WriteAt(e.cursor, data[:n]); err != nil {
			return err
		}
		e.cursor += n
		if e.cursor == e.geom.Capacity {
			e.cursor = 0
		}
		data = data[n:]
	}
	return nil
}

// SetPosition moves the cursor to the start of the block containing addr
// and marks the engine initialized. Nothing is erased.
func (e *Engine) SetPosition(addr uint32) error {
	if addr >= e.geom.Capacity {
		return fmt.Errorf("%w: %#x >= capacity %#x", ErrOutOfBounds, addr, e.geom.Capacity)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cursor = addr - addr%e.geom.BlockSize
	e.markReadyLocked()
	return nil
}

// Reset moves the cursor to address zero. It always succeeds and marks the
// engine initialized.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cursor = 0
	e.markReadyLocked()
}

// Position returns the raw cursor value: zero if never initialized.
func (e *Engine) Position() uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cursor
}

// Initialized reports whether the cursor has been seeded.
func (e *Engine) Initialized() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.initialized
}

func (e *Engine) markReadyLocked() {
	if !e.initialized {
		e.initialized = true
		close(e.readyCh)
	}
}

// Ready returns a channel closed once the engine is initialized. Callers
// that also watch a context select on it directly.
func (e *Engine) Ready() <-chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.readyCh
}

// WaitReady blocks until the engine is initialized or timeout elapses.
// It returns true when the engine is ready, false on timeout. A
// non-positive timeout waits indefinitely.
func (e *Engine) WaitReady(timeout time.Duration) bool {
	e.mu.Lock()
	ch := e.readyCh
	e.mu.Unlock()
	if timeout <= 0 {
		<-ch
		return true
	}
	select {
	case <-ch:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (e *Engine) scanProgress(block, total uint32) {
	e.logger.Debug("scanning device",
		log.Uint32("block", block),
		log.Uint32("blocks", total),
		log.Int("percent", int(uint64(block)*100/uint64(total))),
	)
}
