package ring

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rzbill/ringlog/internal/flash"
)

// Toy device used across engine tests: 16 bytes capacity, 4-byte blocks.
func newTestEngine(t *testing.T) (*Engine, *flash.Mem) {
	t.Helper()
	dev := flash.NewMem(flash.Geometry{Capacity: 16, BlockSize: 4})
	e, err := New(dev, Options{})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e, dev
}

func TestAppendBeforeInit(t *testing.T) {
	e, dev := newTestEngine(t)
	err := e.Append([]byte{1})
	if !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
	if dev.Ops().Total() != 0 {
		t.Fatalf("uninitialized append touched the device: %+v", dev.Ops())
	}
}

func TestAppendWithinBlockNoErase(t *testing.T) {
	e, dev := newTestEngine(t)
	e.Reset()
	if err := e.Append([]byte{1, 2}); err != nil {
		t.Fatalf("append: %v", err)
	}
	dev.ResetOps()
	// Cursor is at 2; two more bytes stay inside block 0.
	if err := e.Append([]byte{3, 4}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if ops := dev.Ops(); ops.Erases != 0 {
		t.Fatalf("append within block erased %d times", ops.Erases)
	}
	if e.Position() != 4 {
		t.Fatalf("cursor = %d, want 4", e.Position())
	}
}

func TestAppendCrossingBlockErasesOnce(t *testing.T) {
	e, dev := newTestEngine(t)
	e.Reset()
	if err := e.Append([]byte{1, 2, 3}); err != nil {
		t.Fatalf("append: %v", err)
	}
	dev.ResetOps()
	// 3 bytes from cursor 3: 1 byte finishes block 0, 2 enter block 1.
	if err := e.Append([]byte{4, 5, 6}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if ops := dev.Ops(); ops.Erases != 1 {
		t.Fatalf("crossing append erased %d times, want 1", ops.Erases)
	}
	if e.Position() != 6 {
		t.Fatalf("cursor = %d, want 6", e.Position())
	}
	got := dev.Peek(0, 6)
	if !bytes.Equal(got, []byte{1, 2, 3, 4, 5, 6}) {
		t.Fatalf("device contents %v", got)
	}
}

// The full §8 walk: reset, four block-sized appends reach capacity and wrap
// the cursor to zero, and a fifth append re-erases block 0 over the first
// record.
func TestWraparoundScenario(t *testing.T) {
	e, dev := newTestEngine(t)
	e.Reset()
	if e.Position() != 0 {
		t.Fatalf("cursor after reset = %d", e.Position())
	}

	records := [][]byte{
		{'a', 'b', 'c', 'd'},
		{'e', 'f', 'g', 'h'},
		{'i', 'j', 'k', 'l'},
		{'m', 'n', 'o', 'p'},
	}
	wantCursor := []uint32{4, 8, 12, 0}
	for i, rec := range records {
		if err := e.Append(rec); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
		if got := e.Position(); got != wantCursor[i] {
			t.Fatalf("cursor after append %d = %d, want %d", i, got, wantCursor[i])
		}
	}

	dev.ResetOps()
	if err := e.Append([]byte{'q', 'r', 's', 't'}); err != nil {
		t.Fatalf("wrap append: %v", err)
	}
	if ops := dev.Ops(); ops.Erases != 1 {
		t.Fatalf("wrap append erased %d times, want block 0 once", ops.Erases)
	}
	got := dev.Peek(0, 4)
	if !bytes.Equal(got, []byte{'q', 'r', 's', 't'}) {
		t.Fatalf("block 0 = %q, first record not overwritten", got)
	}
	if e.Position() != 4 {
		t.Fatalf("cursor = %d after wrap append", e.Position())
	}
}

func TestSetPositionAlignsDown(t *testing.T) {
	e, _ := newTestEngine(t)
	for addr := uint32(0); addr < 16; addr++ {
		if err := e.SetPosition(addr); err != nil {
			t.Fatalf("set %d: %v", addr, err)
		}
		want := addr / 4 * 4
		if got := e.Position(); got != want {
			t.Fatalf("position(%d) = %d, want %d", addr, got, want)
		}
	}
}

func TestSetPositionOutOfBounds(t *testing.T) {
	e, dev := newTestEngine(t)
	err := e.SetPosition(16)
	if !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
	if e.Initialized() {
		t.Fatalf("failed SetPosition must not initialize")
	}
	if dev.Ops().Total() != 0 {
		t.Fatalf("SetPosition touched the device: %+v", dev.Ops())
	}
}

func TestPausedAppendFailsFast(t *testing.T) {
	e, dev := newTestEngine(t)
	e.Reset()
	e.Pause()
	if !e.Paused() {
		t.Fatalf("gate not set")
	}
	dev.ResetOps()
	err := e.Append([]byte{1})
	if !errors.Is(err, ErrPaused) {
		t.Fatalf("expected ErrPaused, got %v", err)
	}
	if dev.Ops().Total() != 0 {
		t.Fatalf("paused append issued device ops: %+v", dev.Ops())
	}
	e.Resume()
	if err := e.Append([]byte{1}); err != nil {
		t.Fatalf("append after resume: %v", err)
	}
}

func TestPauseDoesNotMoveCursor(t *testing.T) {
	e, _ := newTestEngine(t)
	e.Reset()
	if err := e.Append([]byte{1, 2, 3}); err != nil {
		t.Fatalf("append: %v", err)
	}
	e.Pause()
	e.Resume()
	if e.Position() != 3 {
		t.Fatalf("cursor moved across pause/resume: %d", e.Position())
	}
}

func TestInvalidLength(t *testing.T) {
	e, dev := newTestEngine(t)
	e.Reset()
	dev.ResetOps()
	if err := e.Append(nil); !errors.Is(err, ErrInvalidLength) {
		t.Fatalf("empty append: %v", err)
	}
	// Default max is one block (4 bytes here).
	if err := e.Append([]byte{1, 2, 3, 4, 5}); !errors.Is(err, ErrInvalidLength) {
		t.Fatalf("oversized append: %v", err)
	}
	if dev.Ops().Total() != 0 {
		t.Fatalf("rejected appends touched the device: %+v", dev.Ops())
	}
}

func TestAppendEraseFailureSurfaces(t *testing.T) {
	e, dev := newTestEngine(t)
	e.Reset()
	dev.FailErase = errors.New("wear")
	err := e.Append([]byte{1})
	if !errors.Is(err, flash.ErrErase) {
		t.Fatalf("expected device erase failure, got %v", err)
	}
	if e.Position() != 0 {
		t.Fatalf("cursor advanced past failed erase: %d", e.Position())
	}
}

// A mid-append write failure leaves the cursor past the bytes that did
// land; the call is not all-or-nothing.
func TestAppendPartialFailureAdvancesCursor(t *testing.T) {
	e, dev := newTestEngine(t)
	e.Reset()
	if err := e.Append([]byte{1, 2, 3}); err != nil {
		t.Fatalf("append: %v", err)
	}
	// Next append: 1 byte completes block 0, then block 1's erase fails.
	dev.FailErase = errors.New("wear")
	err := e.Append([]byte{4, 5})
	if !errors.Is(err, flash.ErrErase) {
		t.Fatalf("expected erase failure, got %v", err)
	}
	if e.Position() != 4 {
		t.Fatalf("cursor = %d, want 4 (past the written chunk)", e.Position())
	}
}

func TestInitFromScanSeedsCursor(t *testing.T) {
	e, dev := newTestEngine(t)
	dev.Poke(0, []byte{1, 2, 3, 4})
	dev.Poke(4, []byte{5, 6, 7, 8})
	if err := e.InitFromScan(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	if !e.Initialized() {
		t.Fatalf("engine not initialized after scan")
	}
	if e.Position() != 8 {
		t.Fatalf("cursor = %d, want 8", e.Position())
	}
}

func TestInitFromScanReadFailure(t *testing.T) {
	e, dev := newTestEngine(t)
	dev.FailRead = errors.New("bus")
	err := e.InitFromScan(context.Background())
	if !errors.Is(err, flash.ErrRead) {
		t.Fatalf("expected read failure, got %v", err)
	}
	if e.Initialized() {
		t.Fatalf("failed scan must not initialize")
	}
	if e.Position() != 0 {
		t.Fatalf("partial cursor set: %d", e.Position())
	}
}

func TestWaitReady(t *testing.T) {
	e, _ := newTestEngine(t)
	if e.WaitReady(10 * time.Millisecond) {
		t.Fatalf("WaitReady returned before init")
	}
	done := make(chan bool, 1)
	go func() { done <- e.WaitReady(2 * time.Second) }()
	time.Sleep(10 * time.Millisecond)
	e.Reset()
	select {
	case ok := <-done:
		if !ok {
			t.Fatalf("WaitReady timed out despite reset")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("WaitReady never woke")
	}
	// Already-ready engines return immediately.
	if !e.WaitReady(time.Millisecond) {
		t.Fatalf("WaitReady false on ready engine")
	}
}
