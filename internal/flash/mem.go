package flash

import (
	"fmt"
	"sync"
)

// Counters tracks raw device operations, for tests that assert on exact
// erase/write/read behavior.
type Counters struct {
	Reads  int
	Writes int
	Erases int
}

// Total returns the sum of all operations.
func (c Counters) Total() int { return c.Reads + c.Writes + c.Erases }

// Mem is an in-memory Device for tests. Unlike File it is strict: writing
// over a byte that is not in the erased state is an error, so a missing
// erase surfaces as a failure instead of silently corrupted data.
//
// The Fail* fields inject errors: when non-nil, the corresponding
// operation fails with that error (wrapped in the matching sentinel)
// without touching the array or the counters.
type Mem struct {
	mu   sync.Mutex
	geom Geometry
	data []byte
	ops  Counters

	FailRead  error
	FailWrite error
	FailErase error
}

// NewMem returns a fully erased in-memory device.
func NewMem(geom Geometry) *Mem {
	if err := geom.Validate(); err != nil {
		panic(err)
	}
	data := make([]byte, geom.Capacity)
	for i := range data {
		data[i] = EraseFill
	}
	return &Mem{geom: geom, data: data}
}

// Geometry implements Device.
func (d *Mem) Geometry() Geometry { return d.geom }

// ReadAt implements Device.
func (d *Mem) ReadAt(addr uint32, buf []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailRead != nil {
		return fmt.Errorf("%w: %v", ErrRead, d.FailRead)
	}
	if err := checkRange(d.geom, addr, len(buf)); err != nil {
		return fmt.Errorf("%w: %v", ErrRead, err)
	}
	d.ops.Reads++
	copy(buf, d.data[addr:int(addr)+len(buf)])
	return nil
}

// WriteAt implements Device.
func (d *Mem) WriteAt(addr uint32, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailWrite != nil {
		return fmt.Errorf("%w: %v", ErrWrite, d.FailWrite)
	}
	if err := checkRange(d.geom, addr, len(data)); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	for i := range data {
		if d.data[int(addr)+i] != EraseFill {
			return fmt.Errorf("%w: byte %#x not erased", ErrWrite, int(addr)+i)
		}
	}
	d.ops.Writes++
	copy(d.data[addr:], data)
	return nil
}

// EraseBlock implements Device.
func (d *Mem) EraseBlock(index uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailErase != nil {
		return fmt.Errorf("%w: %v", ErrErase, d.FailErase)
	}
	if index >= d.geom.Blocks() {
		return fmt.Errorf("%w: block %d outside device (%d blocks)", ErrErase, index, d.geom.Blocks())
	}
	d.ops.Erases++
	start := index * d.geom.BlockSize
	for i := start; i < start+d.geom.BlockSize; i++ {
		d.data[i] = EraseFill
	}
	return nil
}

// EraseAll implements Device.
func (d *Mem) EraseAll() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailErase != nil {
		return fmt.Errorf("%w: %v", ErrErase, d.FailErase)
	}
	d.ops.Erases++
	for i := range d.data {
		d.data[i] = EraseFill
	}
	return nil
}

// Ops returns a snapshot of the operation counters.
func (d *Mem) Ops() Counters {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ops
}

// ResetOps zeroes the operation counters.
func (d *Mem) ResetOps() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ops = Counters{}
}

// Poke writes bytes directly, bypassing NOR semantics and counters. Tests
// use it to stage device contents for scanner scenarios.
func (d *Mem) Poke(addr uint32, data []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	copy(d.data[addr:], data)
}

// Peek copies out bytes directly, bypassing counters.
func (d *Mem) Peek(addr uint32, n int) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]byte, n)
	copy(out, d.data[addr:int(addr)+n])
	return out
}
