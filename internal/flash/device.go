package flash

import (
	"errors"
	"fmt"
)

// EraseFill is the byte value every erased cell reads back as.
const EraseFill byte = 0xFF

// PageSize is the program-page granularity of the emulated parts. Reads and
// writes are not required to be page aligned; the scanner samples one page
// per block and producers conventionally pad records to one page.
const PageSize uint32 = 256

// Device failure sentinels. Implementations wrap these with %w so callers
// can classify with errors.Is while still seeing the underlying cause.
var (
	ErrRead  = errors.New("flash: read failed")
	ErrWrite = errors.New("flash: write failed")
	ErrErase = errors.New("flash: erase failed")
)

// Geometry describes a device's fixed address space: total capacity and the
// erase-unit (block) size, both in bytes. Capacity is an exact multiple of
// the block size.
type Geometry struct {
	Capacity  uint32 `json:"capacity" yaml:"capacity"`
	BlockSize uint32 `json:"blockSize" yaml:"block_size"`
}

// Blocks returns the number of erase units.
func (g Geometry) Blocks() uint32 { return g.Capacity / g.BlockSize }

// Validate checks the geometry invariants.
func (g Geometry) Validate() error {
	if g.BlockSize == 0 {
		return errors.New("flash: block size must be > 0")
	}
	if g.Capacity == 0 {
		return errors.New("flash: capacity must be > 0")
	}
	if g.Capacity%g.BlockSize != 0 {
		return fmt.Errorf("flash: capacity %d is not a multiple of block size %d", g.Capacity, g.BlockSize)
	}
	return nil
}

// Device is the block-erasable storage contract the engine consumes.
//
// Writes are defined only over previously erased bytes; the device does not
// enforce erase-before-write ordering, the caller does. Implementations
// serialize all raw operations through an internal mutex: the storage
// primitive tolerates only one in-flight operation at a time, and every
// caller (engine, scanner, bulk dump) shares that exclusive access.
type Device interface {
	Geometry() Geometry

	// ReadAt fills buf from the given address.
	ReadAt(addr uint32, buf []byte) error

	// WriteAt programs data at the given address. The target bytes must
	// have been erased; the result is undefined otherwise.
	WriteAt(addr uint32, data []byte) error

	// EraseBlock fills the erase unit with EraseFill. Index counts blocks,
	// not bytes.
	EraseBlock(index uint32) error

	// EraseAll erases the entire device.
	EraseAll() error
}

// Info summarizes a device for status and the `device info` command.
type Info struct {
	Capacity  uint32 `json:"capacity"`
	BlockSize uint32 `json:"blockSize"`
	Blocks    uint32 `json:"blocks"`
	PageSize  uint32 `json:"pageSize"`
	Pages     uint32 `json:"pages"`
}

// InfoFor derives Info from a device's geometry.
func InfoFor(d Device) Info {
	g := d.Geometry()
	return Info{
		Capacity:  g.Capacity,
		BlockSize: g.BlockSize,
		Blocks:    g.Blocks(),
		PageSize:  PageSize,
		Pages:     g.Capacity / PageSize,
	}
}

func checkRange(g Geometry, addr uint32, n int) error {
	if n < 0 {
		return errors.New("flash: negative length")
	}
	if uint64(addr)+uint64(n) > uint64(g.Capacity) {
		return fmt.Errorf("flash: range [%#x, %#x) outside capacity %#x", addr, uint64(addr)+uint64(n), g.Capacity)
	}
	return nil
}
