package flash

import (
	"bytes"
	"fmt"
	"os"
	"sync"
)

// File is a flash image file emulating a NOR chip: erased cells read back
// as EraseFill and programming can only clear bits, so a write over
// non-erased bytes is ANDed with the existing contents rather than
// replacing them. This mirrors the hardware closely enough that
// erase-before-write bugs corrupt data instead of passing silently.
type File struct {
	mu   sync.Mutex
	f    *os.File
	geom Geometry
}

// OpenFile opens (or creates) a flash image at path with the given
// geometry. A new image starts fully erased, like a factory-fresh chip. An
// existing image must match the geometry's capacity.
func OpenFile(path string, geom Geometry) (*File, error) {
	if err := geom.Validate(); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	switch st.Size() {
	case 0:
		if err := fillErased(f, geom.Capacity); err != nil {
			f.Close()
			return nil, err
		}
	case int64(geom.Capacity):
		// existing image, keep contents
	default:
		f.Close()
		return nil, fmt.Errorf("flash: image %s is %d bytes, geometry wants %d", path, st.Size(), geom.Capacity)
	}
	return &File{f: f, geom: geom}, nil
}

func fillErased(f *os.File, capacity uint32) error {
	chunk := bytes.Repeat([]byte{EraseFill}, 64<<10)
	var off int64
	remaining := int64(capacity)
	for remaining > 0 {
		n := int64(len(chunk))
		if n > remaining {
			n = remaining
		}
		if _, err := f.WriteAt(chunk[:n], off); err != nil {
			return err
		}
		off += n
		remaining -= n
	}
	return f.Sync()
}

// Geometry implements Device.
func (d *File) Geometry() Geometry { return d.geom }

// ReadAt implements Device.
func (d *File) ReadAt(addr uint32, buf []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := checkRange(d.geom, addr, len(buf)); err != nil {
		return fmt.Errorf("%w: %v", ErrRead, err)
	}
	if _, err := d.f.ReadAt(buf, int64(addr)); err != nil {
		return fmt.Errorf("%w: %v", ErrRead, err)
	}
	return nil
}

// WriteAt implements Device. NOR semantics: the stored value becomes
// old AND new for every byte.
func (d *File) WriteAt(addr uint32, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := checkRange(d.geom, addr, len(data)); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if len(data) == 0 {
		return nil
	}
	old := make([]byte, len(data))
	if _, err := d.f.ReadAt(old, int64(addr)); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	for i := range old {
		old[i] &= data[i]
	}
	if _, err := d.f.WriteAt(old, int64(addr)); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

// EraseBlock implements Device.
func (d *File) EraseBlock(index uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if index >= d.geom.Blocks() {
		return fmt.Errorf("%w: block %d outside device (%d blocks)", ErrErase, index, d.geom.Blocks())
	}
	blank := bytes.Repeat([]byte{EraseFill}, int(d.geom.BlockSize))
	if _, err := d.f.WriteAt(blank, int64(index)*int64(d.geom.BlockSize)); err != nil {
		return fmt.Errorf("%w: %v", ErrErase, err)
	}
	return nil
}

// EraseAll implements Device.
func (d *File) EraseAll() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := fillErased(d.f, d.geom.Capacity); err != nil {
		return fmt.Errorf("%w: %v", ErrErase, err)
	}
	return nil
}

// Sync flushes the image to stable storage.
func (d *File) Sync() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.f.Sync()
}

// Close syncs and closes the image file.
func (d *File) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.f.Sync(); err != nil {
		d.f.Close()
		return err
	}
	return d.f.Close()
}
