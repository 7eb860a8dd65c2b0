package flash

import (
	"errors"
	"testing"
)

func testGeom() Geometry { return Geometry{Capacity: 16, BlockSize: 4} }

func TestMemStartsErased(t *testing.T) {
	d := NewMem(testGeom())
	buf := make([]byte, 16)
	if err := d.ReadAt(0, buf); err != nil {
		t.Fatalf("read: %v", err)
	}
	for i, b := range buf {
		if b != EraseFill {
			t.Fatalf("byte %d = %#x, want erased", i, b)
		}
	}
}

func TestMemRejectsWriteOverWritten(t *testing.T) {
	d := NewMem(testGeom())
	if err := d.WriteAt(0, []byte{1, 2}); err != nil {
		t.Fatalf("first write: %v", err)
	}
	err := d.WriteAt(1, []byte{3})
	if !errors.Is(err, ErrWrite) {
		t.Fatalf("expected ErrWrite over non-erased byte, got %v", err)
	}
}

func TestMemEraseBlockRestoresFill(t *testing.T) {
	d := NewMem(testGeom())
	if err := d.WriteAt(4, []byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := d.EraseBlock(1); err != nil {
		t.Fatalf("erase: %v", err)
	}
	got := d.Peek(4, 4)
	for i, b := range got {
		if b != EraseFill {
			t.Fatalf("byte %d = %#x after erase", i, b)
		}
	}
}

func TestMemBounds(t *testing.T) {
	d := NewMem(testGeom())
	if err := d.ReadAt(15, make([]byte, 2)); !errors.Is(err, ErrRead) {
		t.Fatalf("expected ErrRead out of range, got %v", err)
	}
	if err := d.WriteAt(16, []byte{0}); !errors.Is(err, ErrWrite) {
		t.Fatalf("expected ErrWrite out of range, got %v", err)
	}
	if err := d.EraseBlock(4); !errors.Is(err, ErrErase) {
		t.Fatalf("expected ErrErase out of range, got %v", err)
	}
}

func TestMemCounters(t *testing.T) {
	d := NewMem(testGeom())
	_ = d.ReadAt(0, make([]byte, 1))
	_ = d.WriteAt(0, []byte{0})
	_ = d.EraseBlock(0)
	ops := d.Ops()
	if ops.Reads != 1 || ops.Writes != 1 || ops.Erases != 1 {
		t.Fatalf("counters = %+v", ops)
	}
	d.ResetOps()
	if d.Ops().Total() != 0 {
		t.Fatalf("counters not reset: %+v", d.Ops())
	}
}

func TestMemFailureInjection(t *testing.T) {
	d := NewMem(testGeom())
	d.FailErase = errors.New("boom")
	err := d.EraseBlock(0)
	if !errors.Is(err, ErrErase) {
		t.Fatalf("expected ErrErase, got %v", err)
	}
	if d.Ops().Erases != 0 {
		t.Fatalf("failed erase must not count, ops=%+v", d.Ops())
	}
}

func TestGeometryValidate(t *testing.T) {
	cases := []struct {
		geom Geometry
		ok   bool
	}{
		{Geometry{Capacity: 4 << 20, BlockSize: 4096}, true},
		{Geometry{Capacity: 16, BlockSize: 4}, true},
		{Geometry{Capacity: 0, BlockSize: 4}, false},
		{Geometry{Capacity: 16, BlockSize: 0}, false},
		{Geometry{Capacity: 18, BlockSize: 4}, false},
	}
	for _, c := range cases {
		err := c.geom.Validate()
		if c.ok && err != nil {
			t.Fatalf("geometry %+v: unexpected error %v", c.geom, err)
		}
		if !c.ok && err == nil {
			t.Fatalf("geometry %+v: expected error", c.geom)
		}
	}
}
