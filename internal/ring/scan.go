package ring

import (
	"github.com/rzbill/ringlog/internal/flash"
)

// progressEvery is how much scanned device space separates two progress
// callbacks. Coarse on purpose; progress is informational only.
const progressEvery = 64 << 10

// Scan walks the device in block order and infers where live data ends and
// free space begins, without any persisted metadata. Each block is
// classified by sampling its first page: erased if every sampled byte is
// the erased fill, written otherwise. The first erased block found after a
// written one is where the ring stopped, so its start address is the
// cursor. A fully erased device yields zero; a fully written device has
// wrapped, and the cursor is the block after the last written one, mod the
// block count.
//
// The heuristic assumes the device was only ever written by the ring in
// contiguous, monotonically advancing order. Out-of-order writes through a
// direct path (the dispatcher's raw write commands, say) can make it pick
// the wrong boundary; that limitation is inherent to metadata-free
// recovery.
func Scan(dev flash.Device, progress func(block, total uint32)) (uint32, error) {
	g := dev.Geometry()
	sample := flash.PageSize
	if sample > g.BlockSize {
		sample = g.BlockSize
	}
	blocks := g.Blocks()
	interval := uint32(progressEvery) / g.BlockSize
	if interval == 0 {
		interval = 1
	}

	buf := make([]byte, sample)
	seenWritten := false
	var lastWritten uint32
	for b := uint32(0); b < blocks; b++ {
		if progress != nil && b%interval == 0 {
			progress(b, blocks)
		}
		if err := dev.ReadAt(b*g.BlockSize, buf); err != nil {
			return 0, err
		}
		if erasedPage(buf) {
			if seenWritten {
				return b * g.BlockSize, nil
			}
			continue
		}
		seenWritten = true
		lastWritten = b
	}
	if !seenWritten {
		return 0, nil
	}
	return ((lastWritten + 1) % blocks) * g.BlockSize, nil
}

func erasedPage(buf []byte) bool {
	for _, b := range buf {
		if b != flash.EraseFill {
			return false
		}
	}
	return true
}
