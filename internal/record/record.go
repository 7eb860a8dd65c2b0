// Package record implements the producer-side record convention for the
// ring: a textual, delimiter-separated line padded with a fill character to
// exactly one flash page. The engine itself imposes no framing and cannot
// verify record boundaries on read; fixed-width pages are what make a raw
// device dump legible again.
package record

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rzbill/ringlog/internal/flash"
)

const (
	// Delim separates fields inside a record.
	Delim = "|"
	// Pad fills the record out to a full page. It must differ from the
	// device's erased fill so a padded record never looks like free space
	// to the recovery scan.
	Pad byte = ' '
)

// Size is the fixed encoded length of every record: one flash page.
const Size = int(flash.PageSize)

var (
	ErrTooLong    = errors.New("record: fields exceed one page")
	ErrBadField   = errors.New("record: field contains delimiter")
	ErrNotARecord = errors.New("record: page is not a record")
)

// Encode joins fields with Delim and pads the result to Size bytes.
func Encode(fields ...string) ([]byte, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fields", ErrNotARecord)
	}
	for _, f := range fields {
		if strings.Contains(f, Delim) {
			return nil, fmt.Errorf("%w: %q", ErrBadField, f)
		}
	}
	line := strings.Join(fields, Delim)
	if len(line) > Size {
		return nil, fmt.Errorf("%w: %d bytes, max %d", ErrTooLong, len(line), Size)
	}
	out := make([]byte, Size)
	copy(out, line)
	for i := len(line); i < Size; i++ {
		out[i] = Pad
	}
	return out, nil
}

// Decode splits one page back into fields, dropping the padding. A page of
// pure erased fill (never written) is not a record.
func Decode(page []byte) ([]string, error) {
	if len(page) != Size {
		return nil, fmt.Errorf("%w: %d bytes, want %d", ErrNotARecord, len(page), Size)
	}
	if erased(page) {
		return nil, fmt.Errorf("%w: page is erased", ErrNotARecord)
	}
	line := strings.TrimRight(string(page), string(Pad))
	return strings.Split(line, Delim), nil
}

func erased(page []byte) bool {
	for _, b := range page {
		if b != flash.EraseFill {
			return false
		}
	}
	return true
}
