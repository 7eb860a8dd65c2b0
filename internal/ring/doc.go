// Package ring implements the circular log storage engine: an append-only
// cursor over a block-erasable flash device that erases blocks as it
// advances into them, wraps at capacity, and reconstructs its position
// after a restart by scanning device contents.
//
// # Invariants
//
// After any completed operation the cursor is a valid device address.
// SetPosition and Reset align it down to a block boundary; Append may leave
// it anywhere inside a block. Within one Append, a newly entered block is
// erased strictly before any byte of this or a later append lands in it.
// No cursor state is ever persisted; recovery is always by scan.
//
// # What the engine does not do
//
// No atomicity or crash consistency of an append in progress, no framing,
// checksumming, or deduplication of records (record boundaries are the
// producer's convention, see internal/record), no retries of failed device
// operations, and no cancellation once a device walk has started.
package ring
