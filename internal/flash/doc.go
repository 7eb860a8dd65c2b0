// Package flash defines the block-erasable storage contract the ring engine
// writes to, plus two implementations: a file-backed image emulating a NOR
// chip, and a strict in-memory device for tests.
//
// The device model follows small SPI NOR parts: a fixed address space
// divided into equal erase units ("blocks"), a 256-byte program page, and
// an erased state where every cell reads back 0xFF. Writes are valid only
// over erased bytes; erase granularity is one block. The device enforces
// nothing about ordering, it only executes the operations it is given, one
// at a time behind an internal mutex.
package flash
