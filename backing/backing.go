// Package backing acquires and releases the raw memory that tmalloc places its blocks in.
//
// Memory comes from two places. A Region is a single contiguous, growable address range with a
// moving top, in the manner of a program break: it grows by Extend and can only give memory back
// from its top with Shrink. A Mapper hands out independent mappings that are released whole.
// Store chooses between them by request size.
package backing

import "unsafe"

//go:generate mockgen -source backing.go -destination ./mocks/backing.go -package mock_backing

// Region is a contiguous address range that grows and shrinks at its top
type Region interface {
	// Extend grows the region by increment bytes and returns the previous top, which is the start
	// of the new memory. increment must be positive. Errors are marked with memutils.ErrOutOfMemory.
	Extend(increment int) (unsafe.Pointer, error)
	// Shrink lowers the top of the region by decrement bytes. Memory above the new top must not be
	// touched afterward.
	Shrink(decrement int) error
	// Top returns the current top of the region: one byte past the last byte handed out by Extend
	Top() unsafe.Pointer
	// Contains returns true if the size bytes starting at addr lie below the top of the region
	Contains(addr uintptr, size int) bool
	// Reserved returns the most bytes the region can ever grow to
	Reserved() int
	// Committed returns the number of bytes currently backed by usable memory
	Committed() int
	// Close releases the entire region, including memory that was never given back by Shrink
	Close() error
}

// Mapper hands out independent mappings
type Mapper interface {
	// Map obtains a fresh mapping of at least size readable and writable bytes. Errors are marked
	// with memutils.ErrOutOfMemory.
	Map(size int) (unsafe.Pointer, error)
	// Unmap releases the mapping that starts at addr. size must be the size passed to Map.
	Unmap(addr unsafe.Pointer, size int) error
	// Contains returns true if addr is the start of a live mapping
	Contains(addr uintptr) bool
	// MappedBytes returns the total size of all live mappings, as requested from Map
	MappedBytes() int
	// Close releases every live mapping
	Close() error
}
