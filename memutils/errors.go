package memutils

import cerrors "github.com/cockroachdb/errors"

// PowerOfTwoError is the error returned from CheckPow2 or other methods if the number being tested is not a power of two
var PowerOfTwoError error = cerrors.New("number must be a power of two")

var (
	// ErrOutOfMemory is returned when a backing store could not be extended or mapped to satisfy a request.
	// It is recoverable: the caller receives no allocation and may try again with a smaller request.
	ErrOutOfMemory = cerrors.New("out of memory")
	// ErrOverflow is returned when an element count multiplied by an element size does not fit in a uintptr
	ErrOverflow = cerrors.New("allocation size overflows")
	// ErrCorruption is returned when a pointer does not lead to a block header produced by the allocator,
	// or when the header (or the debug margin after its payload) has been overwritten
	ErrCorruption = cerrors.New("heap corruption detected")
	// ErrDoubleFree is returned when a block that is already free is freed or resized again.
	// The allocator also marks these errors with ErrCorruption; ErrCorruption alone does not imply
	// ErrDoubleFree.
	ErrDoubleFree = cerrors.New("block is already free")
)
