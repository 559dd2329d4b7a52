package tmalloc

import (
	"sync"
	"unsafe"
)

var (
	defaultOnce      sync.Once
	defaultAllocator *Allocator
	defaultErr       error
)

// Default returns the process-wide allocator used by the package-level functions, creating it on
// first use. It uses first fit, the default mapping threshold and records ENOMEM in its error code.
func Default() (*Allocator, error) {
	defaultOnce.Do(func() {
		defaultAllocator, defaultErr = New(nil, CreateOptions{
			Flags: CreateSetErrno,
		})
	})

	return defaultAllocator, defaultErr
}

// Malloc calls Malloc on the default allocator
func Malloc(size uintptr) (unsafe.Pointer, error) {
	allocator, err := Default()
	if err != nil {
		return nil, err
	}

	return allocator.Malloc(size)
}

// Free calls Free on the default allocator
func Free(ptr unsafe.Pointer) error {
	allocator, err := Default()
	if err != nil {
		return err
	}

	return allocator.Free(ptr)
}

// Calloc calls Calloc on the default allocator
func Calloc(count, elemSize uintptr) (unsafe.Pointer, error) {
	allocator, err := Default()
	if err != nil {
		return nil, err
	}

	return allocator.Calloc(count, elemSize)
}

// Realloc calls Realloc on the default allocator
func Realloc(ptr unsafe.Pointer, size uintptr) (unsafe.Pointer, error) {
	allocator, err := Default()
	if err != nil {
		return nil, err
	}

	return allocator.Realloc(ptr, size)
}

// ReallocArray calls ReallocArray on the default allocator
func ReallocArray(ptr unsafe.Pointer, count, elemSize uintptr) (unsafe.Pointer, error) {
	allocator, err := Default()
	if err != nil {
		return nil, err
	}

	return allocator.ReallocArray(ptr, count, elemSize)
}
