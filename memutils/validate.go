package memutils

import "unsafe"

// marginPattern is repeated across the debug margin after every payload
const marginPattern uint32 = 0x7F84E666

// Validatable is implemented by the block list and the allocator. When the debug_mem_utils build
// tag is present, DebugValidate runs it after every change to the block list.
type Validatable interface {
	// Validate returns an error describing the first inconsistency it finds
	Validate() error
}

// DebugValidate panics if validatable reports an error. It does nothing unless DebugChecks is set.
func DebugValidate(validatable Validatable) {
	if !DebugChecks {
		return
	}

	err := validatable.Validate()
	if err != nil {
		panic(err)
	}
}

// DebugCheckPow2 panics if value is not a power of two. It does nothing unless DebugChecks is set.
func DebugCheckPow2[T Number](value T, name string) {
	if !DebugChecks {
		return
	}

	err := CheckPow2(value, name)
	if err != nil {
		panic(err)
	}
}

// WriteMargin fills the DebugMargin bytes that follow size bytes of payload with a recognizable
// pattern. Payload sizes are arbitrary, so the margin is written a byte at a time.
func WriteMargin(payload unsafe.Pointer, size uintptr) {
	if DebugMargin == 0 {
		return
	}

	margin := unsafe.Slice((*byte)(unsafe.Add(payload, size)), DebugMargin)
	for i := range margin {
		margin[i] = byte(marginPattern >> (8 * (i % 4)))
	}
}

// CheckMargin returns false if any byte written by WriteMargin has changed
func CheckMargin(payload unsafe.Pointer, size uintptr) bool {
	if DebugMargin == 0 {
		return true
	}

	margin := unsafe.Slice((*byte)(unsafe.Add(payload, size)), DebugMargin)
	for i, b := range margin {
		if b != byte(marginPattern>>(8*(i%4))) {
			return false
		}
	}

	return true
}
