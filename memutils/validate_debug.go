//go:build debug_mem_utils

package memutils

const (
	// DebugChecks reports whether tmalloc was built with the debug_mem_utils tag
	DebugChecks = true
	// DebugMargin is the number of guard bytes placed after every payload. It must be a multiple
	// of four.
	DebugMargin int = 16
)
