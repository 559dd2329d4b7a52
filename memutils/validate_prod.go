//go:build !debug_mem_utils

package memutils

const (
	// DebugChecks reports whether tmalloc was built with the debug_mem_utils tag
	DebugChecks = false
	// DebugMargin is the number of guard bytes placed after every payload
	DebugMargin int = 0
)
