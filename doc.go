// Package tmalloc is a standalone heap allocator for programs that need malloc-style memory
// outside the Go heap: Malloc, Free, Calloc, Realloc and ReallocArray over a block list with a
// fixed fit strategy.
//
// Small blocks are carved from a growable heap region and large ones get their own mapping; see
// package backing. Freed heap blocks are kept for reuse unless they sit at the top of the region,
// in which case the region is shrunk. Blocks are never split, coalesced or moved.
//
// Memory returned by tmalloc is not scanned by the Go garbage collector. It must not be used to
// hold the only reference to Go-allocated memory.
package tmalloc
