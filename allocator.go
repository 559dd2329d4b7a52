package tmalloc

import (
	"context"
	"fmt"
	"sync/atomic"
	"syscall"
	"unsafe"

	cerrors "github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/tmalloc/backing"
	"github.com/vkngwrapper/tmalloc/internal/utils"
	"github.com/vkngwrapper/tmalloc/memutils"
	"github.com/vkngwrapper/tmalloc/memutils/metadata"
	"golang.org/x/exp/slog"
)

// Allocator is a heap allocator that places a header in front of every payload and keeps every
// header in one list, in allocation order. Freed blocks are reused by a fit search over that list;
// on a miss, memory comes from a backing.Store. Blocks are never split or coalesced.
//
// Every method takes one allocator-wide lock for its full duration, including any calls into
// the backing store, unless the allocator was created with CreateExternallySynchronized.
type Allocator struct {
	mutex       utils.OptionalMutex
	logger      *slog.Logger
	createFlags CreateFlags
	strategy    metadata.FitStrategy

	store   *backing.Store
	headers metadata.HeaderList
	errno   atomic.Uint32
}

var _ memutils.Validatable = &Allocator{}

// Malloc returns a pointer to at least size bytes of uninitialized memory. A size of zero returns
// nil with no error. If no memory could be obtained, Malloc returns nil and an error marked with
// memutils.ErrOutOfMemory.
func (a *Allocator) Malloc(size uintptr) (unsafe.Pointer, error) {
	if size == 0 {
		return nil, nil
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.allocate(size)
}

func (a *Allocator) allocate(size uintptr) (unsafe.Pointer, error) {
	header := a.headers.FindFree(size, a.strategy)
	if header != nil {
		header.MarkTaken()
		return header.Payload(), nil
	}

	span, ok := metadata.SpanFor(size)
	if !ok {
		a.setErrno()
		return nil, cerrors.Wrapf(memutils.ErrOutOfMemory, "a block of %d bytes cannot be addressed", size)
	}

	block, flags, err := a.store.Acquire(int(metadata.HeaderSize+size), span)
	if err != nil {
		a.setErrno()
		return nil, err
	}

	header = metadata.NewHeader(block, size, flags)
	header.WriteMargin()
	a.headers.Append(header)

	if flags.IsMapped() {
		a.logger.LogAttrs(context.Background(), slog.LevelDebug, "    Mapped block",
			slog.String("address", fmt.Sprintf("%p", block)), slog.Int("span", span))
	} else {
		a.logger.LogAttrs(context.Background(), slog.LevelDebug, "    Extended heap",
			slog.String("address", fmt.Sprintf("%p", block)), slog.Int("span", span))
	}

	memutils.DebugValidate(&a.headers)
	return header.Payload(), nil
}

// Free returns a block obtained from this allocator. Free of nil does nothing.
//
// A block that owns an independent mapping is unmapped immediately. A heap block that ends at
// the top of the heap region is trimmed off the region. Any other block stays in the block list,
// marked free, for reuse by later requests.
//
// If ptr does not lead to a valid header from this allocator, the corruption is logged, nothing
// is changed, and an error marked with memutils.ErrCorruption is returned (or raised as a panic
// if the allocator was created with CreatePanicOnCorruption).
func (a *Allocator) Free(ptr unsafe.Pointer) error {
	if ptr == nil {
		return nil
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.checkCorruption(a.free(ptr))
}

func (a *Allocator) free(ptr unsafe.Pointer) error {
	header, err := a.resolve(ptr)
	if err != nil {
		return err
	}

	if header.IsFree() {
		return a.reportDoubleFree(ptr, "free")
	}

	if !header.CheckMargin() {
		return a.reportCorruption(ptr, cerrors.Wrapf(memutils.ErrCorruption, "the debug margin after %d bytes at %p has been overwritten", header.Size(), ptr))
	}

	block := unsafe.Pointer(header)
	span := header.Span()
	flags := header.Flags()

	if !flags.IsMapped() && !a.store.IsTop(block, span) {
		header.MarkFree()
		memutils.DebugValidate(&a.headers)
		return nil
	}

	// The header lives in the memory being released, so it leaves the list first
	prev, err := a.headers.Unlink(header)
	if err != nil {
		return a.reportCorruption(ptr, cerrors.Mark(err, memutils.ErrCorruption))
	}

	released, err := a.store.Release(block, span, flags)
	if err != nil {
		// The memory is still in place. A mapped block stays allocated so the free can be retried;
		// a heap block that could not be trimmed is kept for reuse like any other free block.
		a.headers.InsertAfter(prev, header)
		if !flags.IsMapped() {
			header.MarkFree()
		}

		a.logger.LogAttrs(context.Background(), slog.LevelError, "failed to release block memory",
			slog.String("address", fmt.Sprintf("%p", block)),
			slog.Int("span", span),
			slog.String("flags", flags.String()),
			slog.Any("error", err))
		return err
	}

	if released {
		a.logger.LogAttrs(context.Background(), slog.LevelDebug, "    Released block",
			slog.String("address", fmt.Sprintf("%p", block)),
			slog.Int("span", span),
			slog.String("flags", flags.String()))
	}

	memutils.DebugValidate(&a.headers)
	return nil
}

// resolve turns a payload pointer back into its header, refusing any address that could not have
// come from this allocator before reading from it
func (a *Allocator) resolve(ptr unsafe.Pointer) (*metadata.Header, error) {
	addr := uintptr(ptr)
	if addr < metadata.HeaderSize || !a.store.Owns(addr-metadata.HeaderSize) {
		return nil, a.reportCorruption(ptr, cerrors.Wrapf(memutils.ErrCorruption, "%p was not allocated by this allocator", ptr))
	}

	header := metadata.HeaderFromPayload(ptr)
	err := header.CheckIntegrity()
	if err != nil {
		return nil, a.reportCorruption(ptr, cerrors.Mark(err, memutils.ErrCorruption))
	}

	return header, nil
}

func (a *Allocator) reportCorruption(ptr unsafe.Pointer, err error) error {
	a.logger.LogAttrs(context.Background(), slog.LevelError, "[HEAP CORRUPTION] invalid block pointer",
		slog.String("address", fmt.Sprintf("%p", ptr)),
		slog.Any("error", err))

	return err
}

// reportDoubleFree reports an operation on a block that is already free. The error is both
// memutils.ErrDoubleFree and memutils.ErrCorruption.
func (a *Allocator) reportDoubleFree(ptr unsafe.Pointer, operation string) error {
	return a.reportCorruption(ptr, cerrors.Mark(cerrors.Wrapf(memutils.ErrDoubleFree, "%s of %p", operation, ptr), memutils.ErrCorruption))
}

// checkCorruption panics with err if it is a corruption error and the allocator treats corruption
// as fatal. The caller's deferred unlock still runs.
func (a *Allocator) checkCorruption(err error) error {
	if err != nil && a.createFlags&CreatePanicOnCorruption != 0 && cerrors.Is(err, memutils.ErrCorruption) {
		panic(err)
	}

	return err
}

// Calloc returns a pointer to count*elemSize zeroed bytes. If either argument is zero, Calloc
// returns nil with no error. If the product overflows, Calloc returns nil and an error marked
// with memutils.ErrOverflow; it does not set the allocator's error code.
func (a *Allocator) Calloc(count, elemSize uintptr) (unsafe.Pointer, error) {
	if count == 0 || elemSize == 0 {
		return nil, nil
	}

	size, overflow := memutils.MulOverflows(count, elemSize)
	if overflow {
		return nil, cerrors.Wrapf(memutils.ErrOverflow, "%d elements of %d bytes", count, elemSize)
	}

	ptr, err := a.Malloc(size)
	if ptr == nil {
		return nil, err
	}

	clear(unsafe.Slice((*byte)(ptr), size))
	return ptr, nil
}

// Realloc changes the size of the block at ptr to size bytes.
//
// A nil ptr behaves as Malloc(size). A size of zero frees ptr and returns nil. If the block can
// already hold size bytes, ptr itself is returned and nothing changes: capacity is never given up
// by shrinking. Otherwise a new block is allocated, the old contents copied into it and the old
// block freed. If the new block cannot be allocated, nil is returned and the original block is
// left untouched.
func (a *Allocator) Realloc(ptr unsafe.Pointer, size uintptr) (unsafe.Pointer, error) {
	if ptr == nil && size == 0 {
		return nil, nil
	}

	if size == 0 {
		return nil, a.Free(ptr)
	}

	if ptr == nil {
		return a.Malloc(size)
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	newPtr, err := a.reallocate(ptr, size)
	return newPtr, a.checkCorruption(err)
}

func (a *Allocator) reallocate(ptr unsafe.Pointer, size uintptr) (unsafe.Pointer, error) {
	header, err := a.resolve(ptr)
	if err != nil {
		return nil, err
	}

	if header.IsFree() {
		return nil, a.reportDoubleFree(ptr, "resize")
	}

	oldSize := header.Size()
	if oldSize >= size {
		return ptr, nil
	}

	newPtr, err := a.allocate(size)
	if err != nil {
		return nil, err
	}

	copy(unsafe.Slice((*byte)(newPtr), oldSize), unsafe.Slice((*byte)(ptr), oldSize))

	err = a.free(ptr)
	if err != nil {
		return newPtr, err
	}

	return newPtr, nil
}

// ReallocArray behaves as Realloc(ptr, count*elemSize). If either count or elemSize is zero it
// returns nil with no error and leaves ptr alone. If the product overflows, it sets the
// allocator's error code (with CreateSetErrno) and returns an error marked with both
// memutils.ErrOverflow and memutils.ErrOutOfMemory.
func (a *Allocator) ReallocArray(ptr unsafe.Pointer, count, elemSize uintptr) (unsafe.Pointer, error) {
	if count == 0 || elemSize == 0 {
		return nil, nil
	}

	size, overflow := memutils.MulOverflows(count, elemSize)
	if overflow {
		a.setErrno()
		return nil, cerrors.Mark(cerrors.Wrapf(memutils.ErrOverflow, "%d elements of %d bytes", count, elemSize), memutils.ErrOutOfMemory)
	}

	return a.Realloc(ptr, size)
}

// UsableSize returns the capacity of the live block at ptr, which may be more than was requested
// for it if the block was reused
func (a *Allocator) UsableSize(ptr unsafe.Pointer) (uintptr, error) {
	if ptr == nil {
		return 0, nil
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	header, err := a.resolve(ptr)
	if err != nil {
		return 0, a.checkCorruption(err)
	}

	if header.IsFree() {
		return 0, a.checkCorruption(a.reportDoubleFree(ptr, "size"))
	}

	return header.Size(), nil
}

// Bytes returns the first size bytes of the payload at ptr as a byte slice. It does not check ptr.
func Bytes(ptr unsafe.Pointer, size uintptr) []byte {
	if ptr == nil {
		return nil
	}

	return unsafe.Slice((*byte)(ptr), size)
}

func (a *Allocator) setErrno() {
	if a.createFlags&CreateSetErrno != 0 {
		a.errno.Store(uint32(syscall.ENOMEM))
	}
}

// Errno returns the error code recorded by the most recent failed request, or 0. Error codes
// are only recorded when the allocator was created with CreateSetErrno, and, as with a C errno,
// they are never cleared by a successful request.
func (a *Allocator) Errno() syscall.Errno {
	return syscall.Errno(a.errno.Load())
}

// ClearErrno resets the recorded error code to 0
func (a *Allocator) ClearErrno() {
	a.errno.Store(0)
}

// Validate checks the block list for internal consistency, including every header's sentinel
func (a *Allocator) Validate() error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	err := a.headers.Validate()
	if err != nil {
		return err
	}

	return a.headers.Visit(func(header *metadata.Header) error {
		if header.Flags().IsMapped() {
			if !a.store.Mapper().Contains(uintptr(unsafe.Pointer(header))) {
				return cerrors.Newf("mapped header at %p does not start a live mapping", header)
			}
		} else if !a.store.Region().Contains(uintptr(unsafe.Pointer(header)), header.Span()) {
			return cerrors.Newf("heap header at %p lies outside the heap region", header)
		}

		return nil
	})
}

// GetStatistics populates stats with block and allocation totals. It is cheaper than
// CalculateStatistics, which also tracks the size range of allocations and free blocks.
func (a *Allocator) GetStatistics(stats *memutils.Statistics) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	stats.Clear()
	a.headers.AddStatistics(stats)
}

// CalculateStatistics populates stats with the allocator's current blocks
func (a *Allocator) CalculateStatistics(stats *memutils.DetailedStatistics) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	stats.Clear()
	a.headers.AddDetailedStatistics(stats)
}

// BuildStatsString returns a json document describing the allocator's statistics and heap region.
// If detailedMap is true, every block is listed as well.
func (a *Allocator) BuildStatsString(detailedMap bool) string {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	var stats memutils.DetailedStatistics
	stats.Clear()
	a.headers.AddDetailedStatistics(&stats)

	writer := jwriter.NewWriter()
	objState := writer.Object()

	totalObj := objState.Name("Total").Object()
	stats.PrintJson(&totalObj)
	totalObj.End()

	region := a.store.Region()
	heapObj := objState.Name("Heap").Object()
	heapObj.Name("Reserved").Int(region.Reserved())
	heapObj.Name("Committed").Int(region.Committed())
	heapObj.Name("Top").String(fmt.Sprintf("%p", region.Top()))
	heapObj.Name("MappedBytes").Int(a.store.Mapper().MappedBytes())
	heapObj.Name("MappingThreshold").Int(a.store.MappingThreshold())
	heapObj.Name("FitStrategy").String(a.strategy.String())
	heapObj.End()

	if detailedMap {
		blocksArray := objState.Name("Blocks").Array()
		a.headers.PrintDetailedMap(&blocksArray)
		blocksArray.End()
	}

	objState.End()
	return string(writer.Bytes())
}

// Destroy releases all memory held by the allocator. Blocks that are still allocated are logged
// and released along with everything else, and an error is returned. Pointers from the allocator
// must not be used after Destroy.
func (a *Allocator) Destroy() error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	unreleased := 0
	_ = a.headers.Visit(func(header *metadata.Header) error {
		if header.IsFree() {
			return nil
		}

		unreleased++
		a.logger.LogAttrs(context.Background(), slog.LevelError, "[UNRELEASED MEMORY] unfreed allocation",
			slog.String("address", fmt.Sprintf("%p", header.Payload())),
			slog.Int("size", int(header.Size())),
			slog.String("flags", header.Flags().String()),
		)
		return nil
	})

	a.headers.Reset()
	err := a.store.Close()
	if err != nil {
		return err
	}

	if unreleased > 0 {
		return cerrors.Newf("%d allocations were not freed before the destruction of this allocator", unreleased)
	}

	return nil
}
