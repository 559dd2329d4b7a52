package backing

import (
	"unsafe"

	cerrors "github.com/cockroachdb/errors"
	"github.com/vkngwrapper/tmalloc/memutils"
)

const maxInt = int(^uint(0) >> 1)

// maxArenaBytes is the largest buffer alignedBuffer will ask the Go runtime for
const maxArenaBytes = maxInt - 2*int(memutils.Alignment)

// alignedBuffer allocates size bytes of Go memory aligned to memutils.Alignment. The buffer has
// one extra aligned slot past size so that pointers to the end of the usable range stay inside
// the allocation. Sizes the runtime cannot allocate fail with memutils.ErrOutOfMemory.
func alignedBuffer(size int) (buffer []byte, err error) {
	if size < 0 || size > maxArenaBytes {
		return nil, cerrors.Wrapf(memutils.ErrOutOfMemory, "an arena of %d bytes cannot be allocated", size)
	}

	defer func() {
		if r := recover(); r != nil {
			buffer = nil
			err = cerrors.Wrapf(memutils.ErrOutOfMemory, "allocate an arena of %d bytes: %v", size, r)
		}
	}()

	alignment := int(memutils.Alignment)
	raw := make([]byte, size+2*alignment)

	start := uintptr(unsafe.Pointer(&raw[0]))
	offset := int((uintptr(alignment) - start%uintptr(alignment)) % uintptr(alignment))
	return raw[offset : offset+size+alignment], nil
}

// ArenaRegion is a Region carved from a fixed-size block of Go memory. It never asks the operating
// system for anything after it is created, which makes it usable on every platform and lets tests
// run a heap out of memory on purpose.
type ArenaRegion struct {
	memory   []byte
	capacity int
	top      int
}

var _ Region = &ArenaRegion{}

// NewArenaRegion creates a region that can grow to capacity bytes, rounded up to memutils.Alignment.
// The whole capacity is allocated up front. If it cannot be allocated, the region has a capacity
// of zero and every Extend fails with memutils.ErrOutOfMemory.
func NewArenaRegion(capacity int) *ArenaRegion {
	capacity = memutils.AlignUp(capacity, memutils.Alignment)

	memory, err := alignedBuffer(capacity)
	if err != nil {
		memory, _ = alignedBuffer(0)
		capacity = 0
	}

	return &ArenaRegion{
		memory:   memory,
		capacity: capacity,
	}
}

func (r *ArenaRegion) Extend(increment int) (unsafe.Pointer, error) {
	if increment <= 0 {
		return nil, cerrors.Newf("invalid heap increment %d", increment)
	}

	if increment > r.capacity-r.top {
		return nil, cerrors.Wrapf(memutils.ErrOutOfMemory, "arena region has %d of %d bytes free, %d requested", r.capacity-r.top, r.capacity, increment)
	}

	block := unsafe.Pointer(&r.memory[r.top])
	r.top += increment
	return block, nil
}

func (r *ArenaRegion) Shrink(decrement int) error {
	if decrement <= 0 || decrement > r.top {
		return cerrors.Newf("cannot shrink a region with %d bytes in use by %d bytes", r.top, decrement)
	}

	clear(r.memory[r.top-decrement : r.top])
	r.top -= decrement
	return nil
}

func (r *ArenaRegion) Top() unsafe.Pointer {
	return unsafe.Pointer(&r.memory[r.top])
}

func (r *ArenaRegion) Contains(addr uintptr, size int) bool {
	base := uintptr(unsafe.Pointer(&r.memory[0]))
	return addr >= base && addr-base <= uintptr(r.top) && uintptr(r.top)-(addr-base) >= uintptr(size)
}

func (r *ArenaRegion) Reserved() int { return r.capacity }

func (r *ArenaRegion) Committed() int { return r.top }

func (r *ArenaRegion) Close() error {
	r.memory, _ = alignedBuffer(0)
	r.capacity = 0
	r.top = 0
	return nil
}

// ArenaMapper is a Mapper that hands out Go memory. Mappings stay reachable through the mapper
// until they are unmapped.
type ArenaMapper struct {
	registry mappingRegistry
	limit    int
}

var _ Mapper = &ArenaMapper{}

// NewArenaMapper creates a mapper. If limit is positive, Map fails with memutils.ErrOutOfMemory
// once the live mappings would exceed limit bytes.
func NewArenaMapper(limit int) *ArenaMapper {
	return &ArenaMapper{
		registry: newMappingRegistry(),
		limit:    limit,
	}
}

func (m *ArenaMapper) Map(size int) (unsafe.Pointer, error) {
	if size <= 0 {
		return nil, cerrors.Newf("invalid mapping size %d", size)
	}

	if m.limit > 0 && size > m.limit-m.registry.mappedBytes {
		return nil, cerrors.Wrapf(memutils.ErrOutOfMemory, "arena mapper limit of %d bytes reached, %d mapped, %d requested", m.limit, m.registry.mappedBytes, size)
	}

	memory, err := alignedBuffer(size)
	if err != nil {
		return nil, err
	}

	base := unsafe.Pointer(&memory[0])
	m.registry.register(uintptr(base), memory, size)

	return base, nil
}

func (m *ArenaMapper) Unmap(addr unsafe.Pointer, size int) error {
	_, err := m.registry.remove(uintptr(addr), size)
	return err
}

func (m *ArenaMapper) Contains(addr uintptr) bool {
	_, ok := m.registry.lookup(addr)
	return ok
}

func (m *ArenaMapper) MappedBytes() int { return m.registry.mappedBytes }

func (m *ArenaMapper) Close() error {
	m.registry.drain()
	return nil
}
