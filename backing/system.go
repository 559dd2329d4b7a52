//go:build linux || darwin || windows

package backing

import (
	"os"
	"unsafe"

	cerrors "github.com/cockroachdb/errors"
	"github.com/vkngwrapper/tmalloc/memutils"
)

// SystemRegion is a Region backed by address space reserved up front with no access rights.
// Extending the region moves its top forward and commits the pages under it; shrinking it hands
// whole pages above the new top back to the operating system and revokes access to them.
type SystemRegion struct {
	reservation []byte
	pageSize    int
	top         int
	committed   int
}

var _ Region = &SystemRegion{}

// NewSystemRegion reserves reserve bytes of address space, rounded up to the page size. The
// reservation costs no memory until it is extended into.
func NewSystemRegion(reserve int) (*SystemRegion, error) {
	if reserve <= 0 {
		return nil, cerrors.Newf("invalid heap reservation %d", reserve)
	}

	pageSize := os.Getpagesize()
	memutils.DebugCheckPow2(pageSize, "pageSize")
	reserve = memutils.AlignUp(reserve, uint(pageSize))

	reservation, err := reserveAddressSpace(reserve)
	if err != nil {
		return nil, cerrors.Mark(cerrors.Wrapf(err, "reserve %d bytes of heap address space", reserve), memutils.ErrOutOfMemory)
	}

	return &SystemRegion{
		reservation: reservation,
		pageSize:    pageSize,
	}, nil
}

func (r *SystemRegion) Extend(increment int) (unsafe.Pointer, error) {
	if increment <= 0 {
		return nil, cerrors.Newf("invalid heap increment %d", increment)
	}

	if increment > len(r.reservation)-r.top {
		return nil, cerrors.Wrapf(memutils.ErrOutOfMemory, "heap reservation has %d of %d bytes free, %d requested", len(r.reservation)-r.top, len(r.reservation), increment)
	}

	newTop := r.top + increment
	if newTop > r.committed {
		newCommitted := memutils.AlignUp(newTop, uint(r.pageSize))
		err := commitPages(r.reservation[r.committed:newCommitted])
		if err != nil {
			return nil, cerrors.Mark(cerrors.Wrapf(err, "commit heap pages [%d, %d)", r.committed, newCommitted), memutils.ErrOutOfMemory)
		}

		r.committed = newCommitted
	}

	block := unsafe.Pointer(&r.reservation[r.top])
	r.top = newTop
	return block, nil
}

func (r *SystemRegion) Shrink(decrement int) error {
	if decrement <= 0 || decrement > r.top {
		return cerrors.Newf("cannot shrink a region with %d bytes in use by %d bytes", r.top, decrement)
	}

	newTop := r.top - decrement
	keep := memutils.AlignUp(newTop, uint(r.pageSize))
	if keep < r.committed {
		err := decommitPages(r.reservation[keep:r.committed])
		if err != nil {
			return cerrors.Wrapf(err, "decommit heap pages [%d, %d)", keep, r.committed)
		}

		r.committed = keep
	}

	r.top = newTop
	return nil
}

func (r *SystemRegion) Top() unsafe.Pointer {
	return unsafe.Add(unsafe.Pointer(&r.reservation[0]), r.top)
}

func (r *SystemRegion) Contains(addr uintptr, size int) bool {
	if r.reservation == nil {
		return false
	}

	base := uintptr(unsafe.Pointer(&r.reservation[0]))
	return addr >= base && addr-base <= uintptr(r.top) && uintptr(r.top)-(addr-base) >= uintptr(size)
}

func (r *SystemRegion) Reserved() int { return len(r.reservation) }

func (r *SystemRegion) Committed() int { return r.committed }

func (r *SystemRegion) Close() error {
	if r.reservation == nil {
		return nil
	}

	err := releaseAddressSpace(r.reservation)
	if err != nil {
		return cerrors.Wrap(err, "release heap reservation")
	}

	r.reservation = nil
	r.top = 0
	r.committed = 0
	return nil
}

// SystemMapper is a Mapper backed by anonymous private mappings, one per call to Map
type SystemMapper struct {
	registry mappingRegistry
	pageSize int
}

var _ Mapper = &SystemMapper{}

func NewSystemMapper() (*SystemMapper, error) {
	return &SystemMapper{
		registry: newMappingRegistry(),
		pageSize: os.Getpagesize(),
	}, nil
}

func (m *SystemMapper) Map(size int) (unsafe.Pointer, error) {
	if size <= 0 || size > maxInt-m.pageSize {
		return nil, cerrors.Wrapf(memutils.ErrOutOfMemory, "invalid mapping size %d", size)
	}

	length := memutils.AlignUp(size, uint(m.pageSize))
	memory, err := mapPages(length)
	if err != nil {
		return nil, cerrors.Mark(cerrors.Wrapf(err, "map %d bytes", length), memutils.ErrOutOfMemory)
	}

	base := unsafe.Pointer(&memory[0])
	m.registry.register(uintptr(base), memory, size)
	return base, nil
}

// Unmap releases a mapping. The mapping stays registered if the operating system refuses to
// release it.
func (m *SystemMapper) Unmap(addr unsafe.Pointer, size int) error {
	mapped, err := m.registry.check(uintptr(addr), size)
	if err != nil {
		return err
	}

	err = unmapPages(mapped.memory)
	if err != nil {
		return err
	}

	_, err = m.registry.remove(uintptr(addr), size)
	return err
}

func (m *SystemMapper) Contains(addr uintptr) bool {
	_, ok := m.registry.lookup(addr)
	return ok
}

func (m *SystemMapper) MappedBytes() int { return m.registry.mappedBytes }

func (m *SystemMapper) Close() error {
	var err error
	for _, released := range m.registry.drain() {
		err = cerrors.CombineErrors(err, unmapPages(released.memory))
	}

	return err
}
