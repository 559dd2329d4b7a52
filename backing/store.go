package backing

import (
	"unsafe"

	cerrors "github.com/cockroachdb/errors"
	"github.com/vkngwrapper/tmalloc/memutils"
	"github.com/vkngwrapper/tmalloc/memutils/metadata"
)

// DefaultMappingThreshold is the request size, header included, at and above which a block gets
// its own mapping instead of extending the heap region. It is 128KiB.
const DefaultMappingThreshold int = 128 * 1024

// Store dispatches block acquisition and release between a heap region and a mapper. Store is not
// safe for concurrent use; the allocator that owns it serializes every call.
type Store struct {
	region           Region
	mapper           Mapper
	mappingThreshold int
}

// NewStore creates a Store. Requests of mappingThreshold bytes or more are mapped; smaller requests
// extend region. A mappingThreshold of zero or less maps every request.
func NewStore(region Region, mapper Mapper, mappingThreshold int) *Store {
	return &Store{
		region:           region,
		mapper:           mapper,
		mappingThreshold: mappingThreshold,
	}
}

func (s *Store) Region() Region { return s.region }

func (s *Store) Mapper() Mapper { return s.mapper }

func (s *Store) MappingThreshold() int { return s.mappingThreshold }

// Acquire obtains span bytes for a new block and reports which path they came from. The path is
// chosen by request, the header and payload size before rounding: requests of mappingThreshold
// bytes or more are mapped. Errors are marked with memutils.ErrOutOfMemory.
func (s *Store) Acquire(request, span int) (unsafe.Pointer, metadata.HeaderFlags, error) {
	if request < s.mappingThreshold {
		block, err := s.region.Extend(span)
		if err != nil {
			return nil, 0, cerrors.Mark(cerrors.Wrapf(err, "extend heap by %d bytes", span), memutils.ErrOutOfMemory)
		}

		return block, metadata.HeaderFlagsHeapExtension, nil
	}

	block, err := s.mapper.Map(span)
	if err != nil {
		return nil, 0, cerrors.Mark(cerrors.Wrapf(err, "map %d bytes", span), memutils.ErrOutOfMemory)
	}

	return block, metadata.HeaderFlagsIndependentMapping, nil
}

// IsTop returns true if the total bytes at addr end exactly at the top of the heap region
func (s *Store) IsTop(addr unsafe.Pointer, total int) bool {
	return unsafe.Add(addr, total) == s.region.Top()
}

// Release gives the total bytes at addr back to where they were acquired from. Mappings are always
// released. Heap region memory can only be released from the top of the region: for any other block
// Release returns false and leaves the memory alone, and the caller keeps the block for reuse.
func (s *Store) Release(addr unsafe.Pointer, total int, flags metadata.HeaderFlags) (bool, error) {
	if flags.IsMapped() {
		err := s.mapper.Unmap(addr, total)
		if err != nil {
			return false, cerrors.Wrapf(err, "unmap %d bytes at %p", total, addr)
		}

		return true, nil
	}

	if !s.IsTop(addr, total) {
		return false, nil
	}

	err := s.region.Shrink(total)
	if err != nil {
		return false, cerrors.Wrapf(err, "shrink heap by %d bytes", total)
	}

	return true, nil
}

// Owns returns true if a block header at addr could have been produced from this store: either it
// lies within the in-use part of the heap region or it starts a live mapping.
func (s *Store) Owns(addr uintptr) bool {
	if addr%uintptr(memutils.Alignment) != 0 {
		return false
	}

	return s.region.Contains(addr, int(metadata.HeaderSize)) || s.mapper.Contains(addr)
}

// Close releases the heap region and every live mapping
func (s *Store) Close() error {
	return cerrors.CombineErrors(s.region.Close(), s.mapper.Close())
}
