package backing_test

import (
	"testing"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/tmalloc/backing"
	mock_backing "github.com/vkngwrapper/tmalloc/backing/mocks"
	"github.com/vkngwrapper/tmalloc/memutils"
	"github.com/vkngwrapper/tmalloc/memutils/metadata"
	"go.uber.org/mock/gomock"
)

func newArenaStore(threshold int) (*backing.Store, *backing.ArenaRegion, *backing.ArenaMapper) {
	region := backing.NewArenaRegion(64 * 1024)
	mapper := backing.NewArenaMapper(0)
	return backing.NewStore(region, mapper, threshold), region, mapper
}

func TestStore_AcquireByThreshold(t *testing.T) {
	store, region, mapper := newArenaStore(1024)
	require.Equal(t, 1024, store.MappingThreshold())
	require.Equal(t, backing.Region(region), store.Region())
	require.Equal(t, backing.Mapper(mapper), store.Mapper())

	small, flags, err := store.Acquire(1008, 1008)
	require.NoError(t, err)
	require.Equal(t, metadata.HeaderFlagsHeapExtension, flags)
	require.Equal(t, 1008, region.Committed())
	require.True(t, store.IsTop(small, 1008))

	large, flags, err := store.Acquire(1024, 1024)
	require.NoError(t, err)
	require.Equal(t, metadata.HeaderFlagsIndependentMapping, flags)
	require.Equal(t, 1024, mapper.MappedBytes())
	require.Equal(t, 1008, region.Committed())

	require.True(t, store.Owns(uintptr(small)))
	require.True(t, store.Owns(uintptr(large)))
	require.False(t, store.Owns(uintptr(small)+8))
	require.False(t, store.Owns(uintptr(large)+16))

	require.NoError(t, store.Close())
}

func TestStore_ThresholdComparesUnroundedRequest(t *testing.T) {
	store, region, mapper := newArenaStore(1024)

	// The rounded span reaches the threshold but the request itself does not
	block, flags, err := store.Acquire(1016, 1024)
	require.NoError(t, err)
	require.Equal(t, metadata.HeaderFlagsHeapExtension, flags)
	require.Equal(t, 1024, region.Committed())
	require.Equal(t, 0, mapper.MappedBytes())
	require.True(t, store.IsTop(block, 1024))

	_, flags, err = store.Acquire(1024, 1040)
	require.NoError(t, err)
	require.Equal(t, metadata.HeaderFlagsIndependentMapping, flags)
	require.Equal(t, 1040, mapper.MappedBytes())
}

func TestStore_MapEverything(t *testing.T) {
	store, region, mapper := newArenaStore(0)

	_, flags, err := store.Acquire(16, 16)
	require.NoError(t, err)
	require.True(t, flags.IsMapped())
	require.Equal(t, 0, region.Committed())
	require.Equal(t, 16, mapper.MappedBytes())
}

func TestStore_ReleaseOnlyFromTop(t *testing.T) {
	store, region, _ := newArenaStore(backing.DefaultMappingThreshold)

	first, _, err := store.Acquire(64, 64)
	require.NoError(t, err)
	second, _, err := store.Acquire(128, 128)
	require.NoError(t, err)

	released, err := store.Release(first, 64, metadata.HeaderFlagsHeapExtension)
	require.NoError(t, err)
	require.False(t, released)
	require.Equal(t, 192, region.Committed())

	released, err = store.Release(second, 128, metadata.HeaderFlagsHeapExtension)
	require.NoError(t, err)
	require.True(t, released)
	require.Equal(t, 64, region.Committed())

	// With the second block gone the first one ends at the top
	released, err = store.Release(first, 64, metadata.HeaderFlagsHeapExtension)
	require.NoError(t, err)
	require.True(t, released)
	require.Equal(t, 0, region.Committed())
}

func TestStore_ReleaseMapping(t *testing.T) {
	store, _, mapper := newArenaStore(256)

	block, flags, err := store.Acquire(512, 512)
	require.NoError(t, err)

	released, err := store.Release(block, 512, flags)
	require.NoError(t, err)
	require.True(t, released)
	require.Equal(t, 0, mapper.MappedBytes())
	require.False(t, store.Owns(uintptr(block)))

	_, err = store.Release(block, 512, flags)
	require.Error(t, err)
}

func TestStore_AcquireFailureIsOutOfMemory(t *testing.T) {
	ctrl := gomock.NewController(t)
	region := mock_backing.NewMockRegion(ctrl)
	mapper := mock_backing.NewMockMapper(ctrl)
	store := backing.NewStore(region, mapper, 1024)

	region.EXPECT().Extend(64).Return(unsafe.Pointer(nil), errors.New("break limit reached"))
	mapper.EXPECT().Map(2048).Return(unsafe.Pointer(nil), errors.New("mapping limit reached"))

	_, _, err := store.Acquire(64, 64)
	require.Error(t, err)
	require.True(t, errors.Is(err, memutils.ErrOutOfMemory))
	require.ErrorContains(t, err, "break limit reached")

	_, _, err = store.Acquire(2048, 2048)
	require.Error(t, err)
	require.True(t, errors.Is(err, memutils.ErrOutOfMemory))
	require.ErrorContains(t, err, "mapping limit reached")
}

func TestStore_ReleaseFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	region := mock_backing.NewMockRegion(ctrl)
	mapper := mock_backing.NewMockMapper(ctrl)
	store := backing.NewStore(region, mapper, 1024)

	buffer := make([]byte, 256)
	block := unsafe.Pointer(&buffer[0])

	mapper.EXPECT().Unmap(block, 2048).Return(errors.New("munmap failed"))
	_, err := store.Release(block, 2048, metadata.HeaderFlagsIndependentMapping)
	require.ErrorContains(t, err, "munmap failed")

	region.EXPECT().Top().Return(unsafe.Add(block, 64))
	region.EXPECT().Shrink(64).Return(errors.New("brk failed"))
	released, err := store.Release(block, 64, metadata.HeaderFlagsHeapExtension)
	require.ErrorContains(t, err, "brk failed")
	require.False(t, released)

	region.EXPECT().Close().Return(nil)
	mapper.EXPECT().Close().Return(errors.New("close failed"))
	require.ErrorContains(t, store.Close(), "close failed")
}

func TestStore_OwnsChecksRegionFirst(t *testing.T) {
	ctrl := gomock.NewController(t)
	region := mock_backing.NewMockRegion(ctrl)
	mapper := mock_backing.NewMockMapper(ctrl)
	store := backing.NewStore(region, mapper, 1024)

	region.EXPECT().Contains(uintptr(4096), int(metadata.HeaderSize)).Return(true)
	require.True(t, store.Owns(4096))

	region.EXPECT().Contains(uintptr(8192), int(metadata.HeaderSize)).Return(false)
	mapper.EXPECT().Contains(uintptr(8192)).Return(true)
	require.True(t, store.Owns(8192))

	region.EXPECT().Contains(uintptr(12288), int(metadata.HeaderSize)).Return(false)
	mapper.EXPECT().Contains(uintptr(12288)).Return(false)
	require.False(t, store.Owns(12288))

	// Misaligned addresses are rejected without consulting either store
	require.False(t, store.Owns(4100))
}
