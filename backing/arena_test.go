package backing_test

import (
	"math"
	"math/bits"
	"testing"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/tmalloc/backing"
	"github.com/vkngwrapper/tmalloc/memutils"
)

func TestArenaRegion_ExtendShrink(t *testing.T) {
	region := backing.NewArenaRegion(1000)
	require.Equal(t, 1008, region.Reserved())
	require.Equal(t, 0, region.Committed())

	base := region.Top()
	require.Zero(t, uintptr(base)%uintptr(memutils.Alignment))

	first, err := region.Extend(64)
	require.NoError(t, err)
	require.Equal(t, base, first)

	second, err := region.Extend(128)
	require.NoError(t, err)
	require.Equal(t, unsafe.Add(base, 64), second)
	require.Equal(t, unsafe.Add(base, 192), region.Top())
	require.Equal(t, 192, region.Committed())

	require.True(t, region.Contains(uintptr(first), 16))
	require.True(t, region.Contains(uintptr(second), 128))
	require.False(t, region.Contains(uintptr(second), 129))
	require.False(t, region.Contains(uintptr(region.Top()), 16))
	require.False(t, region.Contains(uintptr(base)-16, 16))

	payload := unsafe.Slice((*byte)(second), 128)
	payload[0] = 0xAB

	require.NoError(t, region.Shrink(128))
	require.Equal(t, second, region.Top())
	require.False(t, region.Contains(uintptr(second), 16))

	// Memory handed back to the arena is cleared before it is handed out again
	again, err := region.Extend(128)
	require.NoError(t, err)
	require.Equal(t, second, again)
	require.Equal(t, byte(0), payload[0])

	require.NoError(t, region.Close())
	require.Equal(t, 0, region.Reserved())
}

func TestArenaRegion_OutOfMemory(t *testing.T) {
	region := backing.NewArenaRegion(256)

	_, err := region.Extend(256)
	require.NoError(t, err)

	_, err = region.Extend(16)
	require.Error(t, err)
	require.True(t, errors.Is(err, memutils.ErrOutOfMemory))
	require.Equal(t, 256, region.Committed())
}

func TestArenaRegion_InvalidSizes(t *testing.T) {
	region := backing.NewArenaRegion(256)

	_, err := region.Extend(0)
	require.Error(t, err)
	require.False(t, errors.Is(err, memutils.ErrOutOfMemory))

	require.Error(t, region.Shrink(16))

	_, err = region.Extend(32)
	require.NoError(t, err)
	require.Error(t, region.Shrink(48))
	require.Error(t, region.Shrink(-1))
}

func TestArenaMapper(t *testing.T) {
	mapper := backing.NewArenaMapper(0)

	first, err := mapper.Map(4096)
	require.NoError(t, err)
	require.Zero(t, uintptr(first)%uintptr(memutils.Alignment))

	second, err := mapper.Map(100)
	require.NoError(t, err)
	require.NotEqual(t, first, second)
	require.Equal(t, 4196, mapper.MappedBytes())

	require.True(t, mapper.Contains(uintptr(first)))
	require.True(t, mapper.Contains(uintptr(second)))
	require.False(t, mapper.Contains(uintptr(first)+16))

	memory := unsafe.Slice((*byte)(first), 4096)
	memory[4095] = 1

	require.Error(t, mapper.Unmap(first, 100))
	require.True(t, mapper.Contains(uintptr(first)))

	require.NoError(t, mapper.Unmap(first, 4096))
	require.False(t, mapper.Contains(uintptr(first)))
	require.Equal(t, 100, mapper.MappedBytes())
	require.Error(t, mapper.Unmap(first, 4096))

	require.NoError(t, mapper.Close())
	require.False(t, mapper.Contains(uintptr(second)))
	require.Equal(t, 0, mapper.MappedBytes())
}

func TestArenaMapper_Limit(t *testing.T) {
	mapper := backing.NewArenaMapper(1024)

	block, err := mapper.Map(1000)
	require.NoError(t, err)

	_, err = mapper.Map(100)
	require.Error(t, err)
	require.True(t, errors.Is(err, memutils.ErrOutOfMemory))

	require.NoError(t, mapper.Unmap(block, 1000))
	_, err = mapper.Map(100)
	require.NoError(t, err)

	_, err = mapper.Map(0)
	require.Error(t, err)
}

func TestArenaMapper_UnallocatableSizes(t *testing.T) {
	mapper := backing.NewArenaMapper(0)

	_, err := mapper.Map(math.MaxInt)
	require.Error(t, err)
	require.True(t, errors.Is(err, memutils.ErrOutOfMemory))

	_, err = mapper.Map(math.MaxInt - int(memutils.Alignment))
	require.Error(t, err)
	require.True(t, errors.Is(err, memutils.ErrOutOfMemory))

	if bits.UintSize == 64 {
		// Within the bounds of an int but far beyond what the runtime can allocate
		_, err = mapper.Map(1 << 60)
		require.Error(t, err)
		require.True(t, errors.Is(err, memutils.ErrOutOfMemory))
	}

	require.Equal(t, 0, mapper.MappedBytes())
}

func TestArenaRegion_UnallocatableCapacity(t *testing.T) {
	region := backing.NewArenaRegion(math.MaxInt - 64)
	require.Equal(t, 0, region.Reserved())

	_, err := region.Extend(16)
	require.Error(t, err)
	require.True(t, errors.Is(err, memutils.ErrOutOfMemory))
	require.False(t, region.Contains(uintptr(region.Top()), 1))
	require.NoError(t, region.Close())
}
