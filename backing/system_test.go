//go:build linux || darwin || windows

package backing_test

import (
	"math"
	"os"
	"testing"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/tmalloc/backing"
	"github.com/vkngwrapper/tmalloc/memutils"
)

func TestSystemRegion(t *testing.T) {
	pageSize := os.Getpagesize()

	region, err := backing.NewSystemRegion(4 * pageSize)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, region.Close())
	}()

	require.Equal(t, 4*pageSize, region.Reserved())
	require.Equal(t, 0, region.Committed())

	first, err := region.Extend(64)
	require.NoError(t, err)
	require.Equal(t, pageSize, region.Committed())

	second, err := region.Extend(pageSize)
	require.NoError(t, err)
	require.Equal(t, unsafe.Add(first, 64), second)
	require.Equal(t, 2*pageSize, region.Committed())

	memory := unsafe.Slice((*byte)(second), pageSize)
	for i := range memory {
		memory[i] = 0xCD
	}

	require.True(t, region.Contains(uintptr(second), pageSize))
	require.False(t, region.Contains(uintptr(second), pageSize+1))

	require.NoError(t, region.Shrink(pageSize))
	require.Equal(t, second, region.Top())
	require.Equal(t, pageSize, region.Committed())

	// Decommitted pages come back zeroed
	again, err := region.Extend(pageSize)
	require.NoError(t, err)
	require.Equal(t, second, again)
	require.Equal(t, byte(0), memory[pageSize-1])

	_, err = region.Extend(4 * pageSize)
	require.Error(t, err)
	require.True(t, errors.Is(err, memutils.ErrOutOfMemory))
}

func TestSystemMapper(t *testing.T) {
	mapper, err := backing.NewSystemMapper()
	require.NoError(t, err)

	block, err := mapper.Map(200 * 1024)
	require.NoError(t, err)
	require.Zero(t, uintptr(block)%uintptr(memutils.Alignment))
	require.True(t, mapper.Contains(uintptr(block)))
	require.Equal(t, 200*1024, mapper.MappedBytes())

	memory := unsafe.Slice((*byte)(block), 200*1024)
	memory[0] = 1
	memory[len(memory)-1] = 2

	require.NoError(t, mapper.Unmap(block, 200*1024))
	require.False(t, mapper.Contains(uintptr(block)))
	require.Equal(t, 0, mapper.MappedBytes())

	_, err = mapper.Map(4096)
	require.NoError(t, err)
	require.NoError(t, mapper.Close())
	require.Equal(t, 0, mapper.MappedBytes())
}

func TestSystemMapper_RejectedRequests(t *testing.T) {
	mapper, err := backing.NewSystemMapper()
	require.NoError(t, err)

	_, err = mapper.Map(math.MaxInt)
	require.Error(t, err)
	require.True(t, errors.Is(err, memutils.ErrOutOfMemory))

	_, err = mapper.Map(0)
	require.Error(t, err)
	require.Equal(t, 0, mapper.MappedBytes())

	block, err := mapper.Map(4096)
	require.NoError(t, err)

	// A release with the wrong size leaves the mapping in place
	require.Error(t, mapper.Unmap(block, 100))
	require.True(t, mapper.Contains(uintptr(block)))
	require.Equal(t, 4096, mapper.MappedBytes())

	require.NoError(t, mapper.Unmap(block, 4096))
	require.NoError(t, mapper.Close())
}

func TestSystemRegion_InvalidReservation(t *testing.T) {
	_, err := backing.NewSystemRegion(0)
	require.Error(t, err)

	_, err = backing.NewSystemRegion(-4096)
	require.Error(t, err)
}
