//go:build !linux && !darwin && !windows

package backing_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/tmalloc/backing"
	"github.com/vkngwrapper/tmalloc/memutils"
)

func TestSystemRegion_FallbackIsCapped(t *testing.T) {
	region, err := backing.NewSystemRegion(1024 * 1024 * 1024)
	require.NoError(t, err)
	require.Equal(t, backing.FallbackHeapReservation, region.Reserved())

	_, err = region.Extend(backing.FallbackHeapReservation + 16)
	require.Error(t, err)
	require.True(t, errors.Is(err, memutils.ErrOutOfMemory))
	require.NoError(t, region.Close())

	small, err := backing.NewSystemRegion(4096)
	require.NoError(t, err)
	require.Equal(t, 4096, small.Reserved())

	_, err = backing.NewSystemRegion(0)
	require.Error(t, err)
}

func TestSystemMapper_FallbackIsLimited(t *testing.T) {
	mapper, err := backing.NewSystemMapper()
	require.NoError(t, err)

	_, err = mapper.Map(backing.FallbackMappingLimit + 16)
	require.Error(t, err)
	require.True(t, errors.Is(err, memutils.ErrOutOfMemory))
	require.Equal(t, 0, mapper.MappedBytes())
}
