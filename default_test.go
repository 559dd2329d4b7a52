package tmalloc_test

import (
	"math"
	"syscall"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/tmalloc"
	"github.com/vkngwrapper/tmalloc/memutils"
)

func TestDefaultAllocator(t *testing.T) {
	allocator, err := tmalloc.Default()
	require.NoError(t, err)

	again, err := tmalloc.Default()
	require.NoError(t, err)
	require.Same(t, allocator, again)

	ptr, err := tmalloc.Malloc(24)
	require.NoError(t, err)
	fill(ptr, 24, 0x42)

	ptr, err = tmalloc.Realloc(ptr, 240)
	require.NoError(t, err)
	requireFilled(t, ptr, 24, 0x42)

	zeroed, err := tmalloc.Calloc(10, 10)
	require.NoError(t, err)
	requireFilled(t, zeroed, 100, 0)

	zeroed, err = tmalloc.ReallocArray(zeroed, 20, 10)
	require.NoError(t, err)
	requireFilled(t, zeroed, 100, 0)

	_, err = tmalloc.ReallocArray(zeroed, math.MaxUint, 2)
	require.True(t, errors.Is(err, memutils.ErrOverflow))
	require.Equal(t, syscall.ENOMEM, allocator.Errno())
	allocator.ClearErrno()

	require.NoError(t, tmalloc.Free(zeroed))
	require.NoError(t, tmalloc.Free(ptr))
	require.NoError(t, allocator.Validate())
}
