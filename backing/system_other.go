//go:build !linux && !darwin && !windows

package backing

import (
	cerrors "github.com/cockroachdb/errors"
)

const (
	// FallbackHeapReservation caps the heap region on platforms where address space cannot be
	// reserved without committing it. The region is a Go arena allocated in full up front.
	FallbackHeapReservation int = 32 * 1024 * 1024
	// FallbackMappingLimit caps the total size of live independent mappings on the same platforms
	FallbackMappingLimit int = 256 * 1024 * 1024
)

// NewSystemRegion falls back to an arena region of at most FallbackHeapReservation bytes
func NewSystemRegion(reserve int) (*ArenaRegion, error) {
	if reserve <= 0 {
		return nil, cerrors.Newf("invalid heap reservation %d", reserve)
	}

	return NewArenaRegion(min(reserve, FallbackHeapReservation)), nil
}

// NewSystemMapper falls back to an arena mapper limited to FallbackMappingLimit bytes
func NewSystemMapper() (*ArenaMapper, error) {
	return NewArenaMapper(FallbackMappingLimit), nil
}
