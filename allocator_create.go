package tmalloc

import (
	"io"

	cerrors "github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/tmalloc/backing"
	"github.com/vkngwrapper/tmalloc/internal/utils"
	"github.com/vkngwrapper/tmalloc/memutils/metadata"
	"golang.org/x/exp/slog"
)

// CreateFlags indicate specific allocator behaviors to activate or deactivate
type CreateFlags int32

var allocatorCreateFlagsMapping = common.NewFlagStringMapping[CreateFlags]()

func (f CreateFlags) Register(str string) {
	allocatorCreateFlagsMapping.Register(f, str)
}
func (f CreateFlags) String() string {
	return allocatorCreateFlagsMapping.FlagsToString(f)
}

const (
	// CreateExternallySynchronized ensures that this allocator will not be synchronized internally.
	// The consumer must guarantee it is used from only one goroutine at a time or is synchronized by
	// some other mechanism.
	CreateExternallySynchronized CreateFlags = 1 << iota
	// CreateSetErrno records ENOMEM in the allocator's error code whenever a request fails for lack of
	// memory. See Allocator.Errno.
	CreateSetErrno
	// CreatePanicOnCorruption makes a detected heap corruption fatal. By default corruption is logged,
	// the offending pointer is left alone and an error marked with memutils.ErrCorruption is returned.
	// The allocator lock is always released before the panic propagates.
	CreatePanicOnCorruption
)

func init() {
	CreateExternallySynchronized.Register("CreateExternallySynchronized")
	CreateSetErrno.Register("CreateSetErrno")
	CreatePanicOnCorruption.Register("CreatePanicOnCorruption")
}

const (
	// DefaultHeapReservation is the amount of address space reserved for the heap region when none
	// is provided via CreateOptions. It is equal to 1GiB. Reserved address space costs no memory
	// until blocks are placed in it. Platforms without address space reservation cap the heap at
	// backing.FallbackHeapReservation instead.
	DefaultHeapReservation int = 1024 * 1024 * 1024
)

// CreateOptions contains optional settings when creating an allocator. Every setting is fixed for
// the lifetime of the allocator.
type CreateOptions struct {
	// Flags indicates specific allocator behaviors to activate or deactivate
	Flags CreateFlags
	// FitStrategy selects how free blocks are chosen for reuse. The zero value is first fit.
	FitStrategy metadata.FitStrategy
	// MappingThreshold is the request size, header included and before rounding, at and above which
	// blocks are given their own mapping. Zero selects backing.DefaultMappingThreshold. A negative value maps every block.
	MappingThreshold int
	// HeapReservation is the most the heap region may grow to. Zero selects DefaultHeapReservation.
	// It is ignored when Region is provided.
	HeapReservation int

	// Region, if provided, is used as the heap region instead of reserving address space from the
	// operating system. The allocator takes ownership and closes it in Destroy.
	Region backing.Region
	// Mapper, if provided, is used for independent mappings instead of the operating system. The
	// allocator takes ownership and closes it in Destroy.
	Mapper backing.Mapper
}

// New creates a new Allocator
//
// logger - Receives debug output for heap growth and errors for corruption. May be nil.
//
// options - Optional parameters: it is valid to leave all the fields blank
func New(logger *slog.Logger, options CreateOptions) (*Allocator, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard))
	}

	mappingThreshold := options.MappingThreshold
	if mappingThreshold == 0 {
		mappingThreshold = backing.DefaultMappingThreshold
	}

	heapReservation := options.HeapReservation
	if heapReservation == 0 {
		heapReservation = DefaultHeapReservation
	}

	var region backing.Region = options.Region
	if region == nil {
		systemRegion, err := backing.NewSystemRegion(heapReservation)
		if err != nil {
			return nil, err
		}
		region = systemRegion
	}

	var mapper backing.Mapper = options.Mapper
	if mapper == nil {
		systemMapper, err := backing.NewSystemMapper()
		if err != nil {
			return nil, cerrors.CombineErrors(err, closeOwned(options.Region, region))
		}
		mapper = systemMapper
	}

	allocator := &Allocator{
		mutex:       utils.OptionalMutex{UseMutex: options.Flags&CreateExternallySynchronized == 0},
		logger:      logger,
		createFlags: options.Flags,
		strategy:    options.FitStrategy,
		store:       backing.NewStore(region, mapper, mappingThreshold),
	}

	return allocator, nil
}

// closeOwned closes a region that New created itself, leaving caller-provided regions alone
func closeOwned(provided, created backing.Region) error {
	if provided != nil {
		return nil
	}

	return created.Close()
}
