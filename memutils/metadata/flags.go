package metadata

import "github.com/vkngwrapper/core/v2/common"

// HeaderFlags records how the memory behind a block was obtained. Exactly one acquisition flag is
// set on every live header, and it decides how the block's memory is given back when it is freed.
type HeaderFlags uint32

var headerFlagsMapping = common.NewFlagStringMapping[HeaderFlags]()

func (f HeaderFlags) Register(str string) {
	headerFlagsMapping.Register(f, str)
}
func (f HeaderFlags) String() string {
	return headerFlagsMapping.FlagsToString(f)
}

const (
	// HeaderFlagsHeapExtension marks a block carved from the growable heap region. Its memory can only
	// be returned by shrinking the region, which is possible while the block ends at the region's top.
	HeaderFlagsHeapExtension HeaderFlags = 1 << iota
	// HeaderFlagsIndependentMapping marks a block that owns an independent mapping. The mapping is
	// released whole as soon as the block is freed, and the block is never reused.
	HeaderFlagsIndependentMapping

	headerFlagsAcquisitionMask = HeaderFlagsHeapExtension | HeaderFlagsIndependentMapping
)

func init() {
	HeaderFlagsHeapExtension.Register("HeapExtension")
	HeaderFlagsIndependentMapping.Register("IndependentMapping")
}

// IsMapped returns true if the block owns an independent mapping
func (f HeaderFlags) IsMapped() bool {
	return f&HeaderFlagsIndependentMapping != 0
}
