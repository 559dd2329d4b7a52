package metadata

import (
	"unsafe"

	"github.com/pkg/errors"
	"github.com/vkngwrapper/tmalloc/memutils"
)

const (
	// HeaderMagic is written into every header when it is created and checked whenever a pointer
	// is turned back into its header
	HeaderMagic uint32 = 0x7F84E666
	// headerGuard fills the trailing field of every header so that writes running off the end of
	// the previous structure into the header can be recognized
	headerGuard uint64 = 0xA5C3A5C3A5C3A5C3
)

// Header is the fixed-size record that sits immediately before every payload handed out by tmalloc.
// Headers are intrusively linked, in allocation order, through HeaderList.
type Header struct {
	size   uintptr
	next   *Header
	magic  uint32
	flags  HeaderFlags
	guard  uint64
	isFree bool
}

// HeaderSize is the distance in bytes from a header to its payload. It is the size of Header rounded
// up to memutils.Alignment, so payloads share the alignment of the memory the header was placed in.
const HeaderSize = (unsafe.Sizeof(Header{}) + uintptr(memutils.Alignment) - 1) &^ (uintptr(memutils.Alignment) - 1)

// NewHeader writes a fresh, occupied header for a payload of size bytes at the start of block and
// returns it. block must point to at least SpanFor(size) writable bytes.
func NewHeader(block unsafe.Pointer, size uintptr, flags HeaderFlags) *Header {
	header := (*Header)(block)
	*header = Header{
		size:  size,
		magic: HeaderMagic,
		flags: flags,
		guard: headerGuard,
	}

	return header
}

// HeaderFromPayload returns the header that precedes a payload pointer. The header is not checked;
// callers should verify the address belongs to the allocator and call CheckIntegrity before
// trusting any field.
func HeaderFromPayload(payload unsafe.Pointer) *Header {
	return (*Header)(unsafe.Add(payload, -int(HeaderSize)))
}

// SpanFor returns the number of bytes a block with a payload of size bytes occupies in its backing
// store, header and debug margin included.
func SpanFor(size uintptr) (int, bool) {
	return memutils.SpanFor(size, HeaderSize)
}

// Payload returns the first byte after the header
func (h *Header) Payload() unsafe.Pointer {
	return unsafe.Add(unsafe.Pointer(h), HeaderSize)
}

// Size returns the payload capacity the block was created with. Reusing a free block for a smaller
// request does not change it.
func (h *Header) Size() uintptr { return h.size }

// Span returns the number of bytes the block occupies in its backing store
func (h *Header) Span() int {
	span, _ := SpanFor(h.size)
	return span
}

func (h *Header) Flags() HeaderFlags { return h.flags }

func (h *Header) Next() *Header { return h.next }

func (h *Header) IsFree() bool { return h.isFree }

func (h *Header) MarkFree() {
	h.isFree = true
}

func (h *Header) MarkTaken() {
	h.isFree = false
}

// CheckIntegrity returns an error if the header's sentinel, guard or acquisition flags are not the
// values tmalloc writes.
func (h *Header) CheckIntegrity() error {
	if h.magic != HeaderMagic {
		return errors.Errorf("header at %p has magic value %#x, expected %#x", h, h.magic, HeaderMagic)
	}

	if h.guard != headerGuard {
		return errors.Errorf("header at %p has an overwritten guard: %#x", h, h.guard)
	}

	acquisition := h.flags & headerFlagsAcquisitionMask
	if acquisition != HeaderFlagsHeapExtension && acquisition != HeaderFlagsIndependentMapping {
		return errors.Errorf("header at %p has invalid acquisition flags %#x", h, uint32(h.flags))
	}

	return nil
}

// CheckMargin returns false if the debug margin after the payload has been overwritten. It always
// returns true unless the debug_mem_utils build tag is present.
func (h *Header) CheckMargin() bool {
	return memutils.CheckMargin(h.Payload(), h.size)
}

// WriteMargin writes the debug margin after the payload. It no-ops unless the debug_mem_utils build
// tag is present.
func (h *Header) WriteMargin() {
	memutils.WriteMargin(h.Payload(), h.size)
}
