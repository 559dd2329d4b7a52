package metadata

import (
	"fmt"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/pkg/errors"
	"github.com/vkngwrapper/tmalloc/memutils"
)

// HeaderList is the singly linked list of every block an allocator has created and not yet given
// back to its backing store. Blocks are kept in allocation order and the list is never reordered.
// HeaderList does no locking of its own.
type HeaderList struct {
	count int
	head  *Header
	tail  *Header
}

var _ memutils.Validatable = &HeaderList{}

func (l *HeaderList) Head() *Header { return l.head }

func (l *HeaderList) Tail() *Header { return l.tail }

func (l *HeaderList) Len() int { return l.count }

func (l *HeaderList) IsEmpty() bool { return l.count == 0 }

// Append links header after the current tail
func (l *HeaderList) Append(header *Header) {
	header.next = nil

	if l.tail == nil {
		l.head = header
	} else {
		l.tail.next = header
	}

	l.tail = header
	l.count++
}

// Unlink removes header from the list and returns the header that preceded it, or nil if header
// was the head. The list has no back pointers, so anything other than the head costs a scan for
// the predecessor.
func (l *HeaderList) Unlink(header *Header) (*Header, error) {
	if l.head == header {
		l.head = header.next
		if l.tail == header {
			l.tail = nil
		}

		header.next = nil
		l.count--
		return nil, nil
	}

	for prev := l.head; prev != nil; prev = prev.next {
		if prev.next != header {
			continue
		}

		prev.next = header.next
		if l.tail == header {
			l.tail = prev
		}

		header.next = nil
		l.count--
		return prev, nil
	}

	return nil, errors.Errorf("header at %p is not linked into this list", header)
}

// InsertAfter links header back in directly after prev, or at the head if prev is nil. Together
// with the predecessor returned by Unlink it restores a block to its place in allocation order.
func (l *HeaderList) InsertAfter(prev, header *Header) {
	if prev == nil {
		header.next = l.head
		l.head = header
	} else {
		header.next = prev.next
		prev.next = header
	}

	if header.next == nil {
		l.tail = header
	}
	l.count++
}

// Visit calls handleHeader for each header in allocation order and stops at the first error.
// handleHeader must not unlink headers.
func (l *HeaderList) Visit(handleHeader func(header *Header) error) error {
	for header := l.head; header != nil; header = header.next {
		err := handleHeader(header)
		if err != nil {
			return err
		}
	}

	return nil
}

// Reset forgets every header without touching their memory
func (l *HeaderList) Reset() {
	l.head = nil
	l.tail = nil
	l.count = 0
}

func (l *HeaderList) Validate() error {
	if (l.head == nil) != (l.tail == nil) {
		return errors.New("the list head and tail must either both be set or both be nil")
	}

	if l.tail != nil && l.tail.next != nil {
		return errors.Errorf("the tail header at %p has a next header", l.tail)
	}

	var last *Header
	actualCount := 0
	for header := l.head; header != nil; header = header.next {
		actualCount++
		if actualCount > l.count {
			return errors.Errorf("the list contains more headers than its declared count of %d, or it contains a cycle", l.count)
		}

		err := header.CheckIntegrity()
		if err != nil {
			return errors.Wrapf(err, "header %d", actualCount-1)
		}

		if !header.isFree && !header.CheckMargin() {
			return errors.Errorf("the debug margin after the payload of header %d at %p has been overwritten", actualCount-1, header)
		}

		last = header
	}

	if actualCount != l.count {
		return errors.Errorf("the declared number of headers in the list (%d) does not match the actual number of headers (%d)", l.count, actualCount)
	}

	if last != l.tail {
		return errors.Errorf("the last header in the list is at %p, but the tail is %p", last, l.tail)
	}

	return nil
}

func (l *HeaderList) AddStatistics(stats *memutils.Statistics) {
	for header := l.head; header != nil; header = header.next {
		span := header.Span()

		stats.BlockCount++
		stats.BlockBytes += span
		if header.flags.IsMapped() {
			stats.MappedBlockCount++
			stats.MappedBytes += span
		}

		if !header.isFree {
			stats.AllocationCount++
			stats.AllocationBytes += int(header.size)
		}
	}
}

func (l *HeaderList) AddDetailedStatistics(stats *memutils.DetailedStatistics) {
	for header := l.head; header != nil; header = header.next {
		span := header.Span()

		stats.BlockCount++
		stats.BlockBytes += span
		if header.flags.IsMapped() {
			stats.MappedBlockCount++
			stats.MappedBytes += span
		}

		if header.isFree {
			stats.AddUnusedRange(int(header.size))
		} else {
			stats.AddAllocation(int(header.size))
		}
	}
}

// PrintDetailedMap writes one json object per header, in allocation order
func (l *HeaderList) PrintDetailedMap(json *jwriter.ArrayState) {
	for header := l.head; header != nil; header = header.next {
		obj := json.Object()

		obj.Name("Address").String(fmt.Sprintf("%p", header.Payload()))
		obj.Name("Size").Int(int(header.size))
		obj.Name("Span").Int(header.Span())
		obj.Name("Free").Bool(header.isFree)
		obj.Name("Flags").String(header.flags.String())

		obj.End()
	}
}
