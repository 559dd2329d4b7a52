package memutils

import (
	"math/bits"

	cerrors "github.com/cockroachdb/errors"
)

// Alignment is the byte alignment of every block header and payload handed out by tmalloc
const Alignment uint = 16

type Number interface {
	~int | ~uint | ~uintptr
}

func CheckPow2[T Number](number T, name string) error {
	if number == 0 || number&(number-1) != 0 {
		return cerrors.Wrapf(PowerOfTwoError, "%s is %d", name, number)
	}
	return nil
}

func AlignUp(value int, alignment uint) int {
	return (value + int(alignment) - 1) & int(^(alignment - 1))
}

// MulOverflows multiplies count by elemSize and reports whether the product wrapped. The check
// divides the product back out rather than trusting a wider multiply, so the boundary pair that
// lands exactly one past the maximum is caught as well.
func MulOverflows(count, elemSize uintptr) (uintptr, bool) {
	if count == 0 {
		return 0, false
	}

	product := count * elemSize
	return product, elemSize != product/count
}

// SpanFor returns the number of bytes that must be acquired from a backing store to hold a
// payload of the provided size behind a header of headerSize bytes. The result is rounded up
// to Alignment and includes DebugMargin. The boolean is false if the span does not fit in an int.
func SpanFor(size, headerSize uintptr) (int, bool) {
	overhead := headerSize + uintptr(DebugMargin) + uintptr(Alignment)
	total, carry := bits.Add64(uint64(size), uint64(overhead), 0)
	if carry != 0 || total > uint64(maxInt) {
		return 0, false
	}

	return AlignUp(int(size+headerSize)+DebugMargin, Alignment), true
}

const maxInt = int(^uint(0) >> 1)
