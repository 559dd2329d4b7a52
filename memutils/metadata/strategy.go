package metadata

// FitStrategy selects which free block the block list hands back for a request. It is chosen once
// when an allocator is created and applies to every request it serves.
type FitStrategy uint32

const (
	// FitStrategyFirst returns the first free block, in allocation order, whose capacity is at least
	// the requested size.
	FitStrategyFirst FitStrategy = iota
	// FitStrategyBest scans the whole list. A free block whose capacity equals the request is returned
	// immediately; otherwise the last free block larger than the request is returned. This is not a
	// minimal-overshoot search: every larger block replaces the previous candidate regardless of size,
	// and callers depend on that selection order.
	FitStrategyBest
)

var fitStrategyMapping = map[FitStrategy]string{
	FitStrategyFirst: "FirstFit",
	FitStrategyBest:  "BestFit",
}

func (s FitStrategy) String() string {
	return fitStrategyMapping[s]
}

// FindFree runs the fit search for a payload of size bytes and returns the chosen free block,
// or nil if no free block can hold the request.
func (l *HeaderList) FindFree(size uintptr, strategy FitStrategy) *Header {
	switch strategy {
	case FitStrategyBest:
		return l.findBestFit(size)
	default:
		return l.findFirstFit(size)
	}
}

func (l *HeaderList) findFirstFit(size uintptr) *Header {
	for header := l.head; header != nil; header = header.next {
		if header.isFree && header.size >= size {
			return header
		}
	}

	return nil
}

func (l *HeaderList) findBestFit(size uintptr) *Header {
	var candidate *Header

	for header := l.head; header != nil; header = header.next {
		if !header.isFree {
			continue
		}

		if header.size == size {
			return header
		}

		if header.size > size {
			candidate = header
		}
	}

	return candidate
}
