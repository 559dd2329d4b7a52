package backing

import (
	"github.com/dolthub/swiss"
	"github.com/pkg/errors"
)

type mapping struct {
	memory []byte
	size   int
}

// mappingRegistry tracks live mappings by their base address. Go cannot give back a mapping
// from a bare address, so the slice that came back from the mapping call is kept until release.
type mappingRegistry struct {
	mappings    *swiss.Map[uintptr, mapping]
	mappedBytes int
}

func newMappingRegistry() mappingRegistry {
	return mappingRegistry{
		mappings: swiss.NewMap[uintptr, mapping](16),
	}
}

func (r *mappingRegistry) register(base uintptr, memory []byte, size int) {
	r.mappings.Put(base, mapping{memory: memory, size: size})
	r.mappedBytes += size
}

func (r *mappingRegistry) lookup(base uintptr) (mapping, bool) {
	return r.mappings.Get(base)
}

// check returns the mapping that starts at base if it was created with size bytes
func (r *mappingRegistry) check(base uintptr, size int) (mapping, error) {
	m, ok := r.mappings.Get(base)
	if !ok {
		return mapping{}, errors.Errorf("no mapping starts at %#x", base)
	}

	if m.size != size {
		return mapping{}, errors.Errorf("mapping at %#x was created with size %d, but %d bytes were released", base, m.size, size)
	}

	return m, nil
}

func (r *mappingRegistry) remove(base uintptr, size int) (mapping, error) {
	m, err := r.check(base, size)
	if err != nil {
		return mapping{}, err
	}

	r.mappings.Delete(base)
	r.mappedBytes -= m.size
	return m, nil
}

// drain removes every mapping and returns them
func (r *mappingRegistry) drain() []mapping {
	drained := make([]mapping, 0, r.mappings.Count())
	r.mappings.Iter(func(base uintptr, m mapping) bool {
		drained = append(drained, m)
		return false
	})

	r.mappings = swiss.NewMap[uintptr, mapping](16)
	r.mappedBytes = 0
	return drained
}
