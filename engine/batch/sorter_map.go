package batch

import (
	"fmt"

	"github.com/rsahlin/gltf-io-sub001/engine/graph"
	"github.com/rsahlin/gltf-io-sub001/engine/material"
)

// PrimitiveSorterMap maps pipeline hashes to sorters during one flattening pass.
// Keys are insert-only. Sort drains the map.
type PrimitiveSorterMap struct {
	sorters map[uint32]*PrimitiveSorter
	order   []uint32
}

// NewPrimitiveSorterMap creates an empty map.
//
// Returns:
//   - *PrimitiveSorterMap: the map
func NewPrimitiveSorterMap() *PrimitiveSorterMap {
	return &PrimitiveSorterMap{
		sorters: make(map[uint32]*PrimitiveSorter),
	}
}

// Len returns the number of sorters in the map.
func (m *PrimitiveSorterMap) Len() int {
	return len(m.sorters)
}

// Put inserts a sorter under a key.
//
// Parameters:
//   - key: the pipeline hash
//   - s: the sorter
//
// Returns:
//   - error: ErrDuplicateKey if the key is already present
func (m *PrimitiveSorterMap) Put(key uint32, s *PrimitiveSorter) error {
	if _, ok := m.sorters[key]; ok {
		return fmt.Errorf("%w: %08x", ErrDuplicateKey, key)
	}
	m.sorters[key] = s
	m.order = append(m.order, key)
	return nil
}

// Get looks up the sorter stored under a key.
func (m *PrimitiveSorterMap) Get(key uint32) (*PrimitiveSorter, bool) {
	s, ok := m.sorters[key]
	return s, ok
}

// Sorter returns the sorter for the primitive's signature, creating it on first use.
//
// Parameters:
//   - p: the primitive
//
// Returns:
//   - *PrimitiveSorter: the sorter the primitive belongs to
//   - error: ErrSignatureCollision if an existing sorter has the same hash but a different signature
func (m *PrimitiveSorterMap) Sorter(p graph.Primitive) (*PrimitiveSorter, error) {
	sig := SignatureOf(p)
	key := sig.Hash()
	if s, ok := m.sorters[key]; ok {
		if !s.signature.Equal(sig) {
			return nil, fmt.Errorf("%w: %08x", ErrSignatureCollision, key)
		}
		return s, nil
	}
	s := NewPrimitiveSorter(sig)
	if err := m.Put(key, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Add files a primitive instance into the sorter for its signature.
//
// Parameters:
//   - matrixIndex: index of the world matrix the instance is drawn with
//   - p: the primitive
//
// Returns:
//   - error: error if the primitive could not be filed
func (m *PrimitiveSorterMap) Add(matrixIndex int, p graph.Primitive) error {
	s, err := m.Sorter(p)
	if err != nil {
		return err
	}
	return s.Add(matrixIndex, p)
}

// Sort drains the map into a list with every opaque sorter ahead of the others.
// Both groups keep insertion order. Each sorter's pipeline hash is set from its key.
//
// The map is empty afterwards, so a second call returns an empty list.
//
// Returns:
//   - []*PrimitiveSorter: the ordered sorters
func (m *PrimitiveSorterMap) Sort() []*PrimitiveSorter {
	out := make([]*PrimitiveSorter, 0, len(m.order))
	var rest []*PrimitiveSorter
	for _, key := range m.order {
		s := m.sorters[key]
		s.pipelineHash = key
		if s.AlphaMode() == material.AlphaModeOpaque {
			out = append(out, s)
		} else {
			rest = append(rest, s)
		}
	}
	out = append(out, rest...)

	clear(m.sorters)
	m.order = nil
	return out
}
