package attribute

import (
	"cmp"
	"encoding/binary"
	"hash/fnv"
	"slices"
)

// Spec is the part of an attribute stream that decides whether two primitives
// can share a packed buffer layout: its kind and its element data type.
type Spec struct {
	Kind     Kind
	DataType DataType
}

// Sort returns the kinds in canonical order (POSITION, NORMAL, TANGENT, TEXCOORD_n,
// COLOR_n, JOINTS_n, WEIGHTS_n). The input slice is left untouched.
//
// Parameters:
//   - kinds: attribute kinds in declaration order
//
// Returns:
//   - []Kind: a new slice in canonical order
func Sort(kinds []Kind) []Kind {
	out := slices.Clone(kinds)
	slices.SortStableFunc(out, func(a, b Kind) int {
		return cmp.Compare(a, b)
	})
	return out
}

// SortSpecs returns the specs in canonical kind order. The input slice is left untouched.
//
// Parameters:
//   - specs: attribute specs in declaration order
//
// Returns:
//   - []Spec: a new slice in canonical order
func SortSpecs(specs []Spec) []Spec {
	out := slices.Clone(specs)
	slices.SortStableFunc(out, func(a, b Spec) int {
		return cmp.Compare(a.Kind, b.Kind)
	})
	return out
}

// SpecsOf returns the canonically sorted specs of a primitive's attribute streams.
//
// Parameters:
//   - data: the attribute streams of one primitive
//
// Returns:
//   - []Spec: the sorted specs
func SpecsOf(data []Data) []Spec {
	specs := make([]Spec, len(data))
	for i, d := range data {
		specs[i] = Spec{Kind: d.Kind(), DataType: d.DataType()}
	}
	return SortSpecs(specs)
}

// Hash returns a 32-bit FNV-1a hash of the canonically sorted specs. Two spec sets
// holding the same entries in any declaration order hash to the same value, and
// the value is stable across process runs.
//
// Parameters:
//   - specs: attribute specs in any order
//
// Returns:
//   - uint32: the hash
func Hash(specs []Spec) uint32 {
	h := fnv.New32a()
	var buf [8]byte
	for _, s := range SortSpecs(specs) {
		binary.LittleEndian.PutUint32(buf[0:4], uint32(s.Kind))
		binary.LittleEndian.PutUint32(buf[4:8], uint32(s.DataType))
		h.Write(buf[:])
	}
	return h.Sum32()
}
