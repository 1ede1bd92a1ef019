package batch

import (
	"errors"
	"fmt"

	"github.com/rsahlin/gltf-io-sub001/engine/attribute"
	"github.com/rsahlin/gltf-io-sub001/engine/graph"
	"github.com/rsahlin/gltf-io-sub001/engine/material"
)

// Common errors returned by the batch package.
var (
	ErrSignatureMismatch  = errors.New("primitive does not match sorter signature")
	ErrSignatureCollision = errors.New("pipeline hash collision between different signatures")
	ErrDuplicateKey       = errors.New("duplicate pipeline hash")
)

// bucket holds primitives together with the matrix index each instance draws with.
// The two slices always have the same length.
type bucket struct {
	primitives []graph.Primitive
	matrices   []int
}

func (b *bucket) add(matrixIndex int, p graph.Primitive) {
	b.primitives = append(b.primitives, p)
	b.matrices = append(b.matrices, matrixIndex)
}

// PrimitiveSorter collects the primitives of one pipeline signature, split into an
// array bucket and one bucket per index width.
type PrimitiveSorter struct {
	signature    Signature
	pipelineHash uint32
	array        bucket
	indexed      [attribute.IndexWidthCount]bucket
	indicesCount [attribute.IndexWidthCount]int
}

// NewPrimitiveSorter creates an empty sorter for a signature.
//
// Parameters:
//   - sig: the signature every added primitive must match
//
// Returns:
//   - *PrimitiveSorter: the sorter
func NewPrimitiveSorter(sig Signature) *PrimitiveSorter {
	return &PrimitiveSorter{
		signature:    sig,
		pipelineHash: sig.Hash(),
	}
}

// Add files a primitive instance into the array bucket or the bucket of its index width.
//
// Parameters:
//   - matrixIndex: index of the world matrix the instance is drawn with
//   - p: the primitive
//
// Returns:
//   - error: ErrSignatureMismatch if the primitive's attribute hash, alpha mode or mode
//     differ from the sorter's, or an error for an unsupported index type
func (s *PrimitiveSorter) Add(matrixIndex int, p graph.Primitive) error {
	sig := SignatureOf(p)
	if sig.AttributeHash != s.signature.AttributeHash {
		return fmt.Errorf("%w: attribute hash %08x, sorter has %08x", ErrSignatureMismatch, sig.AttributeHash, s.signature.AttributeHash)
	}
	if sig.AlphaMode != s.signature.AlphaMode {
		return fmt.Errorf("%w: alpha mode %s, sorter has %s", ErrSignatureMismatch, sig.AlphaMode, s.signature.AlphaMode)
	}
	if sig.Mode != s.signature.Mode {
		return fmt.Errorf("%w: mode %s, sorter has %s", ErrSignatureMismatch, sig.Mode, s.signature.Mode)
	}

	indices, ok := p.Indices()
	if !ok {
		s.array.add(matrixIndex, p)
		return nil
	}
	width, err := attribute.IndexWidthFromDataType(indices.DataType())
	if err != nil {
		return fmt.Errorf("failed to classify indices: %w", err)
	}
	s.indexed[width].add(matrixIndex, p)
	s.indicesCount[width] += indices.Count()
	return nil
}

// Signature returns the signature the sorter was created with.
func (s *PrimitiveSorter) Signature() Signature { return s.signature }

// PipelineHash returns the pipeline hash; after PrimitiveSorterMap.Sort it is the map key.
func (s *PrimitiveSorter) PipelineHash() uint32 { return s.pipelineHash }

// AttributeHash returns the attribute hash shared by every primitive in the sorter.
func (s *PrimitiveSorter) AttributeHash() uint32 { return s.signature.AttributeHash }

// AlphaMode returns the alpha mode shared by every primitive in the sorter.
func (s *PrimitiveSorter) AlphaMode() material.AlphaMode { return s.signature.AlphaMode }

// Mode returns the topology shared by every primitive in the sorter.
func (s *PrimitiveSorter) Mode() graph.Mode { return s.signature.Mode }

// PrimitiveCount returns the total number of primitive instances.
func (s *PrimitiveSorter) PrimitiveCount() int {
	n := s.ArrayPrimitiveCount()
	for _, c := range s.IndexedPrimitiveCount() {
		n += c
	}
	return n
}

// ArrayPrimitiveCount returns the number of non-indexed primitive instances.
func (s *PrimitiveSorter) ArrayPrimitiveCount() int {
	return len(s.array.primitives)
}

// IndexedPrimitiveCount returns the number of indexed primitive instances per index width.
func (s *PrimitiveSorter) IndexedPrimitiveCount() [attribute.IndexWidthCount]int {
	var out [attribute.IndexWidthCount]int
	for i := range s.indexed {
		out[i] = len(s.indexed[i].primitives)
	}
	return out
}

// IndicesCount returns the total number of indices per index width.
func (s *PrimitiveSorter) IndicesCount() [attribute.IndexWidthCount]int {
	return s.indicesCount
}

// ArrayPrimitives returns the non-indexed primitives in insertion order.
func (s *PrimitiveSorter) ArrayPrimitives() []graph.Primitive { return s.array.primitives }

// ArrayMatrices returns the matrix index of each non-indexed primitive.
func (s *PrimitiveSorter) ArrayMatrices() []int { return s.array.matrices }

// IndexedPrimitives returns the indexed primitives of one width in insertion order.
func (s *PrimitiveSorter) IndexedPrimitives(w attribute.IndexWidth) []graph.Primitive {
	return s.indexed[w].primitives
}

// IndexedMatrices returns the matrix index of each indexed primitive of one width.
func (s *PrimitiveSorter) IndexedMatrices(w attribute.IndexWidth) []int {
	return s.indexed[w].matrices
}
