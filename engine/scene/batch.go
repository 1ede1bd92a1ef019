package scene

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/rsahlin/gltf-io-sub001/engine/attribute"
	"github.com/rsahlin/gltf-io-sub001/engine/graph"
	"github.com/rsahlin/gltf-io-sub001/engine/material"
)

// Common errors returned by the scene package.
var (
	ErrVertexCountMismatch = errors.New("attribute counts differ within a primitive")
	ErrMissingPosition     = graph.ErrMissingPosition
	ErrUnsupportedFormat   = errors.New("attribute has no vertex format")
	ErrUnsupportedTopology = errors.New("mode has no primitive topology")
	ErrMissingBuffer       = errors.New("bundle has no buffer for batch")
)

// Draw addresses one primitive instance inside the packed buffers of its batch's
// attribute-hash group. Index values are local to the primitive, so VertexOffset
// is the base vertex of indexed draws.
type Draw struct {
	MatrixIndex  int
	VertexOffset int
	VertexCount  int
	Indexed      bool
	Width        attribute.IndexWidth
	IndexOffset  int
	IndexCount   int
}

// Batch is every primitive instance that one pipeline configuration can draw.
type Batch struct {
	PipelineHash    uint32
	AttributeHash   uint32
	Specs           []attribute.Spec
	Channels        []material.TextureChannel
	Mode            graph.Mode
	AlphaMode       material.AlphaMode
	ArrayMatrices   []int
	IndexedMatrices [attribute.IndexWidthCount][]int
	IndicesCount    [attribute.IndexWidthCount]int
	Draws           []Draw
}

// ArrayPrimitiveCount returns the number of non-indexed instances.
func (b Batch) ArrayPrimitiveCount() int {
	return len(b.ArrayMatrices)
}

// IndexedPrimitiveCount returns the number of indexed instances per index width.
func (b Batch) IndexedPrimitiveCount() [attribute.IndexWidthCount]int {
	var out [attribute.IndexWidthCount]int
	for i, m := range b.IndexedMatrices {
		out[i] = len(m)
	}
	return out
}

// PrimitiveCount returns the number of instances in the batch.
func (b Batch) PrimitiveCount() int {
	n := b.ArrayPrimitiveCount()
	for _, c := range b.IndexedPrimitiveCount() {
		n += c
	}
	return n
}

// Topology returns the WebGPU primitive topology of the batch.
func (b Batch) Topology() (wgpu.PrimitiveTopology, error) {
	t, ok := b.Mode.Topology()
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedTopology, b.Mode)
	}
	return t, nil
}

// VertexLayouts describes the batch's packed vertex buffers as WebGPU vertex buffer
// layouts: one buffer per attribute, shader locations in canonical attribute order.
//
// Returns:
//   - []wgpu.VertexBufferLayout: one layout per attribute
//   - error: ErrUnsupportedFormat if an attribute has no WebGPU vertex format
func (b Batch) VertexLayouts() ([]wgpu.VertexBufferLayout, error) {
	layouts := make([]wgpu.VertexBufferLayout, 0, len(b.Specs))
	for i, spec := range b.Specs {
		format, ok := spec.DataType.VertexFormat(normalizedByDefault(spec))
		if !ok {
			return nil, fmt.Errorf("%w: %s %s", ErrUnsupportedFormat, spec.Kind, spec.DataType)
		}
		layouts = append(layouts, wgpu.VertexBufferLayout{
			ArrayStride: uint64(spec.DataType.Size()),
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes: []wgpu.VertexAttribute{
				{
					Format:         format,
					Offset:         0,
					ShaderLocation: uint32(i),
				},
			},
		})
	}
	return layouts, nil
}

// normalizedByDefault reports whether glTF treats integer components of the stream
// as normalized: texture coordinates, colors and weights are, joint indices are not.
func normalizedByDefault(spec attribute.Spec) bool {
	switch spec.Kind {
	case attribute.KindJoints0, attribute.KindJoints1:
		return false
	}
	switch spec.DataType {
	case attribute.DataTypeUByteVec2, attribute.DataTypeUByteVec4,
		attribute.DataTypeUShortVec2, attribute.DataTypeUShortVec4:
		return true
	}
	return false
}
