package scene

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/google/uuid"
	"github.com/rsahlin/gltf-io-sub001/common"
	"github.com/rsahlin/gltf-io-sub001/engine/attribute"
	"github.com/rsahlin/gltf-io-sub001/engine/graph"
	"github.com/rsahlin/gltf-io-sub001/engine/material"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vec3s(t *testing.T, kind attribute.Kind, values ...float32) attribute.Data {
	t.Helper()
	var opts []attribute.DataOption
	if kind == attribute.KindPosition {
		b := attribute.Bounds{Min: [3]float32{values[0], values[1], values[2]}, Max: [3]float32{values[0], values[1], values[2]}}
		for i := 0; i < len(values); i += 3 {
			p := attribute.Bounds{Min: [3]float32{values[i], values[i+1], values[i+2]}, Max: [3]float32{values[i], values[i+1], values[i+2]}}
			b = b.Union(p)
		}
		opts = append(opts, attribute.WithBounds(b))
	}
	d, err := attribute.NewData(kind, common.Float32sToBytes(values), 0, len(values)/3, attribute.DataTypeVec3, opts...)
	require.NoError(t, err)
	return d
}

func indices(t *testing.T, dt attribute.DataType, values ...uint32) attribute.Data {
	t.Helper()
	size := dt.Size()
	raw := make([]byte, len(values)*size)
	for i, v := range values {
		for b := 0; b < size; b++ {
			raw[i*size+b] = byte(v >> (8 * b))
		}
	}
	d, err := attribute.NewData(attribute.KindIndices, raw, 0, len(values), dt)
	require.NoError(t, err)
	return d
}

type fixture struct {
	scene  graph.Scene
	shared graph.Primitive
	small  graph.Primitive
	blend  graph.Primitive
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	opaque := material.NewMaterial(material.WithName("opaque"))
	glass := material.NewMaterial(material.WithName("glass"), material.WithAlphaMode(material.AlphaModeBlend, 0.5))

	shared := graph.NewPrimitive(
		graph.WithAttribute(vec3s(t, attribute.KindNormal, 0, 0, 1, 0, 0, 1, 0, 0, 1)),
		graph.WithAttribute(vec3s(t, attribute.KindPosition, 0, 0, 0, 1, 0, 0, 0, 1, 0)),
		graph.WithIndices(indices(t, attribute.DataTypeUnsignedShort, 0, 1, 2)),
		graph.WithMaterial(opaque),
	)
	small := graph.NewPrimitive(
		graph.WithAttribute(vec3s(t, attribute.KindPosition, 5, 5, 5, 6, 5, 5, 5, 6, 5, 6, 6, 5)),
		graph.WithAttribute(vec3s(t, attribute.KindNormal, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1, 0)),
		graph.WithIndices(indices(t, attribute.DataTypeUnsignedByte, 0, 1, 2, 2, 1, 3)),
		graph.WithMaterial(opaque),
	)
	blend := graph.NewPrimitive(
		graph.WithAttribute(vec3s(t, attribute.KindPosition, -1, -1, -1, 1, 1, 1, 0, 0, 0)),
		graph.WithMaterial(glass),
	)

	meshA := graph.NewMesh("a", shared)
	s := graph.NewScene("fixture",
		graph.NewNode(graph.WithNodeName("glass"), graph.WithMesh(graph.NewMesh("glass", blend))),
		graph.NewNode(graph.WithNodeName("left"), graph.WithMesh(meshA), graph.WithTRS([3]float32{-2, 0, 0}, [4]float32{0, 0, 0, 1}, [3]float32{1, 1, 1})),
		graph.NewNode(graph.WithNodeName("right"), graph.WithMesh(meshA), graph.WithTRS([3]float32{2, 0, 0}, [4]float32{0, 0, 0, 1}, [3]float32{1, 1, 1}),
			graph.WithChildren(graph.NewNode(graph.WithNodeName("small"), graph.WithMesh(graph.NewMesh("small", small))))),
	)
	return fixture{scene: s, shared: shared, small: small, blend: blend}
}

func TestFlattenBatchesOpaqueFirst(t *testing.T) {
	f := newFixture(t)
	id := uuid.New()
	s, err := Flatten(f.scene, WithAssetID(id))
	require.NoError(t, err)

	assert.Equal(t, id, s.ID())
	assert.Equal(t, "fixture", s.Name())
	assert.Len(t, s.Matrices(), 4)
	assert.Equal(t, 4, s.InstanceCount())

	batches := s.Batches()
	require.Len(t, batches, 2)
	assert.Equal(t, material.AlphaModeOpaque, batches[0].AlphaMode)
	assert.Equal(t, material.AlphaModeBlend, batches[1].AlphaMode)
	assert.Equal(t, [3]int{1, 2, 0}, batches[0].IndexedPrimitiveCount())
	assert.Equal(t, [3]int{6, 6, 0}, batches[0].IndicesCount)
	assert.Equal(t, []int{1, 2}, batches[0].IndexedMatrices[attribute.IndexWidth16])
	assert.Equal(t, 1, batches[1].ArrayPrimitiveCount())
	assert.Equal(t, []int{0}, batches[1].ArrayMatrices)
}

func TestFlattenPacksSharedPrimitiveOnce(t *testing.T) {
	f := newFixture(t)
	s, err := Flatten(f.scene)
	require.NoError(t, err)

	opaque := s.Batches()[0]
	pos := s.Bundle().VertexBuffer(opaque.AttributeHash, attribute.KindPosition)
	require.NotNil(t, pos)
	assert.Equal(t, 7, pos.Count())
	assert.Equal(t, 7, s.Bundle().VertexBuffer(opaque.AttributeHash, attribute.KindNormal).Count())
	assert.Equal(t, 10, s.Bundle().VertexCount())
	assert.Equal(t, 9, s.Bundle().IndexCount())

	var sharedDraws []Draw
	for _, d := range opaque.Draws {
		if d.Width == attribute.IndexWidth16 {
			sharedDraws = append(sharedDraws, d)
		}
	}
	require.Len(t, sharedDraws, 2)
	assert.Equal(t, sharedDraws[0].VertexOffset, sharedDraws[1].VertexOffset)
	assert.NotEqual(t, sharedDraws[0].MatrixIndex, sharedDraws[1].MatrixIndex)

	for _, d := range opaque.Draws {
		src := f.shared
		if d.Width == attribute.IndexWidth8 {
			src = f.small
		}
		want, _ := src.Attribute(attribute.KindPosition)
		got := pos.Bytes()[d.VertexOffset*12 : (d.VertexOffset+d.VertexCount)*12]
		assert.Equal(t, want.Bytes(), got)

		ib := s.Bundle().IndexBuffer(opaque.AttributeHash, d.Width)
		require.NotNil(t, ib)
		wantIdx, _ := src.Indices()
		size := d.Width.Size()
		assert.Equal(t, wantIdx.Bytes(), ib.Bytes()[d.IndexOffset*size:(d.IndexOffset+d.IndexCount)*size])
	}

	bounds, ok := s.Bounds()
	require.True(t, ok)
	assert.Equal(t, [3]float32{-1, -1, -1}, bounds.Min)
	assert.Equal(t, [3]float32{6, 6, 5}, bounds.Max)
}

func TestFlattenWorldMatrices(t *testing.T) {
	f := newFixture(t)
	s, err := Flatten(f.scene)
	require.NoError(t, err)

	small := s.Matrices()[3]
	p := common.TransformPoint(small, [3]float32{1, 1, 1})
	assert.InDeltaSlice(t, []float32{3, 1, 1}, p[:], 1e-6)
}

func TestFlattenRejectsMalformedPrimitives(t *testing.T) {
	mismatched := graph.NewPrimitive(
		graph.WithAttribute(vec3s(t, attribute.KindPosition, 0, 0, 0, 1, 1, 1)),
		graph.WithAttribute(vec3s(t, attribute.KindNormal, 0, 0, 1)),
	)
	_, err := Flatten(graph.NewScene("bad", graph.NewNode(graph.WithMesh(graph.NewMesh("m", mismatched)))))
	assert.ErrorIs(t, err, ErrVertexCountMismatch)

	noPosition := graph.NewPrimitive(graph.WithAttribute(vec3s(t, attribute.KindNormal, 0, 0, 1)))
	_, err = Flatten(graph.NewScene("bad", graph.NewNode(graph.WithMesh(graph.NewMesh("m", noPosition)))))
	assert.ErrorIs(t, err, ErrMissingPosition)
}

func TestVertexLayouts(t *testing.T) {
	b := Batch{Specs: []attribute.Spec{
		{Kind: attribute.KindPosition, DataType: attribute.DataTypeVec3},
		{Kind: attribute.KindTexCoord0, DataType: attribute.DataTypeUShortVec2},
		{Kind: attribute.KindJoints0, DataType: attribute.DataTypeUByteVec4},
	}}
	layouts, err := b.VertexLayouts()
	require.NoError(t, err)
	require.Len(t, layouts, 3)
	assert.Equal(t, uint64(12), layouts[0].ArrayStride)
	assert.Equal(t, wgpu.VertexFormatFloat32x3, layouts[0].Attributes[0].Format)
	assert.Equal(t, wgpu.VertexFormatUnorm16x2, layouts[1].Attributes[0].Format)
	assert.Equal(t, wgpu.VertexFormatUint8x4, layouts[2].Attributes[0].Format)
	assert.Equal(t, uint32(2), layouts[2].Attributes[0].ShaderLocation)

	_, err = Batch{Specs: []attribute.Spec{{Kind: attribute.KindPosition, DataType: attribute.DataTypeMat4}}}.VertexLayouts()
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Batch{Mode: graph.ModeTriangleFan}.Topology()
	assert.ErrorIs(t, err, ErrUnsupportedTopology)
}

func TestUploadsWidenByteIndices(t *testing.T) {
	f := newFixture(t)
	s, err := Flatten(f.scene)
	require.NoError(t, err)
	opaque := s.Batches()[0]

	ib, format, err := IndexUpload(s, opaque, attribute.IndexWidth8)
	require.NoError(t, err)
	assert.Equal(t, wgpu.IndexFormatUint16, format)
	assert.Equal(t, attribute.DataTypeUnsignedShort, ib.DataType())

	_, _, err = IndexUpload(s, opaque, attribute.IndexWidth32)
	assert.ErrorIs(t, err, ErrMissingBuffer)

	vbs, err := VertexUploads(s, opaque)
	require.NoError(t, err)
	require.Len(t, vbs, 2)
	assert.Equal(t, attribute.KindPosition, vbs[0].Kind())
	assert.Equal(t, attribute.KindNormal, vbs[1].Kind())
}
