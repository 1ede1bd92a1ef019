package batch

import (
	"testing"

	"github.com/rsahlin/gltf-io-sub001/engine/attribute"
	"github.com/rsahlin/gltf-io-sub001/engine/graph"
	"github.com/rsahlin/gltf-io-sub001/engine/material"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stream(t *testing.T, kind attribute.Kind, dt attribute.DataType, count int) attribute.Data {
	t.Helper()
	d, err := attribute.NewData(kind, make([]byte, count*dt.Size()), 0, count, dt)
	require.NoError(t, err)
	return d
}

func primitive(t *testing.T, alpha material.AlphaMode, indexType attribute.DataType, kinds ...attribute.Kind) graph.Primitive {
	t.Helper()
	opts := []graph.PrimitiveBuilderOption{
		graph.WithMaterial(material.NewMaterial(material.WithAlphaMode(alpha, 0.5))),
	}
	for _, k := range kinds {
		dt := attribute.DataTypeVec3
		if k == attribute.KindTexCoord0 {
			dt = attribute.DataTypeVec2
		}
		opts = append(opts, graph.WithAttribute(stream(t, k, dt, 3)))
	}
	if indexType != attribute.DataTypeUnknown {
		opts = append(opts, graph.WithIndices(stream(t, attribute.KindIndices, indexType, 6)))
	}
	return graph.NewPrimitive(opts...)
}

func TestAttributeHashIgnoresDeclarationOrder(t *testing.T) {
	a := primitive(t, material.AlphaModeOpaque, attribute.DataTypeUnknown, attribute.KindNormal, attribute.KindPosition)
	b := primitive(t, material.AlphaModeOpaque, attribute.DataTypeUnknown, attribute.KindPosition, attribute.KindNormal)
	assert.Equal(t, SignatureOf(a).AttributeHash, SignatureOf(b).AttributeHash)
	assert.Equal(t, SignatureOf(a).Hash(), SignatureOf(b).Hash())
}

func TestAttributeHashIncludesTextureChannels(t *testing.T) {
	specs := []attribute.Spec{{Kind: attribute.KindPosition, DataType: attribute.DataTypeVec3}}
	plain := AttributeHash(specs, nil)
	textured := AttributeHash(specs, []material.TextureChannel{{Kind: material.TextureBaseColor}})
	assert.NotEqual(t, plain, textured)
}

func TestPipelineHashSeparatesAlphaAndMode(t *testing.T) {
	h := AttributeHash([]attribute.Spec{{Kind: attribute.KindPosition, DataType: attribute.DataTypeVec3}}, nil)
	opaque := PipelineHash(h, graph.ModeTriangles, material.AlphaModeOpaque)
	assert.NotEqual(t, opaque, PipelineHash(h, graph.ModeTriangles, material.AlphaModeBlend))
	assert.NotEqual(t, opaque, PipelineHash(h, graph.ModeLines, material.AlphaModeOpaque))
}

func TestSorterBucketsByIndexWidth(t *testing.T) {
	first := primitive(t, material.AlphaModeOpaque, attribute.DataTypeUnknown, attribute.KindPosition)
	s := NewPrimitiveSorter(SignatureOf(first))

	require.NoError(t, s.Add(0, first))
	require.NoError(t, s.Add(1, primitive(t, material.AlphaModeOpaque, attribute.DataTypeUnsignedByte, attribute.KindPosition)))
	require.NoError(t, s.Add(2, primitive(t, material.AlphaModeOpaque, attribute.DataTypeUnsignedShort, attribute.KindPosition)))
	require.NoError(t, s.Add(3, primitive(t, material.AlphaModeOpaque, attribute.DataTypeUnsignedShort, attribute.KindPosition)))
	require.NoError(t, s.Add(4, primitive(t, material.AlphaModeOpaque, attribute.DataTypeUnsignedInt, attribute.KindPosition)))

	assert.Equal(t, 5, s.PrimitiveCount())
	assert.Equal(t, 1, s.ArrayPrimitiveCount())
	assert.Equal(t, [3]int{1, 2, 1}, s.IndexedPrimitiveCount())
	assert.Equal(t, [3]int{6, 12, 6}, s.IndicesCount())
	assert.Equal(t, []int{0}, s.ArrayMatrices())
	assert.Equal(t, []int{2, 3}, s.IndexedMatrices(attribute.IndexWidth16))
	assert.Len(t, s.IndexedPrimitives(attribute.IndexWidth16), 2)
}

func TestSorterRejectsMismatch(t *testing.T) {
	base := primitive(t, material.AlphaModeOpaque, attribute.DataTypeUnknown, attribute.KindPosition)
	s := NewPrimitiveSorter(SignatureOf(base))

	err := s.Add(0, primitive(t, material.AlphaModeBlend, attribute.DataTypeUnknown, attribute.KindPosition))
	assert.ErrorIs(t, err, ErrSignatureMismatch)

	err = s.Add(0, primitive(t, material.AlphaModeOpaque, attribute.DataTypeUnknown, attribute.KindPosition, attribute.KindNormal))
	assert.ErrorIs(t, err, ErrSignatureMismatch)

	assert.Equal(t, 0, s.PrimitiveCount())
}

func TestSorterMapGroupsBySignature(t *testing.T) {
	m := NewPrimitiveSorterMap()
	require.NoError(t, m.Add(0, primitive(t, material.AlphaModeOpaque, attribute.DataTypeUnsignedShort, attribute.KindPosition)))
	require.NoError(t, m.Add(1, primitive(t, material.AlphaModeOpaque, attribute.DataTypeUnknown, attribute.KindPosition)))
	require.NoError(t, m.Add(2, primitive(t, material.AlphaModeOpaque, attribute.DataTypeUnknown, attribute.KindPosition, attribute.KindTexCoord0)))
	assert.Equal(t, 2, m.Len())

	sorters := m.Sort()
	require.Len(t, sorters, 2)
	for _, s := range sorters {
		for _, p := range s.ArrayPrimitives() {
			assert.Equal(t, s.AttributeHash(), SignatureOf(p).AttributeHash)
		}
	}
	assert.Equal(t, 2, sorters[0].PrimitiveCount())
}

func TestSortPutsOpaqueFirstAndDrains(t *testing.T) {
	m := NewPrimitiveSorterMap()
	require.NoError(t, m.Add(0, primitive(t, material.AlphaModeBlend, attribute.DataTypeUnknown, attribute.KindPosition)))
	require.NoError(t, m.Add(1, primitive(t, material.AlphaModeOpaque, attribute.DataTypeUnknown, attribute.KindPosition)))
	require.NoError(t, m.Add(2, primitive(t, material.AlphaModeMask, attribute.DataTypeUnknown, attribute.KindPosition)))
	require.NoError(t, m.Add(3, primitive(t, material.AlphaModeOpaque, attribute.DataTypeUnknown, attribute.KindPosition, attribute.KindNormal)))

	sorters := m.Sort()
	require.Len(t, sorters, 4)
	modes := make([]material.AlphaMode, len(sorters))
	for i, s := range sorters {
		modes[i] = s.AlphaMode()
		assert.Equal(t, s.Signature().Hash(), s.PipelineHash())
	}
	assert.Equal(t, []material.AlphaMode{
		material.AlphaModeOpaque,
		material.AlphaModeOpaque,
		material.AlphaModeBlend,
		material.AlphaModeMask,
	}, modes)
	assert.Equal(t, []int{1}, sorters[0].ArrayMatrices())
	assert.Equal(t, []int{3}, sorters[1].ArrayMatrices())

	assert.Equal(t, 0, m.Len())
	assert.Empty(t, m.Sort())
}

func TestSorterMapDetectsCollision(t *testing.T) {
	p := primitive(t, material.AlphaModeOpaque, attribute.DataTypeUnknown, attribute.KindPosition)
	other := primitive(t, material.AlphaModeOpaque, attribute.DataTypeUnknown, attribute.KindNormal)

	m := NewPrimitiveSorterMap()
	require.NoError(t, m.Put(SignatureOf(p).Hash(), NewPrimitiveSorter(SignatureOf(other))))

	_, err := m.Sorter(p)
	assert.ErrorIs(t, err, ErrSignatureCollision)
}

func TestSorterMapPutRejectsDuplicate(t *testing.T) {
	p := primitive(t, material.AlphaModeOpaque, attribute.DataTypeUnknown, attribute.KindPosition)
	m := NewPrimitiveSorterMap()
	require.NoError(t, m.Put(1, NewPrimitiveSorter(SignatureOf(p))))
	assert.ErrorIs(t, m.Put(1, NewPrimitiveSorter(SignatureOf(p))), ErrDuplicateKey)

	s, ok := m.Get(1)
	require.True(t, ok)
	assert.Equal(t, SignatureOf(p).AttributeHash, s.AttributeHash())
}
