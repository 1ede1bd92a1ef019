package material

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMaterialDefaults(t *testing.T) {
	m := Default()
	assert.Equal(t, "default", m.Name())
	assert.Equal(t, AlphaModeOpaque, m.AlphaMode())
	assert.Equal(t, float32(0.5), m.AlphaCutoff())
	assert.Equal(t, [4]float32{1, 1, 1, 1}, m.BaseColor())
	assert.Empty(t, m.TextureChannels())
}

func TestTextureChannelsAreSorted(t *testing.T) {
	m := NewMaterial(
		WithTextureChannel(TextureNormal, 0),
		WithTextureChannel(TextureBaseColor, 1),
		WithTextureChannel(TextureBaseColor, 0),
	)
	assert.Equal(t, []TextureChannel{
		{TextureBaseColor, 0},
		{TextureBaseColor, 1},
		{TextureNormal, 0},
	}, m.TextureChannels())
}

func TestParseAlphaMode(t *testing.T) {
	for in, want := range map[string]AlphaMode{"": AlphaModeOpaque, "OPAQUE": AlphaModeOpaque, "mask": AlphaModeMask, "BLEND": AlphaModeBlend} {
		got, err := ParseAlphaMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseAlphaMode("ADDITIVE")
	assert.Error(t, err)
}

func TestExtensionQueries(t *testing.T) {
	none := NewMaterial().Extensions()
	assert.False(t, HasTextureTransform(none))
	assert.False(t, IsUnlit(none))
	assert.Equal(t, float32(1), EmissiveScale(none))

	m := NewMaterial(
		WithExtension(TextureTransform{Slot: TextureBaseColor, Scale: [2]float32{2, 2}}),
		WithExtension(EmissiveStrength{Strength: 4}),
		WithExtension(Unlit{}),
	)
	assert.True(t, HasTextureTransform(m.Extensions()))
	assert.True(t, IsUnlit(m.Extensions()))
	assert.Equal(t, float32(4), EmissiveScale(m.Extensions()))
	assert.Equal(t, "KHR_materials_unlit", m.Extensions()[2].Name())
}
