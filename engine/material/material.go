// Package material holds the CPU-side description of a glTF material as far as
// batching needs it: alpha mode, the texture channels it samples and its extensions.
package material

// material is the implementation of the Material interface.
type material struct {
	name        string
	baseColor   [4]float32
	metallic    float32
	roughness   float32
	alphaMode   AlphaMode
	alphaCutoff float32
	doubleSided bool
	channels    []TextureChannel
	extensions  []Extension
}

// Material defines the read-only interface for a surface description. Materials are
// built once by a loader and never mutated afterwards.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// BaseColor retrieves the albedo/diffuse RGBA color factor of the material.
	//
	// Returns:
	//   - [4]float32: the base color as RGBA values
	BaseColor() [4]float32

	// Metallic retrieves the metallic factor of the material.
	//
	// Returns:
	//   - float32: the metallic factor
	Metallic() float32

	// Roughness retrieves the roughness factor of the material.
	//
	// Returns:
	//   - float32: the roughness factor
	Roughness() float32

	// AlphaMode retrieves how alpha is interpreted when rendering.
	//
	// Returns:
	//   - AlphaMode: the alpha mode
	AlphaMode() AlphaMode

	// AlphaCutoff retrieves the cutoff used by AlphaModeMask.
	//
	// Returns:
	//   - float32: the alpha cutoff
	AlphaCutoff() float32

	// DoubleSided reports whether back-face culling is disabled.
	//
	// Returns:
	//   - bool: true if the material is double sided
	DoubleSided() bool

	// TextureChannels retrieves the texture slots the material samples, ordered by
	// kind and texcoord set.
	//
	// Returns:
	//   - []TextureChannel: the sorted texture channels
	TextureChannels() []TextureChannel

	// Extensions retrieves the extension payloads attached to the material.
	//
	// Returns:
	//   - []Extension: the extensions
	Extensions() []Extension
}

var _ Material = &material{}

// NewMaterial creates a new Material with glTF defaults (white, fully metallic and
// rough, opaque, cutoff 0.5) and the given options applied.
//
// Parameters:
//   - options: a variadic list of MaterialBuilderOption functions
//
// Returns:
//   - Material: the configured material
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		baseColor:   [4]float32{1, 1, 1, 1},
		metallic:    1,
		roughness:   1,
		alphaMode:   AlphaModeOpaque,
		alphaCutoff: 0.5,
	}
	for _, option := range options {
		option(m)
	}
	m.channels = SortChannels(m.channels)
	return m
}

// Default returns the material glTF prescribes for primitives without one.
//
// Returns:
//   - Material: the default material
func Default() Material {
	return NewMaterial(WithName("default"))
}

func (m *material) Name() string {
	return m.name
}

func (m *material) BaseColor() [4]float32 {
	return m.baseColor
}

func (m *material) Metallic() float32 {
	return m.metallic
}

func (m *material) Roughness() float32 {
	return m.roughness
}

func (m *material) AlphaMode() AlphaMode {
	return m.alphaMode
}

func (m *material) AlphaCutoff() float32 {
	return m.alphaCutoff
}

func (m *material) DoubleSided() bool {
	return m.doubleSided
}

func (m *material) TextureChannels() []TextureChannel {
	return m.channels
}

func (m *material) Extensions() []Extension {
	return m.extensions
}
