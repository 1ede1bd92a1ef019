package material

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithBaseColor is an option builder that sets the albedo/diffuse RGBA color of the material.
//
// Parameters:
//   - color: the base color as RGBA float32 values
//
// Returns:
//   - MaterialBuilderOption: a function that applies the base color option to a material
func WithBaseColor(color [4]float32) MaterialBuilderOption {
	return func(m *material) {
		m.baseColor = color
	}
}

// WithMetallicRoughness is an option builder that sets the metallic and roughness factors.
//
// Parameters:
//   - metallic: the metallic factor (0.0 = dielectric, 1.0 = metal)
//   - roughness: the roughness factor (0.0 = smooth, 1.0 = rough)
//
// Returns:
//   - MaterialBuilderOption: a function that applies the factors to a material
func WithMetallicRoughness(metallic, roughness float32) MaterialBuilderOption {
	return func(m *material) {
		m.metallic = metallic
		m.roughness = roughness
	}
}

// WithAlphaMode is an option builder that sets the alpha mode and cutoff.
//
// Parameters:
//   - mode: the alpha mode
//   - cutoff: the cutoff used by AlphaModeMask
//
// Returns:
//   - MaterialBuilderOption: a function that applies the alpha settings to a material
func WithAlphaMode(mode AlphaMode, cutoff float32) MaterialBuilderOption {
	return func(m *material) {
		m.alphaMode = mode
		m.alphaCutoff = cutoff
	}
}

// WithDoubleSided is an option builder that disables back-face culling.
//
// Parameters:
//   - doubleSided: true to render both faces
//
// Returns:
//   - MaterialBuilderOption: a function that applies the flag to a material
func WithDoubleSided(doubleSided bool) MaterialBuilderOption {
	return func(m *material) {
		m.doubleSided = doubleSided
	}
}

// WithTextureChannel is an option builder that adds a sampled texture slot.
//
// Parameters:
//   - kind: the texture slot
//   - texCoord: the TEXCOORD set used to sample it
//
// Returns:
//   - MaterialBuilderOption: a function that adds the channel to a material
func WithTextureChannel(kind TextureKind, texCoord int) MaterialBuilderOption {
	return func(m *material) {
		m.channels = append(m.channels, TextureChannel{Kind: kind, TexCoord: texCoord})
	}
}

// WithExtension is an option builder that attaches an extension payload.
//
// Parameters:
//   - ext: the extension
//
// Returns:
//   - MaterialBuilderOption: a function that adds the extension to a material
func WithExtension(ext Extension) MaterialBuilderOption {
	return func(m *material) {
		m.extensions = append(m.extensions, ext)
	}
}
