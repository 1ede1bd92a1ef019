package material

// Extension is one of the closed set of material extensions understood by this
// module. The concrete payload types are TextureTransform, EmissiveStrength and Unlit.
type Extension interface {
	// Name returns the glTF extension name, e.g. "KHR_texture_transform".
	Name() string

	extension()
}

// TextureTransform carries KHR_texture_transform for one texture slot.
type TextureTransform struct {
	Slot     TextureKind
	Offset   [2]float32
	Rotation float32
	Scale    [2]float32
	TexCoord *int
}

// EmissiveStrength carries KHR_materials_emissive_strength.
type EmissiveStrength struct {
	Strength float32
}

// Unlit carries KHR_materials_unlit; it has no payload.
type Unlit struct{}

func (TextureTransform) Name() string { return "KHR_texture_transform" }
func (EmissiveStrength) Name() string { return "KHR_materials_emissive_strength" }
func (Unlit) Name() string            { return "KHR_materials_unlit" }

func (TextureTransform) extension() {}
func (EmissiveStrength) extension() {}
func (Unlit) extension()            {}

// HasTextureTransform reports whether any extension transforms a texture slot.
func HasTextureTransform(extensions []Extension) bool {
	for _, ext := range extensions {
		if _, ok := ext.(TextureTransform); ok {
			return true
		}
	}
	return false
}

// IsUnlit reports whether the extensions mark the material as unlit.
func IsUnlit(extensions []Extension) bool {
	for _, ext := range extensions {
		if _, ok := ext.(Unlit); ok {
			return true
		}
	}
	return false
}

// EmissiveScale returns the emissive strength multiplier, 1 when absent.
func EmissiveScale(extensions []Extension) float32 {
	for _, ext := range extensions {
		switch e := ext.(type) {
		case EmissiveStrength:
			return e.Strength
		}
	}
	return 1
}
