package material

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// AlphaMode is the alpha rendering mode of a material.
type AlphaMode int

const (
	// AlphaModeOpaque ignores alpha. It is the glTF default.
	AlphaModeOpaque AlphaMode = iota
	// AlphaModeMask discards fragments below the alpha cutoff.
	AlphaModeMask
	// AlphaModeBlend blends fragments with the framebuffer.
	AlphaModeBlend
)

func (a AlphaMode) String() string {
	switch a {
	case AlphaModeOpaque:
		return "OPAQUE"
	case AlphaModeMask:
		return "MASK"
	case AlphaModeBlend:
		return "BLEND"
	}
	return fmt.Sprintf("AlphaMode(%d)", int(a))
}

// ParseAlphaMode resolves a glTF alphaMode string. The empty string is OPAQUE.
//
// Parameters:
//   - s: the glTF alphaMode value
//
// Returns:
//   - AlphaMode: the parsed mode
//   - error: error if s is not a glTF alpha mode
func ParseAlphaMode(s string) (AlphaMode, error) {
	switch strings.ToUpper(s) {
	case "", "OPAQUE":
		return AlphaModeOpaque, nil
	case "MASK":
		return AlphaModeMask, nil
	case "BLEND":
		return AlphaModeBlend, nil
	}
	return AlphaModeOpaque, fmt.Errorf("unknown alpha mode %q", s)
}

// TextureKind is the material slot a texture is bound to.
type TextureKind int

const (
	TextureBaseColor TextureKind = iota
	TextureMetallicRoughness
	TextureNormal
	TextureOcclusion
	TextureEmissive
)

func (k TextureKind) String() string {
	switch k {
	case TextureBaseColor:
		return "baseColor"
	case TextureMetallicRoughness:
		return "metallicRoughness"
	case TextureNormal:
		return "normal"
	case TextureOcclusion:
		return "occlusion"
	case TextureEmissive:
		return "emissive"
	}
	return fmt.Sprintf("TextureKind(%d)", int(k))
}

// TextureChannel is one texture slot used by a material together with the
// TEXCOORD set it samples with.
type TextureChannel struct {
	Kind     TextureKind
	TexCoord int
}

// SortChannels returns channels ordered by kind, then texcoord set.
// The input slice is left untouched.
func SortChannels(channels []TextureChannel) []TextureChannel {
	out := slices.Clone(channels)
	slices.SortStableFunc(out, func(a, b TextureChannel) int {
		if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
			return c
		}
		return cmp.Compare(a.TexCoord, b.TexCoord)
	})
	return out
}
