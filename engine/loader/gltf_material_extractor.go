package loader

import (
	"encoding/json"
	"fmt"

	"github.com/rsahlin/gltf-io-sub001/engine/material"
)

// gltfMaterialExtractorImpl is the implementation of the gltfMaterialExtractor interface.
type gltfMaterialExtractorImpl struct {
	parser gltfParser
}

// gltfMaterialExtractor defines the interface for extracting material data from a
// parsed glTF document into material.Material values. Texture images are not loaded;
// only the slots and texcoord sets a material samples matter to batching.
type gltfMaterialExtractor interface {
	// ExtractMaterial extracts a single material by index.
	//
	// Parameters:
	//   - materialIndex: the index of the material in the document
	//
	// Returns:
	//   - material.Material: the extracted material
	//   - error: error if extraction fails
	ExtractMaterial(materialIndex int) (material.Material, error)

	// ExtractAllMaterials extracts all materials from the document.
	//
	// Returns:
	//   - []material.Material: all extracted materials, indexed like the document
	//   - error: error if extraction fails
	ExtractAllMaterials() ([]material.Material, error)
}

var _ gltfMaterialExtractor = &gltfMaterialExtractorImpl{}

// newGLTFMaterialExtractor creates a new material extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//
// Returns:
//   - gltfMaterialExtractor: the material extractor
func newGLTFMaterialExtractor(parser gltfParser) gltfMaterialExtractor {
	return &gltfMaterialExtractorImpl{parser: parser}
}

func (e *gltfMaterialExtractorImpl) ExtractMaterial(materialIndex int) (material.Material, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, errNoDocument
	}
	if materialIndex < 0 || materialIndex >= len(doc.Materials) {
		return nil, fmt.Errorf("material index %d out of range", materialIndex)
	}

	mat := &doc.Materials[materialIndex]

	alphaMode, err := material.ParseAlphaMode(mat.AlphaMode)
	if err != nil {
		return nil, fmt.Errorf("material %q: %w", mat.Name, err)
	}
	cutoff := float32(0.5)
	if mat.AlphaCutoff != nil {
		cutoff = *mat.AlphaCutoff
	}

	options := []material.MaterialBuilderOption{
		material.WithName(mat.Name),
		material.WithAlphaMode(alphaMode, cutoff),
		material.WithDoubleSided(mat.DoubleSided),
	}

	if pbr := mat.PbrMetallicRoughness; pbr != nil {
		if pbr.BaseColorFactor != nil {
			options = append(options, material.WithBaseColor(*pbr.BaseColorFactor))
		}
		metallic, roughness := float32(1), float32(1)
		if pbr.MetallicFactor != nil {
			metallic = *pbr.MetallicFactor
		}
		if pbr.RoughnessFactor != nil {
			roughness = *pbr.RoughnessFactor
		}
		options = append(options, material.WithMetallicRoughness(metallic, roughness))
	}

	for _, slot := range gltfTextureSlots(mat) {
		opts, err := e.extractTexture(slot.kind, slot.info)
		if err != nil {
			return nil, fmt.Errorf("material %q: %s texture: %w", mat.Name, slot.kind, err)
		}
		options = append(options, opts...)
	}

	exts, err := gltfMaterialExtensions(mat)
	if err != nil {
		return nil, fmt.Errorf("material %q: %w", mat.Name, err)
	}
	for _, ext := range exts {
		options = append(options, material.WithExtension(ext))
	}

	return material.NewMaterial(options...), nil
}

func (e *gltfMaterialExtractorImpl) ExtractAllMaterials() ([]material.Material, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, errNoDocument
	}

	materials := make([]material.Material, len(doc.Materials))
	for i := range doc.Materials {
		mat, err := e.ExtractMaterial(i)
		if err != nil {
			return nil, fmt.Errorf("material %d: %w", i, err)
		}
		materials[i] = mat
	}

	return materials, nil
}

// extractTexture turns one textureInfo into a texture channel and, when present, a
// KHR_texture_transform extension. A transform that overrides texCoord moves the
// channel to that set.
func (e *gltfMaterialExtractorImpl) extractTexture(kind material.TextureKind, info *gltfTextureInfo) ([]material.MaterialBuilderOption, error) {
	texCoord := info.TexCoord

	var options []material.MaterialBuilderOption
	if raw, ok := info.Extensions[extTextureTransform]; ok {
		var t gltfTextureTransform
		if err := json.Unmarshal(raw, &t); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", extTextureTransform, err)
		}
		ext := material.TextureTransform{
			Slot:     kind,
			Rotation: t.Rotation,
			Scale:    [2]float32{1, 1},
			TexCoord: t.TexCoord,
		}
		if t.Offset != nil {
			ext.Offset = *t.Offset
		}
		if t.Scale != nil {
			ext.Scale = *t.Scale
		}
		if t.TexCoord != nil {
			texCoord = *t.TexCoord
		}
		options = append(options, material.WithExtension(ext))
	}

	return append(options, material.WithTextureChannel(kind, texCoord)), nil
}

// --- Helper Functions ---

type gltfTextureSlot struct {
	kind material.TextureKind
	info *gltfTextureInfo
}

// gltfTextureSlots lists the textures a material references, in slot order.
func gltfTextureSlots(mat *gltfMaterial) []gltfTextureSlot {
	var slots []gltfTextureSlot
	add := func(kind material.TextureKind, info *gltfTextureInfo) {
		if info != nil {
			slots = append(slots, gltfTextureSlot{kind: kind, info: info})
		}
	}
	if pbr := mat.PbrMetallicRoughness; pbr != nil {
		add(material.TextureBaseColor, pbr.BaseColorTexture)
		add(material.TextureMetallicRoughness, pbr.MetallicRoughnessTexture)
	}
	add(material.TextureNormal, mat.NormalTexture)
	add(material.TextureOcclusion, mat.OcclusionTexture)
	add(material.TextureEmissive, mat.EmissiveTexture)
	return slots
}

// gltfMaterialExtensions decodes the material-level extensions this package knows.
// Unknown extensions are ignored.
func gltfMaterialExtensions(mat *gltfMaterial) ([]material.Extension, error) {
	var exts []material.Extension
	if raw, ok := mat.Extensions[extEmissiveStrength]; ok {
		var es gltfEmissiveStrength
		if err := json.Unmarshal(raw, &es); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", extEmissiveStrength, err)
		}
		strength := float32(1)
		if es.EmissiveStrength != nil {
			strength = *es.EmissiveStrength
		}
		exts = append(exts, material.EmissiveStrength{Strength: strength})
	}
	if _, ok := mat.Extensions[extMaterialsUnlit]; ok {
		exts = append(exts, material.Unlit{})
	}
	return exts, nil
}
