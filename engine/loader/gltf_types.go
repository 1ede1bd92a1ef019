package loader

import "encoding/json"

// --- glTF 2.0 JSON Document Types ---
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html
// Only the properties the scene graph needs are decoded; everything else is ignored.

// gltfDocument is the top-level glTF 2.0 JSON structure.
type gltfDocument struct {
	// Asset contains metadata about the glTF asset.
	Asset gltfAsset `json:"asset"`

	// Scene is the index of the default scene.
	Scene *int `json:"scene,omitempty"`

	Scenes      []gltfScene      `json:"scenes,omitempty"`
	Nodes       []gltfNode       `json:"nodes,omitempty"`
	Meshes      []gltfMesh       `json:"meshes,omitempty"`
	Accessors   []gltfAccessor   `json:"accessors,omitempty"`
	BufferViews []gltfBufferView `json:"bufferViews,omitempty"`
	Buffers     []gltfBuffer     `json:"buffers,omitempty"`
	Materials   []gltfMaterial   `json:"materials,omitempty"`

	// ExtensionsUsed lists the extensions referenced anywhere in the asset.
	ExtensionsUsed []string `json:"extensionsUsed,omitempty"`

	// ExtensionsRequired lists the extensions a loader must support to load the asset.
	ExtensionsRequired []string `json:"extensionsRequired,omitempty"`
}

// gltfAsset holds the asset metadata.
type gltfAsset struct {
	// Version is the glTF version, must be "2.0".
	Version string `json:"version"`

	// Generator is the tool that produced the asset.
	Generator string `json:"generator,omitempty"`

	Copyright string `json:"copyright,omitempty"`
}

// gltfScene is a set of root nodes.
type gltfScene struct {
	Name  string `json:"name,omitempty"`
	Nodes []int  `json:"nodes,omitempty"`
}

// gltfNode is a node in the hierarchy. Either Matrix or TRS is used, never both.
type gltfNode struct {
	Name        string       `json:"name,omitempty"`
	Children    []int        `json:"children,omitempty"`
	Mesh        *int         `json:"mesh,omitempty"`
	Matrix      *[16]float32 `json:"matrix,omitempty"`
	Translation *[3]float32  `json:"translation,omitempty"`
	Rotation    *[4]float32  `json:"rotation,omitempty"`
	Scale       *[3]float32  `json:"scale,omitempty"`
}

// gltfMesh is a set of primitives.
type gltfMesh struct {
	Name       string          `json:"name,omitempty"`
	Primitives []gltfPrimitive `json:"primitives"`
}

// gltfPrimitive is geometry to be rendered with a single material.
type gltfPrimitive struct {
	// Attributes maps semantic names (POSITION, NORMAL, TEXCOORD_0, ...) to accessor indices.
	Attributes map[string]int `json:"attributes"`

	Indices  *int `json:"indices,omitempty"`
	Material *int `json:"material,omitempty"`

	// Mode is the topology, TRIANGLES (4) when absent.
	Mode *int `json:"mode,omitempty"`
}

const (
	gltfPrimitiveModeTriangles = 4
)

// gltfAccessor is a typed view into a bufferView.
type gltfAccessor struct {
	Name          string              `json:"name,omitempty"`
	BufferView    *int                `json:"bufferView,omitempty"`
	ByteOffset    int                 `json:"byteOffset,omitempty"`
	ComponentType int                 `json:"componentType"`
	Normalized    bool                `json:"normalized,omitempty"`
	Count         int                 `json:"count"`
	Type          string              `json:"type"`
	Max           []float32           `json:"max,omitempty"`
	Min           []float32           `json:"min,omitempty"`
	Sparse        *gltfAccessorSparse `json:"sparse,omitempty"`
}

// gltfAccessorSparse is only decoded to reject sparse accessors.
type gltfAccessorSparse struct {
	Count int `json:"count"`
}

// gltfBufferView is a slice of a buffer.
type gltfBufferView struct {
	Name       string `json:"name,omitempty"`
	Buffer     int    `json:"buffer"`
	ByteOffset int    `json:"byteOffset,omitempty"`
	ByteLength int    `json:"byteLength"`

	// ByteStride is set only for interleaved vertex data.
	ByteStride *int `json:"byteStride,omitempty"`
}

// gltfBuffer points to binary data.
type gltfBuffer struct {
	Name       string `json:"name,omitempty"`
	URI        string `json:"uri,omitempty"`
	ByteLength int    `json:"byteLength"`

	// Data holds the loaded bytes, filled by the parser.
	Data []byte `json:"-"`
}

// --- Materials ---

// gltfMaterial is the material description.
type gltfMaterial struct {
	Name                 string                    `json:"name,omitempty"`
	PbrMetallicRoughness *gltfPbrMetallicRoughness `json:"pbrMetallicRoughness,omitempty"`
	NormalTexture        *gltfTextureInfo          `json:"normalTexture,omitempty"`
	OcclusionTexture     *gltfTextureInfo          `json:"occlusionTexture,omitempty"`
	EmissiveTexture      *gltfTextureInfo          `json:"emissiveTexture,omitempty"`

	// AlphaMode is "OPAQUE" (default), "MASK" or "BLEND".
	AlphaMode   string   `json:"alphaMode,omitempty"`
	AlphaCutoff *float32 `json:"alphaCutoff,omitempty"`
	DoubleSided bool     `json:"doubleSided,omitempty"`

	// Extensions is kept raw; each known extension is decoded on demand.
	Extensions map[string]json.RawMessage `json:"extensions,omitempty"`
}

// gltfPbrMetallicRoughness holds the metallic-roughness parameters.
type gltfPbrMetallicRoughness struct {
	BaseColorFactor          *[4]float32      `json:"baseColorFactor,omitempty"`
	BaseColorTexture         *gltfTextureInfo `json:"baseColorTexture,omitempty"`
	MetallicFactor           *float32         `json:"metallicFactor,omitempty"`
	RoughnessFactor          *float32         `json:"roughnessFactor,omitempty"`
	MetallicRoughnessTexture *gltfTextureInfo `json:"metallicRoughnessTexture,omitempty"`
}

// gltfTextureInfo references a texture and the TEXCOORD set used to sample it.
type gltfTextureInfo struct {
	Index      int                        `json:"index"`
	TexCoord   int                        `json:"texCoord,omitempty"`
	Extensions map[string]json.RawMessage `json:"extensions,omitempty"`
}

// --- Extensions ---

const (
	extTextureTransform = "KHR_texture_transform"
	extEmissiveStrength = "KHR_materials_emissive_strength"
	extMaterialsUnlit   = "KHR_materials_unlit"
)

// gltfSupportedExtensions are the extensions an asset may list as required.
var gltfSupportedExtensions = map[string]bool{
	extTextureTransform: true,
	extEmissiveStrength: true,
	extMaterialsUnlit:   true,
}

// gltfTextureTransform is the KHR_texture_transform payload of a textureInfo.
type gltfTextureTransform struct {
	Offset   *[2]float32 `json:"offset,omitempty"`
	Rotation float32     `json:"rotation,omitempty"`
	Scale    *[2]float32 `json:"scale,omitempty"`
	TexCoord *int        `json:"texCoord,omitempty"`
}

// gltfEmissiveStrength is the KHR_materials_emissive_strength payload.
type gltfEmissiveStrength struct {
	EmissiveStrength *float32 `json:"emissiveStrength,omitempty"`
}

// --- GLB Binary Format ---
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#glb-file-format-specification

// gltfGLBHeader is the 12-byte GLB file header.
type gltfGLBHeader struct {
	Magic   uint32 // Must be 0x46546C67 ("glTF" in ASCII)
	Version uint32 // Must be 2
	Length  uint32 // Total file length
}

// gltfGLBChunkHeader is the 8-byte header for each GLB chunk.
type gltfGLBChunkHeader struct {
	ChunkLength uint32
	ChunkType   uint32 // 0x4E4F534A for JSON, 0x004E4942 for BIN
}

const (
	gltfGLBMagic     = 0x46546C67 // "glTF" in little-endian ASCII
	gltfGLBVersion   = 2
	gltfGLBChunkJSON = 0x4E4F534A // "JSON" in little-endian ASCII
	gltfGLBChunkBIN  = 0x004E4942 // "BIN\0" in little-endian ASCII
)
