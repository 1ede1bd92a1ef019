package loader

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/rsahlin/gltf-io-sub001/engine/attribute"
	"github.com/rsahlin/gltf-io-sub001/engine/graph"
	"github.com/rsahlin/gltf-io-sub001/engine/material"
)

// gltfMeshExtractorImpl is the implementation of the gltfMeshExtractor interface.
type gltfMeshExtractorImpl struct {
	parser    gltfParser
	materials []material.Material
	logger    *log.Logger
}

// gltfMeshExtractor defines the interface for extracting mesh data from a parsed glTF
// document. Attribute streams stay views into the document's buffers.
type gltfMeshExtractor interface {
	// ExtractMesh extracts a single mesh by index.
	//
	// Parameters:
	//   - meshIndex: the index of the mesh to extract
	//
	// Returns:
	//   - graph.Mesh: the mesh with one graph.Primitive per glTF primitive
	//   - error: error if extraction fails
	ExtractMesh(meshIndex int) (graph.Mesh, error)

	// ExtractAllMeshes extracts all meshes from the document.
	//
	// Returns:
	//   - []graph.Mesh: all meshes, indexed like the document
	//   - error: error if extraction fails
	ExtractAllMeshes() ([]graph.Mesh, error)
}

var _ gltfMeshExtractor = &gltfMeshExtractorImpl{}

// newGLTFMeshExtractor creates a new mesh extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//   - materials: the extracted materials, indexed like the document
//   - logger: receives warnings about skipped attributes
//
// Returns:
//   - gltfMeshExtractor: the mesh extractor
func newGLTFMeshExtractor(parser gltfParser, materials []material.Material, logger *log.Logger) gltfMeshExtractor {
	return &gltfMeshExtractorImpl{parser: parser, materials: materials, logger: logger}
}

func (e *gltfMeshExtractorImpl) ExtractMesh(meshIndex int) (graph.Mesh, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, errNoDocument
	}
	if meshIndex < 0 || meshIndex >= len(doc.Meshes) {
		return nil, fmt.Errorf("mesh index %d out of range", meshIndex)
	}

	mesh := &doc.Meshes[meshIndex]
	primitives := make([]graph.Primitive, 0, len(mesh.Primitives))

	for primIdx := range mesh.Primitives {
		p, err := e.extractPrimitive(&mesh.Primitives[primIdx])
		if err != nil {
			return nil, fmt.Errorf("mesh %d primitive %d: %w", meshIndex, primIdx, err)
		}
		primitives = append(primitives, p)
	}

	return graph.NewMesh(mesh.Name, primitives...), nil
}

func (e *gltfMeshExtractorImpl) ExtractAllMeshes() ([]graph.Mesh, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, errNoDocument
	}

	meshes := make([]graph.Mesh, len(doc.Meshes))
	for i := range doc.Meshes {
		m, err := e.ExtractMesh(i)
		if err != nil {
			return nil, err
		}
		meshes[i] = m
	}

	return meshes, nil
}

// extractPrimitive reads the attribute and index accessors of one primitive.
// Semantics this module has no Kind for (custom "_FOO" attributes, TEXCOORD_4 and up)
// are skipped with a warning.
func (e *gltfMeshExtractorImpl) extractPrimitive(prim *gltfPrimitive) (graph.Primitive, error) {
	if _, ok := prim.Attributes["POSITION"]; !ok {
		return nil, graph.ErrMissingPosition
	}

	mode := gltfPrimitiveModeTriangles
	if prim.Mode != nil {
		mode = *prim.Mode
	}
	if mode < int(graph.ModePoints) || mode > int(graph.ModeTriangleFan) {
		return nil, fmt.Errorf("unsupported primitive mode: %d", mode)
	}
	options := []graph.PrimitiveBuilderOption{graph.WithMode(graph.Mode(mode))}

	names := make([]string, 0, len(prim.Attributes))
	for name := range prim.Attributes {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		kind, err := attribute.ParseKind(name)
		if err != nil {
			e.logger.Warn("skipping attribute", "semantic", name)
			continue
		}
		data, err := e.parser.Accessor(prim.Attributes[name], kind)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		options = append(options, graph.WithAttribute(data))
	}

	if prim.Indices != nil {
		data, err := e.parser.Accessor(*prim.Indices, attribute.KindIndices)
		if err != nil {
			return nil, fmt.Errorf("failed to read indices: %w", err)
		}
		if _, err := attribute.IndexWidthFromDataType(data.DataType()); err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
		options = append(options, graph.WithIndices(data))
	}

	if prim.Material != nil {
		if *prim.Material < 0 || *prim.Material >= len(e.materials) {
			return nil, fmt.Errorf("material index %d out of range", *prim.Material)
		}
		options = append(options, graph.WithMaterial(e.materials[*prim.Material]))
	}

	return graph.NewPrimitive(options...), nil
}
