package loader

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/rsahlin/gltf-io-sub001/engine/graph"
)

var (
	errUnsupportedExtension = errors.New("required extension not supported")
	errNodeCycle            = errors.New("node hierarchy contains a cycle")
)

// gltfImporterImpl is the implementation of the gltfImporter interface.
type gltfImporterImpl struct {
	logger *log.Logger
}

// gltfImporter defines the interface for orchestrating a full glTF/GLB import.
// It combines the parser and the extractors to produce a graph.Scene.
type gltfImporter interface {
	// Import loads a glTF/GLB file and builds its default scene.
	//
	// Parameters:
	//   - path: the file path to the glTF or GLB file
	//
	// Returns:
	//   - graph.Scene: the scene graph
	//   - error: error if import fails
	Import(path string) (graph.Scene, error)

	// ImportReader loads a glTF document from a reader and builds its default scene.
	// The reader should provide a complete glTF JSON or GLB binary stream.
	//
	// Parameters:
	//   - r: the reader providing glTF/GLB data
	//   - isGLB: true if the reader provides GLB binary data, false for glTF JSON
	//
	// Returns:
	//   - graph.Scene: the scene graph
	//   - error: error if import fails
	ImportReader(r io.Reader, isGLB bool) (graph.Scene, error)
}

var _ gltfImporter = &gltfImporterImpl{}

// newGLTFImporter creates a new glTF importer.
//
// Parameters:
//   - logger: receives import warnings
//
// Returns:
//   - gltfImporter: the importer
func newGLTFImporter(logger *log.Logger) gltfImporter {
	return &gltfImporterImpl{logger: logger}
}

func (imp *gltfImporterImpl) Import(path string) (graph.Scene, error) {
	parser := newGLTFParser()
	if err := parser.Parse(path); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return imp.importFromParser(parser, path)
}

func (imp *gltfImporterImpl) ImportReader(r io.Reader, isGLB bool) (graph.Scene, error) {
	parser := newGLTFParser()
	if err := parser.ParseReader(r, isGLB); err != nil {
		return nil, fmt.Errorf("failed to parse from reader: %w", err)
	}

	return imp.importFromParser(parser, "")
}

// importFromParser builds the default scene of a parser that has already loaded a document.
//
// Parameters:
//   - parser: the glTF parser that has already loaded a document
//   - fallbackPath: optional file path used as a fallback for scene naming
func (imp *gltfImporterImpl) importFromParser(parser gltfParser, fallbackPath string) (graph.Scene, error) {
	doc := parser.Document()
	if doc == nil {
		return nil, errNoDocument
	}

	for _, ext := range doc.ExtensionsRequired {
		if !gltfSupportedExtensions[ext] {
			return nil, fmt.Errorf("%w: %s", errUnsupportedExtension, ext)
		}
	}

	materials, err := newGLTFMaterialExtractor(parser).ExtractAllMaterials()
	if err != nil {
		return nil, fmt.Errorf("material extraction failed: %w", err)
	}

	meshes, err := newGLTFMeshExtractor(parser, materials, imp.logger).ExtractAllMeshes()
	if err != nil {
		return nil, fmt.Errorf("mesh extraction failed: %w", err)
	}

	b := &gltfNodeBuilder{
		doc:      doc,
		meshes:   meshes,
		built:    make(map[int]graph.Node, len(doc.Nodes)),
		visiting: make(map[int]bool),
	}
	roots, err := gltfSceneRoots(doc)
	if err != nil {
		return nil, err
	}
	nodes := make([]graph.Node, 0, len(roots))
	for _, idx := range roots {
		n, err := b.build(idx)
		if err != nil {
			return nil, fmt.Errorf("node extraction failed: %w", err)
		}
		nodes = append(nodes, n)
	}

	name := gltfExtractSceneName(doc, fallbackPath)
	imp.logger.Debug("imported glTF",
		"name", name,
		"generator", doc.Asset.Generator,
		"nodes", len(doc.Nodes),
		"meshes", len(meshes),
		"materials", len(materials),
	)
	return graph.NewScene(name, nodes...), nil
}

// gltfNodeBuilder converts document nodes to graph nodes depth-first.
type gltfNodeBuilder struct {
	doc      *gltfDocument
	meshes   []graph.Mesh
	built    map[int]graph.Node
	visiting map[int]bool
}

func (b *gltfNodeBuilder) build(index int) (graph.Node, error) {
	if n, ok := b.built[index]; ok {
		return n, nil
	}
	if index < 0 || index >= len(b.doc.Nodes) {
		return nil, fmt.Errorf("node index %d out of range", index)
	}
	if b.visiting[index] {
		return nil, fmt.Errorf("%w: node %d", errNodeCycle, index)
	}
	b.visiting[index] = true
	defer delete(b.visiting, index)

	gn := &b.doc.Nodes[index]
	options := []graph.NodeBuilderOption{graph.WithNodeName(gn.Name)}

	switch {
	case gn.Matrix != nil:
		options = append(options, graph.WithMatrix(*gn.Matrix))
	case gn.Translation != nil || gn.Rotation != nil || gn.Scale != nil:
		t, r, s := [3]float32{}, [4]float32{0, 0, 0, 1}, [3]float32{1, 1, 1}
		if gn.Translation != nil {
			t = *gn.Translation
		}
		if gn.Rotation != nil {
			r = *gn.Rotation
		}
		if gn.Scale != nil {
			s = *gn.Scale
		}
		options = append(options, graph.WithTRS(t, r, s))
	}

	if gn.Mesh != nil {
		if *gn.Mesh < 0 || *gn.Mesh >= len(b.meshes) {
			return nil, fmt.Errorf("node %d: mesh index %d out of range", index, *gn.Mesh)
		}
		options = append(options, graph.WithMesh(b.meshes[*gn.Mesh]))
	}

	children := make([]graph.Node, 0, len(gn.Children))
	for _, c := range gn.Children {
		child, err := b.build(c)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	options = append(options, graph.WithChildren(children...))

	n := graph.NewNode(options...)
	b.built[index] = n
	return n, nil
}

// --- Helper Functions ---

// gltfSceneRoots returns the root node indices of the default scene. Documents without
// scenes use every node that is not a child of another node.
func gltfSceneRoots(doc *gltfDocument) ([]int, error) {
	if len(doc.Scenes) > 0 {
		idx := 0
		if doc.Scene != nil {
			idx = *doc.Scene
		}
		if idx < 0 || idx >= len(doc.Scenes) {
			return nil, fmt.Errorf("scene index %d out of range", idx)
		}
		return doc.Scenes[idx].Nodes, nil
	}

	isChild := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(isChild) {
				isChild[c] = true
			}
		}
	}
	var roots []int
	for i, child := range isChild {
		if !child {
			roots = append(roots, i)
		}
	}
	return roots, nil
}

// gltfExtractSceneName derives a scene name from the default scene or a file path fallback.
func gltfExtractSceneName(doc *gltfDocument, fallbackPath string) string {
	idx := 0
	if doc.Scene != nil {
		idx = *doc.Scene
	}
	if idx >= 0 && idx < len(doc.Scenes) {
		if name := doc.Scenes[idx].Name; name != "" {
			return name
		}
	}

	if fallbackPath != "" {
		base := filepath.Base(fallbackPath)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}

	return "unnamed_scene"
}
