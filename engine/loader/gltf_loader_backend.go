package loader

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/rsahlin/gltf-io-sub001/engine/graph"
)

// gltfLoaderBackendImpl is the implementation of gltfLoaderBackend.
type gltfLoaderBackendImpl struct {
	importer gltfImporter
}

// gltfLoaderBackend is a loaderBackend implementation for glTF/GLB files.
// It delegates to the gltfImporter for parsing and extraction.
type gltfLoaderBackend interface {
	loaderBackend
}

var _ gltfLoaderBackend = &gltfLoaderBackendImpl{}

// newGLTFLoaderBackend creates a new glTF loader backend.
//
// Parameters:
//   - logger: receives import warnings
//
// Returns:
//   - gltfLoaderBackend: the loader backend for glTF/GLB files
func newGLTFLoaderBackend(logger *log.Logger) gltfLoaderBackend {
	return &gltfLoaderBackendImpl{
		importer: newGLTFImporter(logger),
	}
}

func (b *gltfLoaderBackendImpl) Load(path string) (graph.Scene, error) {
	return b.importer.Import(path)
}

func (b *gltfLoaderBackendImpl) LoadReader(r io.Reader, isGLB bool) (graph.Scene, error) {
	return b.importer.ImportReader(r, isGLB)
}
