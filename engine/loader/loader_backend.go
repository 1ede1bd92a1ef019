package loader

import (
	"io"

	"github.com/rsahlin/gltf-io-sub001/engine/graph"
)

// loaderBackend defines the generic interface for loading scenes from files or streams.
// Concrete implementations (e.g., gltfLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Load imports the default scene of the given file path.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - graph.Scene: the scene graph
	//   - error: error if loading fails
	Load(path string) (graph.Scene, error)

	// LoadReader imports the default scene from a reader stream.
	//
	// Parameters:
	//   - r: the reader providing scene data
	//   - isGLB: true if the reader provides GLB binary data, false for text-based formats
	//
	// Returns:
	//   - graph.Scene: the scene graph
	//   - error: error if loading fails
	LoadReader(r io.Reader, isGLB bool) (graph.Scene, error)
}
