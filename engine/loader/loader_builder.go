package loader

import (
	"github.com/charmbracelet/log"
	"github.com/rsahlin/gltf-io-sub001/engine/graph"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithLogger is an option builder that sets the logger used by the Loader and its backend.
//
// Parameters:
//   - logger: the logger instance
//
// Returns:
//   - LoaderBuilderOption: a function that applies the logger option to a loader
func WithLogger(logger *log.Logger) LoaderBuilderOption {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithScene is an option builder that pre-populates the scene cache with a scene.
//
// Parameters:
//   - key: the cache key for the scene
//   - scene: the scene to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the scene option to a loader
func WithScene(key string, scene graph.Scene) LoaderBuilderOption {
	return func(l *loader) {
		l.sceneCache[key] = scene
	}
}
