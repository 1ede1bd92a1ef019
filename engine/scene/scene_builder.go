package scene

import (
	"github.com/google/uuid"
	"github.com/rsahlin/gltf-io-sub001/engine/buffer"
)

// SceneBuilderOption is a functional option for configuring a Scene via New.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithID sets the asset id.
//
// Parameters:
//   - id: the asset id
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithID(id uuid.UUID) SceneBuilderOption {
	return func(s *scene) {
		s.id = id
	}
}

// WithName sets the scene name.
//
// Parameters:
//   - name: the scene name
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithName(name string) SceneBuilderOption {
	return func(s *scene) {
		s.name = name
	}
}

// WithBatches sets the ordered batches.
//
// Parameters:
//   - batches: the batches, opaque first
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithBatches(batches ...Batch) SceneBuilderOption {
	return func(s *scene) {
		s.batches = batches
	}
}

// WithBundle sets the packed buffers.
//
// Parameters:
//   - bundle: the bundle the batches draw from
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithBundle(bundle *buffer.Bundle) SceneBuilderOption {
	return func(s *scene) {
		s.bundle = bundle
	}
}

// WithMatrices sets the world matrices.
//
// Parameters:
//   - matrices: the world matrices referenced by the batches
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithMatrices(matrices [][16]float32) SceneBuilderOption {
	return func(s *scene) {
		s.matrices = matrices
	}
}
