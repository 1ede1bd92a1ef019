// Package scene holds the flattened form of a scene graph: pipeline batches drawn
// from packed buffers, the world matrices they reference and the buffers themselves.
// A Scene is produced by Flatten from a graph.Scene, or rebuilt from a container.
package scene

import (
	"github.com/google/uuid"
	"github.com/rsahlin/gltf-io-sub001/engine/attribute"
	"github.com/rsahlin/gltf-io-sub001/engine/buffer"
)

// Scene is a flattened, packed scene ready for upload. It is read-only.
type Scene interface {
	// ID returns the asset identifier assigned when the scene was flattened.
	//
	// Returns:
	//   - uuid.UUID: the asset id
	ID() uuid.UUID

	// Name returns the scene name.
	//
	// Returns:
	//   - string: the name of the source scene
	Name() string

	// Batches returns one batch per pipeline signature, opaque batches first.
	//
	// Returns:
	//   - []Batch: the ordered batches
	Batches() []Batch

	// Bundle returns the packed buffers keyed by attribute hash.
	//
	// Returns:
	//   - *buffer.Bundle: the bundle
	Bundle() *buffer.Bundle

	// Matrices returns the world matrices referenced by the batches' matrix indices.
	//
	// Returns:
	//   - [][16]float32: column-major world matrices
	Matrices() [][16]float32

	// InstanceCount returns the number of drawn primitive instances across all batches.
	//
	// Returns:
	//   - int: the instance count
	InstanceCount() int

	// Bounds returns the union of the packed position bounds in model space.
	//
	// Returns:
	//   - attribute.Bounds: the bounds
	//   - bool: false if no position buffer carries bounds
	Bounds() (attribute.Bounds, bool)
}

// scene is the implementation of the Scene interface.
type scene struct {
	id       uuid.UUID
	name     string
	batches  []Batch
	bundle   *buffer.Bundle
	matrices [][16]float32
}

var _ Scene = &scene{}

// New assembles a Scene from already flattened parts. Unset parts are empty and a
// missing id is generated.
//
// Parameters:
//   - options: a variadic list of SceneBuilderOption functions
//
// Returns:
//   - Scene: the scene
func New(options ...SceneBuilderOption) Scene {
	s := &scene{}
	for _, option := range options {
		option(s)
	}
	if s.id == uuid.Nil {
		s.id = uuid.New()
	}
	if s.bundle == nil {
		s.bundle = buffer.NewBundle()
	}
	return s
}

func (s *scene) ID() uuid.UUID {
	return s.id
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Batches() []Batch {
	return s.batches
}

func (s *scene) Bundle() *buffer.Bundle {
	return s.bundle
}

func (s *scene) Matrices() [][16]float32 {
	return s.matrices
}

func (s *scene) InstanceCount() int {
	n := 0
	for _, b := range s.batches {
		n += b.PrimitiveCount()
	}
	return n
}

func (s *scene) Bounds() (attribute.Bounds, bool) {
	var out attribute.Bounds
	found := false
	for _, hash := range s.bundle.Hashes() {
		vb := s.bundle.VertexBuffer(hash, attribute.KindPosition)
		if vb == nil {
			continue
		}
		b, ok := vb.Bounds()
		if !ok {
			continue
		}
		if !found {
			out, found = b, true
			continue
		}
		out = out.Union(b)
	}
	return out, found
}
