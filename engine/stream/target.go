package stream

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rsahlin/gltf-io-sub001/engine/buffer"
	"github.com/rsahlin/gltf-io-sub001/engine/scene"
)

// ErrUnknownVariant is returned by a Factory for a variant it cannot build.
var ErrUnknownVariant = errors.New("unknown scene variant")

// Variant tags what a container was written for. It is stored in the scene chunk.
type Variant uint32

const (
	// VariantScene rebuilds a full scene.Scene.
	VariantScene Variant = iota + 1
	// VariantGeometry keeps only the packed buffers and matrices.
	VariantGeometry
)

func (v Variant) String() string {
	switch v {
	case VariantScene:
		return "scene"
	case VariantGeometry:
		return "geometry"
	}
	return fmt.Sprintf("Variant(%d)", uint32(v))
}

// ParseVariant resolves a variant name as printed by Variant.String.
//
// Parameters:
//   - name: "scene" or "geometry"; empty selects VariantScene
//
// Returns:
//   - Variant: the variant
//   - error: ErrUnknownVariant for any other name
func ParseVariant(name string) (Variant, error) {
	switch strings.ToLower(name) {
	case "", "scene":
		return VariantScene, nil
	case "geometry":
		return VariantGeometry, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownVariant, name)
}

// Parts is everything a container holds once all chunks are read.
type Parts struct {
	ID       uuid.UUID
	Name     string
	Batches  []scene.Batch
	Bundle   *buffer.Bundle
	Matrices [][16]float32
	Meta     map[string]string
}

// Target receives the decoded parts of a container.
type Target interface {
	Assemble(p Parts) error
}

// Factory creates the Target for the variant found in a container's scene chunk.
type Factory func(v Variant) (Target, error)

// DefaultFactory builds a *SceneTarget for VariantScene and a *GeometryTarget for
// VariantGeometry.
func DefaultFactory(v Variant) (Target, error) {
	switch v {
	case VariantScene:
		return &SceneTarget{}, nil
	case VariantGeometry:
		return &GeometryTarget{}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownVariant, v)
}

// SceneTarget rebuilds a scene.Scene.
type SceneTarget struct {
	scene scene.Scene
	meta  map[string]string
}

var _ Target = &SceneTarget{}

func (t *SceneTarget) Assemble(p Parts) error {
	t.scene = scene.New(
		scene.WithID(p.ID),
		scene.WithName(p.Name),
		scene.WithBatches(p.Batches...),
		scene.WithBundle(p.Bundle),
		scene.WithMatrices(p.Matrices),
	)
	t.meta = p.Meta
	return nil
}

// Scene returns the rebuilt scene, nil before Assemble.
func (t *SceneTarget) Scene() scene.Scene { return t.scene }

// Meta returns the container metadata.
func (t *SceneTarget) Meta() map[string]string { return t.meta }

// GeometryTarget keeps the packed buffers and matrices without batch information.
type GeometryTarget struct {
	Bundle   *buffer.Bundle
	Matrices [][16]float32
}

var _ Target = &GeometryTarget{}

func (t *GeometryTarget) Assemble(p Parts) error {
	t.Bundle = p.Bundle
	t.Matrices = p.Matrices
	return nil
}
