package graph

import (
	"github.com/rsahlin/gltf-io-sub001/engine/attribute"
	"github.com/rsahlin/gltf-io-sub001/engine/material"
)

// PrimitiveBuilderOption is a functional option for configuring a Primitive via NewPrimitive.
type PrimitiveBuilderOption func(*primitive)

// WithAttribute is an option builder that adds a vertex attribute stream.
//
// Parameters:
//   - data: the attribute stream
//
// Returns:
//   - PrimitiveBuilderOption: a function that adds the stream to a primitive
func WithAttribute(data attribute.Data) PrimitiveBuilderOption {
	return func(p *primitive) {
		p.attributes = append(p.attributes, data)
	}
}

// WithIndices is an option builder that sets the index stream, making the primitive indexed.
//
// Parameters:
//   - data: the index stream
//
// Returns:
//   - PrimitiveBuilderOption: a function that applies the index stream to a primitive
func WithIndices(data attribute.Data) PrimitiveBuilderOption {
	return func(p *primitive) {
		d := data
		p.indices = &d
	}
}

// WithMaterial is an option builder that sets the material.
//
// Parameters:
//   - m: the material
//
// Returns:
//   - PrimitiveBuilderOption: a function that applies the material to a primitive
func WithMaterial(m material.Material) PrimitiveBuilderOption {
	return func(p *primitive) {
		p.material = m
	}
}

// WithMode is an option builder that sets the topology.
//
// Parameters:
//   - mode: the primitive topology
//
// Returns:
//   - PrimitiveBuilderOption: a function that applies the mode to a primitive
func WithMode(mode Mode) PrimitiveBuilderOption {
	return func(p *primitive) {
		p.mode = mode
	}
}
