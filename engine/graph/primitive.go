// Package graph is the narrow scene-graph view the flattening pass consumes: scenes
// of nodes, nodes carrying meshes and transforms, meshes made of primitives. Loaders
// produce these values; nothing in this package knows about a file format.
package graph

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/rsahlin/gltf-io-sub001/engine/attribute"
	"github.com/rsahlin/gltf-io-sub001/engine/material"
)

// ErrMissingPosition is returned wherever a primitive without a POSITION attribute is
// rejected, by loaders and by the flattening pass alike.
var ErrMissingPosition = errors.New("primitive has no POSITION attribute")

// Mode is the primitive topology, numbered as in glTF.
type Mode int

const (
	ModePoints Mode = iota
	ModeLines
	ModeLineLoop
	ModeLineStrip
	ModeTriangles
	ModeTriangleStrip
	ModeTriangleFan
)

func (m Mode) String() string {
	switch m {
	case ModePoints:
		return "POINTS"
	case ModeLines:
		return "LINES"
	case ModeLineLoop:
		return "LINE_LOOP"
	case ModeLineStrip:
		return "LINE_STRIP"
	case ModeTriangles:
		return "TRIANGLES"
	case ModeTriangleStrip:
		return "TRIANGLE_STRIP"
	case ModeTriangleFan:
		return "TRIANGLE_FAN"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Topology maps the mode to a WebGPU primitive topology. Line loops and triangle
// fans have no WebGPU equivalent and report false.
func (m Mode) Topology() (wgpu.PrimitiveTopology, bool) {
	switch m {
	case ModePoints:
		return wgpu.PrimitiveTopologyPointList, true
	case ModeLines:
		return wgpu.PrimitiveTopologyLineList, true
	case ModeLineStrip:
		return wgpu.PrimitiveTopologyLineStrip, true
	case ModeTriangles:
		return wgpu.PrimitiveTopologyTriangleList, true
	case ModeTriangleStrip:
		return wgpu.PrimitiveTopologyTriangleStrip, true
	}
	return 0, false
}

// primitive is the implementation of the Primitive interface.
type primitive struct {
	attributes []attribute.Data
	indices    *attribute.Data
	material   material.Material
	mode       Mode
}

// Primitive defines one drawable piece of geometry: a set of attribute streams, an
// optional index stream, a material and a topology.
type Primitive interface {
	// Attributes retrieves the vertex attribute streams in declaration order.
	//
	// Returns:
	//   - []attribute.Data: the attribute streams
	Attributes() []attribute.Data

	// Attribute retrieves the stream of a given kind.
	//
	// Parameters:
	//   - kind: the attribute kind to look up
	//
	// Returns:
	//   - attribute.Data: the stream
	//   - bool: false if the primitive has no stream of that kind
	Attribute(kind attribute.Kind) (attribute.Data, bool)

	// Indices retrieves the index stream.
	//
	// Returns:
	//   - attribute.Data: the index stream
	//   - bool: false for array (non-indexed) primitives
	Indices() (attribute.Data, bool)

	// Material retrieves the material; never nil.
	//
	// Returns:
	//   - material.Material: the material
	Material() material.Material

	// Mode retrieves the topology.
	//
	// Returns:
	//   - Mode: the primitive topology
	Mode() Mode
}

var _ Primitive = &primitive{}

// NewPrimitive creates a new Primitive with the given options applied. Without
// options it is an empty triangle-list primitive using the default material.
//
// Parameters:
//   - options: a variadic list of PrimitiveBuilderOption functions
//
// Returns:
//   - Primitive: the configured primitive
func NewPrimitive(options ...PrimitiveBuilderOption) Primitive {
	p := &primitive{
		mode: ModeTriangles,
	}
	for _, option := range options {
		option(p)
	}
	if p.material == nil {
		p.material = material.Default()
	}
	return p
}

func (p *primitive) Attributes() []attribute.Data {
	return p.attributes
}

func (p *primitive) Attribute(kind attribute.Kind) (attribute.Data, bool) {
	for _, a := range p.attributes {
		if a.Kind() == kind {
			return a, true
		}
	}
	return attribute.Data{}, false
}

func (p *primitive) Indices() (attribute.Data, bool) {
	if p.indices == nil {
		return attribute.Data{}, false
	}
	return *p.indices, true
}

func (p *primitive) Material() material.Material {
	return p.material
}

func (p *primitive) Mode() Mode {
	return p.mode
}
