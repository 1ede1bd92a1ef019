package graph

import "github.com/rsahlin/gltf-io-sub001/common"

// NodeBuilderOption is a functional option for configuring a Node via NewNode.
type NodeBuilderOption func(*node)

// WithNodeName is an option builder that sets the node name.
//
// Parameters:
//   - name: the node name
//
// Returns:
//   - NodeBuilderOption: a function that applies the name to a node
func WithNodeName(name string) NodeBuilderOption {
	return func(n *node) {
		n.name = name
	}
}

// WithChildren is an option builder that appends child nodes.
//
// Parameters:
//   - children: the child nodes
//
// Returns:
//   - NodeBuilderOption: a function that adds the children to a node
func WithChildren(children ...Node) NodeBuilderOption {
	return func(n *node) {
		n.children = append(n.children, children...)
	}
}

// WithMesh is an option builder that attaches a mesh.
//
// Parameters:
//   - mesh: the mesh drawn at this node
//
// Returns:
//   - NodeBuilderOption: a function that applies the mesh to a node
func WithMesh(mesh Mesh) NodeBuilderOption {
	return func(n *node) {
		n.mesh = mesh
	}
}

// WithMatrix is an option builder that sets the local transform directly.
//
// Parameters:
//   - m: a column-major 4x4 matrix
//
// Returns:
//   - NodeBuilderOption: a function that applies the matrix to a node
func WithMatrix(m [16]float32) NodeBuilderOption {
	return func(n *node) {
		n.local = m
	}
}

// WithTRS is an option builder that sets the local transform from a translation,
// a rotation quaternion (x, y, z, w) and a scale.
//
// Parameters:
//   - t: the translation
//   - r: the rotation quaternion
//   - s: the scale
//
// Returns:
//   - NodeBuilderOption: a function that applies the composed matrix to a node
func WithTRS(t [3]float32, r [4]float32, s [3]float32) NodeBuilderOption {
	return func(n *node) {
		n.local = common.ComposeTRS(t, r, s)
	}
}
