package graph

import "github.com/rsahlin/gltf-io-sub001/common"

// node is the implementation of the Node interface.
type node struct {
	name     string
	children []Node
	mesh     Mesh
	local    [16]float32
}

// Node defines one element of the scene hierarchy. A node optionally carries a mesh
// and always carries a local transform relative to its parent.
type Node interface {
	// Name retrieves the node name.
	//
	// Returns:
	//   - string: the name, possibly empty
	Name() string

	// Children retrieves the child nodes in declaration order.
	//
	// Returns:
	//   - []Node: the children
	Children() []Node

	// Mesh retrieves the mesh attached to the node.
	//
	// Returns:
	//   - Mesh: the mesh, or nil if the node is a pure transform
	Mesh() Mesh

	// LocalMatrix retrieves the transform relative to the parent node.
	//
	// Returns:
	//   - [16]float32: a column-major 4x4 matrix
	LocalMatrix() [16]float32
}

var _ Node = &node{}

// NewNode creates a new Node with an identity transform and the given options applied.
//
// Parameters:
//   - options: a variadic list of NodeBuilderOption functions
//
// Returns:
//   - Node: the configured node
func NewNode(options ...NodeBuilderOption) Node {
	n := &node{
		local: common.IdentityMatrix(),
	}
	for _, option := range options {
		option(n)
	}
	return n
}

func (n *node) Name() string {
	return n.name
}

func (n *node) Children() []Node {
	return n.children
}

func (n *node) Mesh() Mesh {
	return n.mesh
}

func (n *node) LocalMatrix() [16]float32 {
	return n.local
}
