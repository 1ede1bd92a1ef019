package graph

// Mesh is a named list of primitives.
type Mesh interface {
	Name() string
	Primitives() []Primitive
}

// Scene is a named list of root nodes.
type Scene interface {
	Name() string
	Nodes() []Node
}

type mesh struct {
	name       string
	primitives []Primitive
}

type scene struct {
	name  string
	nodes []Node
}

var (
	_ Mesh  = &mesh{}
	_ Scene = &scene{}
)

// NewMesh creates a Mesh from its primitives.
//
// Parameters:
//   - name: the mesh name
//   - primitives: the primitives in declaration order
//
// Returns:
//   - Mesh: the mesh
func NewMesh(name string, primitives ...Primitive) Mesh {
	return &mesh{name: name, primitives: primitives}
}

// NewScene creates a Scene from its root nodes.
//
// Parameters:
//   - name: the scene name
//   - nodes: the root nodes in declaration order
//
// Returns:
//   - Scene: the scene
func NewScene(name string, nodes ...Node) Scene {
	return &scene{name: name, nodes: nodes}
}

func (m *mesh) Name() string            { return m.name }
func (m *mesh) Primitives() []Primitive { return m.primitives }
func (s *scene) Name() string           { return s.name }
func (s *scene) Nodes() []Node          { return s.nodes }

// Walk visits every node of the scene depth first, parents before children, passing
// each node together with its parent's world matrix. Returning false from visit
// skips the node's subtree.
//
// Parameters:
//   - s: the scene to walk
//   - visit: called once per node
func Walk(s Scene, visit func(n Node, parentWorld [16]float32) bool) {
	var walk func(n Node, parent [16]float32)
	walk = func(n Node, parent [16]float32) {
		if !visit(n, parent) {
			return
		}
		world := WorldMatrix(parent, n)
		for _, child := range n.Children() {
			walk(child, world)
		}
	}
	for _, n := range s.Nodes() {
		walk(n, identity)
	}
}
