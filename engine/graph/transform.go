package graph

import "github.com/rsahlin/gltf-io-sub001/common"

var identity = common.IdentityMatrix()

// WorldMatrix returns parent * n.LocalMatrix().
//
// Parameters:
//   - parent: the parent's world matrix
//   - n: the node
//
// Returns:
//   - [16]float32: the node's world matrix
func WorldMatrix(parent [16]float32, n Node) [16]float32 {
	local := n.LocalMatrix()
	var out [16]float32
	common.Mul4(out[:], parent[:], local[:])
	return out
}
