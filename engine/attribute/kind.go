// Package attribute describes per-vertex attribute streams: which semantic a stream
// carries (Kind), how its elements are laid out (DataType, IndexWidth) and an
// immutable read view over the source bytes (Data) that can be copied into a tightly
// packed destination.
package attribute

import "fmt"

// Kind is the semantic of an attribute stream. The declaration order of the
// constants is the canonical attribute order used by Sort.
type Kind int

const (
	KindPosition Kind = iota
	KindNormal
	KindTangent
	KindTexCoord0
	KindTexCoord1
	KindTexCoord2
	KindTexCoord3
	KindColor0
	KindColor1
	KindJoints0
	KindJoints1
	KindWeights0
	KindWeights1

	// KindIndices marks an index stream. It is not a vertex attribute and never
	// takes part in an attribute signature.
	KindIndices
)

// kindNames maps each Kind to its glTF semantic name.
var kindNames = map[Kind]string{
	KindPosition:  "POSITION",
	KindNormal:    "NORMAL",
	KindTangent:   "TANGENT",
	KindTexCoord0: "TEXCOORD_0",
	KindTexCoord1: "TEXCOORD_1",
	KindTexCoord2: "TEXCOORD_2",
	KindTexCoord3: "TEXCOORD_3",
	KindColor0:    "COLOR_0",
	KindColor1:    "COLOR_1",
	KindJoints0:   "JOINTS_0",
	KindJoints1:   "JOINTS_1",
	KindWeights0:  "WEIGHTS_0",
	KindWeights1:  "WEIGHTS_1",
	KindIndices:   "INDICES",
}

// String returns the glTF semantic name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsVertexAttribute reports whether k is a per-vertex attribute (everything but KindIndices).
func (k Kind) IsVertexAttribute() bool {
	return k >= KindPosition && k < KindIndices
}

// ParseKind resolves a glTF attribute semantic such as "TEXCOORD_0" to its Kind.
//
// Parameters:
//   - name: the glTF semantic name
//
// Returns:
//   - Kind: the matching kind
//   - error: ErrUnknownKind wrapped with the name if the semantic is not supported
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name && k != KindIndices {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}
