// Package batch groups primitives that can be drawn with one pipeline configuration.
// A primitive's pipeline signature combines its attribute layout, the texture
// channels its material samples, its topology and its alpha mode.
package batch

import (
	"encoding/binary"
	"hash"
	"hash/fnv"
	"slices"

	"github.com/rsahlin/gltf-io-sub001/engine/attribute"
	"github.com/rsahlin/gltf-io-sub001/engine/graph"
	"github.com/rsahlin/gltf-io-sub001/engine/material"
)

// Signature is the canonical description of what a pipeline must support to draw a
// primitive. Specs and Channels are always in canonical order.
type Signature struct {
	Specs         []attribute.Spec
	Channels      []material.TextureChannel
	Mode          graph.Mode
	AlphaMode     material.AlphaMode
	AttributeHash uint32
}

// SignatureOf computes the signature of a primitive.
//
// Parameters:
//   - p: the primitive
//
// Returns:
//   - Signature: the canonical signature
func SignatureOf(p graph.Primitive) Signature {
	specs := attribute.SpecsOf(p.Attributes())
	channels := material.SortChannels(p.Material().TextureChannels())
	return Signature{
		Specs:         specs,
		Channels:      channels,
		Mode:          p.Mode(),
		AlphaMode:     p.Material().AlphaMode(),
		AttributeHash: AttributeHash(specs, channels),
	}
}

// Hash returns the pipeline hash of the signature.
func (s Signature) Hash() uint32 {
	return PipelineHash(s.AttributeHash, s.Mode, s.AlphaMode)
}

// Equal reports whether two signatures describe the same pipeline.
func (s Signature) Equal(o Signature) bool {
	return s.Mode == o.Mode &&
		s.AlphaMode == o.AlphaMode &&
		slices.Equal(s.Specs, o.Specs) &&
		slices.Equal(s.Channels, o.Channels)
}

// AttributeHash hashes the sorted attribute specs together with the sorted texture
// channels. Primitives with equal attribute hashes share one packed buffer layout.
//
// Parameters:
//   - specs: attribute specs in any order
//   - channels: texture channels in any order
//
// Returns:
//   - uint32: the FNV-1a hash
func AttributeHash(specs []attribute.Spec, channels []material.TextureChannel) uint32 {
	h := fnv.New32a()
	writeUint32(h, attribute.Hash(specs))
	for _, c := range material.SortChannels(channels) {
		writeUint32(h, uint32(c.Kind))
		writeUint32(h, uint32(c.TexCoord))
	}
	return h.Sum32()
}

// PipelineHash hashes an attribute hash together with the topology and alpha mode.
//
// Parameters:
//   - attributeHash: the value returned by AttributeHash
//   - mode: the primitive topology
//   - alpha: the material alpha mode
//
// Returns:
//   - uint32: the FNV-1a hash
func PipelineHash(attributeHash uint32, mode graph.Mode, alpha material.AlphaMode) uint32 {
	h := fnv.New32a()
	writeUint32(h, attributeHash)
	writeUint32(h, uint32(mode))
	writeUint32(h, uint32(alpha))
	return h.Sum32()
}

func writeUint32(h hash.Hash32, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	h.Write(buf[:])
}
