package buffer

import (
	"fmt"

	"github.com/rsahlin/gltf-io-sub001/engine/attribute"
)

// Bundle maps attribute hashes to the packed buffers of that group: one vertex
// buffer per attribute kind and up to one index buffer per index width. Every key is
// packed once; lookups of a missing key return nil.
type Bundle struct {
	vertex map[uint32][]*VertexBuffer
	index  map[uint32][attribute.IndexWidthCount]*VertexBuffer
	order  []uint32
}

// NewBundle creates an empty bundle.
//
// Returns:
//   - *Bundle: the bundle
func NewBundle() *Bundle {
	return &Bundle{
		vertex: make(map[uint32][]*VertexBuffer),
		index:  make(map[uint32][attribute.IndexWidthCount]*VertexBuffer),
	}
}

// AddBuffers stores the vertex buffers of an attribute-hash group, one per kind in
// canonical order.
//
// Parameters:
//   - hash: the attribute hash
//   - buffers: the packed vertex buffers
//
// Returns:
//   - error: ErrDuplicateKey if the hash already has vertex buffers
func (b *Bundle) AddBuffers(hash uint32, buffers []*VertexBuffer) error {
	if _, ok := b.vertex[hash]; ok {
		return fmt.Errorf("%w: vertex buffers for %08x", ErrDuplicateKey, hash)
	}
	b.vertex[hash] = buffers
	b.track(hash)
	return nil
}

// AddIndices stores the index buffers of an attribute-hash group by width; absent
// widths are nil.
//
// Parameters:
//   - hash: the attribute hash
//   - buffers: the packed index buffers indexed by attribute.IndexWidth
//
// Returns:
//   - error: ErrDuplicateKey if the hash already has index buffers
func (b *Bundle) AddIndices(hash uint32, buffers [attribute.IndexWidthCount]*VertexBuffer) error {
	if _, ok := b.index[hash]; ok {
		return fmt.Errorf("%w: index buffers for %08x", ErrDuplicateKey, hash)
	}
	b.index[hash] = buffers
	b.track(hash)
	return nil
}

func (b *Bundle) track(hash uint32) {
	_, v := b.vertex[hash]
	_, i := b.index[hash]
	if v && i {
		return
	}
	b.order = append(b.order, hash)
}

// Hashes returns the attribute hashes in the order they were first added.
func (b *Bundle) Hashes() []uint32 {
	return append([]uint32(nil), b.order...)
}

// VertexBuffers returns the vertex buffers of a group, or nil.
func (b *Bundle) VertexBuffers(hash uint32) []*VertexBuffer {
	return b.vertex[hash]
}

// VertexBuffer returns the buffer of one attribute kind in a group, or nil.
func (b *Bundle) VertexBuffer(hash uint32, kind attribute.Kind) *VertexBuffer {
	for _, vb := range b.vertex[hash] {
		if vb.Kind() == kind {
			return vb
		}
	}
	return nil
}

// IndexBuffers returns the index buffers of a group indexed by width, or nil.
func (b *Bundle) IndexBuffers(hash uint32) []*VertexBuffer {
	buffers, ok := b.index[hash]
	if !ok {
		return nil
	}
	return buffers[:]
}

// IndexBuffer returns the index buffer of one width in a group, or nil.
func (b *Bundle) IndexBuffer(hash uint32, w attribute.IndexWidth) *VertexBuffer {
	return b.index[hash][w]
}

// VertexOffsets returns the offset table of each vertex buffer of a group, or nil.
func (b *Bundle) VertexOffsets(hash uint32) [][]int {
	buffers, ok := b.vertex[hash]
	if !ok {
		return nil
	}
	out := make([][]int, len(buffers))
	for i, vb := range buffers {
		out[i] = vb.Offsets()
	}
	return out
}

// IndexOffsets returns the offset table of each index width of a group, or nil.
// Widths without a buffer have a nil table.
func (b *Bundle) IndexOffsets(hash uint32) [][]int {
	buffers, ok := b.index[hash]
	if !ok {
		return nil
	}
	out := make([][]int, len(buffers))
	for i, ib := range buffers {
		if ib != nil {
			out[i] = ib.Offsets()
		}
	}
	return out
}

// VertexCount returns the number of packed vertices across all groups.
func (b *Bundle) VertexCount() int {
	n := 0
	for _, buffers := range b.vertex {
		if len(buffers) > 0 {
			n += buffers[0].Count()
		}
	}
	return n
}

// IndexCount returns the number of packed indices across all groups and widths.
func (b *Bundle) IndexCount() int {
	n := 0
	for _, buffers := range b.index {
		for _, ib := range buffers {
			if ib != nil {
				n += ib.Count()
			}
		}
	}
	return n
}
