package scene

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/rsahlin/gltf-io-sub001/engine/attribute"
	"github.com/rsahlin/gltf-io-sub001/engine/buffer"
)

// IndexUpload returns the index buffer a batch draws from for one width, converted to
// a width WebGPU can bind, together with its index format. 8-bit indices are widened
// to 16 bits; draws keep their element offsets.
//
// Parameters:
//   - s: the scene
//   - b: the batch
//   - w: the index width of the draws
//
// Returns:
//   - *buffer.VertexBuffer: the uploadable buffer
//   - wgpu.IndexFormat: the format to bind it with
//   - error: ErrMissingBuffer if the scene has no buffer for the batch and width
func IndexUpload(s Scene, b Batch, w attribute.IndexWidth) (*buffer.VertexBuffer, wgpu.IndexFormat, error) {
	ib := s.Bundle().IndexBuffer(b.AttributeHash, w)
	if ib == nil {
		return nil, 0, fmt.Errorf("%w: %s indices for %08x", ErrMissingBuffer, w, b.AttributeHash)
	}
	ib, err := buffer.Widen(ib)
	if err != nil {
		return nil, 0, err
	}
	uw, _ := ib.IndexWidth()
	format, _ := uw.Format()
	return ib, format, nil
}

// VertexUploads returns the vertex buffers a batch draws from, one per layout
// returned by Batch.VertexLayouts.
//
// Parameters:
//   - s: the scene
//   - b: the batch
//
// Returns:
//   - []*buffer.VertexBuffer: the buffers in canonical attribute order
//   - error: ErrMissingBuffer if an attribute of the batch has no packed buffer
func VertexUploads(s Scene, b Batch) ([]*buffer.VertexBuffer, error) {
	out := make([]*buffer.VertexBuffer, len(b.Specs))
	for i, spec := range b.Specs {
		vb := s.Bundle().VertexBuffer(b.AttributeHash, spec.Kind)
		if vb == nil {
			return nil, fmt.Errorf("%w: %s for %08x", ErrMissingBuffer, spec.Kind, b.AttributeHash)
		}
		out[i] = vb
	}
	return out, nil
}
