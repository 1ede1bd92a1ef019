// Package stream writes a flattened scene into a container and rebuilds it from one.
// The scene chunk carries the batch list and a table describing every buffer chunk,
// so a reader never needs the source scene graph.
package stream

import (
	"errors"
	"fmt"

	"github.com/rsahlin/gltf-io-sub001/engine/attribute"
	"github.com/rsahlin/gltf-io-sub001/engine/buffer"
	"github.com/rsahlin/gltf-io-sub001/engine/container"
	"github.com/rsahlin/gltf-io-sub001/engine/scene"
)

// ErrWriterHasBuffers is returned by Encode for a writer that already holds buffer chunks.
var ErrWriterHasBuffers = errors.New("writer already holds buffer chunks")

// Encode serializes s into a finished container writer. Buffers shared by several
// batches are written once and referenced by position.
//
// Parameters:
//   - s: the flattened scene
//   - opts: a variadic list of Option functions
//
// Returns:
//   - container.Writer: the finished writer, ready for WriteTo
//   - error: ErrWriterHasBuffers, or error if a batch references a missing buffer or the writer fails
func Encode(s scene.Scene, opts ...Option) (container.Writer, error) {
	o := newOptions(opts)
	w := o.writer
	if w == nil {
		w = container.NewWriter(container.WithWriterLogger(o.logger))
	}
	if n := w.Count(container.ChunkVertex) + w.Count(container.ChunkIndex); n > 0 {
		return nil, fmt.Errorf("%w: %d buffer chunks queued", ErrWriterHasBuffers, n)
	}

	rec := sceneRecord{
		id:       s.ID(),
		variant:  o.variant,
		name:     s.Name(),
		matrices: len(s.Matrices()),
	}
	sources := make(map[*buffer.VertexBuffer]int)
	sourceOf := func(vb *buffer.VertexBuffer) int {
		if i, ok := sources[vb]; ok {
			return i
		}
		i := len(sources)
		sources[vb] = i
		return i
	}

	for _, b := range s.Batches() {
		br := batchRecord{batch: b, index: [attribute.IndexWidthCount]int{container.NoIndex, container.NoIndex, container.NoIndex}}

		vbs, err := scene.VertexUploads(s, b)
		if err != nil {
			return nil, err
		}
		for _, vb := range vbs {
			pos, err := w.Serialize(container.ChunkVertex, sourceOf(vb), vb.Bytes())
			if err != nil {
				return nil, fmt.Errorf("failed to serialize %s buffer: %w", vb.Kind(), err)
			}
			if pos == len(rec.vertex) {
				rec.vertex = append(rec.vertex, describe(vb))
			}
			br.vertex = append(br.vertex, pos)
		}

		for _, width := range attribute.IndexWidths {
			if len(b.IndexedMatrices[width]) == 0 {
				continue
			}
			ib := s.Bundle().IndexBuffer(b.AttributeHash, width)
			if ib == nil {
				return nil, fmt.Errorf("%w: %s indices for %08x", scene.ErrMissingBuffer, width, b.AttributeHash)
			}
			pos, err := w.Serialize(container.ChunkIndex, sourceOf(ib), ib.Bytes())
			if err != nil {
				return nil, fmt.Errorf("failed to serialize %s indices: %w", width, err)
			}
			if pos == len(rec.index) {
				rec.index = append(rec.index, describe(ib))
			}
			br.index[width] = pos
		}
		rec.batches = append(rec.batches, br)
	}

	if _, err := w.Serialize(container.ChunkMatrices, container.NoIndex, encodeMatrices(s.Matrices())); err != nil {
		return nil, fmt.Errorf("failed to serialize matrices: %w", err)
	}
	if len(o.meta) > 0 {
		if _, err := w.Chunk(container.ChunkMeta, encodeMeta(o.meta)); err != nil {
			return nil, fmt.Errorf("failed to serialize metadata: %w", err)
		}
	}
	if err := w.Finish(encodeScene(rec)); err != nil {
		return nil, err
	}

	o.logger.Debug("encoded scene",
		"id", s.ID(),
		"batches", len(rec.batches),
		"vertex_streams", len(rec.vertex),
		"index_streams", len(rec.index),
		"bytes", w.Len(),
	)
	return w, nil
}
