package stream

import (
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/rsahlin/gltf-io-sub001/engine/attribute"
	"github.com/rsahlin/gltf-io-sub001/engine/buffer"
	"github.com/rsahlin/gltf-io-sub001/engine/container"
	"github.com/rsahlin/gltf-io-sub001/engine/scene"
)

// Common errors returned while decoding.
var (
	ErrSceneNotFirst = errors.New("chunk before scene chunk")
	ErrMissingStream = errors.New("buffer chunk missing")
	ErrNotLoaded     = errors.New("container not loaded")
)

// Decoder is a container.Listener that rebuilds the parts of an encoded scene chunk
// by chunk and hands them to the Target its Factory selects. It works with both
// Reader.Process and Reader.ProcessAsync.
type Decoder struct {
	logger  *log.Logger
	factory Factory

	record   *sceneRecord
	target   Target
	vertex   []*buffer.VertexBuffer
	index    []*buffer.VertexBuffer
	matrices [][16]float32
	meta     map[string]string

	once sync.Once
	done chan struct{}
	err  error
}

var _ container.Listener = &Decoder{}

// NewDecoder creates a Decoder.
//
// Parameters:
//   - factory: selects the target for the container's variant; nil means DefaultFactory
//   - opts: a variadic list of Option functions
//
// Returns:
//   - *Decoder: the decoder
func NewDecoder(factory Factory, opts ...Option) *Decoder {
	if factory == nil {
		factory = DefaultFactory
	}
	return &Decoder{
		logger:  newOptions(opts).logger,
		factory: factory,
		done:    make(chan struct{}),
	}
}

// Decode processes r synchronously and returns the assembled target.
//
// Parameters:
//   - r: the container reader
//   - factory: selects the target; nil means DefaultFactory
//   - opts: a variadic list of Option functions
//
// Returns:
//   - Target: the assembled target
//   - error: error if reading or assembling fails
func Decode(r container.Reader, factory Factory, opts ...Option) (Target, error) {
	d := NewDecoder(factory, opts...)
	if err := r.Process(d); err != nil {
		d.OnError(err)
	}
	return d.Wait()
}

// Wait blocks until the container is loaded or failed.
//
// Returns:
//   - Target: the assembled target
//   - error: the first error met while decoding
func (d *Decoder) Wait() (Target, error) {
	<-d.done
	if d.err != nil {
		return nil, d.err
	}
	return d.target, nil
}

func (d *Decoder) OnChunk(c container.Chunk) error {
	if d.record == nil {
		if c.Type != container.ChunkScene {
			return fmt.Errorf("%w: %s", ErrSceneNotFirst, c.Type)
		}
		return d.readScene(c.Payload)
	}

	switch c.Type {
	case container.ChunkVertex:
		vb, err := d.packed(c, d.record.vertex)
		if err != nil || vb == nil {
			return err
		}
		d.vertex[c.Ordinal] = vb
	case container.ChunkIndex:
		ib, err := d.packed(c, d.record.index)
		if err != nil || ib == nil {
			return err
		}
		d.index[c.Ordinal] = ib
	case container.ChunkMatrices:
		if len(c.Payload) != d.record.matrices*64 {
			d.logger.Warn("matrix chunk size mismatch", "bytes", len(c.Payload), "expected", d.record.matrices*64)
		}
		d.matrices = decodeMatrices(c.Payload)
	case container.ChunkMeta:
		meta, err := decodeMeta(c.Payload)
		if err != nil {
			return err
		}
		d.meta = meta
	case container.ChunkScene:
		d.logger.Warn("ignoring extra scene chunk", "index", c.Index)
	default:
		d.logger.Debug("skipping unknown chunk", "type", c.Type, "bytes", len(c.Payload))
	}
	return nil
}

func (d *Decoder) readScene(payload []byte) error {
	rec, err := decodeScene(payload)
	if err != nil {
		return err
	}
	target, err := d.factory(rec.variant)
	if err != nil {
		return err
	}
	d.record = &rec
	d.target = target
	d.vertex = make([]*buffer.VertexBuffer, len(rec.vertex))
	d.index = make([]*buffer.VertexBuffer, len(rec.index))
	d.logger.Debug("scene chunk", "id", rec.id, "variant", rec.variant, "batches", len(rec.batches))
	return nil
}

// packed rebuilds the packed buffer of a VBUF or IBUF chunk. A payload whose size
// differs from what the stream table predicts is logged and still used; a short one
// is zero-filled to the predicted size.
func (d *Decoder) packed(c container.Chunk, table []streamRecord) (*buffer.VertexBuffer, error) {
	if c.Ordinal >= len(table) {
		d.logger.Warn("buffer chunk not in stream table", "type", c.Type, "position", c.Ordinal)
		return nil, nil
	}
	s := table[c.Ordinal]
	payload := c.Payload
	if want := s.expectedSize(); len(payload) != want {
		d.logger.Warn("buffer chunk size mismatch", "type", c.Type, "position", c.Ordinal, "bytes", len(payload), "expected", want)
		if len(payload) < want {
			// The missing tail reads as zeros.
			payload = make([]byte, want)
			copy(payload, c.Payload)
		}
	}
	vb, err := buffer.FromPacked(s.kind, s.dataType, s.count, s.offsets, s.bounds, payload)
	if err != nil {
		return nil, fmt.Errorf("%s %d: %w", c.Type, c.Ordinal, err)
	}
	return vb, nil
}

func (d *Decoder) OnLoaded(s container.Stats) {
	if d.record == nil {
		d.finish(fmt.Errorf("%w: no scene chunk", ErrNotLoaded))
		return
	}
	parts, err := d.parts()
	if err == nil {
		err = d.target.Assemble(parts)
	}
	if err == nil {
		d.logger.Debug("container loaded", "chunks", s.Chunks, "bytes", s.PayloadBytes)
	}
	d.finish(err)
}

func (d *Decoder) OnError(err error) {
	d.finish(err)
}

func (d *Decoder) finish(err error) {
	d.once.Do(func() {
		d.err = err
		close(d.done)
	})
}

// parts groups the decoded buffers by attribute hash in batch order.
func (d *Decoder) parts() (Parts, error) {
	rec := d.record
	bundle := buffer.NewBundle()
	var order []uint32
	indices := make(map[uint32]*[attribute.IndexWidthCount]*buffer.VertexBuffer)

	for i, br := range rec.batches {
		hash := br.batch.AttributeHash
		if bundle.VertexBuffers(hash) == nil {
			vbs := make([]*buffer.VertexBuffer, len(br.vertex))
			for j, pos := range br.vertex {
				if pos < 0 || pos >= len(d.vertex) || d.vertex[pos] == nil {
					return Parts{}, fmt.Errorf("%w: batch %d vertex stream %d", ErrMissingStream, i, pos)
				}
				vbs[j] = d.vertex[pos]
			}
			if err := bundle.AddBuffers(hash, vbs); err != nil {
				return Parts{}, err
			}
		}
		for w, pos := range br.index {
			if pos == container.NoIndex {
				continue
			}
			if pos < 0 || pos >= len(d.index) || d.index[pos] == nil {
				return Parts{}, fmt.Errorf("%w: batch %d index stream %d", ErrMissingStream, i, pos)
			}
			set, ok := indices[hash]
			if !ok {
				set = &[attribute.IndexWidthCount]*buffer.VertexBuffer{}
				indices[hash] = set
				order = append(order, hash)
			}
			set[w] = d.index[pos]
		}
	}
	for _, hash := range order {
		if err := bundle.AddIndices(hash, *indices[hash]); err != nil {
			return Parts{}, err
		}
	}

	if len(d.matrices) != rec.matrices {
		d.logger.Warn("matrix count mismatch", "decoded", len(d.matrices), "expected", rec.matrices)
	}
	batches := make([]scene.Batch, len(rec.batches))
	for i, br := range rec.batches {
		batches[i] = br.batch
	}
	return Parts{
		ID:       rec.id,
		Name:     rec.name,
		Batches:  batches,
		Bundle:   bundle,
		Matrices: d.matrices,
		Meta:     d.meta,
	}, nil
}
