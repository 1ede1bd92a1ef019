package stream

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rsahlin/gltf-io-sub001/engine/attribute"
	"github.com/rsahlin/gltf-io-sub001/engine/buffer"
	"github.com/rsahlin/gltf-io-sub001/engine/graph"
	"github.com/rsahlin/gltf-io-sub001/engine/material"
	"github.com/rsahlin/gltf-io-sub001/engine/scene"
)

// streamRecord describes the packed buffer stored in one VBUF or IBUF chunk.
type streamRecord struct {
	kind     attribute.Kind
	dataType attribute.DataType
	count    int
	offsets  []int
	bounds   *attribute.Bounds
}

func describe(vb *buffer.VertexBuffer) streamRecord {
	r := streamRecord{
		kind:     vb.Kind(),
		dataType: vb.DataType(),
		count:    vb.Count(),
		offsets:  vb.Offsets(),
	}
	if b, ok := vb.Bounds(); ok {
		r.bounds = &b
	}
	return r
}

// expectedSize is the padded payload size a writer of this version produces.
func (r streamRecord) expectedSize() int {
	return buffer.Pad4(r.count * r.dataType.Size())
}

// batchRecord is a batch together with the chunk positions of the buffers it draws from.
type batchRecord struct {
	batch  scene.Batch
	vertex []int
	index  [attribute.IndexWidthCount]int
}

// sceneRecord is the content of the SCNE chunk.
type sceneRecord struct {
	id       uuid.UUID
	variant  Variant
	name     string
	vertex   []streamRecord
	index    []streamRecord
	matrices int
	batches  []batchRecord
}

func (e *encoder) stream(r streamRecord) {
	e.int(int(r.kind))
	e.int(int(r.dataType))
	e.int(r.count)
	e.ints(r.offsets)
	e.bool(r.bounds != nil)
	if r.bounds != nil {
		for _, v := range r.bounds.Min {
			e.f32(v)
		}
		for _, v := range r.bounds.Max {
			e.f32(v)
		}
	}
}

func (d *decoder) stream() streamRecord {
	r := streamRecord{
		kind:     attribute.Kind(d.int()),
		dataType: attribute.DataType(d.int()),
		count:    d.int(),
		offsets:  d.ints(),
	}
	if d.bool() {
		var b attribute.Bounds
		for i := range b.Min {
			b.Min[i] = d.f32()
		}
		for i := range b.Max {
			b.Max[i] = d.f32()
		}
		r.bounds = &b
	}
	return r
}

func (e *encoder) batch(r batchRecord) {
	b := r.batch
	e.u32(b.PipelineHash)
	e.u32(b.AttributeHash)
	e.int(int(b.Mode))
	e.int(int(b.AlphaMode))
	e.int(len(b.Specs))
	for _, s := range b.Specs {
		e.int(int(s.Kind))
		e.int(int(s.DataType))
	}
	e.int(len(b.Channels))
	for _, c := range b.Channels {
		e.int(int(c.Kind))
		e.int(c.TexCoord)
	}
	e.ints(b.ArrayMatrices)
	for w := range b.IndexedMatrices {
		e.ints(b.IndexedMatrices[w])
		e.int(b.IndicesCount[w])
	}
	e.int(len(b.Draws))
	for _, dr := range b.Draws {
		e.int(dr.MatrixIndex)
		e.int(dr.VertexOffset)
		e.int(dr.VertexCount)
		e.bool(dr.Indexed)
		e.int(int(dr.Width))
		e.int(dr.IndexOffset)
		e.int(dr.IndexCount)
	}
	e.ints(r.vertex)
	for _, pos := range r.index {
		e.int(pos)
	}
}

func (d *decoder) batch() batchRecord {
	var b scene.Batch
	b.PipelineHash = d.u32()
	b.AttributeHash = d.u32()
	b.Mode = graph.Mode(d.int())
	b.AlphaMode = material.AlphaMode(d.int())
	if n := d.count(8); n > 0 {
		b.Specs = make([]attribute.Spec, n)
		for i := range b.Specs {
			b.Specs[i] = attribute.Spec{Kind: attribute.Kind(d.int()), DataType: attribute.DataType(d.int())}
		}
	}
	if n := d.count(8); n > 0 {
		b.Channels = make([]material.TextureChannel, n)
		for i := range b.Channels {
			b.Channels[i] = material.TextureChannel{Kind: material.TextureKind(d.int()), TexCoord: d.int()}
		}
	}
	b.ArrayMatrices = d.ints()
	for w := range b.IndexedMatrices {
		b.IndexedMatrices[w] = d.ints()
		b.IndicesCount[w] = d.int()
	}
	if n := d.count(28); n > 0 {
		b.Draws = make([]scene.Draw, n)
		for i := range b.Draws {
			b.Draws[i] = scene.Draw{
				MatrixIndex:  d.int(),
				VertexOffset: d.int(),
				VertexCount:  d.int(),
				Indexed:      d.bool(),
				Width:        attribute.IndexWidth(d.int()),
				IndexOffset:  d.int(),
				IndexCount:   d.int(),
			}
		}
	}
	r := batchRecord{batch: b, vertex: d.ints()}
	for w := range r.index {
		r.index[w] = d.int()
	}
	return r
}

func encodeScene(r sceneRecord) []byte {
	e := &encoder{}
	e.b = append(e.b, r.id[:]...)
	e.u32(uint32(r.variant))
	e.str(r.name)
	e.int(len(r.vertex))
	for _, s := range r.vertex {
		e.stream(s)
	}
	e.int(len(r.index))
	for _, s := range r.index {
		e.stream(s)
	}
	e.int(r.matrices)
	e.int(len(r.batches))
	for _, b := range r.batches {
		e.batch(b)
	}
	return e.b
}

func decodeScene(payload []byte) (sceneRecord, error) {
	if len(payload) < 16 {
		return sceneRecord{}, fmt.Errorf("%w: scene id", ErrShortPayload)
	}
	var r sceneRecord
	id, err := uuid.FromBytes(payload[:16])
	if err != nil {
		return sceneRecord{}, fmt.Errorf("failed to read scene id: %w", err)
	}
	r.id = id

	d := &decoder{b: payload[16:]}
	r.variant = Variant(d.u32())
	r.name = d.str()
	if n := d.count(20); n > 0 {
		r.vertex = make([]streamRecord, n)
		for i := range r.vertex {
			r.vertex[i] = d.stream()
		}
	}
	if n := d.count(20); n > 0 {
		r.index = make([]streamRecord, n)
		for i := range r.index {
			r.index[i] = d.stream()
		}
	}
	r.matrices = d.int()
	if n := d.count(4); n > 0 {
		r.batches = make([]batchRecord, n)
		for i := range r.batches {
			r.batches[i] = d.batch()
		}
	}
	if d.err != nil {
		return sceneRecord{}, fmt.Errorf("failed to decode scene chunk: %w", d.err)
	}
	return r, nil
}

func encodeMatrices(matrices [][16]float32) []byte {
	e := &encoder{b: make([]byte, 0, len(matrices)*64)}
	for _, m := range matrices {
		for _, v := range m {
			e.f32(v)
		}
	}
	return e.b
}

func decodeMatrices(payload []byte) [][16]float32 {
	out := make([][16]float32, len(payload)/64)
	d := &decoder{b: payload}
	for i := range out {
		for j := range out[i] {
			out[i][j] = d.f32()
		}
	}
	return out
}

func encodeMeta(meta [][2]string) []byte {
	e := &encoder{}
	e.int(len(meta))
	for _, kv := range meta {
		e.str(kv[0])
		e.str(kv[1])
	}
	return e.b
}

func decodeMeta(payload []byte) (map[string]string, error) {
	d := &decoder{b: payload}
	n := d.count(8)
	out := make(map[string]string, n)
	for i := 0; i < n; i++ {
		k := d.str()
		out[k] = d.str()
	}
	if d.err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", d.err)
	}
	return out, nil
}
