// Package buffer packs attribute and index streams from many primitives into one
// tightly packed, 4-byte aligned buffer per attribute kind or index width, and
// records where each source primitive starts.
package buffer

import (
	"encoding/binary"
	"errors"
	"fmt"
	"slices"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/rsahlin/gltf-io-sub001/engine/attribute"
)

// Common errors returned by the buffer package.
var (
	ErrDuplicateKey    = errors.New("attribute hash already packed")
	ErrNoSources       = errors.New("no source streams")
	ErrMixedSources    = errors.New("source streams differ in kind or data type")
	ErrCountMismatch   = errors.New("source element counts do not add up")
	ErrShortPackedData = errors.New("packed data shorter than element count")
	ErrInvalidOffsets  = errors.New("offset table is not non-decreasing within count")
	ErrNotIndexBuffer  = errors.New("buffer does not hold indices")
)

// Pad4 rounds n up to the next multiple of 4. Aligned sizes are returned unchanged.
//
// Parameters:
//   - n: a non-negative byte size
//
// Returns:
//   - int: the padded size
func Pad4(n int) int {
	return n + (4-n%4)%4
}

// VertexBuffer is one packed buffer holding a single attribute kind, or the indices
// of a single index width, for every primitive of an attribute-hash group.
// It is immutable once built.
type VertexBuffer struct {
	kind     attribute.Kind
	dataType attribute.DataType
	count    int
	data     []byte
	offsets  []int
	bounds   *attribute.Bounds
}

// NewAttributeBuffer packs the sources in order. Position buffers also take the union
// of the sources' precomputed bounds; sources without bounds do not contribute.
//
// Parameters:
//   - sources: one stream per primitive, all of the same kind and data type
//   - count: the total number of elements across sources
//
// Returns:
//   - *VertexBuffer: the packed buffer
//   - error: error if the sources are empty, mixed, or do not add up to count
func NewAttributeBuffer(sources []attribute.Data, count int) (*VertexBuffer, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}
	kind, dataType := sources[0].Kind(), sources[0].DataType()
	if !kind.IsVertexAttribute() {
		return nil, fmt.Errorf("%w: %s is not a vertex attribute", ErrMixedSources, kind)
	}
	b, err := pack(kind, dataType, sources, count)
	if err != nil {
		return nil, err
	}
	if kind == attribute.KindPosition {
		for _, s := range sources {
			sb, ok := s.Bounds()
			if !ok {
				continue
			}
			if b.bounds == nil {
				b.bounds = &sb
				continue
			}
			u := b.bounds.Union(sb)
			b.bounds = &u
		}
	}
	return b, nil
}

// NewIndexBuffer packs the index streams of one width class in order.
//
// Parameters:
//   - sources: one index stream per primitive, all of width w
//   - w: the index width class
//
// Returns:
//   - *VertexBuffer: the packed buffer
//   - error: error if the sources are empty or of another width
func NewIndexBuffer(sources []attribute.Data, w attribute.IndexWidth) (*VertexBuffer, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}
	count := 0
	for _, s := range sources {
		count += s.Count()
	}
	return pack(attribute.KindIndices, w.DataType(), sources, count)
}

func pack(kind attribute.Kind, dataType attribute.DataType, sources []attribute.Data, count int) (*VertexBuffer, error) {
	size := dataType.Size()
	total := 0
	for i, s := range sources {
		if s.Kind() != kind || s.DataType() != dataType {
			return nil, fmt.Errorf("%w: source %d is %s/%s, want %s/%s", ErrMixedSources, i, s.Kind(), s.DataType(), kind, dataType)
		}
		total += s.Count()
	}
	if total != count {
		return nil, fmt.Errorf("%w: sources hold %d elements, want %d", ErrCountMismatch, total, count)
	}

	b := &VertexBuffer{
		kind:     kind,
		dataType: dataType,
		count:    count,
		data:     make([]byte, Pad4(count*size)),
		offsets:  make([]int, len(sources)),
	}
	element := 0
	for i, s := range sources {
		b.offsets[i] = element
		s.Copy(b.data[element*size:])
		element += s.Count()
	}
	return b, nil
}

// FromPacked rebuilds a buffer from already packed bytes, as read back from a container.
//
// Parameters:
//   - kind: the attribute kind, or attribute.KindIndices
//   - dataType: the element data type
//   - count: the number of elements
//   - offsets: the starting element of each source primitive
//   - bounds: the aggregated bounds, or nil
//   - data: the packed bytes; trailing padding may be present or absent
//
// Returns:
//   - *VertexBuffer: the buffer, which owns a padded copy of data
//   - error: error if data is too short or the offsets are out of range
func FromPacked(kind attribute.Kind, dataType attribute.DataType, count int, offsets []int, bounds *attribute.Bounds, data []byte) (*VertexBuffer, error) {
	if !dataType.Valid() {
		return nil, fmt.Errorf("%w: %s", attribute.ErrUnsupportedDataType, dataType)
	}
	need := count * dataType.Size()
	if len(data) < need {
		return nil, fmt.Errorf("%w: %d bytes for %d %s elements", ErrShortPackedData, len(data), count, dataType)
	}
	prev := 0
	for _, o := range offsets {
		if o < prev || o > count {
			return nil, fmt.Errorf("%w: %v", ErrInvalidOffsets, offsets)
		}
		prev = o
	}
	b := &VertexBuffer{
		kind:     kind,
		dataType: dataType,
		count:    count,
		data:     make([]byte, Pad4(need)),
		offsets:  slices.Clone(offsets),
	}
	copy(b.data, data[:need])
	if bounds != nil {
		bb := *bounds
		b.bounds = &bb
	}
	return b, nil
}

// Kind returns the attribute kind, attribute.KindIndices for index buffers.
func (b *VertexBuffer) Kind() attribute.Kind { return b.kind }

// DataType returns the element data type.
func (b *VertexBuffer) DataType() attribute.DataType { return b.dataType }

// Count returns the number of packed elements.
func (b *VertexBuffer) Count() int { return b.count }

// Size returns the padded byte size.
func (b *VertexBuffer) Size() int { return len(b.data) }

// Bytes returns a read-only view of the packed bytes, padding included.
func (b *VertexBuffer) Bytes() []byte { return b.data[:len(b.data):len(b.data)] }

// Offsets returns the starting element of each source, in source order.
func (b *VertexBuffer) Offsets() []int { return slices.Clone(b.offsets) }

// SourceCount returns the number of sources packed into the buffer.
func (b *VertexBuffer) SourceCount() int { return len(b.offsets) }

// Bounds returns the aggregated bounds of a position buffer.
func (b *VertexBuffer) Bounds() (attribute.Bounds, bool) {
	if b.bounds == nil {
		return attribute.Bounds{}, false
	}
	return *b.bounds, true
}

// Range returns the first element and the element count of source i.
//
// Parameters:
//   - i: the source position
//
// Returns:
//   - int: the first element of the source
//   - int: the number of elements of the source
func (b *VertexBuffer) Range(i int) (int, int) {
	start := b.offsets[i]
	end := b.count
	if i+1 < len(b.offsets) {
		end = b.offsets[i+1]
	}
	return start, end - start
}

// SourceBytes returns a view of the packed bytes of source i.
func (b *VertexBuffer) SourceBytes(i int) []byte {
	start, n := b.Range(i)
	size := b.dataType.Size()
	return b.data[start*size : (start+n)*size]
}

// IndexWidth returns the width class of an index buffer.
//
// Returns:
//   - attribute.IndexWidth: the width class
//   - bool: false if the buffer holds vertex attributes
func (b *VertexBuffer) IndexWidth() (attribute.IndexWidth, bool) {
	if b.kind != attribute.KindIndices {
		return 0, false
	}
	w, err := attribute.IndexWidthFromDataType(b.dataType)
	return w, err == nil
}

// Usage returns the WebGPU buffer usage for uploading the buffer.
func (b *VertexBuffer) Usage() wgpu.BufferUsage {
	if b.kind == attribute.KindIndices {
		return wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst
	}
	return wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst
}

// Widen converts an 8-bit index buffer into a 16-bit one with the same offsets.
// Buffers of any other kind or width are returned as is.
//
// Parameters:
//   - b: the buffer to widen
//
// Returns:
//   - *VertexBuffer: a 16-bit index buffer, or b itself
//   - error: ErrNotIndexBuffer if b holds vertex attributes
func Widen(b *VertexBuffer) (*VertexBuffer, error) {
	w, ok := b.IndexWidth()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotIndexBuffer, b.kind)
	}
	if w != attribute.IndexWidth8 {
		return b, nil
	}
	out := &VertexBuffer{
		kind:     attribute.KindIndices,
		dataType: attribute.IndexWidth16.DataType(),
		count:    b.count,
		data:     make([]byte, Pad4(b.count*2)),
		offsets:  slices.Clone(b.offsets),
	}
	for i := 0; i < b.count; i++ {
		binary.LittleEndian.PutUint16(out.data[i*2:], uint16(b.data[i]))
	}
	return out, nil
}
