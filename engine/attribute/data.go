package attribute

import (
	"errors"
	"fmt"
)

// Common errors returned by the attribute package.
var (
	ErrUnknownKind         = errors.New("unknown attribute kind")
	ErrUnsupportedDataType = errors.New("unsupported data type")
	ErrInvalidStride       = errors.New("stride smaller than element size")
	ErrOutOfRange          = errors.New("attribute data exceeds source buffer")
)

// Bounds is an axis-aligned min/max pair. Only position streams carry bounds.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Union returns the smallest Bounds enclosing both b and o.
func (b Bounds) Union(o Bounds) Bounds {
	out := b
	for i := 0; i < 3; i++ {
		out.Min[i] = min(out.Min[i], o.Min[i])
		out.Max[i] = max(out.Max[i], o.Max[i])
	}
	return out
}

// Data is an immutable read view into one source attribute or index stream: a
// source byte slice, a byte offset, an element count, the element data type and a
// byte stride. A stride of zero means the stream is tightly packed.
//
// Data is passed by value; copying out of it never changes it, so one view can be
// consumed by any number of packing passes.
type Data struct {
	kind       Kind
	source     []byte
	offset     int
	count      int
	dataType   DataType
	stride     int
	normalized bool
	bounds     *Bounds
}

// DataOption is a functional option for configuring a Data view via NewData.
type DataOption func(*Data)

// WithStride is an option builder that sets the byte distance between consecutive
// elements. Zero keeps the stream tightly packed.
//
// Parameters:
//   - stride: the byte stride
//
// Returns:
//   - DataOption: a function that applies the stride to a Data view
func WithStride(stride int) DataOption {
	return func(d *Data) {
		d.stride = stride
	}
}

// WithBounds is an option builder that attaches precomputed min/max bounds.
// The bounds are trusted as given; they are never recomputed from the source bytes.
//
// Parameters:
//   - b: the bounds of the stream
//
// Returns:
//   - DataOption: a function that applies the bounds to a Data view
func WithBounds(b Bounds) DataOption {
	return func(d *Data) {
		bb := b
		d.bounds = &bb
	}
}

// WithNormalized is an option builder that marks integer components as normalized.
//
// Parameters:
//   - normalized: whether integer components map to [0, 1]
//
// Returns:
//   - DataOption: a function that applies the flag to a Data view
func WithNormalized(normalized bool) DataOption {
	return func(d *Data) {
		d.normalized = normalized
	}
}

// NewData creates a validated read view into source.
//
// Parameters:
//   - kind: the semantic of the stream
//   - source: the backing bytes, shared and never written
//   - offset: byte offset of the first element
//   - count: number of elements
//   - dataType: layout of one element
//   - options: optional stride, bounds and normalization
//
// Returns:
//   - Data: the view
//   - error: error if the layout is invalid or the last element lies outside source
func NewData(kind Kind, source []byte, offset, count int, dataType DataType, options ...DataOption) (Data, error) {
	d := Data{
		kind:     kind,
		source:   source,
		offset:   offset,
		count:    count,
		dataType: dataType,
	}
	for _, option := range options {
		option(&d)
	}

	if !dataType.Valid() {
		return Data{}, fmt.Errorf("%s: %w: %s", kind, ErrUnsupportedDataType, dataType)
	}
	if offset < 0 || count < 0 {
		return Data{}, fmt.Errorf("%s: %w: offset=%d count=%d", kind, ErrOutOfRange, offset, count)
	}
	size := dataType.Size()
	if d.stride == 0 {
		d.stride = size
	}
	if d.stride < size {
		return Data{}, fmt.Errorf("%s: %w: stride=%d size=%d", kind, ErrInvalidStride, d.stride, size)
	}
	if count > 0 {
		end := offset + (count-1)*d.stride + size
		if end > len(source) {
			return Data{}, fmt.Errorf("%s: %w: needs %d bytes, have %d", kind, ErrOutOfRange, end, len(source))
		}
	}
	return d, nil
}

// Kind returns the semantic of the stream.
func (d Data) Kind() Kind { return d.kind }

// Count returns the number of elements.
func (d Data) Count() int { return d.count }

// DataType returns the element layout.
func (d Data) DataType() DataType { return d.dataType }

// Stride returns the effective byte stride (the element size when tightly packed).
func (d Data) Stride() int { return d.stride }

// ElementSize returns the byte size of one element.
func (d Data) ElementSize() int { return d.dataType.Size() }

// ByteLength returns the size of the stream once tightly packed.
func (d Data) ByteLength() int { return d.count * d.dataType.Size() }

// Normalized reports whether integer components are normalized.
func (d Data) Normalized() bool { return d.normalized }

// TightlyPacked reports whether consecutive elements are adjacent in the source.
func (d Data) TightlyPacked() bool { return d.stride == d.dataType.Size() }

// Bounds returns the precomputed bounds, if any.
func (d Data) Bounds() (Bounds, bool) {
	if d.bounds == nil {
		return Bounds{}, false
	}
	return *d.bounds, true
}

// Element returns a view of the i-th element's bytes in the source.
func (d Data) Element(i int) []byte {
	start := d.offset + i*d.stride
	return d.source[start : start+d.dataType.Size()]
}

// Copy writes the elements tightly packed into dst and returns the number of bytes
// written. A tightly packed source is copied in one block, otherwise one element is
// copied per stride step.
//
// Copy panics if dst cannot hold Count()*ElementSize() bytes or if the number of
// bytes written differs from that amount: either case is a packing bug, not bad input.
//
// Parameters:
//   - dst: the destination, at least ByteLength() bytes long
//
// Returns:
//   - int: the number of bytes written, always ByteLength()
func (d Data) Copy(dst []byte) int {
	size := d.dataType.Size()
	want := d.count * size
	if len(dst) < want {
		panic(fmt.Sprintf("attribute: copy of %d %s bytes into a %d byte destination", want, d.kind, len(dst)))
	}

	written := 0
	if d.stride == size {
		written = copy(dst[:want], d.source[d.offset:d.offset+want])
	} else {
		src := d.offset
		for i := 0; i < d.count; i++ {
			written += copy(dst[written:written+size], d.source[src:src+size])
			src += d.stride
		}
	}

	if written != want {
		panic(fmt.Sprintf("attribute: copied %d of %d %s bytes", written, want, d.kind))
	}
	return written
}

// Bytes returns a newly allocated, tightly packed copy of the stream.
func (d Data) Bytes() []byte {
	out := make([]byte, d.ByteLength())
	d.Copy(out)
	return out
}
