package attribute

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// interleaved builds count elements of elementSize bytes, each followed by
// stride-elementSize bytes of 0xEE filler, starting after offset bytes of 0xDD.
func interleaved(offset, count, elementSize, stride int) []byte {
	buf := make([]byte, offset+count*stride)
	for i := range buf {
		buf[i] = 0xEE
	}
	for i := 0; i < offset; i++ {
		buf[i] = 0xDD
	}
	for e := 0; e < count; e++ {
		for b := 0; b < elementSize; b++ {
			buf[offset+e*stride+b] = byte(e*elementSize + b)
		}
	}
	return buf
}

func TestCopyTightlyPacksAnyStride(t *testing.T) {
	const count = 7
	size := DataTypeVec3.Size()

	for _, stride := range []int{0, 12, 16, 20, 32, 44} {
		effective := stride
		if effective == 0 {
			effective = size
		}
		src := interleaved(4, count, size, effective)
		d, err := NewData(KindPosition, src, 4, count, DataTypeVec3, WithStride(stride))
		require.NoError(t, err, "stride %d", stride)

		want := make([]byte, 0, count*size)
		for e := 0; e < count; e++ {
			start := 4 + e*effective
			want = append(want, src[start:start+size]...)
		}

		dst := make([]byte, count*size)
		n := d.Copy(dst)
		assert.Equal(t, count*size, n, "stride %d", stride)
		assert.Equal(t, want, dst, "stride %d", stride)
		assert.Equal(t, stride == 0 || stride == size, d.TightlyPacked())
	}
}

func TestCopyLeavesSourceUsable(t *testing.T) {
	src := interleaved(0, 3, 4, 8)
	d, err := NewData(KindTexCoord0, src, 0, 3, DataTypeUShortVec2, WithStride(8))
	require.NoError(t, err)

	first := d.Bytes()
	second := d.Bytes()
	assert.Equal(t, first, second)
	assert.Equal(t, interleaved(0, 3, 4, 8), src, "source must not be modified")
}

func TestCopyIntoLargerDestination(t *testing.T) {
	src := interleaved(0, 2, 4, 4)
	d, err := NewData(KindIndices, src, 0, 2, DataTypeUnsignedInt)
	require.NoError(t, err)

	dst := make([]byte, 12)
	n := d.Copy(dst)
	assert.Equal(t, 8, n)
	assert.Equal(t, []byte{0, 0, 0, 0}, dst[8:])
}

func TestCopyPanicsOnShortDestination(t *testing.T) {
	src := interleaved(0, 4, 4, 4)
	d, err := NewData(KindIndices, src, 0, 4, DataTypeUnsignedInt)
	require.NoError(t, err)

	assert.Panics(t, func() { d.Copy(make([]byte, 15)) })
}

func TestNewDataValidation(t *testing.T) {
	src := make([]byte, 64)

	tests := []struct {
		name    string
		offset  int
		count   int
		dt      DataType
		stride  int
		wantErr error
	}{
		{name: "fits exactly", offset: 16, count: 4, dt: DataTypeVec3, stride: 0},
		{name: "strided fits", offset: 0, count: 3, dt: DataTypeVec3, stride: 24},
		{name: "empty stream", offset: 64, count: 0, dt: DataTypeVec4},
		{name: "overruns buffer", offset: 20, count: 4, dt: DataTypeVec3, wantErr: ErrOutOfRange},
		{name: "negative offset", offset: -1, count: 1, dt: DataTypeFloat, wantErr: ErrOutOfRange},
		{name: "stride too small", offset: 0, count: 2, dt: DataTypeVec3, stride: 8, wantErr: ErrInvalidStride},
		{name: "unknown data type", offset: 0, count: 1, dt: DataTypeUnknown, wantErr: ErrUnsupportedDataType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewData(KindPosition, src, tt.offset, tt.count, tt.dt, WithStride(tt.stride))
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestBoundsUnion(t *testing.T) {
	a := Bounds{Min: [3]float32{-1, 0, 2}, Max: [3]float32{1, 1, 3}}
	b := Bounds{Min: [3]float32{0, -5, 1}, Max: [3]float32{4, 0, 2}}

	u := a.Union(b)
	assert.Equal(t, [3]float32{-1, -5, 1}, u.Min)
	assert.Equal(t, [3]float32{4, 1, 3}, u.Max)

	d, err := NewData(KindPosition, make([]byte, 12), 0, 1, DataTypeVec3, WithBounds(a))
	require.NoError(t, err)
	got, ok := d.Bounds()
	require.True(t, ok)
	assert.Equal(t, a, got)
}

func TestDataTypeFromGLTF(t *testing.T) {
	dt, err := DataTypeFromGLTF(5126, "VEC3")
	require.NoError(t, err)
	assert.Equal(t, DataTypeVec3, dt)

	dt, err = DataTypeFromGLTF(5121, "VEC4")
	require.NoError(t, err)
	assert.Equal(t, DataTypeUByteVec4, dt)

	_, err = DataTypeFromGLTF(5122, "VEC3")
	assert.ErrorIs(t, err, ErrUnsupportedDataType)
}

func TestIndexWidthFromDataType(t *testing.T) {
	for _, w := range IndexWidths {
		got, err := IndexWidthFromDataType(w.DataType())
		require.NoError(t, err)
		assert.Equal(t, w, got)
		assert.Equal(t, w.Size(), w.DataType().Size())
	}

	_, err := IndexWidthFromDataType(DataTypeFloat)
	assert.ErrorIs(t, err, ErrUnsupportedDataType)

	_, ok := IndexWidth8.Format()
	assert.False(t, ok)
	_, ok = IndexWidth32.Format()
	assert.True(t, ok)
}
