package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComposeTRSMatchesProduct(t *testing.T) {
	tr := ComposeTRS([3]float32{1, 2, 3}, [4]float32{0, 0, 0, 1}, [3]float32{1, 1, 1})
	sc := ComposeTRS([3]float32{}, [4]float32{0, 0, 0, 1}, [3]float32{2, 3, 4})

	var got [16]float32
	Mul4(got[:], tr[:], sc[:])
	want := ComposeTRS([3]float32{1, 2, 3}, [4]float32{0, 0, 0, 1}, [3]float32{2, 3, 4})
	assert.Equal(t, want, got)
}

func TestComposeTRSRotation(t *testing.T) {
	// 90 degrees around Z maps +X to +Y.
	const s = 0.70710678
	m := ComposeTRS([3]float32{}, [4]float32{0, 0, s, s}, [3]float32{1, 1, 1})
	p := TransformPoint(m, [3]float32{1, 0, 0})
	assert.InDelta(t, 0, p[0], 1e-6)
	assert.InDelta(t, 1, p[1], 1e-6)
	assert.InDelta(t, 0, p[2], 1e-6)
}

func TestIdentity(t *testing.T) {
	m := IdentityMatrix()
	assert.Equal(t, [3]float32{4, 5, 6}, TransformPoint(m, [3]float32{4, 5, 6}))

	var out [16]float32
	Mul4(out[:], m[:], m[:])
	assert.Equal(t, m, out)
}

func TestFloat32Bytes(t *testing.T) {
	values := []float32{0, 1.5, -2, 1e9}
	b := Float32sToBytes(values)
	assert.Len(t, b, 16)
	assert.Equal(t, []byte{0, 0, 0xc0, 0x3f}, b[4:8])
	assert.Equal(t, values, BytesToFloat32s(append(b, 0xff)))
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "b", Coalesce("", "b", "c"))
	assert.Equal(t, 3, Coalesce(0, 3))
	assert.Equal(t, "", Coalesce[string]())
}
