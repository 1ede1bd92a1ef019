package common

import (
	"encoding/binary"
	"math"
)

// Identity resets a 4x4 matrix (flat slice) to the identity matrix.
// The matrix is stored in column-major order.
//
// Parameters:
//   - m: destination slice (must be at least 16 elements)
func Identity(m []float32) {
	for i := range m {
		m[i] = 0
	}
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
}

// IdentityMatrix returns a 4x4 identity matrix by value.
//
// Returns:
//   - [16]float32: the identity matrix in column-major order
func IdentityMatrix() [16]float32 {
	var m [16]float32
	Identity(m[:])
	return m
}

// BytesToFloat32s decodes little-endian float32 values from a byte slice.
// Trailing bytes that do not form a whole float are ignored.
//
// Parameters:
//   - data: the little-endian encoded source bytes
//
// Returns:
//   - []float32: the decoded values
func BytesToFloat32s(data []byte) []float32 {
	out := make([]float32, len(data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return out
}

// Float32sToBytes encodes float32 values as little-endian bytes.
//
// Parameters:
//   - values: the values to encode
//
// Returns:
//   - []byte: a newly allocated buffer of len(values)*4 bytes
func Float32sToBytes(values []float32) []byte {
	out := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

// Mul4 multiplies two 4x4 matrices and stores the result in out.
// All matrices are stored in column-major order (OpenGL/WebGPU convention).
// Result: out = a * b
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - a: left-hand matrix (16 elements)
//   - b: right-hand matrix (16 elements)
func Mul4(out, a, b []float32) {
	var buf [16]float32
	for i := 0; i < 4; i++ { // column of B
		for j := 0; j < 4; j++ { // row of A
			sum := float32(0)
			for k := 0; k < 4; k++ {
				sum += a[k*4+j] * b[i*4+k]
			}
			buf[i*4+j] = sum
		}
	}
	copy(out, buf[:])
}

// ComposeTRS builds a column-major 4x4 matrix from a translation, a rotation
// quaternion (x, y, z, w) and a scale, in the glTF order T * R * S.
//
// Parameters:
//   - t: the translation
//   - r: the rotation quaternion, expected to be normalized
//   - s: the per-axis scale
//
// Returns:
//   - [16]float32: the composed matrix
func ComposeTRS(t [3]float32, r [4]float32, s [3]float32) [16]float32 {
	x, y, z, w := r[0], r[1], r[2], r[3]
	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z

	return [16]float32{
		(1 - 2*(yy+zz)) * s[0], 2 * (xy + wz) * s[0], 2 * (xz - wy) * s[0], 0,
		2 * (xy - wz) * s[1], (1 - 2*(xx+zz)) * s[1], 2 * (yz + wx) * s[1], 0,
		2 * (xz + wy) * s[2], 2 * (yz - wx) * s[2], (1 - 2*(xx+yy)) * s[2], 0,
		t[0], t[1], t[2], 1,
	}
}

// TransformPoint applies a column-major 4x4 matrix to a point (w = 1).
//
// Parameters:
//   - m: the matrix
//   - p: the point
//
// Returns:
//   - [3]float32: the transformed point
func TransformPoint(m [16]float32, p [3]float32) [3]float32 {
	return [3]float32{
		m[0]*p[0] + m[4]*p[1] + m[8]*p[2] + m[12],
		m[1]*p[0] + m[5]*p[1] + m[9]*p[2] + m[13],
		m[2]*p[0] + m[6]*p[1] + m[10]*p[2] + m[14],
	}
}
