package stream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrShortPayload is returned when a chunk payload ends before its declared content.
var ErrShortPayload = errors.New("chunk payload truncated")

// encoder appends little-endian fields to a byte slice.
type encoder struct {
	b []byte
}

func (e *encoder) u32(v uint32) { e.b = binary.LittleEndian.AppendUint32(e.b, v) }
func (e *encoder) int(v int)    { e.u32(uint32(int32(v))) }
func (e *encoder) f32(v float32) {
	e.u32(math.Float32bits(v))
}

func (e *encoder) bool(v bool) {
	if v {
		e.u32(1)
		return
	}
	e.u32(0)
}

func (e *encoder) bytes(v []byte) {
	e.int(len(v))
	e.b = append(e.b, v...)
}

func (e *encoder) str(v string) { e.bytes([]byte(v)) }

func (e *encoder) ints(v []int) {
	e.int(len(v))
	for _, x := range v {
		e.int(x)
	}
}

// decoder reads little-endian fields. The first failure sticks; later reads return zero values.
type decoder struct {
	b   []byte
	err error
}

func (d *decoder) u32() uint32 {
	if d.err != nil {
		return 0
	}
	if len(d.b) < 4 {
		d.err = fmt.Errorf("%w: need 4 bytes, have %d", ErrShortPayload, len(d.b))
		return 0
	}
	v := binary.LittleEndian.Uint32(d.b)
	d.b = d.b[4:]
	return v
}

func (d *decoder) int() int     { return int(int32(d.u32())) }
func (d *decoder) f32() float32 { return math.Float32frombits(d.u32()) }
func (d *decoder) bool() bool   { return d.u32() != 0 }
func (d *decoder) str() string  { return string(d.bytes()) }

// count reads a length and checks that at least size bytes per element remain.
func (d *decoder) count(size int) int {
	n := d.int()
	if d.err == nil && (n < 0 || n*size > len(d.b)) {
		d.err = fmt.Errorf("%w: %d elements of %d bytes, have %d", ErrShortPayload, n, size, len(d.b))
		return 0
	}
	return n
}

func (d *decoder) bytes() []byte {
	n := d.count(1)
	if d.err != nil {
		return nil
	}
	v := d.b[:n:n]
	d.b = d.b[n:]
	return v
}

func (d *decoder) ints() []int {
	n := d.count(4)
	if d.err != nil || n == 0 {
		return nil
	}
	v := make([]int, n)
	for i := range v {
		v[i] = d.int()
	}
	return v
}
