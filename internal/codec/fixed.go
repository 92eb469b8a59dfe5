package codec

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/yndnr/diskemb-go/internal/core/domain"
)

// ValueCodec converts one record's value vector to and from its stored byte
// representation. Fixed-width types concatenate raw element bytes; strings
// use uint32 length-prefixed segments (see text.go).
type ValueCodec[V Element] struct {
	typ  ElementType
	size int // bytes per element, 0 for variable-length
	enc  func(dst []byte, vals []V) ([]byte, error)
	dec  func(buf []byte, n int) ([]V, error)
}

// Type returns the value element type.
func (c ValueCodec[V]) Type() ElementType { return c.typ }

// ElemSize returns the encoded width of one element, 0 for variable-length.
func (c ValueCodec[V]) ElemSize() int { return c.size }

// Append encodes vals and appends the bytes to dst.
func (c ValueCodec[V]) Append(dst []byte, vals []V) ([]byte, error) {
	return c.enc(dst, vals)
}

// Decode decodes exactly n elements from buf. The whole buffer must be
// consumed; anything else is corrupt data.
func (c ValueCodec[V]) Decode(buf []byte, n int) ([]V, error) {
	return c.dec(buf, n)
}

// For selects the value codec for V. The selection happens once per table.
func For[V Element]() ValueCodec[V] {
	var zero V
	switch any(zero).(type) {
	case bool:
		return fixed[V, bool](TypeBool, 1,
			func(b []byte, v bool) {
				if v {
					b[0] = 1
				} else {
					b[0] = 0
				}
			},
			func(b []byte) bool { return b[0] != 0 })
	case int8:
		return fixed[V, int8](TypeInt8, 1,
			func(b []byte, v int8) { b[0] = byte(v) },
			func(b []byte) int8 { return int8(b[0]) })
	case int16:
		return fixed[V, int16](TypeInt16, 2,
			func(b []byte, v int16) { binary.LittleEndian.PutUint16(b, uint16(v)) },
			func(b []byte) int16 { return int16(binary.LittleEndian.Uint16(b)) })
	case int32:
		return fixed[V, int32](TypeInt32, 4,
			func(b []byte, v int32) { binary.LittleEndian.PutUint32(b, uint32(v)) },
			func(b []byte) int32 { return int32(binary.LittleEndian.Uint32(b)) })
	case int64:
		return fixed[V, int64](TypeInt64, 8,
			func(b []byte, v int64) { binary.LittleEndian.PutUint64(b, uint64(v)) },
			func(b []byte) int64 { return int64(binary.LittleEndian.Uint64(b)) })
	case Float16:
		return fixed[V, Float16](TypeFloat16, 2,
			func(b []byte, v Float16) { binary.LittleEndian.PutUint16(b, uint16(v)) },
			func(b []byte) Float16 { return Float16(binary.LittleEndian.Uint16(b)) })
	case float32:
		return fixed[V, float32](TypeFloat32, 4,
			func(b []byte, v float32) { binary.LittleEndian.PutUint32(b, math.Float32bits(v)) },
			func(b []byte) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(b)) })
	case float64:
		return fixed[V, float64](TypeFloat64, 8,
			func(b []byte, v float64) { binary.LittleEndian.PutUint64(b, math.Float64bits(v)) },
			func(b []byte) float64 { return math.Float64frombits(binary.LittleEndian.Uint64(b)) })
	default: // string
		return any(textCodec()).(ValueCodec[V])
	}
}

// fixed builds a fixed-width codec for element type E and casts it to
// ValueCodec[V]. V and E are always the same concrete type; the indirection
// only exists so put/get can be written against the concrete type.
func fixed[V Element, E Element](typ ElementType, size int, put func([]byte, E), get func([]byte) E) ValueCodec[V] {
	c := ValueCodec[E]{
		typ:  typ,
		size: size,
		enc: func(dst []byte, vals []E) ([]byte, error) {
			off := len(dst)
			dst = append(dst, make([]byte, len(vals)*size)...)
			for i, v := range vals {
				put(dst[off+i*size:], v)
			}
			return dst, nil
		},
		dec: func(buf []byte, n int) ([]E, error) {
			if len(buf) != n*size {
				return nil, domain.ErrCorruptData.WithDetails(fmt.Sprintf(
					"expected %d bytes for %d %s elements, got %d", n*size, n, typ, len(buf)))
			}
			out := make([]E, n)
			for i := range out {
				out[i] = get(buf[i*size:])
			}
			return out, nil
		},
	}
	return any(c).(ValueCodec[V])
}
