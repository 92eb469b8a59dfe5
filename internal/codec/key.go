package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/yndnr/diskemb-go/internal/core/domain"
)

// KeyCodec converts keys of one table to their stored byte representation.
//
// Numeric keys are encoded as their raw little-endian bit pattern; string
// keys are stored as their raw bytes.
type KeyCodec[K Key] struct {
	typ    ElementType
	encode func(K) []byte
	decode func([]byte) (K, error)
}

// Type returns the key element type.
func (c KeyCodec[K]) Type() ElementType { return c.typ }

// Encode returns the stored byte representation of k.
func (c KeyCodec[K]) Encode(k K) []byte { return c.encode(k) }

// Decode reconstructs a key from its stored byte representation.
func (c KeyCodec[K]) Decode(b []byte) (K, error) { return c.decode(b) }

// ForKey selects the key codec for K. The selection happens once per table.
func ForKey[K Key]() KeyCodec[K] {
	var zero K
	switch any(zero).(type) {
	case int32:
		return KeyCodec[K]{
			typ: TypeInt32,
			encode: func(k K) []byte {
				b := make([]byte, 4)
				binary.LittleEndian.PutUint32(b, uint32(any(k).(int32)))
				return b
			},
			decode: func(b []byte) (K, error) {
				var zero K
				if len(b) != 4 {
					return zero, keySizeError(TypeInt32, 4, len(b))
				}
				return any(int32(binary.LittleEndian.Uint32(b))).(K), nil
			},
		}
	case int64:
		return KeyCodec[K]{
			typ: TypeInt64,
			encode: func(k K) []byte {
				b := make([]byte, 8)
				binary.LittleEndian.PutUint64(b, uint64(any(k).(int64)))
				return b
			},
			decode: func(b []byte) (K, error) {
				var zero K
				if len(b) != 8 {
					return zero, keySizeError(TypeInt64, 8, len(b))
				}
				return any(int64(binary.LittleEndian.Uint64(b))).(K), nil
			},
		}
	default: // string
		return KeyCodec[K]{
			typ: TypeString,
			encode: func(k K) []byte {
				return []byte(any(k).(string))
			},
			decode: func(b []byte) (K, error) {
				return any(string(b)).(K), nil
			},
		}
	}
}

func keySizeError(t ElementType, want, got int) error {
	return domain.ErrCorruptData.WithDetails(
		fmt.Sprintf("expected %d bytes for %s key, got %d", want, t, got))
}
