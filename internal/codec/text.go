package codec

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/yndnr/diskemb-go/internal/core/domain"
)

// textCodec encodes string vectors as a sequence of (uint32 length, bytes)
// segments, one segment per vector element.
func textCodec() ValueCodec[string] {
	return ValueCodec[string]{
		typ:  TypeString,
		size: 0,
		enc:  appendText,
		dec:  decodeText,
	}
}

func appendText(dst []byte, vals []string) ([]byte, error) {
	var lenBuf [4]byte
	for _, s := range vals {
		if uint64(len(s)) > math.MaxUint32 {
			return nil, domain.ErrValueTooLarge.WithDetails(fmt.Sprintf(
				"text element of %d bytes exceeds uint32 length prefix", len(s)))
		}
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(s)))
		dst = append(dst, lenBuf[:]...)
		dst = append(dst, s...)
	}
	return dst, nil
}

func decodeText(buf []byte, n int) ([]string, error) {
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if len(buf) < 4 {
			return nil, domain.ErrCorruptData.WithDetails(fmt.Sprintf(
				"length prefix of element %d truncated", i))
		}
		l := binary.LittleEndian.Uint32(buf)
		buf = buf[4:]
		if uint64(len(buf)) < uint64(l) {
			return nil, domain.ErrCorruptData.WithDetails(fmt.Sprintf(
				"element %d claims %d bytes, %d remain", i, l, len(buf)))
		}
		out = append(out, string(buf[:l]))
		buf = buf[l:]
	}
	if len(buf) != 0 {
		return nil, domain.ErrCorruptData.WithDetails(fmt.Sprintf(
			"%d trailing bytes after %d elements", len(buf), n))
	}
	return out, nil
}
