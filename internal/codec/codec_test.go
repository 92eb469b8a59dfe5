package codec

import (
	"bytes"
	"errors"
	"testing"

	"github.com/yndnr/diskemb-go/internal/core/domain"
)

func roundTrip[V Element](t *testing.T, vals []V) {
	t.Helper()

	c := For[V]()
	buf, err := c.Append(nil, vals)
	if err != nil {
		t.Fatal(err)
	}

	if c.ElemSize() > 0 && len(buf) != len(vals)*c.ElemSize() {
		t.Fatalf("encoded %d bytes, want %d", len(buf), len(vals)*c.ElemSize())
	}

	got, err := c.Decode(buf, len(vals))
	if err != nil {
		t.Fatal(err)
	}

	if len(got) != len(vals) {
		t.Fatalf("decoded %d elements, want %d", len(got), len(vals))
	}
	for i := range vals {
		if got[i] != vals[i] {
			t.Errorf("element %d: got %v, want %v", i, got[i], vals[i])
		}
	}
}

func TestValueCodec_RoundTrip(t *testing.T) {
	t.Run("bool", func(t *testing.T) { roundTrip(t, []bool{true, false, true}) })
	t.Run("int8", func(t *testing.T) { roundTrip(t, []int8{-128, 0, 127}) })
	t.Run("int16", func(t *testing.T) { roundTrip(t, []int16{-32768, 1, 32767}) })
	t.Run("int32", func(t *testing.T) { roundTrip(t, []int32{-1, 0, 1 << 30}) })
	t.Run("int64", func(t *testing.T) { roundTrip(t, []int64{-1, 0, 1 << 62}) })
	t.Run("float16", func(t *testing.T) { roundTrip(t, []Float16{0x0000, 0x3C00, 0xFC00}) })
	t.Run("float32", func(t *testing.T) { roundTrip(t, []float32{-1.5, 0, 3.25}) })
	t.Run("float64", func(t *testing.T) { roundTrip(t, []float64{-1.5, 0, 1e300}) })
	t.Run("string", func(t *testing.T) { roundTrip(t, []string{"hello", "", "world"}) })
}

func TestValueCodec_FixedWidthMismatch(t *testing.T) {
	c := For[float32]()

	// 3 elements is 12 bytes; anything else must fail.
	buf, err := c.Append(nil, []float32{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := c.Decode(buf[:11], 3); !errors.Is(err, domain.ErrCorruptData) {
		t.Errorf("short buffer: got %v, want ErrCorruptData", err)
	}
	if _, err := c.Decode(append(buf, 0), 3); !errors.Is(err, domain.ErrCorruptData) {
		t.Errorf("long buffer: got %v, want ErrCorruptData", err)
	}
	if _, err := c.Decode(buf, 2); !errors.Is(err, domain.ErrCorruptData) {
		t.Errorf("wrong element count: got %v, want ErrCorruptData", err)
	}
}

func TestValueCodec_TextLayout(t *testing.T) {
	c := For[string]()

	buf, err := c.Append(nil, []string{"ab", "c"})
	if err != nil {
		t.Fatal(err)
	}

	want := []byte{2, 0, 0, 0, 'a', 'b', 1, 0, 0, 0, 'c'}
	if !bytes.Equal(buf, want) {
		t.Fatalf("encoded % x, want % x", buf, want)
	}
}

func TestValueCodec_TextMalformed(t *testing.T) {
	c := For[string]()

	tests := []struct {
		name string
		buf  []byte
		n    int
	}{
		{"truncated length prefix", []byte{2, 0}, 1},
		{"truncated segment", []byte{5, 0, 0, 0, 'a'}, 1},
		{"trailing bytes", []byte{1, 0, 0, 0, 'a', 'x'}, 1},
		{"too few segments", []byte{1, 0, 0, 0, 'a'}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.Decode(tt.buf, tt.n); !errors.Is(err, domain.ErrCorruptData) {
				t.Errorf("got %v, want ErrCorruptData", err)
			}
		})
	}
}

func TestKeyCodec_RoundTrip(t *testing.T) {
	t.Run("int32", func(t *testing.T) {
		c := ForKey[int32]()
		if c.Type() != TypeInt32 {
			t.Fatalf("type = %v, want int32", c.Type())
		}
		b := c.Encode(-7)
		if len(b) != 4 {
			t.Fatalf("encoded %d bytes, want 4", len(b))
		}
		got, err := c.Decode(b)
		if err != nil || got != -7 {
			t.Fatalf("decode = %v, %v", got, err)
		}
		if _, err := c.Decode(b[:3]); !errors.Is(err, domain.ErrCorruptData) {
			t.Errorf("short key: got %v, want ErrCorruptData", err)
		}
	})

	t.Run("int64", func(t *testing.T) {
		c := ForKey[int64]()
		b := c.Encode(1 << 40)
		got, err := c.Decode(b)
		if err != nil || got != 1<<40 {
			t.Fatalf("decode = %v, %v", got, err)
		}
	})

	t.Run("string", func(t *testing.T) {
		c := ForKey[string]()
		b := c.Encode("user:42")
		if string(b) != "user:42" {
			t.Fatalf("string keys must be raw bytes, got % x", b)
		}
		got, err := c.Decode(b)
		if err != nil || got != "user:42" {
			t.Fatalf("decode = %v, %v", got, err)
		}
	})
}

func TestElementType_Parse(t *testing.T) {
	for typ, name := range typeNames {
		got, err := ParseElementType(name)
		if err != nil {
			t.Fatal(err)
		}
		if got != typ {
			t.Errorf("ParseElementType(%q) = %v, want %v", name, got, typ)
		}
	}

	if _, err := ParseElementType("complex128"); err == nil {
		t.Error("expected error for unknown type")
	}
}
