package codec

import (
	"fmt"
	"strings"
)

// Float16 is a raw IEEE-754 binary16 bit pattern.
//
// The adapter stores and round-trips the bits untouched; arithmetic on
// half-precision values is the caller's concern.
type Float16 uint16

// ElementType enumerates the supported key and value element types.
type ElementType uint8

const (
	TypeInvalid ElementType = iota
	TypeBool
	TypeInt8
	TypeInt16
	TypeInt32
	TypeInt64
	TypeFloat16
	TypeFloat32
	TypeFloat64
	TypeString
)

// Key constrains the supported key element types.
type Key interface {
	int32 | int64 | string
}

// Element constrains the supported value element types.
type Element interface {
	bool | int8 | int16 | int32 | int64 | Float16 | float32 | float64 | string
}

var typeNames = map[ElementType]string{
	TypeBool:    "bool",
	TypeInt8:    "int8",
	TypeInt16:   "int16",
	TypeInt32:   "int32",
	TypeInt64:   "int64",
	TypeFloat16: "float16",
	TypeFloat32: "float32",
	TypeFloat64: "float64",
	TypeString:  "string",
}

// String returns the canonical lowercase name of the type.
func (t ElementType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("invalid(%d)", uint8(t))
}

// Size returns the encoded byte width of one element, or 0 for
// variable-length types.
func (t ElementType) Size() int {
	switch t {
	case TypeBool, TypeInt8:
		return 1
	case TypeInt16, TypeFloat16:
		return 2
	case TypeInt32, TypeFloat32:
		return 4
	case TypeInt64, TypeFloat64:
		return 8
	default:
		return 0
	}
}

// Fixed reports whether the type has a constant encoded width.
func (t ElementType) Fixed() bool {
	return t.Size() > 0
}

// ParseElementType resolves a canonical type name, as used in configuration
// and CLI flags.
func ParseElementType(s string) (ElementType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for t, name := range typeNames {
		if name == s {
			return t, nil
		}
	}
	return TypeInvalid, fmt.Errorf("codec: unknown element type %q", s)
}
