// Package codec encodes table keys and value vectors to the raw byte
// representation stored in the KV engine.
//
// Codec selection is a compatibility boundary: bytes written by one codec
// must decode with the same codec forever, so encodings are fixed here and
// never inferred from the data.
//
//   - types.go: element type enumeration and the Float16 bit-pattern type
//   - key.go: key codecs (raw little-endian bit pattern, raw string bytes)
//   - fixed.go: fixed-width value vectors (concatenated elements)
//   - text.go: variable-length text vectors (uint32 length-prefixed segments)
//
// A codec pair is picked exactly once per table; the batched operation
// engine only ever moves opaque byte slices after that.
package codec
