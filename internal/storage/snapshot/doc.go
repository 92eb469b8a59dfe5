// Package snapshot implements the binary snapshot file format and the
// managed snapshot directory.
//
//   - format.go: on-disk framing constants
//   - writer.go: streaming record writer
//   - reader.go: streaming record reader with strict framing checks
//   - manager.go: named snapshot files with retention and pruning
//
// The file format is a compatibility surface shared with other consumers
// of the dump files; its byte layout is fixed:
//
//	Header:  uint32 magic "TFKV" | uint32 version = 1   (little-endian)
//	Record*: uint8 keyLen | key | uint32 valueLen | value
//
// Records continue until end-of-file; there is no trailing marker.
package snapshot
