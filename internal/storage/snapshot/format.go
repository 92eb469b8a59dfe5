package snapshot

// Magic identifies snapshot files: the bytes 'T','F','K','V' packed
// little-endian into a uint32.
const Magic uint32 = uint32('T') | uint32('F')<<8 | uint32('K')<<16 | uint32('V')<<24

// Version is the current format version.
const Version uint32 = 1

const (
	headerSize = 8
	maxKeyLen  = 255 // uint8 length prefix
)
