package snapshot

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/yndnr/diskemb-go/internal/core/domain"
)

// Reader streams framed records from a snapshot file.
type Reader struct {
	f *os.File
	r *bufio.Reader
}

// OpenFile opens path and validates the format header.
func OpenFile(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrSnapshotNotFound.WithDetails(path)
		}
		return nil, domain.ErrSnapshotIO.WithDetails("open "+path).WithCause(err)
	}

	r := &Reader{f: f, r: bufio.NewReader(f)}

	var header [headerSize]byte
	if _, err := io.ReadFull(r.r, header[:]); err != nil {
		f.Close()
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, domain.ErrUnexpectedEOF.WithDetails("truncated header")
		}
		return nil, domain.ErrSnapshotIO.WithCause(err)
	}

	magic := binary.LittleEndian.Uint32(header[0:])
	version := binary.LittleEndian.Uint32(header[4:])
	if magic != Magic || version != Version {
		f.Close()
		return nil, domain.ErrUnsupportedFormat.WithDetails(fmt.Sprintf(
			"magic %#08x version %d", magic, version))
	}

	return r, nil
}

// Next returns the next record. It returns io.EOF at a clean record
// boundary; a file truncated inside a record yields ErrUnexpectedEOF.
func (r *Reader) Next() (key, value []byte, err error) {
	klen, err := r.r.ReadByte()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, io.EOF
		}
		return nil, nil, domain.ErrSnapshotIO.WithCause(err)
	}

	key = make([]byte, int(klen))
	if _, err := io.ReadFull(r.r, key); err != nil {
		return nil, nil, r.framingErr("key", err)
	}

	var vlen [4]byte
	if _, err := io.ReadFull(r.r, vlen[:]); err != nil {
		return nil, nil, r.framingErr("value length", err)
	}

	value = make([]byte, binary.LittleEndian.Uint32(vlen[:]))
	if _, err := io.ReadFull(r.r, value); err != nil {
		return nil, nil, r.framingErr("value", err)
	}

	return key, value, nil
}

func (r *Reader) framingErr(field string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return domain.ErrUnexpectedEOF.WithDetails("truncated " + field)
	}
	return domain.ErrSnapshotIO.WithCause(err)
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.f.Close()
}
