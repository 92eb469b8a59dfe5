package snapshot

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/yndnr/diskemb-go/internal/core/domain"
)

// Writer streams framed records to a snapshot file.
type Writer struct {
	f *os.File
	w *bufio.Writer
}

// Create opens path for writing, truncating any existing file, and writes
// the format header.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, domain.ErrSnapshotIO.WithDetails("open "+path).WithCause(err)
	}

	w := &Writer{f: f, w: bufio.NewWriter(f)}

	var header [headerSize]byte
	binary.LittleEndian.PutUint32(header[0:], Magic)
	binary.LittleEndian.PutUint32(header[4:], Version)
	if _, err := w.w.Write(header[:]); err != nil {
		f.Close()
		return nil, domain.ErrSnapshotIO.WithDetails("write header").WithCause(err)
	}

	return w, nil
}

// WriteRecord appends one framed record.
//
// The adapter never produces keys over 255 bytes or values over the uint32
// range, so exceeding either limit here means the store itself holds
// records this format cannot carry.
func (w *Writer) WriteRecord(key, value []byte) error {
	if len(key) > maxKeyLen {
		return domain.ErrValueTooLarge.WithDetails(fmt.Sprintf(
			"key of %d bytes exceeds the uint8 length prefix; has the store been tampered with?", len(key)))
	}
	if uint64(len(value)) > math.MaxUint32 {
		return domain.ErrValueTooLarge.WithDetails(fmt.Sprintf(
			"value of %d bytes exceeds the uint32 length prefix; has the store been tampered with?", len(value)))
	}

	if err := w.w.WriteByte(byte(len(key))); err != nil {
		return domain.ErrSnapshotIO.WithCause(err)
	}
	if _, err := w.w.Write(key); err != nil {
		return domain.ErrSnapshotIO.WithCause(err)
	}
	var vlen [4]byte
	binary.LittleEndian.PutUint32(vlen[:], uint32(len(value)))
	if _, err := w.w.Write(vlen[:]); err != nil {
		return domain.ErrSnapshotIO.WithCause(err)
	}
	if _, err := w.w.Write(value); err != nil {
		return domain.ErrSnapshotIO.WithCause(err)
	}
	return nil
}

// Close flushes buffered records and syncs the file to disk.
func (w *Writer) Close() error {
	if err := w.w.Flush(); err != nil {
		w.f.Close()
		return domain.ErrSnapshotIO.WithDetails("flush").WithCause(err)
	}
	if err := w.f.Sync(); err != nil {
		w.f.Close()
		return domain.ErrSnapshotIO.WithDetails("sync").WithCause(err)
	}
	if err := w.f.Close(); err != nil {
		return domain.ErrSnapshotIO.WithDetails("close").WithCause(err)
	}
	return nil
}
