package snapshot

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/yndnr/diskemb-go/internal/core/domain"
)

func writeSnapshot(t *testing.T, path string, records map[string]string) {
	t.Helper()

	w, err := Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for k, v := range records {
		if err := w.WriteRecord([]byte(k), []byte(v)); err != nil {
			t.Fatalf("WriteRecord(%q): %v", k, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func readAll(t *testing.T, path string) map[string]string {
	t.Helper()

	r, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer r.Close()

	out := make(map[string]string)
	for {
		k, v, err := r.Next()
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		out[string(k)] = string(v)
	}
}

func TestWriterReader_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rt.snap")

	records := map[string]string{
		"alpha": "one",
		"bravo": "two",
		"":      "empty key is legal",
		"zero":  "",
	}
	writeSnapshot(t, path, records)

	got := readAll(t, path)
	if len(got) != len(records) {
		t.Fatalf("record count = %d, want %d", len(got), len(records))
	}
	for k, v := range records {
		if got[k] != v {
			t.Errorf("record %q = %q, want %q", k, got[k], v)
		}
	}
}

func TestWriter_HeaderBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hdr.snap")
	writeSnapshot(t, path, nil)

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(raw) != headerSize {
		t.Fatalf("empty snapshot size = %d, want %d", len(raw), headerSize)
	}
	if !bytes.Equal(raw[:4], []byte("TFKV")) {
		t.Errorf("magic bytes = %q, want %q", raw[:4], "TFKV")
	}
	if v := binary.LittleEndian.Uint32(raw[4:]); v != Version {
		t.Errorf("version = %d, want %d", v, Version)
	}
}

func TestWriter_KeyTooLong(t *testing.T) {
	path := filepath.Join(t.TempDir(), "long.snap")

	w, err := Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer w.Close()

	if err := w.WriteRecord(make([]byte, maxKeyLen+1), []byte("v")); !errors.Is(err, domain.ErrValueTooLarge) {
		t.Errorf("WriteRecord oversized key error = %v, want ErrValueTooLarge", err)
	}
	if err := w.WriteRecord(make([]byte, maxKeyLen), []byte("v")); err != nil {
		t.Errorf("WriteRecord max-length key: %v", err)
	}
}

func TestReader_MissingFile(t *testing.T) {
	_, err := OpenFile(filepath.Join(t.TempDir(), "absent.snap"))
	if !errors.Is(err, domain.ErrSnapshotNotFound) {
		t.Errorf("OpenFile missing file error = %v, want ErrSnapshotNotFound", err)
	}
}

func TestReader_BadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.snap")
	if err := os.WriteFile(path, []byte("NOPE\x01\x00\x00\x00"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := OpenFile(path)
	if !errors.Is(err, domain.ErrUnsupportedFormat) {
		t.Errorf("OpenFile bad magic error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestReader_BadVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "badver.snap")
	hdr := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(hdr[0:], Magic)
	binary.LittleEndian.PutUint32(hdr[4:], Version+1)
	if err := os.WriteFile(path, hdr, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := OpenFile(path)
	if !errors.Is(err, domain.ErrUnsupportedFormat) {
		t.Errorf("OpenFile bad version error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestReader_TruncatedHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.snap")
	if err := os.WriteFile(path, []byte("TFK"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := OpenFile(path)
	if !errors.Is(err, domain.ErrUnexpectedEOF) {
		t.Errorf("OpenFile truncated header error = %v, want ErrUnexpectedEOF", err)
	}
}

func TestReader_TruncatedRecord(t *testing.T) {
	dir := t.TempDir()
	full := filepath.Join(dir, "full.snap")
	writeSnapshot(t, full, map[string]string{"key": "value"})

	raw, err := os.ReadFile(full)
	if err != nil {
		t.Fatal(err)
	}

	// Cut anywhere inside the record: every prefix past the header that
	// stops short of the record end must surface as an unexpected EOF.
	for cut := headerSize + 1; cut < len(raw); cut++ {
		path := filepath.Join(dir, fmt.Sprintf("cut-%d.snap", cut))
		if err := os.WriteFile(path, raw[:cut], 0o644); err != nil {
			t.Fatal(err)
		}

		r, err := OpenFile(path)
		if err != nil {
			t.Fatalf("OpenFile cut=%d: %v", cut, err)
		}
		_, _, err = r.Next()
		r.Close()
		if !errors.Is(err, domain.ErrUnexpectedEOF) {
			t.Errorf("cut=%d: Next error = %v, want ErrUnexpectedEOF", cut, err)
		}
	}
}

func TestReader_CleanEOFAtRecordBoundary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clean.snap")
	writeSnapshot(t, path, map[string]string{"key": "value"})

	r, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if _, _, err := r.Next(); err != nil {
		t.Fatalf("first Next: %v", err)
	}
	if _, _, err := r.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("Next at record boundary = %v, want io.EOF", err)
	}
}

func TestManager_CreateListLatest(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(DefaultConfig(dir), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	if _, err := m.Latest(); !errors.Is(err, ErrNoSnapshots) {
		t.Errorf("Latest on empty dir = %v, want ErrNoSnapshots", err)
	}

	var ids []string
	for i := 0; i < 3; i++ {
		info, err := m.Create(context.Background(), func(_ context.Context, path string) error {
			w, err := Create(path)
			if err != nil {
				return err
			}
			if err := w.WriteRecord([]byte{byte(i)}, []byte("v")); err != nil {
				return err
			}
			return w.Close()
		})
		if err != nil {
			t.Fatalf("Create #%d: %v", i, err)
		}
		ids = append(ids, info.ID)
	}

	infos, err := m.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(infos) != 3 {
		t.Fatalf("List returned %d snapshots, want 3", len(infos))
	}
	for i, info := range infos {
		if info.ID != ids[i] {
			t.Errorf("List[%d].ID = %q, want %q", i, info.ID, ids[i])
		}
		if info.Size <= int64(headerSize) {
			t.Errorf("List[%d].Size = %d, want > header", i, info.Size)
		}
	}

	latest, err := m.Latest()
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest.ID != ids[2] {
		t.Errorf("Latest.ID = %q, want %q", latest.ID, ids[2])
	}
}

func TestManager_CreateFailureLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(DefaultConfig(dir), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatal(err)
	}

	wantErr := errors.New("export failed")
	if _, err := m.Create(context.Background(), func(context.Context, string) error {
		return wantErr
	}); !errors.Is(err, wantErr) {
		t.Fatalf("Create error = %v, want %v", err, wantErr)
	}

	infos, err := m.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 0 {
		t.Errorf("List after failed create = %d entries, want 0", len(infos))
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("dir holds %d files after failed create, want 0", len(entries))
	}
}

func TestManager_Prune(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{Dir: dir, RetentionCount: 2, RetentionDays: -1}
	m, err := NewManager(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 5; i++ {
		if _, err := m.Create(context.Background(), func(_ context.Context, path string) error {
			w, err := Create(path)
			if err != nil {
				return err
			}
			return w.Close()
		}); err != nil {
			t.Fatal(err)
		}
	}

	if err := m.Prune(); err != nil {
		t.Fatalf("Prune: %v", err)
	}
	infos, err := m.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 2 {
		t.Errorf("List after prune = %d snapshots, want 2", len(infos))
	}
}
