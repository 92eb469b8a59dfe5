package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	filePrefix    = "snapshot-"
	fileExtension = ".snap"

	DefaultRetentionCount = 5
	DefaultRetentionDays  = 7
)

// ErrNoSnapshots is returned by Latest when the directory holds none.
var ErrNoSnapshots = errors.New("snapshot: no snapshots available")

// Config configures the snapshot manager.
type Config struct {
	Dir string

	RetentionCount int
	RetentionDays  int
}

func DefaultConfig(dir string) Config {
	return Config{
		Dir:            dir,
		RetentionCount: DefaultRetentionCount,
		RetentionDays:  DefaultRetentionDays,
	}
}

// Manager names, lists and prunes snapshot files in a directory.
// The files themselves are written and read through Writer and Reader.
type Manager struct {
	cfg    Config
	logger *slog.Logger
}

func NewManager(cfg Config, logger *slog.Logger) (*Manager, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("snapshot: dir is required")
	}
	if err := os.MkdirAll(cfg.Dir, 0750); err != nil {
		return nil, fmt.Errorf("snapshot: create dir: %w", err)
	}
	if cfg.RetentionCount == 0 {
		cfg.RetentionCount = DefaultRetentionCount
	}
	if cfg.RetentionDays == 0 {
		cfg.RetentionDays = DefaultRetentionDays
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{cfg: cfg, logger: logger}, nil
}

// Info contains metadata about a snapshot file.
type Info struct {
	ID        string `json:"id"`
	Path      string `json:"path"`
	Size      int64  `json:"size"`
	CreatedAt int64  `json:"created_at"`
}

// Create allocates a new snapshot file and hands its path to exportFn,
// which is expected to write the complete file. The file is written to
// a temp path first and renamed only if exportFn succeeds.
func (m *Manager) Create(ctx context.Context, exportFn func(ctx context.Context, path string) error) (*Info, error) {
	id := ulid.Make()
	name := filePrefix + strings.ToLower(id.String())

	tempPath := filepath.Join(m.cfg.Dir, name+".tmp")
	if err := exportFn(ctx, tempPath); err != nil {
		os.Remove(tempPath)
		return nil, err
	}

	finalPath := filepath.Join(m.cfg.Dir, name+fileExtension)
	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return nil, fmt.Errorf("snapshot: rename: %w", err)
	}

	stat, err := os.Stat(finalPath)
	if err != nil {
		return nil, err
	}

	info := &Info{
		ID:        name,
		Path:      finalPath,
		Size:      stat.Size(),
		CreatedAt: int64(id.Time()),
	}
	m.logger.Info("snapshot created",
		"id", info.ID, "size", info.Size, "path", info.Path)
	return info, nil
}

// List lists snapshot files, oldest first.
func (m *Manager) List() ([]*Info, error) {
	entries, err := os.ReadDir(m.cfg.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, filePrefix) && strings.HasSuffix(name, fileExtension) {
			paths = append(paths, filepath.Join(m.cfg.Dir, name))
		}
	}
	sort.Strings(paths)

	var infos []*Info
	for _, p := range paths {
		stat, err := os.Stat(p)
		if err != nil {
			continue
		}
		id := strings.TrimSuffix(filepath.Base(p), fileExtension)
		infos = append(infos, &Info{
			ID:        id,
			Path:      p,
			Size:      stat.Size(),
			CreatedAt: creationTime(id),
		})
	}
	return infos, nil
}

// Latest returns the most recent snapshot, or ErrNoSnapshots.
func (m *Manager) Latest() (*Info, error) {
	infos, err := m.List()
	if err != nil {
		return nil, err
	}
	if len(infos) == 0 {
		return nil, ErrNoSnapshots
	}
	return infos[len(infos)-1], nil
}

// Prune applies the retention policy and deletes old snapshots.
func (m *Manager) Prune() error {
	infos, err := m.List()
	if err != nil {
		return err
	}
	if len(infos) <= 1 {
		return nil
	}

	keep := make(map[string]struct{}, len(infos))

	// Keep last RetentionCount.
	if m.cfg.RetentionCount > 0 {
		start := len(infos) - m.cfg.RetentionCount
		if start < 0 {
			start = 0
		}
		for _, info := range infos[start:] {
			keep[info.Path] = struct{}{}
		}
	}

	// Keep those within RetentionDays based on mtime.
	if m.cfg.RetentionDays > 0 {
		cutoff := time.Now().Add(-time.Duration(m.cfg.RetentionDays) * 24 * time.Hour)
		for _, info := range infos {
			st, err := os.Stat(info.Path)
			if err != nil {
				continue
			}
			if st.ModTime().After(cutoff) {
				keep[info.Path] = struct{}{}
			}
		}
	}

	// Always keep at least the newest.
	keep[infos[len(infos)-1].Path] = struct{}{}

	for _, info := range infos {
		if _, ok := keep[info.Path]; ok {
			continue
		}
		if err := os.Remove(info.Path); err == nil {
			m.logger.Info("snapshot pruned", "id", info.ID)
		}
	}
	return nil
}

func creationTime(id string) int64 {
	raw := strings.TrimPrefix(id, filePrefix)
	parsed, err := ulid.ParseStrict(strings.ToUpper(raw))
	if err != nil {
		return 0
	}
	return int64(parsed.Time())
}
