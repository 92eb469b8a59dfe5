package table

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/yndnr/diskemb-go/internal/core/domain"
	"github.com/yndnr/diskemb-go/internal/storage"
	"github.com/yndnr/diskemb-go/internal/storage/snapshot"
	"github.com/yndnr/diskemb-go/internal/telemetry/metric"
)

const (
	// batchThreshold is the key count at which Find/Insert/Remove switch
	// from single-record operations to the store's bulk paths.
	batchThreshold = 2

	// importFlushThreshold is the number of queued records per write batch
	// during snapshot import.
	importFlushThreshold = 128
)

// Config configures a table.
type Config struct {
	// Name identifies the table and its backing namespace.
	Name string

	// ValueDim is the number of elements per value vector. Must be >= 1.
	ValueDim int

	// ReadOnly rejects all mutations on this table, independent of the
	// store's own read-only mode.
	ReadOnly bool

	// CacheSize is the number of encoded records held in the read-through
	// cache. 0 disables the cache.
	CacheSize int

	Logger  *slog.Logger
	Metrics *metric.TableMetrics
}

// Admin is the codec-free handle on a table. It carries every operation
// that works on raw encoded records: lifecycle, snapshots and stats.
// Typed tables embed it.
type Admin struct {
	store   storage.KV
	name    string
	dim     int
	ro      bool
	logger  *slog.Logger
	metrics *metric.TableMetrics

	cache *lru.Cache[string, []byte]

	// mu guards the namespace state transitions (absent <-> present)
	// and the closed flag. Record I/O runs outside the lock.
	mu     sync.Mutex
	ns     *storage.Namespace
	closed bool
}

// NewAdmin creates a codec-free handle on the named table. The backing
// namespace is not created until the first write.
func NewAdmin(store storage.KV, cfg Config) (*Admin, error) {
	if cfg.Name == "" {
		return nil, domain.ErrInvalidArgument.WithDetails("table name is required")
	}
	if cfg.ValueDim < 1 {
		return nil, domain.ErrInvalidArgument.WithDetails("value dimension must be >= 1")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	a := &Admin{
		store:   store,
		name:    cfg.Name,
		dim:     cfg.ValueDim,
		ro:      cfg.ReadOnly || store.ReadOnly(),
		logger:  cfg.Logger.With("table", cfg.Name),
		metrics: cfg.Metrics,
	}

	if cfg.CacheSize > 0 {
		cache, err := lru.New[string, []byte](cfg.CacheSize)
		if err != nil {
			return nil, domain.ErrInvalidArgument.WithDetails("cache size").WithCause(err)
		}
		a.cache = cache
	}

	return a, nil
}

// Name returns the table name.
func (a *Admin) Name() string { return a.name }

// Dim returns the value dimension.
func (a *Admin) Dim() int { return a.dim }

// ReadOnly reports whether mutations are rejected.
func (a *Admin) ReadOnly() bool { return a.ro }

// resolve returns the backing namespace. With forceCreate it creates the
// namespace if absent; otherwise an absent namespace yields (nil, nil).
func (a *Admin) resolve(forceCreate bool) (*storage.Namespace, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil, domain.ErrTableClosed.WithDetails(a.name)
	}
	if a.ns != nil {
		return a.ns, nil
	}

	ns, ok, err := a.store.Namespace(a.name)
	if err != nil {
		return nil, domain.ErrStore.WithCause(err)
	}
	if ok {
		a.ns = ns
		return ns, nil
	}
	if !forceCreate {
		return nil, nil
	}

	ns, err = a.store.CreateNamespace(a.name)
	if err != nil {
		if errors.Is(err, storage.ErrReadOnly) {
			return nil, domain.ErrPermissionDenied.WithDetails(a.name)
		}
		return nil, domain.ErrStore.WithCause(err)
	}
	a.logger.Debug("namespace created")
	a.ns = ns
	return ns, nil
}

// Clear removes every record of the table by dropping the backing
// namespace. Clearing an absent table is a no-op; the next write
// recreates the namespace.
func (a *Admin) Clear(ctx context.Context) error {
	if a.ro {
		return domain.ErrPermissionDenied.WithDetails(a.name)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return domain.ErrTableClosed.WithDetails(a.name)
	}

	ns := a.ns
	if ns == nil {
		var ok bool
		var err error
		ns, ok, err = a.store.Namespace(a.name)
		if err != nil {
			return domain.ErrStore.WithCause(err)
		}
		if !ok {
			return nil
		}
	}

	if err := a.store.DropNamespace(ns); err != nil {
		return domain.ErrStore.WithCause(err)
	}
	a.ns = nil
	if a.cache != nil {
		a.cache.Purge()
	}

	a.metrics.ObserveClear(a.name)
	a.logger.Info("table cleared")
	return nil
}

// Size returns the number of records in the table.
func (a *Admin) Size(ctx context.Context) (uint64, error) {
	ns, err := a.resolve(false)
	if err != nil {
		return 0, err
	}
	if ns == nil {
		return 0, nil
	}
	n, err := a.store.Count(ctx, ns)
	if err != nil {
		return 0, domain.ErrStore.WithCause(err)
	}
	return n, nil
}

// MemoryUsed returns the approximate on-disk footprint of the whole store
// in bytes. Namespaces share one store, so this is an upper bound for any
// single table.
func (a *Admin) MemoryUsed() int64 {
	lsm, vlog := a.store.Size()
	return lsm + vlog
}

// Export writes every record of the table to a snapshot file at path.
// An absent table produces a valid header-only file.
func (a *Admin) Export(ctx context.Context, path string) error {
	ns, err := a.resolve(false)
	if err != nil {
		return err
	}

	w, err := snapshot.Create(path)
	if err != nil {
		return err
	}

	var records, bytes int64
	if ns != nil {
		var werr error
		err = a.store.Scan(ctx, ns, func(key, value []byte) bool {
			if werr = w.WriteRecord(key, value); werr != nil {
				return false
			}
			records++
			bytes += int64(len(key) + len(value))
			return true
		})
		if err == nil {
			err = werr
		}
		if err != nil {
			w.Close()
			if domain.IsDomainError(err, "") {
				return err
			}
			return domain.ErrStore.WithCause(err)
		}
	}

	if err := w.Close(); err != nil {
		return err
	}

	a.metrics.ObserveSnapshot(a.name, "export", bytes)
	a.logger.Info("table exported", "path", path, "records", records)
	return nil
}

// Import replaces the table's contents with the records of the snapshot
// file at path. The table is cleared before the file is opened, so import
// always starts from empty; a missing or malformed file leaves the table
// cleared. Records are committed in batches, and batches committed before
// a framing error stay applied.
func (a *Admin) Import(ctx context.Context, path string) error {
	if a.ro {
		return domain.ErrPermissionDenied.WithDetails(a.name)
	}

	if err := a.Clear(ctx); err != nil {
		return err
	}

	r, err := snapshot.OpenFile(path)
	if err != nil {
		return err
	}
	defer r.Close()

	ns, err := a.resolve(true)
	if err != nil {
		return err
	}

	batch := a.store.Batch()
	defer func() { batch.Cancel() }()

	var records, bytes int64
	for {
		key, value, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		if err := batch.Put(ns, key, value); err != nil {
			return domain.ErrStore.WithCause(err)
		}
		records++
		bytes += int64(len(key) + len(value))

		if batch.Count() >= importFlushThreshold {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := batch.Flush(); err != nil {
				return domain.ErrStore.WithCause(err)
			}
			a.metrics.ObserveBatchCommit(a.name)
			batch = a.store.Batch()
		}
	}

	if batch.Count() > 0 {
		if err := batch.Flush(); err != nil {
			return domain.ErrStore.WithCause(err)
		}
		a.metrics.ObserveBatchCommit(a.name)
	}

	a.metrics.ObserveSnapshot(a.name, "import", bytes)
	a.logger.Info("table imported", "path", path, "records", records)
	return nil
}

// Close marks the table closed. The shared store is left open.
func (a *Admin) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	a.ns = nil
	return nil
}

// cacheGet looks up an encoded record in the read-through cache.
func (a *Admin) cacheGet(rawKey []byte) ([]byte, bool) {
	if a.cache == nil {
		return nil, false
	}
	return a.cache.Get(string(rawKey))
}

// cachePut stores an encoded record in the read-through cache.
func (a *Admin) cachePut(rawKey, enc []byte) {
	if a.cache != nil {
		a.cache.Add(string(rawKey), enc)
	}
}

// cacheDrop evicts a record from the read-through cache.
func (a *Admin) cacheDrop(rawKey []byte) {
	if a.cache != nil {
		a.cache.Remove(string(rawKey))
	}
}
