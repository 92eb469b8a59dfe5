// Package storage provides the Badger-backed KV store implementation.
package storage

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dgraph-io/badger/v3"
)

// Internal key layout. Registry keys map namespace names to fixed 8-byte
// IDs; record keys are the data tag, the namespace ID, then the raw key, so
// per-namespace iteration is a single prefix scan in raw-key order.
var (
	nsRegistryPrefix = []byte("!ns!")
	nsSeqKey         = []byte("!seq!ns")
)

const dataTag = 'd'

// Namespace is a handle to an isolated key space within one store.
//
// Handles are plain values: dropping a namespace invalidates its records,
// not the handle itself, so holders must coordinate via the table layer.
type Namespace struct {
	name string
	id   uint64
}

// Name returns the human-readable namespace name.
func (n *Namespace) Name() string { return n.name }

// prefix returns the record-key prefix for this namespace.
func (n *Namespace) prefix() []byte {
	p := make([]byte, 9)
	p[0] = dataTag
	binary.BigEndian.PutUint64(p[1:], n.id)
	return p
}

// recordKey returns the full store key for a raw table key.
func (n *Namespace) recordKey(raw []byte) []byte {
	return append(n.prefix(), raw...)
}

// Store implements KV using Badger.
type Store struct {
	db     *badger.DB
	cfg    Config
	logger *slog.Logger

	// mu serializes namespace registry mutations and Close.
	mu     sync.Mutex
	closed bool
}

var _ KV = (*Store)(nil)

// Open opens (or creates) a Badger-backed store.
//
// In read-only mode the directory must already contain a store; Badger
// refuses to initialize a fresh directory without write capability.
func Open(cfg Config, logger *slog.Logger) (*Store, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("storage: dir is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts := badger.DefaultOptions(cfg.Dir)
	opts.ReadOnly = cfg.ReadOnly
	opts.SyncWrites = cfg.SyncWrites
	opts.Logger = &badgerLogger{logger: logger}
	if cfg.CacheSize > 0 {
		opts.BlockCacheSize = cfg.CacheSize
	}
	if cfg.ValueLogFileSize > 0 {
		opts.ValueLogFileSize = cfg.ValueLogFileSize
	}
	if cfg.NumMemtables > 0 {
		opts.NumMemtables = cfg.NumMemtables
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("storage: open db: %w", err)
	}

	store := &Store{
		db:     db,
		cfg:    cfg,
		logger: logger,
	}

	logger.Info("store opened",
		"dir", cfg.Dir,
		"read_only", cfg.ReadOnly,
		"cache_size", cfg.CacheSize)

	return store, nil
}

// ReadOnly reports whether the store was opened read-only.
func (s *Store) ReadOnly() bool { return s.cfg.ReadOnly }

// Namespace looks up an existing namespace by name.
func (s *Store) Namespace(name string) (*Namespace, bool, error) {
	var id uint64
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(registryKey(name))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) != 8 {
				return fmt.Errorf("storage: malformed namespace entry for %q", name)
			}
			id = binary.BigEndian.Uint64(val)
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &Namespace{name: name, id: id}, true, nil
}

// ListNamespaces returns the names of all existing namespaces.
func (s *Store) ListNamespaces() ([]string, error) {
	var names []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = nsRegistryPrefix
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := it.Item().Key()
			names = append(names, string(key[len(nsRegistryPrefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// CreateNamespace creates a namespace, or returns the existing one.
func (s *Store) CreateNamespace(name string) (*Namespace, error) {
	if s.cfg.ReadOnly {
		return nil, ErrReadOnly
	}
	if name == "" {
		return nil, fmt.Errorf("storage: namespace name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	var id uint64
	err := s.db.Update(func(txn *badger.Txn) error {
		// Idempotent: hand back the existing entry.
		if item, err := txn.Get(registryKey(name)); err == nil {
			return item.Value(func(val []byte) error {
				id = binary.BigEndian.Uint64(val)
				return nil
			})
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		next := uint64(1)
		if item, err := txn.Get(nsSeqKey); err == nil {
			if err := item.Value(func(val []byte) error {
				next = binary.BigEndian.Uint64(val) + 1
				return nil
			}); err != nil {
				return err
			}
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		seq := make([]byte, 8)
		binary.BigEndian.PutUint64(seq, next)
		if err := txn.Set(nsSeqKey, seq); err != nil {
			return err
		}
		if err := txn.Set(registryKey(name), seq); err != nil {
			return err
		}
		id = next
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: create namespace %q: %w", name, err)
	}

	s.logger.Info("namespace created", "name", name, "id", id)
	return &Namespace{name: name, id: id}, nil
}

// DropNamespace destroys a namespace and all records in it.
func (s *Store) DropNamespace(ns *Namespace) error {
	if s.cfg.ReadOnly {
		return ErrReadOnly
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	if err := s.db.DropPrefix(ns.prefix()); err != nil {
		return fmt.Errorf("storage: drop namespace %q: %w", ns.name, err)
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(registryKey(ns.name))
	})
	if err != nil {
		return fmt.Errorf("storage: drop namespace %q: %w", ns.name, err)
	}

	s.logger.Info("namespace dropped", "name", ns.name)
	return nil
}

// Get retrieves a record by key. A present record with an empty value
// is returned as a non-nil empty slice, so callers can tell it apart
// from a miss.
func (s *Store) Get(ctx context.Context, ns *Namespace, key []byte) ([]byte, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(ns.recordKey(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrKeyNotFound
			}
			return err
		}
		value, err = item.ValueCopy(make([]byte, 0, item.ValueSize()))
		return err
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// MultiGet retrieves many records from one consistent store view.
//
// This is the store's native bulk read: every key is resolved against the
// same snapshot inside a single read transaction. Absent keys yield a nil
// slot; a present record with an empty value yields a non-nil empty slice.
func (s *Store) MultiGet(ctx context.Context, ns *Namespace, keys [][]byte) ([][]byte, error) {
	values := make([][]byte, len(keys))
	err := s.db.View(func(txn *badger.Txn) error {
		for i, key := range keys {
			item, err := txn.Get(ns.recordKey(key))
			if err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					continue
				}
				return err
			}
			values[i], err = item.ValueCopy(make([]byte, 0, item.ValueSize()))
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return values, nil
}

// Set stores a single record.
func (s *Store) Set(ctx context.Context, ns *Namespace, key, value []byte) error {
	if s.cfg.ReadOnly {
		return ErrReadOnly
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(ns.recordKey(key), value)
	})
}

// Delete removes a single record.
func (s *Store) Delete(ctx context.Context, ns *Namespace, key []byte) error {
	if s.cfg.ReadOnly {
		return ErrReadOnly
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(ns.recordKey(key))
	})
}

// writeBatch implements Batch over Badger's write batch.
type writeBatch struct {
	wb    *badger.WriteBatch
	count int
}

// Batch starts a write batch.
func (s *Store) Batch() Batch {
	return &writeBatch{wb: s.db.NewWriteBatch()}
}

func (b *writeBatch) Put(ns *Namespace, key, value []byte) error {
	if err := b.wb.Set(ns.recordKey(key), value); err != nil {
		return err
	}
	b.count++
	return nil
}

func (b *writeBatch) Delete(ns *Namespace, key []byte) error {
	if err := b.wb.Delete(ns.recordKey(key)); err != nil {
		return err
	}
	b.count++
	return nil
}

func (b *writeBatch) Count() int { return b.count }

func (b *writeBatch) Flush() error { return b.wb.Flush() }

func (b *writeBatch) Cancel() { b.wb.Cancel() }

// Scan iterates all records of a namespace in ascending raw-key order.
func (s *Store) Scan(ctx context.Context, ns *Namespace, fn func(key, value []byte) bool) error {
	prefix := ns.prefix()
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := item.KeyCopy(nil)
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if !fn(key[len(prefix):], value) {
				break
			}
		}
		return nil
	})
}

// Count returns the number of records in a namespace.
func (s *Store) Count(ctx context.Context, ns *Namespace) (uint64, error) {
	var n uint64
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = ns.prefix()
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// Size returns the on-disk size (LSM tree, value log) in bytes.
func (s *Store) Size() (lsm, vlog int64) {
	return s.db.Size()
}

// Close gracefully shuts down the store.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	s.logger.Info("shutting down store")
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("storage: close db: %w", err)
	}
	return nil
}

func registryKey(name string) []byte {
	return append(append([]byte{}, nsRegistryPrefix...), name...)
}

// badgerLogger adapts slog.Logger to Badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
