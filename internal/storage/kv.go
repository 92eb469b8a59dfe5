// Package storage provides the disk-backed KV engine for DiskEmb.
//
// This file defines the KV interface consumed by the table adapter.
package storage

import (
	"context"
	"errors"
)

// Common errors
var (
	ErrKeyNotFound = errors.New("storage: key not found")
	ErrClosed      = errors.New("storage: store closed")
	ErrReadOnly    = errors.New("storage: store is read-only")
)

// KV defines the record-level interface for the embedded KV store.
//
// Implementation requirements:
//   - Thread-safe: concurrent record reads/writes must be safe
//   - Durable: data must survive process restarts
//   - Ordered: Scan must visit keys in ascending raw-byte order
type KV interface {
	// ReadOnly reports whether the store was opened read-only.
	ReadOnly() bool

	// Namespace looks up an existing namespace by name.
	// The second result is false if the namespace does not exist.
	Namespace(name string) (*Namespace, bool, error)

	// ListNamespaces returns the names of all existing namespaces.
	ListNamespaces() ([]string, error)

	// CreateNamespace creates a namespace, or returns the existing one.
	// Fails with ErrReadOnly on a read-only store.
	CreateNamespace(name string) (*Namespace, error)

	// DropNamespace destroys a namespace and all records in it.
	DropNamespace(ns *Namespace) error

	// Get retrieves a record by key.
	// Returns ErrKeyNotFound if the key doesn't exist.
	Get(ctx context.Context, ns *Namespace, key []byte) ([]byte, error)

	// MultiGet retrieves many records from one consistent store view.
	// Missing keys yield nil entries rather than an error.
	MultiGet(ctx context.Context, ns *Namespace, keys [][]byte) ([][]byte, error)

	// Set stores a single record.
	Set(ctx context.Context, ns *Namespace, key, value []byte) error

	// Delete removes a single record. Deleting an absent key is not an error.
	Delete(ctx context.Context, ns *Namespace, key []byte) error

	// Batch starts a write batch. Mutations queue up until Flush commits
	// them as one unit, subject to the engine's write-batch guarantee.
	Batch() Batch

	// Scan iterates all records of a namespace in ascending key order.
	// Callback returns false to stop iteration.
	Scan(ctx context.Context, ns *Namespace, fn func(key, value []byte) bool) error

	// Count returns the number of records in a namespace.
	Count(ctx context.Context, ns *Namespace) (uint64, error)

	// Size returns the on-disk size (LSM tree, value log) in bytes.
	Size() (lsm, vlog int64)

	// Close gracefully shuts down the store.
	Close() error
}

// Batch queues namespace-scoped mutations for a single commit.
type Batch interface {
	Put(ns *Namespace, key, value []byte) error
	Delete(ns *Namespace, key []byte) error

	// Count returns the number of queued mutations.
	Count() int

	// Flush commits all queued mutations.
	Flush() error

	// Cancel discards all queued mutations.
	Cancel()
}

// Config configures the embedded KV store.
type Config struct {
	// Dir is the storage directory.
	Dir string

	// ReadOnly opens the store without write capability. Namespace
	// creation and all mutations fail while set.
	ReadOnly bool

	// SyncWrites enables fsync after each write.
	// Default: false
	SyncWrites bool

	// CacheSize is the block cache size in bytes.
	// Default: 64MB
	CacheSize int64

	// ValueLogFileSize is the max value log file size in bytes.
	// Default: 1GB
	ValueLogFileSize int64

	// NumMemtables is the number of memtables.
	// Default: 2
	NumMemtables int
}

// DefaultConfig returns the default store configuration.
func DefaultConfig(dir string) Config {
	return Config{
		Dir:              dir,
		CacheSize:        64 << 20, // 64MB
		ValueLogFileSize: 1 << 30,  // 1GB
		NumMemtables:     2,
	}
}
