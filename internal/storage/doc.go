// Package storage provides the disk-backed KV engine for DiskEmb.
//
// One Badger instance backs any number of tables. Each table owns a
// namespace: an isolated key space carved out of the shared instance by a
// fixed-width key prefix, created and destroyed independently of its
// neighbours.
//
// Architecture:
//
//   - kv.go: the KV interface the table adapter consumes, plus config
//   - badger.go: Badger-backed implementation with namespace registry
//
// The engine guarantees:
//
//   - Durability: records survive process restarts
//   - Isolation: namespace iteration never observes other namespaces
//   - Ordering: per-namespace iteration ascends by raw key bytes
//   - Thread safety: record-level operations may run concurrently
package storage
