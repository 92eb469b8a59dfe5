// Package table adapts the disk-backed KV engine to a fixed-shape
// embedding table.
//
// A table maps keys of one type to value vectors of a fixed element type
// and dimension. Lookups for absent keys are filled from a caller-supplied
// default vector, so a Find never fails on missing keys.
//
// Architecture:
//
//   - table.go: typed Table with Find / Insert / Remove
//   - admin.go: type-erased handle with Clear / Export / Import / Size
//
// The namespace backing a table is created lazily on first write and
// dropped by Clear; all namespace state transitions happen under the
// table's mutex. Record reads and writes run outside the lock against a
// namespace handle resolved under it.
package table
