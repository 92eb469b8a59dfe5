// Package command provides CLI command definitions for DiskEmb.
//
// This package defines all CLI commands using urfave/cli/v2:
//
//   - root.go: Root command, global flags, store bootstrap
//   - table.go: Table subcommand group (get, put, del, clear, size, keys)
//   - snapshot.go: Snapshot subcommand group (export, import, create, list, prune)
//   - namespace.go: Namespace listing
//   - stats.go: Store statistics
//   - typed.go: Key/value type dispatch for table commands
//
// Commands follow a consistent pattern of parsing flags,
// opening the store, and formatting output.
package command
