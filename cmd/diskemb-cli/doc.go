// Package main provides the entry point for diskemb-cli.
//
// The CLI tool gives command-line access to a DiskEmb store for:
//
//   - Table operations (get, put, del, clear, size, keys)
//   - Snapshot export, import and retention management
//   - Namespace inspection
//   - Store statistics
//
// Usage:
//
//	diskemb-cli [command] [flags]
//	diskemb-cli table put -d ./data -t embeddings --dim 4 42 0.1 0.2 0.3 0.4
//	diskemb-cli snapshot export -d ./data -t embeddings backup.snap
//	diskemb-cli namespace list --output json
package main
