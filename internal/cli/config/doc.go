// Package config provides CLI configuration for DiskEmb.
//
// This package defines CLI-specific configuration:
//
//   - spec.go: Config struct with store / snapshot / log sections
//   - loader.go: Configuration loading (YAML file + DISKEMB_ env)
//
// Configuration includes:
//
//   - Store location and open mode
//   - Snapshot directory and retention policy
//   - Log level and format
package config
