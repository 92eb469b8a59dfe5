// Package logger provides structured logging for DiskEmb.
//
// This package wraps log/slog for structured logging:
//
//   - logger.go: handler construction and level control
//
// Features:
//
//   - JSON and text output formats
//   - Log level filtering with runtime adjustment
package logger
