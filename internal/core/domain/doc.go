// Package domain defines the core domain model for DiskEmb.
//
// This package holds the structured error type shared by every layer:
//
//   - errors.go: DomainError machinery and the error catalogue
//
// Error codes follow the format DE-<AREA>-<NNNN>: the area names the
// failing component (TBLE, CDEC, SNAP, STOR) and the number groups
// caller errors (4xxx) apart from internal failures (5xxx).
package domain
