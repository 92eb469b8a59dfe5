// Package metric provides Prometheus metrics for DiskEmb.
//
// This package implements metrics collection and exposition:
//
//   - table.go: per-table operation counters
//   - collector.go: on-scrape collector for store size
//
// Metrics include:
//
//   - Lookup / insert / remove / clear counters
//   - Key hit and miss counters
//   - Snapshot byte counters
//   - Storage size gauges
package metric
