// Package internaldefs holds the metric names and bucket boundaries shared by the
// Prometheus and OTel exporters.
//
// Both exporters render from these tables, so renaming a metric here renames it
// everywhere.
//
// # What this package must NOT do
//
//   - Import any exporter package.
//   - Perform I/O.
package internaldefs
