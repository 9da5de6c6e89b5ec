// Package internaldefs holds the metric names, help texts and bucket bounds
// shared by the exporters, so the Prometheus and OTel outputs stay identical.
//
// # What this package must NOT do
//
//   - Import any exporter package.
//   - Perform I/O.
package internaldefs
