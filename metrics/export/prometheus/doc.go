// Package prometheus exposes hastauth counters and the request latency
// histogram as a Prometheus collector.
//
// [PrometheusExporter] implements prometheus.Collector. Register it on a
// registry of your own, or mount [PrometheusExporter.Handler], which serves
// it from a private registry. Counter names are hastauth_*_total; the single
// histogram is hastauth_request_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in the global Prometheus registry.
//   - Mutate client state.
package prometheus
