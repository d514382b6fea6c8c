// Package metric provides Prometheus metrics for kvmesh.
//
//   - prometheus.go: the Registry, its instruments and the HTTP handler
//   - collector.go: a collector for values read at scrape time
//
// Registry methods are nil-safe, so a component built without metrics
// can call them unconditionally.
package metric
