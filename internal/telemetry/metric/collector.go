package metric

import "github.com/prometheus/client_golang/prometheus"

// ConnSource reports connection state at scrape time.
type ConnSource interface {
	// ConnCount returns the number of open client connections.
	ConnCount() int
}

// Collector exposes values owned by other components. It reads them on
// every scrape instead of mirroring them into a gauge.
type Collector struct {
	conns    ConnSource
	connDesc *prometheus.Desc
}

// NewCollector creates a collector reading from conns.
func NewCollector(conns ConnSource) *Collector {
	return &Collector{
		conns: conns,
		connDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "connections_active"),
			"Open client connections.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.connDesc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.connDesc, prometheus.GaugeValue, float64(c.conns.ConnCount()))
}
