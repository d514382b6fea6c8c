package metric

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kvmesh"

// Command status label values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Registry holds all application metrics.
type Registry struct {
	registry *prometheus.Registry

	// Command metrics
	CommandsTotal   *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec

	// Connection metrics
	ConnectionsAccepted prometheus.Counter
	ConnectionsClosed   *prometheus.CounterVec
	ProtocolErrors      prometheus.Counter
	RateLimitWaits      prometheus.Counter

	// Store metrics
	KeysStored   prometheus.Gauge
	KeysExpired  *prometheus.CounterVec
	ExpirySweeps prometheus.Counter
}

// NewRegistry creates a registry with every kvmesh instrument plus the Go
// runtime and process collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands processed, by command and status.",
		}, []string{"command", "status"}),
		CommandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Time spent executing a command in the dispatch loop.",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
		}, []string{"command"}),
		ConnectionsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_accepted_total",
			Help:      "Client connections accepted.",
		}),
		ConnectionsClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_closed_total",
			Help:      "Client connections closed, by reason.",
		}, []string{"reason"}),
		ProtocolErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "protocol_errors_total",
			Help:      "Frames that failed to decode.",
		}),
		RateLimitWaits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_waits_total",
			Help:      "Commands delayed by the per-connection rate limit.",
		}),
		KeysStored: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "keys",
			Help:      "Keys held by the store, including expired keys not yet evicted.",
		}),
		KeysExpired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keys_expired_total",
			Help:      "Expired keys removed, by path (lazy or active).",
		}, []string{"path"}),
		ExpirySweeps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expiry_sweeps_total",
			Help:      "Active expiry sweeps run.",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.CommandsTotal,
		r.CommandDuration,
		r.ConnectionsAccepted,
		r.ConnectionsClosed,
		r.ProtocolErrors,
		r.RateLimitWaits,
		r.KeysStored,
		r.KeysExpired,
		r.ExpirySweeps,
	)

	return r
}

var (
	globalOnce sync.Once
	global     *Registry
)

// Global returns the process-wide registry.
func Global() *Registry {
	globalOnce.Do(func() {
		global = NewRegistry()
	})
	return global
}

// Handler returns the /metrics handler of the global registry.
func Handler() http.Handler {
	return Global().Handler()
}

// Handler returns an HTTP handler exposing r in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Register adds a custom collector.
func (r *Registry) Register(c prometheus.Collector) error {
	return r.registry.Register(c)
}

// Unregister removes a collector added with Register.
func (r *Registry) Unregister(c prometheus.Collector) bool {
	return r.registry.Unregister(c)
}

// ObserveCommand records one executed command.
func (r *Registry) ObserveCommand(command string, err error, d time.Duration) {
	if r == nil {
		return
	}
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	r.CommandsTotal.WithLabelValues(command, status).Inc()
	r.CommandDuration.WithLabelValues(command).Observe(d.Seconds())
}

// IncConnectionsAccepted counts an accepted connection.
func (r *Registry) IncConnectionsAccepted() {
	if r == nil {
		return
	}
	r.ConnectionsAccepted.Inc()
}

// IncConnectionsClosed counts a closed connection.
func (r *Registry) IncConnectionsClosed(reason string) {
	if r == nil {
		return
	}
	r.ConnectionsClosed.WithLabelValues(reason).Inc()
}

// IncProtocolErrors counts a frame that failed to decode.
func (r *Registry) IncProtocolErrors() {
	if r == nil {
		return
	}
	r.ProtocolErrors.Inc()
}

// IncRateLimitWaits counts a command that had to wait for a token.
func (r *Registry) IncRateLimitWaits() {
	if r == nil {
		return
	}
	r.RateLimitWaits.Inc()
}

// SetKeys sets the number of stored keys.
func (r *Registry) SetKeys(n int) {
	if r == nil {
		return
	}
	r.KeysStored.Set(float64(n))
}

// AddKeysExpired counts n keys removed by the given expiry path.
func (r *Registry) AddKeysExpired(path string, n int) {
	if r == nil {
		return
	}
	r.KeysExpired.WithLabelValues(path).Add(float64(n))
}

// IncExpirySweeps counts one active expiry sweep.
func (r *Registry) IncExpirySweeps() {
	if r == nil {
		return
	}
	r.ExpirySweeps.Inc()
}
