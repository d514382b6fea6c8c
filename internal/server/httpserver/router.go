package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/yndnr/kvmesh-go/internal/infra/buildinfo"
	"github.com/yndnr/kvmesh-go/internal/telemetry/metric"
)

// Status is the state reported by GET /health.
type Status struct {
	Connections int `json:"connections"`
	Keys        int `json:"keys"`
}

// StatusFunc probes the server. An error marks it unhealthy.
type StatusFunc func(ctx context.Context) (Status, error)

// RouterConfig holds configuration for the admin router.
type RouterConfig struct {
	// Metrics is exposed at /metrics. Nil uses metric.Global().
	Metrics *metric.Registry

	// Status backs /health. Nil reports healthy without counts.
	Status StatusFunc

	// HealthTimeout bounds one Status call (default: 2s).
	HealthTimeout time.Duration

	// Logger for access logs and recovered panics.
	Logger *slog.Logger
}

// NewRouter creates the admin router with its middleware chain.
func NewRouter(cfg *RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	reg := cfg.Metrics
	if reg == nil {
		reg = metric.Global()
	}
	timeout := cfg.HealthTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", reg.Handler())
	mux.HandleFunc("GET /health", healthHandler(cfg.Status, timeout))
	mux.HandleFunc("GET /version", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, buildinfo.Get())
	})

	return Chain(mux, RequestID(), Recover(logger), AccessLog(logger))
}

func healthHandler(status StatusFunc, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]any{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		}
		if status == nil {
			writeJSON(w, http.StatusOK, body)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		st, err := status(ctx)
		if err != nil {
			body["status"] = "unhealthy"
			body["error"] = err.Error()
			writeJSON(w, http.StatusServiceUnavailable, body)
			return
		}
		body["connections"] = st.Connections
		body["keys"] = st.Keys
		writeJSON(w, http.StatusOK, body)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
