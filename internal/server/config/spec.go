package config

import "time"

// ServerConfig is the root configuration for kvmesh-server.
type ServerConfig struct {
	Server   ServerSection   `koanf:"server"`
	Dispatch DispatchSection `koanf:"dispatch"`
	Store    StoreSection    `koanf:"store"`
	Log      LogSection      `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	Redis RedisConfig `koanf:"redis"`
	Admin AdminConfig `koanf:"admin"`
}

// RedisConfig configures the RESP listener and per-connection limits.
type RedisConfig struct {
	Addr string `koanf:"addr"`

	// ReadBufferBytes is the size of a single socket read.
	ReadBufferBytes int `koanf:"read_buffer_bytes"`

	// MaxFrameBytes bounds a buffered, not yet complete request.
	// The connection is closed when a frame grows past it.
	MaxFrameBytes int `koanf:"max_frame_bytes"`

	// IdleTimeout closes a connection that sends nothing for this long.
	// Zero disables it.
	IdleTimeout time.Duration `koanf:"idle_timeout"`

	// WriteTimeout bounds each reply flush. Zero disables it.
	WriteTimeout time.Duration `koanf:"write_timeout"`

	// RateLimit is the per-connection command rate in commands per second.
	// Zero disables limiting.
	RateLimit float64 `koanf:"rate_limit"`
}

// AdminConfig configures the HTTP endpoint serving /metrics, /health and /version.
type AdminConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// DispatchSection sizes the queues between connections and the dispatch loop.
type DispatchSection struct {
	RequestQueue int `koanf:"request_queue"`
	ReplyQueue   int `koanf:"reply_queue"`
}

// StoreSection configures the key-value store.
type StoreSection struct {
	ActiveExpiry   bool          `koanf:"active_expiry"`
	ExpiryInterval time.Duration `koanf:"expiry_interval"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
