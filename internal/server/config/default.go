package config

import "time"

// Default configuration values.
const (
	DefaultRedisAddr       = "127.0.0.1:6379"
	DefaultReadBufferBytes = 4096
	DefaultMaxFrameBytes   = 64 << 20
	DefaultWriteTimeout    = 10 * time.Second

	DefaultAdminAddr = "127.0.0.1:5080"

	DefaultRequestQueue = 1024
	DefaultReplyQueue   = 64

	DefaultExpiryInterval = 100 * time.Millisecond

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Redis: RedisConfig{
				Addr:            DefaultRedisAddr,
				ReadBufferBytes: DefaultReadBufferBytes,
				MaxFrameBytes:   DefaultMaxFrameBytes,
				WriteTimeout:    DefaultWriteTimeout,
			},
			Admin: AdminConfig{
				Enabled: true,
				Addr:    DefaultAdminAddr,
			},
		},
		Dispatch: DispatchSection{
			RequestQueue: DefaultRequestQueue,
			ReplyQueue:   DefaultReplyQueue,
		},
		Store: StoreSection{
			ActiveExpiry:   true,
			ExpiryInterval: DefaultExpiryInterval,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
