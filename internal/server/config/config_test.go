package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Redis.Addr != DefaultRedisAddr {
		t.Errorf("Redis.Addr = %q, want %q", cfg.Server.Redis.Addr, DefaultRedisAddr)
	}
	if cfg.Server.Redis.MaxFrameBytes != DefaultMaxFrameBytes {
		t.Errorf("MaxFrameBytes = %d, want %d", cfg.Server.Redis.MaxFrameBytes, DefaultMaxFrameBytes)
	}
	if cfg.Server.Redis.RateLimit != 0 {
		t.Error("rate limiting should be disabled by default")
	}
	if !cfg.Server.Admin.Enabled {
		t.Error("admin endpoint should be enabled by default")
	}
	if cfg.Dispatch.ReplyQueue != DefaultReplyQueue {
		t.Errorf("ReplyQueue = %d, want %d", cfg.Dispatch.ReplyQueue, DefaultReplyQueue)
	}
	if !cfg.Store.ActiveExpiry {
		t.Error("active expiry should be on by default")
	}
	if cfg.Store.ExpiryInterval != DefaultExpiryInterval {
		t.Errorf("ExpiryInterval = %v, want %v", cfg.Store.ExpiryInterval, DefaultExpiryInterval)
	}
	if cfg.Log.Level != DefaultLogLevel || cfg.Log.Format != DefaultLogFormat {
		t.Errorf("Log = %+v", cfg.Log)
	}

	if err := Verify(cfg); err != nil {
		t.Errorf("Verify(Default()) error = %v", err)
	}
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ServerConfig)
		wantErr string
	}{
		{
			name:    "missing redis addr",
			mutate:  func(c *ServerConfig) { c.Server.Redis.Addr = "" },
			wantErr: "server.redis.addr is required",
		},
		{
			name:    "redis addr without port",
			mutate:  func(c *ServerConfig) { c.Server.Redis.Addr = "localhost" },
			wantErr: "server.redis.addr",
		},
		{
			name:    "zero read buffer",
			mutate:  func(c *ServerConfig) { c.Server.Redis.ReadBufferBytes = 0 },
			wantErr: "read_buffer_bytes",
		},
		{
			name:    "frame limit below read buffer",
			mutate:  func(c *ServerConfig) { c.Server.Redis.MaxFrameBytes = 16 },
			wantErr: "max_frame_bytes",
		},
		{
			name:    "negative idle timeout",
			mutate:  func(c *ServerConfig) { c.Server.Redis.IdleTimeout = -time.Second },
			wantErr: "timeouts",
		},
		{
			name:    "negative rate limit",
			mutate:  func(c *ServerConfig) { c.Server.Redis.RateLimit = -1 },
			wantErr: "rate_limit",
		},
		{
			name:    "admin port conflict",
			mutate:  func(c *ServerConfig) { c.Server.Admin.Addr = "127.0.0.1:6379" },
			wantErr: "conflicts",
		},
		{
			name: "admin wildcard conflict",
			mutate: func(c *ServerConfig) {
				c.Server.Redis.Addr = ":7000"
				c.Server.Admin.Addr = "10.0.0.1:7000"
			},
			wantErr: "conflicts",
		},
		{
			name:    "zero request queue",
			mutate:  func(c *ServerConfig) { c.Dispatch.RequestQueue = 0 },
			wantErr: "request_queue",
		},
		{
			name:    "zero reply queue",
			mutate:  func(c *ServerConfig) { c.Dispatch.ReplyQueue = 0 },
			wantErr: "reply_queue",
		},
		{
			name:    "active expiry without interval",
			mutate:  func(c *ServerConfig) { c.Store.ExpiryInterval = 0 },
			wantErr: "expiry_interval",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *ServerConfig) { c.Log.Level = "verbose" },
			wantErr: "log.level",
		},
		{
			name:    "unknown log format",
			mutate:  func(c *ServerConfig) { c.Log.Format = "xml" },
			wantErr: "log.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Verify(cfg)
			if err == nil {
				t.Fatal("Verify() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Verify() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestVerify_Accepts(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ServerConfig)
	}{
		{"admin disabled ignores its addr", func(c *ServerConfig) {
			c.Server.Admin.Enabled = false
			c.Server.Admin.Addr = ""
		}},
		{"ephemeral ports never conflict", func(c *ServerConfig) {
			c.Server.Redis.Addr = "127.0.0.1:0"
			c.Server.Admin.Addr = "127.0.0.1:0"
		}},
		{"passive expiry needs no interval", func(c *ServerConfig) {
			c.Store.ActiveExpiry = false
			c.Store.ExpiryInterval = 0
		}},
		{"text logs at debug", func(c *ServerConfig) {
			c.Log.Level = "debug"
			c.Log.Format = "text"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := Verify(cfg); err != nil {
				t.Errorf("Verify() error = %v", err)
			}
		})
	}
}
