package config

import (
	"errors"
	"fmt"
	"net"

	"github.com/yndnr/kvmesh-go/internal/telemetry/logger"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyDispatch(&cfg.Dispatch); err != nil {
		return err
	}
	if err := verifyStore(&cfg.Store); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

func verifyServer(cfg *ServerSection) error {
	if err := verifyAddr("server.redis.addr", cfg.Redis.Addr); err != nil {
		return err
	}
	if cfg.Redis.ReadBufferBytes < 1 {
		return errors.New("server.redis.read_buffer_bytes must be positive")
	}
	if cfg.Redis.MaxFrameBytes < cfg.Redis.ReadBufferBytes {
		return errors.New("server.redis.max_frame_bytes must be at least read_buffer_bytes")
	}
	if cfg.Redis.IdleTimeout < 0 || cfg.Redis.WriteTimeout < 0 {
		return errors.New("server.redis timeouts must not be negative")
	}
	if cfg.Redis.RateLimit < 0 {
		return errors.New("server.redis.rate_limit must not be negative")
	}

	if !cfg.Admin.Enabled {
		return nil
	}
	if err := verifyAddr("server.admin.addr", cfg.Admin.Addr); err != nil {
		return err
	}
	if conflicts(cfg.Redis.Addr, cfg.Admin.Addr) {
		return fmt.Errorf("server.admin.addr %q conflicts with server.redis.addr", cfg.Admin.Addr)
	}
	return nil
}

func verifyAddr(name, addr string) error {
	if addr == "" {
		return fmt.Errorf("%s is required", name)
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// conflicts reports whether both addresses bind the same fixed port on
// overlapping hosts. Port 0 never conflicts.
func conflicts(a, b string) bool {
	hostA, portA, _ := net.SplitHostPort(a)
	hostB, portB, _ := net.SplitHostPort(b)
	if portA != portB || portA == "0" {
		return false
	}
	return hostA == hostB || isWildcard(hostA) || isWildcard(hostB)
}

func isWildcard(host string) bool {
	return host == "" || host == "0.0.0.0" || host == "::"
}

func verifyDispatch(cfg *DispatchSection) error {
	if cfg.RequestQueue < 1 {
		return errors.New("dispatch.request_queue must be at least 1")
	}
	if cfg.ReplyQueue < 1 {
		return errors.New("dispatch.reply_queue must be at least 1")
	}
	return nil
}

func verifyStore(cfg *StoreSection) error {
	if cfg.ActiveExpiry && cfg.ExpiryInterval <= 0 {
		return errors.New("store.expiry_interval must be positive when active_expiry is on")
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	if _, err := logger.ParseLevel(cfg.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch cfg.Format {
	case "json", "text":
		return nil
	default:
		return fmt.Errorf("log.format: unknown format %q", cfg.Format)
	}
}
