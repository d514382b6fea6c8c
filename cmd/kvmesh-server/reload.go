package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/yndnr/kvmesh-go/internal/infra/confloader"
	"github.com/yndnr/kvmesh-go/internal/server/redisserver"
	"github.com/yndnr/kvmesh-go/internal/storage/memory"
	"github.com/yndnr/kvmesh-go/internal/telemetry/logger"
)

// reloadTimeout bounds how long a reload waits for the dispatch loop.
const reloadTimeout = 5 * time.Second

// reloaded is what a configuration reload applied.
type reloaded struct {
	Level        string
	ActiveExpiry bool
}

// watchConfig reloads log.level and store.active_expiry whenever the
// configuration file changes. Other settings need a restart.
func watchConfig(path string, loop *redisserver.Loop, log *slog.Logger) (*confloader.Watcher, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(path); err != nil {
		_ = w.Stop()
		return nil, err
	}

	w.OnChange(func(changed string) {
		ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
		defer cancel()

		r, err := reloadConfig(ctx, changed, loop)
		if err != nil {
			log.Warn("configuration reload rejected", "file", changed, "error", err)
			return
		}
		log.Info("configuration reloaded", "level", r.Level, "active_expiry", r.ActiveExpiry)
	})
	w.StartAsync()
	return w, nil
}

// reloadConfig re-reads path and applies its log level and active expiry
// flag. The file must still form a valid configuration. The store is only
// touched from the dispatch loop.
func reloadConfig(ctx context.Context, path string, loop *redisserver.Loop) (reloaded, error) {
	cfg, err := loadConfig(path)
	if err != nil {
		return reloaded{}, err
	}
	if err := logger.SetLevel(cfg.Log.Level); err != nil {
		return reloaded{}, err
	}

	active := cfg.Store.ActiveExpiry
	if err := loop.Do(ctx, func(s *memory.Store) {
		s.SetActiveExpiry(active)
	}); err != nil {
		return reloaded{}, err
	}
	return reloaded{Level: logger.GetLevel(), ActiveExpiry: active}, nil
}
