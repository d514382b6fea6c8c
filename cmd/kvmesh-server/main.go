package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/yndnr/kvmesh-go/internal/infra/buildinfo"
	"github.com/yndnr/kvmesh-go/internal/infra/confloader"
	"github.com/yndnr/kvmesh-go/internal/infra/shutdown"
	"github.com/yndnr/kvmesh-go/internal/server/config"
	"github.com/yndnr/kvmesh-go/internal/server/httpserver"
	"github.com/yndnr/kvmesh-go/internal/server/redisserver"
	"github.com/yndnr/kvmesh-go/internal/storage/memory"
	"github.com/yndnr/kvmesh-go/internal/telemetry/logger"
	"github.com/yndnr/kvmesh-go/internal/telemetry/metric"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println(buildinfo.String("kvmesh-server"))
		return nil
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, slogLogger, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	info := buildinfo.Get()
	log.Info("starting kvmesh-server",
		"version", info.Version,
		"commit", info.Commit,
		"config", *configFile)

	reg := metric.Global()
	store := memory.New(
		memory.WithActiveExpiry(cfg.Store.ActiveExpiry),
		memory.WithExpireHook(func(reason memory.ExpireReason, n int) {
			reg.AddKeysExpired(string(reason), n)
		}),
	)

	loop := redisserver.NewLoop(redisserver.LoopConfig{
		RequestQueue:   cfg.Dispatch.RequestQueue,
		ExpiryInterval: cfg.Store.ExpiryInterval,
	}, store, slogLogger, reg)

	redisSrv := redisserver.New(redisConfig(cfg), loop, slogLogger, reg)
	if err := reg.Register(metric.NewCollector(redisSrv)); err != nil {
		return fmt.Errorf("register connection collector: %w", err)
	}

	shutdownHandler := shutdown.NewHandler(shutdownTimeout)

	// Hooks run in reverse order: listeners first, the dispatch loop last.
	loop.Start()
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("stopping dispatch loop")
		return loop.Stop(ctx)
	})

	serveErrs := make(chan error, 2)
	if err := redisSrv.Start(serveErrs); err != nil {
		_ = loop.Stop(context.Background())
		return err
	}
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down redis server")
		return redisSrv.Shutdown(ctx)
	})

	if cfg.Server.Admin.Enabled {
		adminSrv := httpserver.New(cfg.Server.Admin.Addr, httpserver.NewRouter(&httpserver.RouterConfig{
			Metrics: reg,
			Status:  statusFunc(loop, redisSrv),
			Logger:  slogLogger,
		}))
		if err := adminSrv.Start(serveErrs); err != nil {
			log.Error("admin server failed to start", "error", err)
			shutdownHandler.Trigger("admin listen failed")
		} else {
			log.Info("admin server listening", "address", adminSrv.Addr().String())
			shutdownHandler.OnShutdown(func(ctx context.Context) error {
				log.Info("shutting down admin server")
				return adminSrv.Shutdown(ctx)
			})
		}
	}

	if *configFile != "" {
		watcher, err := watchConfig(*configFile, loop, slogLogger)
		if err != nil {
			log.Warn("config watch disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown(func(context.Context) error {
				return watcher.Stop()
			})
		}
	}

	go func() {
		err := <-serveErrs
		log.Error("server error", "error", err)
		shutdownHandler.Trigger("server error")
	}()

	log.Info("server started, press Ctrl+C to stop")
	reason, err := shutdownHandler.Wait()
	log.Info("shutdown started", "reason", reason)
	if err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads configuration from file and environment on top of the
// defaults and validates the result.
func loadConfig(configFile string) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}
	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// initLogger initializes the structured logger and installs it as the
// process default.
func initLogger(cfg *config.ServerConfig) (logger.Logger, *slog.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return nil, nil, err
	}

	logger.SetDefault(log)
	return log, logger.Slog(log), nil
}

func redisConfig(cfg *config.ServerConfig) *redisserver.Config {
	r := cfg.Server.Redis
	return &redisserver.Config{
		Addr:            r.Addr,
		ReadBufferBytes: r.ReadBufferBytes,
		MaxFrameBytes:   r.MaxFrameBytes,
		ReplyQueue:      cfg.Dispatch.ReplyQueue,
		IdleTimeout:     r.IdleTimeout,
		WriteTimeout:    r.WriteTimeout,
		RateLimit:       r.RateLimit,
	}
}

// statusFunc reports health by round-tripping through the dispatch loop.
func statusFunc(loop *redisserver.Loop, srv *redisserver.Server) httpserver.StatusFunc {
	return func(ctx context.Context) (httpserver.Status, error) {
		st := httpserver.Status{Connections: srv.ConnCount()}
		err := loop.Do(ctx, func(s *memory.Store) {
			st.Keys = s.Len()
		})
		return st, err
	}
}
