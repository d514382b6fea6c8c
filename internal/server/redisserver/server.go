package redisserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/kvmesh-go/internal/telemetry/metric"
	"github.com/yndnr/kvmesh-go/pkg/cmap"
)

// Config holds the RESP server configuration.
type Config struct {
	// Addr is the TCP listen address.
	Addr string
	// ReadBufferBytes is the size of one socket read (default: 4096).
	ReadBufferBytes int
	// MaxFrameBytes closes a connection whose incomplete frame grows
	// past this size (default: 64 MiB).
	MaxFrameBytes int
	// ReplyQueue bounds the requests one connection may have in flight
	// (default: 64).
	ReplyQueue int
	// IdleTimeout closes a connection that sends nothing for this long.
	// Zero disables it.
	IdleTimeout time.Duration
	// WriteTimeout bounds each reply flush. Zero disables it.
	WriteTimeout time.Duration
	// RateLimit is the per-connection command rate per second.
	// Zero disables rate limiting.
	RateLimit float64
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:            "127.0.0.1:6379",
		ReadBufferBytes: 4096,
		MaxFrameBytes:   64 << 20,
		ReplyQueue:      64,
		WriteTimeout:    10 * time.Second,
	}
}

// rateBurst allows one second worth of commands in a burst.
func (c *Config) rateBurst() int {
	return int(math.Max(1, math.Ceil(c.RateLimit)))
}

func (c *Config) withDefaults() *Config {
	d := DefaultConfig()
	out := *c
	if out.ReadBufferBytes <= 0 {
		out.ReadBufferBytes = d.ReadBufferBytes
	}
	if out.MaxFrameBytes <= 0 {
		out.MaxFrameBytes = d.MaxFrameBytes
	}
	if out.ReplyQueue <= 0 {
		out.ReplyQueue = d.ReplyQueue
	}
	return &out
}

// Server accepts RESP connections and hands their requests to a Loop.
type Server struct {
	cfg     *Config
	loop    *Loop
	logger  *slog.Logger
	metrics *metric.Registry

	mu      sync.Mutex
	ln      net.Listener
	conns   *cmap.Map[string, *conn]
	running atomic.Bool
	wg      sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a server. logger and metrics may be nil.
func New(cfg *Config, loop *Loop, logger *slog.Logger, metrics *metric.Registry) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:     cfg.withDefaults(),
		loop:    loop,
		logger:  logger,
		metrics: metrics,
		conns:   cmap.New[string, *conn](),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start listens on the configured address and accepts connections in the
// background. Listen errors are returned; errors from the accept loop are
// reported on errCh when it is not nil.
func (s *Server) Start(errCh chan<- error) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("redis listen %s: %w", s.cfg.Addr, err)
	}
	s.Serve(ln, errCh)
	return nil
}

// Serve accepts connections on ln in the background.
func (s *Server) Serve(ln net.Listener, errCh chan<- error) {
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	s.running.Store(true)

	s.logger.Info("redis server listening", "address", ln.Addr().String())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.acceptLoop(ln); err != nil {
			s.logger.Error("redis accept loop failed", "error", err)
			if errCh != nil {
				errCh <- err
			}
		}
	}()
}

// Addr returns the listen address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// ConnCount returns the number of open client connections.
func (s *Server) ConnCount() int {
	return s.conns.Count()
}

// Shutdown stops accepting, closes every connection and waits for their
// goroutines or for ctx to end.
func (s *Server) Shutdown(ctx context.Context) error {
	s.running.Store(false)

	var closeErr error
	s.mu.Lock()
	if s.ln != nil {
		closeErr = s.ln.Close()
	}
	s.mu.Unlock()

	s.cancel()
	for _, c := range s.conns.Drain() {
		_ = c.Close()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	if errors.Is(closeErr, net.ErrClosed) {
		return nil
	}
	return closeErr
}

func (s *Server) acceptLoop(ln net.Listener) error {
	var backoff time.Duration
	for {
		nc, err := ln.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				backoff = nextBackoff(backoff)
				s.logger.Warn("accept failed, retrying", "error", err, "backoff", backoff)
				time.Sleep(backoff)
				continue
			}
			return err
		}
		backoff = 0

		c := newConn(s, ulid.Make().String(), nc)
		s.conns.Set(c.id, c)
		s.metrics.IncConnectionsAccepted()

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(c)
		}()
	}
}

func (s *Server) serveConn(c *conn) {
	c.logger.Debug("connection opened")

	reason := c.serve(s.ctx)

	s.conns.Delete(c.id)
	s.metrics.IncConnectionsClosed(reason)
	c.logger.Debug("connection closed", "reason", reason)
}

func nextBackoff(d time.Duration) time.Duration {
	if d == 0 {
		return 5 * time.Millisecond
	}
	if d *= 2; d > time.Second {
		d = time.Second
	}
	return d
}
