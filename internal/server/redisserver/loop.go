package redisserver

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/yndnr/kvmesh-go/internal/core/domain"
	"github.com/yndnr/kvmesh-go/internal/core/service"
	"github.com/yndnr/kvmesh-go/internal/storage/memory"
	"github.com/yndnr/kvmesh-go/internal/telemetry/metric"
	"github.com/yndnr/kvmesh-go/pkg/resp"
)

// ErrLoopStopped is returned by Submit once the Loop has been stopped.
var ErrLoopStopped = errors.New("redisserver: dispatch loop stopped")

// request is one decoded frame waiting for the Loop.
type request struct {
	connID string
	value  resp.Value
	reply  chan<- reply
}

// reply is the outcome of one request. err is a *domain.DomainError.
type reply struct {
	value resp.Value
	err   error
}

// LoopConfig configures the dispatch loop.
type LoopConfig struct {
	// RequestQueue is the capacity of the shared request channel.
	RequestQueue int
	// ExpiryInterval is the period of the active expiry sweep.
	// Zero disables the ticker.
	ExpiryInterval time.Duration
}

// Loop is the single goroutine that owns the store.
type Loop struct {
	cfg        LoopConfig
	store      *memory.Store
	dispatcher *service.Dispatcher
	logger     *slog.Logger
	metrics    *metric.Registry

	requests chan request
	control  chan func(*memory.Store)

	startOnce sync.Once
	stopOnce  sync.Once
	quit      chan struct{}
	done      chan struct{}
}

// NewLoop creates a Loop serving store. metrics and logger may be nil.
func NewLoop(cfg LoopConfig, store *memory.Store, logger *slog.Logger, metrics *metric.Registry) *Loop {
	if cfg.RequestQueue < 1 {
		cfg.RequestQueue = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	var repo service.Repository
	if store != nil {
		repo = store
	}

	return &Loop{
		cfg:        cfg,
		store:      store,
		dispatcher: service.NewDispatcher(repo),
		logger:     logger,
		metrics:    metrics,
		requests:   make(chan request, cfg.RequestQueue),
		control:    make(chan func(*memory.Store)),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start runs the loop in its own goroutine. Calls after the first are no-ops.
func (l *Loop) Start() {
	l.startOnce.Do(func() {
		go l.run()
	})
}

// Stop stops the loop and waits for it to exit or for ctx to end.
// Requests still queued are dropped; their connections are closing anyway.
func (l *Loop) Stop(ctx context.Context) error {
	l.stopOnce.Do(func() {
		close(l.quit)
	})
	l.Start() // a never-started loop must still close done

	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit queues v for execution. The reply is delivered on replyCh, which
// must have room for it: callers bound their in-flight requests by the
// channel's capacity.
func (l *Loop) Submit(ctx context.Context, connID string, v resp.Value, replyCh chan<- reply) error {
	select {
	case l.requests <- request{connID: connID, value: v, reply: replyCh}:
		return nil
	case <-l.quit:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do runs fn on the loop goroutine with exclusive access to the store.
func (l *Loop) Do(ctx context.Context, fn func(*memory.Store)) error {
	ran := make(chan struct{})
	wrapped := func(s *memory.Store) {
		defer close(ran)
		fn(s)
	}

	select {
	case l.control <- wrapped:
	case <-l.quit:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	<-ran
	return nil
}

func (l *Loop) run() {
	defer close(l.done)

	var tick <-chan time.Time
	if l.cfg.ExpiryInterval > 0 && l.store != nil {
		ticker := time.NewTicker(l.cfg.ExpiryInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	l.logger.Debug("dispatch loop started", "expiry_interval", l.cfg.ExpiryInterval)
	for {
		select {
		case req := <-l.requests:
			req.reply <- l.execute(req)
		case <-tick:
			l.sweep()
		case fn := <-l.control:
			fn(l.store)
		case <-l.quit:
			l.logger.Debug("dispatch loop stopped", "dropped", len(l.requests))
			return
		}
	}
}

func (l *Loop) execute(req request) reply {
	start := time.Now()

	cmd, err := domain.CommandFromValue(req.value)
	if err != nil {
		l.metrics.ObserveCommand(service.KindUnknown.String(), err, time.Since(start))
		return reply{err: err}
	}

	v, err := l.dispatcher.Dispatch(cmd)
	kind := service.Lookup(cmd.Name())
	l.metrics.ObserveCommand(kind.String(), err, time.Since(start))

	if err != nil {
		attrs := []any{"conn_id", req.connID, "command", cmd.Name(), "error", err}
		if domain.IsDomainError(err, domain.ErrInternal.Code) {
			l.logger.Error("command failed", attrs...)
		} else {
			l.logger.Debug("command rejected", attrs...)
		}
		return reply{err: err}
	}

	if l.store != nil {
		l.metrics.SetKeys(l.store.Len())
	}
	return reply{value: v}
}

func (l *Loop) sweep() {
	if !l.store.ActiveExpiry() {
		return
	}
	n := l.store.SweepExpired()
	l.metrics.IncExpirySweeps()
	if n > 0 {
		l.metrics.SetKeys(l.store.Len())
		l.logger.Debug("expired keys swept", "count", n)
	}
}
