package redisserver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yndnr/kvmesh-go/internal/core/domain"
	"github.com/yndnr/kvmesh-go/internal/storage/memory"
	"github.com/yndnr/kvmesh-go/pkg/resp"
)

func startLoop(t *testing.T, cfg LoopConfig, store *memory.Store) *Loop {
	t.Helper()
	l := NewLoop(cfg, store, nil, nil)
	l.Start()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = l.Stop(ctx)
	})
	return l
}

func submit(t *testing.T, l *Loop, args ...string) reply {
	t.Helper()
	ch := make(chan reply, 1)
	if err := l.Submit(context.Background(), "test", resp.Command(args...), ch); err != nil {
		t.Fatalf("Submit(%v) error = %v", args, err)
	}
	select {
	case r := <-ch:
		return r
	case <-time.After(time.Second):
		t.Fatalf("no reply for %v", args)
		return reply{}
	}
}

func TestLoop_Commands(t *testing.T) {
	l := startLoop(t, LoopConfig{RequestQueue: 4}, memory.New())

	tests := []struct {
		args    []string
		want    resp.Value
		wantErr *domain.DomainError
	}{
		{args: []string{"PING"}, want: resp.SimpleString("PONG")},
		{args: []string{"ECHO", "hey"}, want: resp.BulkString("hey")},
		{args: []string{"GET", "missing"}, want: resp.Null()},
		{args: []string{"SET", "key", "value"}, want: resp.SimpleString("OK")},
		{args: []string{"GET", "key"}, want: resp.BulkString("value")},
		{args: []string{"SET", "key", "other", "NX"}, want: resp.SimpleString("Key is present true")},
		{args: []string{"GET", "key", "extra"}, wantErr: domain.ErrSyntax},
		{args: []string{"HGET", "key"}, wantErr: domain.ErrCommandNotAvailable},
	}

	// Order matters: later cases observe earlier writes.
	for _, tt := range tests {
		r := submit(t, l, tt.args...)
		if tt.wantErr != nil {
			if !errors.Is(r.err, tt.wantErr) {
				t.Errorf("%v: err = %v, want %v", tt.args, r.err, tt.wantErr)
			}
			continue
		}
		if r.err != nil {
			t.Errorf("%v: unexpected error %v", tt.args, r.err)
			continue
		}
		if !r.value.Equal(tt.want) {
			t.Errorf("%v = %v, want %v", tt.args, r.value, tt.want)
		}
	}
}

func TestLoop_IncorrectRequest(t *testing.T) {
	l := startLoop(t, LoopConfig{}, memory.New())

	ch := make(chan reply, 1)
	if err := l.Submit(context.Background(), "test", resp.SimpleString("PING"), ch); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if r := <-ch; !errors.Is(r.err, domain.ErrIncorrectRequest) {
		t.Errorf("err = %v, want ErrIncorrectRequest", r.err)
	}
}

func TestLoop_NilStore(t *testing.T) {
	l := startLoop(t, LoopConfig{ExpiryInterval: time.Millisecond}, nil)

	if r := submit(t, l, "PING"); r.err != nil {
		t.Errorf("PING err = %v", r.err)
	}
	if r := submit(t, l, "GET", "k"); !errors.Is(r.err, domain.ErrStorageNotInitialized) {
		t.Errorf("GET err = %v, want ErrStorageNotInitialized", r.err)
	}
}

func TestLoop_ActiveExpirySweep(t *testing.T) {
	store := memory.New()
	l := startLoop(t, LoopConfig{ExpiryInterval: 5 * time.Millisecond}, store)

	submit(t, l, "SET", "short", "v", "PX", "10")
	submit(t, l, "SET", "long", "v")

	waitFor(t, time.Second, func() bool {
		var n int
		_ = l.Do(context.Background(), func(s *memory.Store) { n = s.Len() })
		return n == 1
	})
}

func TestLoop_ActiveExpiryDisabled(t *testing.T) {
	store := memory.New(memory.WithActiveExpiry(false))
	l := startLoop(t, LoopConfig{ExpiryInterval: time.Millisecond}, store)

	submit(t, l, "SET", "k", "v", "PX", "1")
	time.Sleep(20 * time.Millisecond)

	var n int
	if err := l.Do(context.Background(), func(s *memory.Store) { n = s.Len() }); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Len() = %d, want 1 while active expiry is off", n)
	}

	// Lazy expiry still applies.
	if r := submit(t, l, "GET", "k"); !r.value.IsNull() {
		t.Errorf("GET = %v, want null", r.value)
	}
}

func TestLoop_Stop(t *testing.T) {
	l := NewLoop(LoopConfig{}, memory.New(), nil, nil)
	l.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := l.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := l.Stop(ctx); err != nil {
		t.Fatalf("second Stop() error = %v", err)
	}

	ch := make(chan reply, 1)
	// The request queue may still accept one value; fill it first.
	for i := 0; i < 2; i++ {
		if err := l.Submit(ctx, "test", resp.Command("PING"), ch); errors.Is(err, ErrLoopStopped) {
			return
		}
	}
	t.Error("Submit never reported ErrLoopStopped")
}

func TestLoop_StopWithoutStart(t *testing.T) {
	l := NewLoop(LoopConfig{}, memory.New(), nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := l.Stop(ctx); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}
