package redisserver

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tresp "github.com/tidwall/resp"

	"github.com/yndnr/kvmesh-go/internal/storage/memory"
	"github.com/yndnr/kvmesh-go/internal/telemetry/metric"
)

type testServer struct {
	srv     *Server
	loop    *Loop
	metrics *metric.Registry
}

func startServer(t *testing.T, cfg *Config) *testServer {
	t.Helper()
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg.Addr = "127.0.0.1:0"

	reg := metric.NewRegistry()
	loop := NewLoop(LoopConfig{RequestQueue: 16, ExpiryInterval: 5 * time.Millisecond}, memory.New(), nil, reg)
	loop.Start()

	srv := New(cfg, loop, nil, reg)
	if err := srv.Start(nil); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			t.Errorf("Shutdown() error = %v", err)
		}
		_ = loop.Stop(ctx)
	})
	return &testServer{srv: srv, loop: loop, metrics: reg}
}

func (ts *testServer) dial(t *testing.T) net.Conn {
	t.Helper()
	nc, err := net.DialTimeout("tcp", ts.srv.Addr().String(), time.Second)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { nc.Close() })
	_ = nc.SetDeadline(time.Now().Add(5 * time.Second))
	return nc
}

func do(t *testing.T, c *tresp.Conn, name string, args ...interface{}) tresp.Value {
	t.Helper()
	if err := c.WriteMultiBulk(name, args...); err != nil {
		t.Fatalf("WriteMultiBulk(%s) error = %v", name, err)
	}
	v, _, err := c.ReadValue()
	if err != nil {
		t.Fatalf("ReadValue after %s error = %v", name, err)
	}
	return v
}

func errText(v tresp.Value) string {
	if err := v.Error(); err != nil {
		return err.Error()
	}
	return ""
}

func TestServer_Scenarios(t *testing.T) {
	ts := startServer(t, nil)
	c := tresp.NewConn(ts.dial(t))

	if v := do(t, c, "PING"); v.Type() != tresp.SimpleString || v.String() != "PONG" {
		t.Errorf("PING = %v", v)
	}
	if v := do(t, c, "ECHO", "hey"); v.Type() != tresp.BulkString || v.String() != "hey" {
		t.Errorf("ECHO hey = %v", v)
	}
	if v := do(t, c, "SET", "key", "value"); v.String() != "OK" {
		t.Errorf("SET = %v", v)
	}
	if v := do(t, c, "GET", "key"); v.Type() != tresp.BulkString || v.String() != "value" {
		t.Errorf("GET key = %v", v)
	}
	if v := do(t, c, "GET", "missing"); !v.IsNull() {
		t.Errorf("GET missing = %v, want null", v)
	}

	if v := do(t, c, "SET", "k", "v", "NX"); v.String() != "OK" {
		t.Errorf("first SET NX = %v", v)
	}
	if v := do(t, c, "SET", "k", "v2", "NX"); v.String() != "Key is present true" {
		t.Errorf("second SET NX = %v", v)
	}
	if v := do(t, c, "SET", "k", "v3", "XX", "GET"); v.Type() != tresp.SimpleString || v.String() != "OK" {
		t.Errorf("SET XX GET = %v, want OK", v)
	}
	if v := do(t, c, "get", "k"); v.String() != "v3" {
		t.Errorf("GET k = %v", v)
	}
}

func TestServer_CommandErrorsKeepConnection(t *testing.T) {
	ts := startServer(t, nil)
	c := tresp.NewConn(ts.dial(t))

	tests := []struct {
		name string
		args []interface{}
		want string
	}{
		{"FLUSHALL", nil, "ERR KV-CMD-4040 command not available: FLUSHALL"},
		{"GET", nil, "ERR KV-CMD-4000 syntax error: GET"},
		{"SET", []interface{}{"k", "v", "NX", "XX"}, "ERR KV-CMD-4000 syntax error: NX XX"},
		{"ECHO", nil, "ERR KV-CMD-4000 syntax error: ECHO"},
	}

	for _, tt := range tests {
		v := do(t, c, tt.name, tt.args...)
		if v.Type() != tresp.Error || errText(v) != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, errText(v), tt.want)
		}
	}

	if v := do(t, c, "PING"); v.String() != "PONG" {
		t.Errorf("PING after errors = %v", v)
	}
}

func TestServer_ExpiryAgreement(t *testing.T) {
	ts := startServer(t, nil)
	c := tresp.NewConn(ts.dial(t))

	do(t, c, "SET", "k", "v", "PX", "10")
	time.Sleep(20 * time.Millisecond)

	if v := do(t, c, "GET", "k"); !v.IsNull() {
		t.Errorf("GET after expiry = %v, want null", v)
	}

	do(t, c, "SET", "swept", "v", "PX", "10")
	waitFor(t, time.Second, func() bool {
		var n int
		_ = ts.loop.Do(context.Background(), func(s *memory.Store) { n = s.Len() })
		return n == 0
	})
}

func TestServer_Pipelining(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ReplyQueue = 4
	ts := startServer(t, cfg)
	nc := ts.dial(t)

	const n = 200
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteString("*2\r\n$4\r\nECHO\r\n$3\r\nabc\r\n")
	}
	go func() {
		_, _ = nc.Write([]byte(sb.String()))
	}()

	rd := tresp.NewReader(nc)
	for i := 0; i < n; i++ {
		v, _, err := rd.ReadValue()
		if err != nil {
			t.Fatalf("reply %d: %v", i, err)
		}
		if v.String() != "abc" {
			t.Fatalf("reply %d = %v", i, v)
		}
	}
}

func TestServer_PartialFrames(t *testing.T) {
	ts := startServer(t, nil)
	nc := ts.dial(t)

	frame := []byte("*2\r\n$4\r\nECHO\r\n$5\r\nhello\r\n")
	for _, b := range frame {
		if _, err := nc.Write([]byte{b}); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		time.Sleep(time.Millisecond)
	}

	line, err := bufio.NewReader(nc).ReadString('o')
	if err != nil {
		t.Fatalf("read error = %v", err)
	}
	if line != "$5\r\nhello" {
		t.Errorf("reply = %q", line)
	}
}

func TestServer_RepliesDrainedAfterPeerClose(t *testing.T) {
	ts := startServer(t, nil)
	nc := ts.dial(t)

	if _, err := nc.Write([]byte("*3\r\n$3\r\nSET\r\n$1\r\nk\r\n$1\r\nv\r\n*2\r\n$3\r\nGET\r\n$1\r\nk\r\n")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := nc.(*net.TCPConn).CloseWrite(); err != nil {
		t.Fatalf("CloseWrite() error = %v", err)
	}

	got, err := io.ReadAll(nc)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(got) != "+OK\r\n$1\r\nv\r\n" {
		t.Errorf("replies = %q", got)
	}
}

func TestServer_ProtocolErrorClosesConnection(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"negative array length", "*-1\r\n", "-ERR KV-PROTO-4000 protocol error: "},
		{"unknown type", "!oops\r\n", "-ERR KV-PROTO-4000 protocol error: "},
		{"bad bulk terminator", "*1\r\n$4\r\nPINGXX", "-ERR KV-PROTO-4000 protocol error: "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := startServer(t, nil)
			nc := ts.dial(t)

			// A valid frame first: its reply must come before the error.
			if _, err := nc.Write([]byte("*1\r\n$4\r\nPING\r\n" + tt.input)); err != nil {
				t.Fatalf("Write() error = %v", err)
			}

			got, err := io.ReadAll(nc)
			if err != nil {
				t.Fatalf("ReadAll() error = %v", err)
			}
			if !strings.HasPrefix(string(got), "+PONG\r\n"+tt.want) {
				t.Errorf("output = %q", got)
			}
		})
	}
}

func TestServer_FrameTooLarge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ReadBufferBytes = 16
	cfg.MaxFrameBytes = 64
	ts := startServer(t, cfg)
	nc := ts.dial(t)

	payload := "*1\r\n$1000\r\n" + strings.Repeat("a", 200)
	if _, err := nc.Write([]byte(payload)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, _ := io.ReadAll(nc)
	if !strings.HasPrefix(string(got), "-ERR KV-PROTO-4130 frame too large") {
		t.Errorf("output = %q", got)
	}
}

func TestServer_IdleTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IdleTimeout = 50 * time.Millisecond
	ts := startServer(t, cfg)
	nc := ts.dial(t)

	start := time.Now()
	_, err := nc.Read(make([]byte, 1))
	if !errors.Is(err, io.EOF) {
		t.Fatalf("Read() error = %v, want EOF", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("idle connection closed after %v", elapsed)
	}
}

func TestServer_RateLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateLimit = 50 // burst 50
	ts := startServer(t, cfg)
	c := tresp.NewConn(ts.dial(t))

	start := time.Now()
	for i := 0; i < 60; i++ {
		if v := do(t, c, "PING"); v.String() != "PONG" {
			t.Fatalf("PING %d = %v", i, v)
		}
	}
	// 10 commands beyond the burst need about 200ms of tokens.
	if elapsed := time.Since(start); elapsed < 150*time.Millisecond {
		t.Errorf("60 commands at 50/s took only %v", elapsed)
	}

	body := scrape(t, ts.metrics)
	if !strings.Contains(body, "kvmesh_rate_limit_waits_total") || strings.Contains(body, "kvmesh_rate_limit_waits_total 0") {
		t.Error("expected rate limit waits to be counted")
	}
}

func TestServer_ShutdownClosesConnections(t *testing.T) {
	ts := startServer(t, nil)
	c := tresp.NewConn(ts.dial(t))
	do(t, c, "PING")

	waitFor(t, time.Second, func() bool { return ts.srv.ConnCount() == 1 })

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := ts.srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	if _, _, err := c.ReadValue(); err == nil {
		t.Error("connection still open after Shutdown")
	}
	if n := ts.srv.ConnCount(); n != 0 {
		t.Errorf("ConnCount() = %d after Shutdown", n)
	}
	if _, err := net.DialTimeout("tcp", ts.srv.Addr().String(), 100*time.Millisecond); err == nil {
		t.Error("listener still accepting after Shutdown")
	}
}

func TestServer_Metrics(t *testing.T) {
	ts := startServer(t, nil)
	c := tresp.NewConn(ts.dial(t))

	do(t, c, "PING")
	do(t, c, "SET", "a", "1")
	do(t, c, "NOPE")

	body := scrape(t, ts.metrics)
	for _, want := range []string{
		`kvmesh_commands_total{command="ping",status="ok"} 1`,
		`kvmesh_commands_total{command="set",status="ok"} 1`,
		`kvmesh_commands_total{command="unknown",status="error"} 1`,
		"kvmesh_connections_accepted_total 1",
		"kvmesh_keys 1",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in metrics", want)
		}
	}
}

func TestServer_StartInvalidAddr(t *testing.T) {
	srv := New(&Config{Addr: "256.0.0.1:bad"}, NewLoop(LoopConfig{}, nil, nil, nil), nil, nil)
	if err := srv.Start(nil); err == nil {
		t.Error("Start() with an invalid address should fail")
	}
	if srv.Addr() != nil {
		t.Error("Addr() should be nil when not listening")
	}
}

func scrape(t *testing.T, reg *metric.Registry) string {
	t.Helper()
	rec := httptest.NewRecorder()
	reg.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	return rec.Body.String()
}
