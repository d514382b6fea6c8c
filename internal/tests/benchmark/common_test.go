package benchmark

import (
	"context"
	"fmt"
	"runtime"
	"testing"
	"time"

	"github.com/yndnr/kvmesh-go/internal/core/domain"
	"github.com/yndnr/kvmesh-go/internal/server/redisserver"
	"github.com/yndnr/kvmesh-go/internal/storage/memory"
)

// KeyCounts defines the store sizes for benchmarking.
var KeyCounts = []int{10000, 100000, 1000000}

// SmallKeyCounts for quick benchmarks.
var SmallKeyCounts = []int{1000, 10000, 100000}

func benchKey(i int) string {
	return fmt.Sprintf("key:%08d", i)
}

// prefillStore writes count keys. Every other key gets a one hour TTL.
func prefillStore(store *memory.Store, count int) {
	ttl := domain.SetOptions{ExpiryUnit: domain.ExpirySeconds, TTL: time.Hour}
	for i := 0; i < count; i++ {
		opts := domain.SetOptions{}
		if i%2 == 0 {
			opts = ttl
		}
		store.Set(benchKey(i), "value", opts)
	}
}

// reportMemory reports memory usage.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithKeyCounts runs a benchmark function with various store sizes.
func runWithKeyCounts(b *testing.B, counts []int, benchFn func(b *testing.B, count int)) {
	for _, count := range counts {
		b.Run(fmt.Sprintf("keys_%d", count), func(b *testing.B) {
			benchFn(b, count)
		})
	}
}

// startServer runs a server on a loopback port with logging and metrics off.
func startServer(b *testing.B, replyQueue int) string {
	b.Helper()

	loop := redisserver.NewLoop(redisserver.LoopConfig{RequestQueue: 1024, ExpiryInterval: 100 * time.Millisecond},
		memory.New(), nil, nil)
	loop.Start()

	cfg := redisserver.DefaultConfig()
	cfg.Addr = "127.0.0.1:0"
	cfg.ReplyQueue = replyQueue
	srv := redisserver.New(cfg, loop, nil, nil)
	if err := srv.Start(nil); err != nil {
		b.Fatalf("Start() error = %v", err)
	}

	b.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
		_ = loop.Stop(ctx)
	})
	return srv.Addr().String()
}
