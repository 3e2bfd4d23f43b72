package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/watt-toolkit/cachegrid/internal/cache"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.MaxEntries = 100
	cfg.MaxBytes = 1 << 20
	cfg.CleanupInterval = 10 * time.Millisecond
	return cfg
}

func TestEngine_OperationsFailBeforeStart(t *testing.T) {
	e := New(testConfig())

	if _, _, err := e.Get("k"); !errors.Is(err, cache.ErrNotRunning) {
		t.Fatalf("Get before Start: err = %v, want ErrNotRunning", err)
	}
	if err := e.Set("k", 1, 0, nil); !errors.Is(err, cache.ErrNotRunning) {
		t.Fatalf("Set before Start: err = %v, want ErrNotRunning", err)
	}
}

func TestEngine_SetGetRoundTrip(t *testing.T) {
	e := New(testConfig())
	e.Start()
	defer e.Stop()

	if err := e.Set("foo", "bar", 0, []string{"t1"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, ok, err := e.Get("foo")
	if err != nil || !ok || v != "bar" {
		t.Fatalf("Get = %v, %v, %v; want bar, true, nil", v, ok, err)
	}
}

func TestEngine_StartStopIdempotent(t *testing.T) {
	e := New(testConfig())
	e.Start()
	e.Start()
	e.Stop()
	e.Stop()

	if _, _, err := e.Get("k"); !errors.Is(err, cache.ErrNotRunning) {
		t.Fatalf("Get after Stop: err = %v, want ErrNotRunning", err)
	}
}

func TestEngine_HealthCheckReflectsLifecycle(t *testing.T) {
	e := New(testConfig())

	h := e.HealthCheck()
	if h.Status != "stopped" {
		t.Fatalf("status = %q, want stopped", h.Status)
	}

	e.Start()
	defer e.Stop()
	time.Sleep(5 * time.Millisecond)

	h = e.HealthCheck()
	if h.Status != "healthy" {
		t.Fatalf("status = %q, want healthy", h.Status)
	}
	if h.UptimeSeconds <= 0 {
		t.Fatal("expected positive uptime once started")
	}
}

func TestEngine_GetMultiReturnsOnlyHits(t *testing.T) {
	e := New(testConfig())
	e.Start()
	defer e.Stop()

	e.Set("a", 1, 0, nil)
	e.Set("b", 2, 0, nil)

	got, err := e.GetMulti(context.Background(), []string{"a", "b", "missing"})
	if err != nil {
		t.Fatalf("GetMulti: %v", err)
	}
	if len(got) != 2 || got["a"] != 1 || got["b"] != 2 {
		t.Fatalf("GetMulti = %v, want a:1 b:2", got)
	}
}

func TestEngine_SetMultiInsertsAll(t *testing.T) {
	e := New(testConfig())
	e.Start()
	defer e.Stop()

	items := map[string]any{"a": 1, "b": 2, "c": 3}
	n, err := e.SetMulti(context.Background(), items, 0)
	if err != nil {
		t.Fatalf("SetMulti: %v", err)
	}
	if n != 3 {
		t.Fatalf("SetMulti inserted %d, want 3", n)
	}

	stats, _ := e.Stats()
	if stats.EntryCount != 3 {
		t.Fatalf("EntryCount = %d, want 3", stats.EntryCount)
	}
}

func TestEngine_SetInvalidKeyRejected(t *testing.T) {
	e := New(testConfig())
	e.Start()
	defer e.Stop()

	if err := e.Set("", "x", 0, nil); !errors.Is(err, cache.ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestEngine_ShardedCoreSelectedWhenConfigured(t *testing.T) {
	cfg := testConfig()
	cfg.Shards = 4
	e := New(cfg)
	if _, ok := e.core.(*cache.ShardedStore); !ok {
		t.Fatalf("core = %T, want *cache.ShardedStore", e.core)
	}
}
