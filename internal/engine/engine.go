// Package engine implements CacheGrid's facade (C5): lifecycle
// (start/stop), health reporting, stats snapshots, and batch operations
// built on top of the storage core in internal/cache.
package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/watt-toolkit/cachegrid/internal/cache"
	"golang.org/x/sync/errgroup"
)

// Config configures the Engine's underlying storage core.
type Config struct {
	MaxEntries      int
	MaxBytes        int64
	Policy          cache.PolicyKind
	CleanupInterval time.Duration
	// Shards selects the scheduling model (§5): 0 or 1 uses a single-lock
	// Store; >1 uses a sharded Store with that many shards, rounded up to
	// the next power of two.
	Shards int
}

// DefaultConfig wraps cache.DefaultStoreConfig with a 60s cleanup sweep
// and no sharding — a single-node default.
func DefaultConfig() Config {
	d := cache.DefaultStoreConfig()
	return Config{
		MaxEntries:      d.MaxEntries,
		MaxBytes:        d.MaxBytes,
		Policy:          d.Policy,
		CleanupInterval: 60 * time.Second,
		Shards:          0,
	}
}

// Engine is the lifecycle-owning facade clients interact with. It owns a
// cache.Core and starts/stops the background expirer. All operations
// except HealthCheck fail with cache.ErrNotRunning when attempted before
// Start or after Stop.
type Engine struct {
	core    cache.Core
	expirer *cache.Expirer

	mu        sync.RWMutex
	running   bool
	startTime time.Time
}

// New builds an Engine from cfg but does not start it; call Start.
func New(cfg Config) *Engine {
	storeCfg := cache.StoreConfig{MaxEntries: cfg.MaxEntries, MaxBytes: cfg.MaxBytes, Policy: cfg.Policy}

	var core cache.Core
	if cfg.Shards > 1 {
		core = cache.NewShardedStore(cache.ShardedStoreConfig{StoreConfig: storeCfg, ShardCount: cfg.Shards})
	} else {
		core = cache.NewStore(storeCfg)
	}

	interval := cfg.CleanupInterval
	if interval <= 0 {
		interval = 60 * time.Second
	}

	return &Engine{
		core:    core,
		expirer: cache.NewExpirer(core, interval),
	}
}

// Start launches the background expirer and records startTime. Idempotent.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return
	}
	e.expirer.Start()
	e.running = true
	e.startTime = time.Now()
}

// Stop cancels the background expirer and awaits its termination.
// Idempotent. Subsequent Get/Set/... fail with cache.ErrNotRunning.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return
	}
	e.expirer.Stop()
	e.running = false
}

func (e *Engine) isRunning() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.running
}

// Get retrieves key's value.
func (e *Engine) Get(key string) (any, bool, error) {
	if !e.isRunning() {
		return nil, false, cache.ErrNotRunning
	}
	v, ok := e.core.Get(key)
	return v, ok, nil
}

// Set stores value under key with an optional ttl (<=0 means no expiry)
// and optional tags.
func (e *Engine) Set(key string, value any, ttl time.Duration, tags []string) error {
	if !e.isRunning() {
		return cache.ErrNotRunning
	}
	if !cache.ValidateKey(key) {
		return cache.ErrInvalidArgument
	}
	if !e.core.Set(key, value, ttl, tags) {
		return cache.ErrRefused
	}
	return nil
}

// Delete removes key, reporting whether it existed.
func (e *Engine) Delete(key string) (bool, error) {
	if !e.isRunning() {
		return false, cache.ErrNotRunning
	}
	return e.core.Delete(key), nil
}

// Clear removes every entry, returning the count removed.
func (e *Engine) Clear() (int, error) {
	if !e.isRunning() {
		return 0, cache.ErrNotRunning
	}
	return e.core.Clear(), nil
}

// Keys returns a snapshot of keys, optionally filtered by literal substring.
func (e *Engine) Keys(substr string) ([]string, error) {
	if !e.isRunning() {
		return nil, cache.ErrNotRunning
	}
	return e.core.GetKeys(substr), nil
}

// Stats returns the storage core's statistics snapshot.
func (e *Engine) Stats() (cache.Stats, error) {
	if !e.isRunning() {
		return cache.Stats{}, cache.ErrNotRunning
	}
	return e.core.Stats(), nil
}

// Health reports the engine's liveness snapshot.
type Health struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	EntryCount    int     `json:"entry_count"`
	HitRatio      float64 `json:"hit_ratio"`
	MemoryMB      float64 `json:"memory_mb"`
	LastCheck     float64 `json:"last_check"`
}

// HealthCheck returns a liveness snapshot. It never errors: a stopped
// engine reports status "stopped" rather than failing, matching the
// reference's health_check behavior.
func (e *Engine) HealthCheck() Health {
	e.mu.RLock()
	running := e.running
	startTime := e.startTime
	e.mu.RUnlock()

	now := time.Now()
	h := Health{
		Status:    "stopped",
		LastCheck: float64(now.Unix()),
	}
	if running {
		h.Status = "healthy"
		h.UptimeSeconds = now.Sub(startTime).Seconds()
	}

	stats := e.core.Stats()
	h.EntryCount = stats.EntryCount
	h.HitRatio = stats.HitRatio
	h.MemoryMB = float64(stats.TotalBytes) / (1024 * 1024)
	return h
}

// GetMulti returns a mapping containing only the keys that hit. Not
// atomic: each key is resolved independently, concurrently, bounded by
// ctx (keys not yet resolved when ctx is done are skipped) — a partial
// result is normal.
func (e *Engine) GetMulti(ctx context.Context, keys []string) (map[string]any, error) {
	if !e.isRunning() {
		return nil, cache.ErrNotRunning
	}

	var mu sync.Mutex
	result := make(map[string]any, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	for _, k := range keys {
		k := k
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			if v, ok := e.core.Get(k); ok {
				mu.Lock()
				result[k] = v
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait() // per-key work never returns an error; nothing to propagate
	return result, nil
}

// SetMulti stores every item in items with a shared optional ttl,
// returning the count successfully inserted. Not atomic: each key is
// applied independently, concurrently, bounded by ctx (keys not yet
// applied when ctx is done are skipped and not counted).
func (e *Engine) SetMulti(ctx context.Context, items map[string]any, ttl time.Duration) (int, error) {
	if !e.isRunning() {
		return 0, cache.ErrNotRunning
	}

	var count atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for k, v := range items {
		k, v := k, v
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			if cache.ValidateKey(k) && e.core.Set(k, v, ttl, nil) {
				count.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()
	return int(count.Load()), nil
}
