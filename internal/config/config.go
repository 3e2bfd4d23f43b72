// Package config holds CacheGrid's startup configuration: struct
// defaults overridable by environment variables, using a plain
// Config/DefaultConfig struct literal rather than pulling in an
// external config library.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/watt-toolkit/cachegrid/internal/cache"
)

// Config is the top-level process configuration: HTTP bind address plus
// the engine's storage tuning.
type Config struct {
	// Host and Port control the HTTP listen address.
	Host string
	Port int

	MaxEntries      int
	MaxBytes        int64
	Policy          cache.PolicyKind
	CleanupInterval time.Duration
	Shards          int

	// EnableLogging toggles the request logger middleware.
	EnableLogging bool
}

// DefaultConfig returns sane defaults: 10k entries, 100MB, LRU, a 60s
// cleanup sweep, listening on :8080.
func DefaultConfig() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            8080,
		MaxEntries:      10000,
		MaxBytes:        100 << 20,
		Policy:          cache.PolicyLRU,
		CleanupInterval: 60 * time.Second,
		Shards:          0,
		EnableLogging:   true,
	}
}

// FromEnv starts from DefaultConfig and overlays recognized
// CACHEGRID_* environment variables. Malformed values are ignored and
// the default is kept, since a broken env var should not take the
// process down before logging is even wired up.
func FromEnv() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("CACHEGRID_HOST"); v != "" {
		cfg.Host = v
	}
	if v, ok := getenvInt("CACHEGRID_PORT"); ok {
		cfg.Port = v
	}
	if v, ok := getenvInt("CACHEGRID_MAX_ENTRIES"); ok {
		cfg.MaxEntries = v
	}
	if v, ok := getenvInt64("CACHEGRID_MAX_BYTES"); ok {
		cfg.MaxBytes = v
	}
	if v := os.Getenv("CACHEGRID_POLICY"); v != "" && cache.ValidPolicyKind(cache.PolicyKind(v)) {
		cfg.Policy = cache.PolicyKind(v)
	}
	if v, ok := getenvInt("CACHEGRID_CLEANUP_INTERVAL_SECONDS"); ok {
		cfg.CleanupInterval = time.Duration(v) * time.Second
	}
	if v, ok := getenvInt("CACHEGRID_SHARDS"); ok {
		cfg.Shards = v
	}
	if v, ok := getenvBool("CACHEGRID_ENABLE_LOGGING"); ok {
		cfg.EnableLogging = v
	}

	return cfg
}

// Addr returns the host:port listen address.
func (c Config) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

func getenvInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func getenvInt64(key string) (int64, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func getenvBool(key string) (bool, bool) {
	v := os.Getenv(key)
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}
