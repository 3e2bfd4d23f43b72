// Command cachegrid runs the CacheGrid HTTP server: an in-memory cache
// with TTL expiry, pluggable eviction policies, tag-indexed lookup, and
// a thin JSON adapter, starting and stopping the engine around the
// HTTP server's own lifecycle.
package main

import (
	"log"

	"github.com/watt-toolkit/cachegrid/internal/config"
	"github.com/watt-toolkit/cachegrid/internal/engine"
	"github.com/watt-toolkit/cachegrid/internal/httpapi"
)

func main() {
	cfg := config.FromEnv()

	eng := engine.New(engine.Config{
		MaxEntries:      cfg.MaxEntries,
		MaxBytes:        cfg.MaxBytes,
		Policy:          cfg.Policy,
		CleanupInterval: cfg.CleanupInterval,
		Shards:          cfg.Shards,
	})
	eng.Start()
	defer eng.Stop()

	log.Printf("CacheGrid starting: policy=%s maxEntries=%d maxBytes=%d", cfg.Policy, cfg.MaxEntries, cfg.MaxBytes)

	srv := httpapi.NewServer(cfg.Addr(), eng, cfg.EnableLogging)
	if err := srv.Run(); err != nil {
		log.Fatalf("CacheGrid server error: %v", err)
	}

	log.Println("CacheGrid shutdown complete")
}
