package cache

import "time"

// Core is the common contract the engine facade depends on, satisfied by
// both Store (single-lock) and ShardedStore (sharded), per spec §5's two
// acceptable scheduling models.
type Core interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration, tags []string) bool
	Delete(key string) bool
	Clear() int
	GetKeys(substr string) []string
	ExpireOnce(now time.Time) int
	Stats() Stats
}

var (
	_ Core = (*Store)(nil)
	_ Core = (*ShardedStore)(nil)
)
