package cache

import (
	"hash/maphash"
	"time"
)

// ShardedStore partitions the keyspace across N independent Stores, each
// with its own lock, to reduce contention under concurrent writers (§5
// design (b)). Cross-shard operations (Clear, Stats, GetKeys) iterate
// every shard and return a consistent-per-shard snapshot; they are not a
// single atomic operation across the whole cache.
type ShardedStore struct {
	shards    []*Store
	shardMask uint64
	seed      maphash.Seed
}

// ShardedStoreConfig extends StoreConfig with the shard count. Per-shard
// bounds are cfg.MaxEntries/MaxBytes divided by ShardCount (rounded down,
// at least 1), so total capacity matches a single Store built with the
// same cfg only when the bounds divide evenly. A zero bound is passed to
// each shard unchanged, so every shard applies NewStore's default.
type ShardedStoreConfig struct {
	StoreConfig
	ShardCount int
}

// NewShardedStore builds a ShardedStore. ShardCount is rounded up to the
// next power of two (0 defaults to 16).
func NewShardedStore(cfg ShardedStoreConfig) *ShardedStore {
	if cfg.ShardCount <= 0 {
		cfg.ShardCount = 16
	}
	if cfg.ShardCount&(cfg.ShardCount-1) != 0 {
		n := 1
		for n < cfg.ShardCount {
			n <<= 1
		}
		cfg.ShardCount = n
	}

	perShard := cfg.StoreConfig
	if perShard.MaxEntries > 0 {
		perShard.MaxEntries = max(1, perShard.MaxEntries/cfg.ShardCount)
	}
	if perShard.MaxBytes > 0 {
		perShard.MaxBytes = perShard.MaxBytes / int64(cfg.ShardCount)
		if perShard.MaxBytes <= 0 {
			perShard.MaxBytes = 1
		}
	}

	ss := &ShardedStore{
		shards:    make([]*Store, cfg.ShardCount),
		shardMask: uint64(cfg.ShardCount - 1),
		seed:      maphash.MakeSeed(),
	}
	for i := range ss.shards {
		ss.shards[i] = NewStore(perShard)
	}
	return ss
}

func (ss *ShardedStore) shardFor(key string) *Store {
	var h maphash.Hash
	h.SetSeed(ss.seed)
	h.WriteString(key)
	return ss.shards[h.Sum64()&ss.shardMask]
}

func (ss *ShardedStore) Get(key string) (any, bool) {
	return ss.shardFor(key).Get(key)
}

func (ss *ShardedStore) Set(key string, value any, ttl time.Duration, tags []string) bool {
	return ss.shardFor(key).Set(key, value, ttl, tags)
}

func (ss *ShardedStore) Delete(key string) bool {
	return ss.shardFor(key).Delete(key)
}

func (ss *ShardedStore) Clear() int {
	total := 0
	for _, shard := range ss.shards {
		total += shard.Clear()
	}
	return total
}

func (ss *ShardedStore) GetKeys(substr string) []string {
	var keys []string
	for _, shard := range ss.shards {
		keys = append(keys, shard.GetKeys(substr)...)
	}
	return keys
}

func (ss *ShardedStore) ExpireOnce(now time.Time) int {
	total := 0
	for _, shard := range ss.shards {
		total += shard.ExpireOnce(now)
	}
	return total
}

// Stats aggregates every shard's counters into one snapshot. HitRatio and
// MemoryPercent are recomputed from the aggregated totals, not averaged.
func (ss *ShardedStore) Stats() Stats {
	var agg Stats
	agg.PolicyName = ss.shards[0].Stats().PolicyName
	for _, shard := range ss.shards {
		s := shard.Stats()
		agg.EntryCount += s.EntryCount
		agg.MaxEntries += s.MaxEntries
		agg.TotalBytes += s.TotalBytes
		agg.MaxBytes += s.MaxBytes
		agg.Accesses += s.Accesses
		agg.Hits += s.Hits
		agg.Misses += s.Misses
		agg.Evictions += s.Evictions
		agg.Expired += s.Expired
		agg.Sets += s.Sets
		agg.Deletes += s.Deletes
		agg.TagCount += s.TagCount
	}
	agg.HitRatio = hitRatio(agg.Hits, agg.Accesses)
	if agg.MaxBytes > 0 {
		agg.MemoryPercent = float64(agg.TotalBytes) / float64(agg.MaxBytes) * 100
	}
	return agg
}
