package cache

import (
	"strings"
	"sync"
	"time"
)

// StoreConfig configures a Store's capacity bounds and eviction policy.
type StoreConfig struct {
	MaxEntries int
	MaxBytes   int64
	Policy     PolicyKind
}

// DefaultStoreConfig returns sane defaults: 10,000 entries, 100MB, LRU.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		MaxEntries: 10000,
		MaxBytes:   100 * 1024 * 1024,
		Policy:     PolicyLRU,
	}
}

// Store is the concurrent bounded storage core (C3). It owns the
// key->entry map, the tag index, byte/entry accounting, and the eviction
// loop on insert. It performs no I/O and exposes no internal timeouts;
// the only suspension point is lock acquisition.
//
// Store uses a single exclusive lock for the whole duration of every
// public operation (§5 design (a)): simple and correct. ShardedStore
// (sharded.go) offers design (b) for higher write concurrency.
type Store struct {
	mu sync.Mutex

	maxEntries int
	maxBytes   int64

	entries    map[string]*Entry
	tagIndex   map[string]map[string]struct{}
	totalBytes int64

	policy  Policy
	metrics counters

	now func() time.Time
}

// NewStore builds a Store from cfg. An invalid policy kind falls back to LRU.
func NewStore(cfg StoreConfig) *Store {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultStoreConfig().MaxEntries
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultStoreConfig().MaxBytes
	}
	return &Store{
		maxEntries: cfg.MaxEntries,
		maxBytes:   cfg.MaxBytes,
		entries:    make(map[string]*Entry),
		tagIndex:   make(map[string]map[string]struct{}),
		policy:     NewPolicy(cfg.Policy),
		now:        time.Now,
	}
}

// ValidateKey reports the one InvalidArgument condition the store itself
// enforces: key length must be 1..250 bytes. TTL validation (ttl > 0) and
// limit validation live at the engine/HTTP boundary per spec, since the
// store accepts ttl<=0 to mean "no expiry".
func ValidateKey(key string) bool {
	return len(key) >= 1 && len(key) <= 250
}

// Get retrieves key's value. A miss (absent or lazily-expired key) is
// reported via ok=false, never as an error.
func (s *Store) Get(key string) (value any, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e, present := s.entries[key]
	if !present {
		s.metrics.recordMiss()
		return nil, false
	}
	if e.IsExpired(now) {
		s.removeLocked(key)
		s.metrics.recordExpired()
		s.metrics.recordMiss()
		return nil, false
	}

	e.touch(now)
	s.policy.OnAccess(key, e)
	s.metrics.recordHit()
	return e.Value, true
}

// Set stores value under key, replacing any prior entry for key wholesale.
// It returns false (ErrRefused at the engine boundary) if the new entry
// alone is larger than maxBytes (refused before any entry is evicted) or
// if the policy cannot free enough space for it; in either case the key is
// left absent, even if it held a (now-removed) prior value — see §9.
func (s *Store) Set(key string, value any, ttl time.Duration, tags []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e := newEntry(key, value, ttl, tags, now)

	if _, exists := s.entries[key]; exists {
		s.removeLocked(key)
	}

	if int64(e.SizeBytes) > s.maxBytes {
		return false
	}

	for len(s.entries) >= s.maxEntries || s.totalBytes+int64(e.SizeBytes) > s.maxBytes {
		if !s.evictOneLocked(now) {
			return false
		}
	}

	s.entries[key] = e
	s.totalBytes += int64(e.SizeBytes)
	s.indexTags(key, e.Tags)
	s.policy.OnInsert(key, e)
	s.metrics.recordSet()
	return true
}

// Delete removes key if present, reporting whether it existed.
func (s *Store) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; !ok {
		return false
	}
	s.removeLocked(key)
	s.metrics.recordDelete()
	return true
}

// Clear removes every entry and resets the eviction policy, returning the
// count of entries removed.
func (s *Store) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.entries)
	s.entries = make(map[string]*Entry)
	s.tagIndex = make(map[string]map[string]struct{})
	s.totalBytes = 0
	s.policy.Reset()
	return n
}

// GetKeys returns a snapshot of keys present at call time, optionally
// filtered to those containing substr literally (substr == "" means no
// filter). Order is unspecified.
func (s *Store) GetKeys(substr string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		if substr == "" || strings.Contains(k, substr) {
			keys = append(keys, k)
		}
	}
	return keys
}

// Stats returns a by-value snapshot of the store's accounting and
// performance counters.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	entryCount := len(s.entries)
	totalBytes := s.totalBytes
	maxEntries := s.maxEntries
	maxBytes := s.maxBytes
	tagCount := len(s.tagIndex)
	policyName := s.policy.Name()
	s.mu.Unlock()

	hits := s.metrics.hits.Load()
	accesses := s.metrics.accesses.Load()

	var memPercent float64
	if maxBytes > 0 {
		memPercent = float64(totalBytes) / float64(maxBytes) * 100
	}

	return Stats{
		EntryCount:    entryCount,
		MaxEntries:    maxEntries,
		TotalBytes:    totalBytes,
		MaxBytes:      maxBytes,
		MemoryPercent: memPercent,
		Accesses:      accesses,
		Hits:          hits,
		Misses:        s.metrics.misses.Load(),
		HitRatio:      hitRatio(hits, accesses),
		Evictions:     s.metrics.evictions.Load(),
		Expired:       s.metrics.expired.Load(),
		Sets:          s.metrics.sets.Load(),
		Deletes:       s.metrics.deletes.Load(),
		TagCount:      tagCount,
		PolicyName:    policyName,
	}
}

// ExpireOnce scans every entry and reclaims those whose TTL has elapsed as
// of now, notifying the policy and updating accounting exactly as lazy
// expiry on Get would. Used by the background expirer (expirer.go).
func (s *Store) ExpireOnce(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expired []string
	for k, e := range s.entries {
		if e.IsExpired(now) {
			expired = append(expired, k)
		}
	}
	for _, k := range expired {
		s.removeLocked(k)
		s.metrics.recordExpired()
	}
	return len(expired)
}

// removeLocked removes key's entry, updating the tag index, byte
// accounting, and eviction policy state. Caller must hold s.mu.
func (s *Store) removeLocked(key string) {
	e, ok := s.entries[key]
	if !ok {
		return
	}
	s.unindexTags(key, e.Tags)
	s.totalBytes -= int64(e.SizeBytes)
	delete(s.entries, key)
	s.policy.OnRemove(key)
}

// evictOneLocked asks the policy for a victim and removes it, re-checking
// that it is still present under lock (eviction fairness, §5). Returns
// false if the policy could name no victim, meaning the insert in
// progress must be refused.
func (s *Store) evictOneLocked(now time.Time) bool {
	for {
		victim, ok := s.policy.SelectVictim(now, s.entries)
		if !ok {
			return false
		}
		if _, present := s.entries[victim]; !present {
			// Stale victim (already gone); ask again.
			s.policy.OnRemove(victim)
			continue
		}
		s.removeLocked(victim)
		s.metrics.recordEviction()
		return true
	}
}

func (s *Store) indexTags(key string, tags []string) {
	for _, t := range tags {
		bucket, ok := s.tagIndex[t]
		if !ok {
			bucket = make(map[string]struct{})
			s.tagIndex[t] = bucket
		}
		bucket[key] = struct{}{}
	}
}

func (s *Store) unindexTags(key string, tags []string) {
	for _, t := range tags {
		bucket, ok := s.tagIndex[t]
		if !ok {
			continue
		}
		delete(bucket, key)
		if len(bucket) == 0 {
			delete(s.tagIndex, t)
		}
	}
}

// KeysByTag returns a snapshot of keys indexed under tag.
func (s *Store) KeysByTag(tag string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket, ok := s.tagIndex[tag]
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(bucket))
	for k := range bucket {
		keys = append(keys, k)
	}
	return keys
}
