package cache

import "sync/atomic"

// counters holds the storage core's running statistics. All fields are
// updated with atomic ops so Stats() can be read without holding the
// store's main lock.
type counters struct {
	accesses  atomic.Uint64
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
	expired   atomic.Uint64
	sets      atomic.Uint64
	deletes   atomic.Uint64
}

// Stats is a by-value snapshot of a Store's accounting and performance
// counters, safe to return outside any lock.
type Stats struct {
	EntryCount    int     `json:"entry_count"`
	MaxEntries    int     `json:"max_entries"`
	TotalBytes    int64   `json:"total_bytes"`
	MaxBytes      int64   `json:"max_bytes"`
	MemoryPercent float64 `json:"memory_percent"`
	Accesses      uint64  `json:"accesses"`
	Hits          uint64  `json:"hits"`
	Misses        uint64  `json:"misses"`
	HitRatio      float64 `json:"hit_ratio"`
	Evictions     uint64  `json:"evictions"`
	Expired       uint64  `json:"expired_items"`
	Sets          uint64  `json:"sets"`
	Deletes       uint64  `json:"deletes"`
	TagCount      int     `json:"tag_count"`
	PolicyName    string  `json:"policy_name"`
}

func (c *counters) recordHit() {
	c.accesses.Add(1)
	c.hits.Add(1)
}

func (c *counters) recordMiss() {
	c.accesses.Add(1)
	c.misses.Add(1)
}

func (c *counters) recordEviction() {
	c.evictions.Add(1)
}

func (c *counters) recordExpired() {
	c.expired.Add(1)
}

func (c *counters) recordSet() {
	c.sets.Add(1)
}

func (c *counters) recordDelete() {
	c.deletes.Add(1)
}

func hitRatio(hits, accesses uint64) float64 {
	if accesses == 0 {
		return 0.0
	}
	return float64(hits) / float64(accesses)
}
