package cache

import (
	"container/heap"
	"time"
)

// ttlHeapItem is one entry in the expiry min-heap: (absolute expiry time, key).
type ttlHeapItem struct {
	expiresAt time.Time
	key       string
}

type ttlHeap []ttlHeapItem

func (h ttlHeap) Len() int            { return len(h) }
func (h ttlHeap) Less(i, j int) bool  { return h[i].expiresAt.Before(h[j].expiresAt) }
func (h ttlHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *ttlHeap) Push(x any)         { *h = append(*h, x.(ttlHeapItem)) }
func (h *ttlHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// ttlPolicy evicts only keys whose TTL has already elapsed; it names no
// victim among still-live entries. A cache relying solely on TTL must
// therefore fall back to a secondary policy or refuse inserts once it is
// full of non-expired entries — see Store.evictOneLocked.
type ttlPolicy struct {
	h ttlHeap
}

func newTTLPolicy() *ttlPolicy {
	return &ttlPolicy{}
}

func (p *ttlPolicy) Name() string { return string(PolicyTTL) }

func (p *ttlPolicy) OnInsert(key string, e *Entry) {
	if e.HasTTL() {
		heap.Push(&p.h, ttlHeapItem{expiresAt: e.ExpiresAt(), key: key})
	}
}

func (p *ttlPolicy) OnAccess(string, *Entry) {}

func (p *ttlPolicy) OnRemove(string) {}

func (p *ttlPolicy) SelectVictim(now time.Time, storage map[string]*Entry) (string, bool) {
	for p.h.Len() > 0 {
		item := p.h[0]
		e, ok := storage[item.key]
		if !ok {
			// Stale: key no longer in storage, discard.
			heap.Pop(&p.h)
			continue
		}
		if !e.HasTTL() || e.ExpiresAt() != item.expiresAt {
			// Stale: entry was replaced since this heap entry was pushed.
			heap.Pop(&p.h)
			continue
		}
		if now.Before(item.expiresAt) {
			// Soonest-expiring live entry hasn't expired yet: no victim.
			return "", false
		}
		heap.Pop(&p.h)
		return item.key, true
	}
	return "", false
}

func (p *ttlPolicy) Reset() {
	p.h = nil
}
