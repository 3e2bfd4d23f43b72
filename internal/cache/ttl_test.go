package cache

import (
	"testing"
	"time"
)

func TestTTL_SelectVictimOnlyNamesExpiredKeys(t *testing.T) {
	s := newTestStore(2, PolicyTTL)
	if !s.Set("A", 1, 20*time.Millisecond, nil) {
		t.Fatal("first insert should always succeed")
	}
	if !s.Set("B", 2, time.Hour, nil) {
		t.Fatal("second insert should always succeed")
	}

	// Neither has expired yet: a third insert must be refused, since TTL
	// policy alone cannot name a victim among live entries.
	if s.Set("C", 3, time.Hour, nil) {
		t.Fatal("expected insert to be refused: no expired victim available")
	}

	time.Sleep(30 * time.Millisecond)

	// Now A has expired; inserting C should succeed by evicting A.
	if !s.Set("C", 3, time.Hour, nil) {
		t.Fatal("expected insert to succeed once A has expired")
	}
	if _, ok := s.Get("A"); ok {
		t.Fatal("expected A evicted")
	}
	if _, ok := s.Get("B"); !ok {
		t.Fatal("expected B to survive")
	}
}

func TestTTL_ToleratesRemoveOfUntrackedKey(t *testing.T) {
	p := newTTLPolicy()
	p.OnRemove("never-seen") // must not panic
}
