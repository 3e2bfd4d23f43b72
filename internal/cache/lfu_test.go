package cache

import "testing"

func TestLFU_EvictsLeastFrequentlyUsed(t *testing.T) {
	s := newTestStore(3, PolicyLFU)
	s.Set("A", 1, 0, nil)
	s.Set("B", 2, 0, nil)
	s.Set("C", 3, 0, nil)

	// Access A and B several times; C stays at freq=1 (insert only).
	for i := 0; i < 3; i++ {
		s.Get("A")
		s.Get("B")
	}

	s.Set("D", 4, 0, nil)

	if _, ok := s.Get("C"); ok {
		t.Fatal("expected C (lowest frequency) to be evicted")
	}
	for _, k := range []string{"A", "B", "D"} {
		if _, ok := s.Get(k); !ok {
			t.Fatalf("expected %s present", k)
		}
	}
}

func TestLFU_TieBreaksFIFO(t *testing.T) {
	s := newTestStore(2, PolicyLFU)
	s.Set("first", 1, 0, nil)
	s.Set("second", 2, 0, nil)
	// Both at freq=1 (insert only); "first" was inserted earlier so it
	// must be the victim.
	s.Set("third", 3, 0, nil)

	if _, ok := s.Get("first"); ok {
		t.Fatal("expected earliest-inserted equal-frequency key to be evicted")
	}
	if _, ok := s.Get("second"); !ok {
		t.Fatal("expected second to survive")
	}
}

func TestLFU_ToleratesRemoveOfUntrackedKey(t *testing.T) {
	p := newLFUPolicy()
	p.OnRemove("never-seen") // must not panic
}
