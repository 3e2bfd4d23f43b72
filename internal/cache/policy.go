package cache

import "time"

// Policy is the capability set an eviction policy must implement. The
// storage core consults it on every access/insert/remove and, when full,
// asks it for a victim. Policies must tolerate OnRemove for a key they
// never tracked and must never name a key absent from storage.
type Policy interface {
	// Name identifies the policy for stats reporting (e.g. "lru").
	Name() string

	// OnInsert is called after a successful insert of a new key.
	OnInsert(key string, e *Entry)

	// OnAccess is called after a successful non-expired read.
	OnAccess(key string, e *Entry)

	// OnRemove is called after any removal (delete, expiry, eviction).
	OnRemove(key string)

	// SelectVictim returns a key currently in storage whose removal is
	// permitted, or "", false if the policy cannot name one.
	SelectVictim(now time.Time, storage map[string]*Entry) (string, bool)

	// Reset clears all policy state, used by Store.Clear.
	Reset()
}

// PolicyKind names the built-in policy variants selectable at construction.
type PolicyKind string

const (
	PolicyLRU PolicyKind = "lru"
	PolicyLFU PolicyKind = "lfu"
	PolicyTTL PolicyKind = "ttl"
)

// NewPolicy constructs a Policy by name, defaulting to LRU for an unknown
// kind so it never returns a nil Policy. No caller reports an unknown
// kind as ErrInvalidArgument: NewStore falls back to LRU and
// config.FromEnv keeps its default; ValidPolicyKind is the check.
func NewPolicy(kind PolicyKind) Policy {
	switch kind {
	case PolicyLFU:
		return newLFUPolicy()
	case PolicyTTL:
		return newTTLPolicy()
	default:
		return newLRUPolicy()
	}
}

// ValidPolicyKind reports whether kind names one of the built-in policies.
func ValidPolicyKind(kind PolicyKind) bool {
	switch kind {
	case PolicyLRU, PolicyLFU, PolicyTTL:
		return true
	default:
		return false
	}
}
