package cache

import "errors"

// Sentinel error kinds returned by the storage core and engine facade.
// "missing key" is never one of these — it is reported as a normal
// negative result (a boolean or a zero value), not an error.
var (
	// ErrRefused means an insert could not free enough space to fit the
	// new entry; no partial state is left other than the already-removed
	// prior value on key replacement.
	ErrRefused = errors.New("unable to evict items to make space")

	// ErrInvalidArgument means the caller supplied a key outside 1..250
	// bytes; Engine.Set returns it. Non-positive TTLs and out-of-range
	// limits are rejected with 400 by the HTTP handlers without this
	// error, and an unknown policy name falls back to LRU.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotRunning means an operation was attempted before Start or
	// after Stop.
	ErrNotRunning = errors.New("cache engine is not running")
)
