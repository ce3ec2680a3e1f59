package cache

import "time"

// Cache is a bounded, TTL-aware key/value cache ordered by recency of use.
// All methods are safe for concurrent use by multiple goroutines.
//
// Every operation is O(1) except Keys, ForEach, Reset and Prune, which walk
// the whole recency list once.
type Cache[K comparable, V any] interface {
	// Get returns the value for k and a presence flag.
	// A live hit is promoted to MRU. An expired entry is removed; it is
	// reported as a miss unless Options.Stale is set, in which case its
	// value is returned this one time.
	Get(k K) (V, bool)

	// Peek is Get without promotion. Expired entries read as absent and are
	// left for the next Get, ForEach or Prune to remove.
	Peek(k K) (V, bool)

	// Set inserts or overwrites k→v with a relative ttl and makes it MRU.
	// ttl == 0 means the entry never expires; a negative ttl stores it
	// already expired. LRU entries are evicted until the total weight fits
	// Options.Capacity. Set returns false when v alone outweighs the
	// capacity; in that case nothing is stored and any previous value for k
	// is removed.
	Set(k K, v V, ttl time.Duration) bool

	// Delete removes every given key that is present. Missing keys are ignored.
	Delete(keys ...K)

	// Keys returns a snapshot of all resident keys, MRU first.
	// Entries are not checked for expiry.
	Keys() []K

	// ForEach calls fn for every live entry, MRU first, outside the cache lock.
	// Expired entries met on the way are removed (and still visited once when
	// Options.Stale is set).
	ForEach(fn func(k K, v V))

	// Reset removes every entry. OnEvict fires with EvictReset for each one.
	Reset()

	// Len returns the number of resident entries.
	Len() int

	// Weight returns the total weight of resident entries.
	Weight() int64

	// Prune removes every expired entry and returns how many were removed.
	Prune() int

	// Close marks the cache closed; later calls are ignored. It returns nil.
	Close() error
}
