package cache

import "github.com/IvanBrykalov/memstore/policy"

// EvictReason explains why an entry left the cache.
type EvictReason int

const (
	// EvictPolicy: nominated by the ordering policy on admission.
	EvictPolicy EvictReason = iota
	// EvictTTL: expired, found by Get, ForEach or Prune.
	EvictTTL
	// EvictCapacity: removed to bring the total weight back under Capacity.
	EvictCapacity
	// EvictDelete: removed by an explicit Delete.
	EvictDelete
	// EvictOverwrite: the old value of a key replaced by Set.
	EvictOverwrite
	// EvictReset: dropped by Reset.
	EvictReset
)

// String returns a stable lowercase name, suitable as a metric label.
func (r EvictReason) String() string {
	switch r {
	case EvictTTL:
		return "ttl"
	case EvictCapacity:
		return "capacity"
	case EvictDelete:
		return "delete"
	case EvictOverwrite:
		return "overwrite"
	case EvictReset:
		return "reset"
	default:
		return "policy"
	}
}

// Metrics exposes cache-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
type Metrics interface {
	Hit()
	Miss()
	Evict(reason EvictReason)
	Size(entries int, weight int64)
}

// Clock provides time in UnixNano; useful for deterministic tests.
type Clock interface{ NowUnixNano() int64 }

// Options configures the cache. Zero values are safe; New applies:
//   - Capacity == 0 => unbounded
//   - nil Policy    => LRU
//   - nil Weigher   => every entry weighs 1
//   - nil Metrics   => NoopMetrics
//   - nil Clock     => time.Now
type Options[K comparable, V any] struct {
	// Capacity bounds the total weight of resident entries. With the default
	// weigher it is an entry count.
	Capacity int64

	// Policy orders entries for eviction; nil => LRU.
	Policy policy.Policy[K, V]

	// Weigher returns the weight of an entry. Negative weights count as 0.
	Weigher func(k K, v V) int64

	// Stale makes Get and ForEach hand out an expired value once while
	// removing it.
	Stale bool

	// NoDisposeOnSet suppresses OnEvict(EvictOverwrite) when Set replaces a value.
	NoDisposeOnSet bool

	// OnEvict is called for every entry that leaves the cache, after the
	// cache lock has been released, so it may call back into the cache.
	OnEvict func(k K, v V, reason EvictReason)

	Metrics Metrics

	// Clock overrides the time source (tests). Nil => time.Now().
	Clock Clock
}
