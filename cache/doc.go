// Package cache provides the bounded, TTL-aware LRU engine behind the
// session store: a generic in-memory key/value cache with per-entry
// deadlines, per-entry weights and a pluggable ordering policy.
//
// Design
//
//   - Storage: a map[K]*node for lookups and an intrusive MRU↔LRU doubly
//     linked list for ordering, guarded by a single mutex so recency is
//     global. Get/Set/Delete are O(1).
//
//   - Capacity: Options.Capacity bounds the sum of entry weights
//     (Options.Weigher, default 1 per entry). After every Set the LRU end is
//     evicted until the sum fits. Zero means unbounded.
//
//   - TTL: Set takes a relative ttl turned into an absolute deadline. An
//     entry is expired once its deadline is <= now. Expiry is lazy in Get and
//     ForEach; Prune sweeps the whole list and is what a periodic task calls.
//
//   - Stale reads: with Options.Stale an expired value is returned one last
//     time by the access that removes it.
//
//   - Callbacks: Options.OnEvict(k, v, reason) runs for every removal,
//     including overwrites (unless NoDisposeOnSet), deletes and Reset. It is
//     invoked after the lock is released.
//
//   - Metrics: Options.Metrics receives Hit/Miss/Evict/Size signals.
//     NoopMetrics is the default; metrics/prom exports them to Prometheus.
//
// Basic usage
//
//	c := cache.New[string, []byte](cache.Options[string, []byte]{Capacity: 10_000})
//	c.Set("sid", []byte(`{"cookie":{}}`), 30*time.Minute)
//	if v, ok := c.Get("sid"); ok {
//	    _ = v
//	}
//	c.Delete("sid")
//
// Weighted capacity
//
//	c := cache.New[string, []byte](cache.Options[string, []byte]{
//	    Capacity: 64 << 20, // bytes
//	    Weigher:  func(_ string, v []byte) int64 { return int64(len(v)) },
//	})
package cache
