package cache

// node is an intrusive list element owned by the cache.
type node[K comparable, V any] struct {
	key K
	val V

	// head is MRU, tail is LRU.
	prev *node[K, V]
	next *node[K, V]

	// Absolute deadline in UnixNano; zero means the entry never expires.
	exp int64

	weight int64
}

func (n *node[K, V]) Key() K { return n.key }

// Value returns a pointer to the stored value. Only valid under the cache lock.
func (n *node[K, V]) Value() *V { return &n.val }
