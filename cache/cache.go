package cache

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/IvanBrykalov/memstore/policy"
	"github.com/IvanBrykalov/memstore/policy/lru"
)

// cache keeps a map for lookups and an intrusive doubly linked list
// (head=MRU, tail=LRU) for ordering, both guarded by one mutex so the
// recency order is global.
type cache[K comparable, V any] struct {
	// ---- guarded by mu ----
	mu     sync.Mutex
	m      map[K]*node[K, V]
	head   *node[K, V] // MRU
	tail   *node[K, V] // LRU
	len    int
	weight int64
	cap    int64 // 0 = unbounded

	// removals made while mu is held, reported by unlock.
	evicted []eviction[K, V]

	pol policy.Instance[K, V]
	opt Options[K, V]

	closed atomic.Bool
}

type eviction[K comparable, V any] struct {
	key    K
	val    V
	reason EvictReason
}

// New constructs a cache with the provided Options.
// It panics if Capacity is negative.
func New[K comparable, V any](opt Options[K, V]) Cache[K, V] {
	if opt.Capacity < 0 {
		panic("cache: Capacity must be >= 0")
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	if opt.Policy == nil {
		opt.Policy = lru.New[K, V]()
	}

	c := &cache[K, V]{
		m:   make(map[K]*node[K, V]),
		cap: opt.Capacity,
		opt: opt,
	}
	c.pol = opt.Policy.New(listHooks[K, V]{c: c})
	return c
}

func (c *cache[K, V]) Get(k K) (V, bool) {
	var zero V
	if c.closed.Load() {
		return zero, false
	}
	c.mu.Lock()
	defer c.unlock()

	n, ok := c.m[k]
	if !ok {
		c.opt.Metrics.Miss()
		return zero, false
	}
	if c.expiredLocked(n, c.now()) {
		v := n.val
		c.evictNode(n, EvictTTL)
		c.opt.Metrics.Miss()
		if c.opt.Stale {
			return v, true
		}
		return zero, false
	}

	c.pol.OnGet(n)
	c.opt.Metrics.Hit()
	return n.val, true
}

func (c *cache[K, V]) Peek(k K) (V, bool) {
	var zero V
	if c.closed.Load() {
		return zero, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.m[k]
	if !ok || c.expiredLocked(n, c.now()) {
		return zero, false
	}
	return n.val, true
}

func (c *cache[K, V]) Set(k K, v V, ttl time.Duration) bool {
	if c.closed.Load() {
		return false
	}
	w := c.weigh(k, v)

	c.mu.Lock()
	defer c.unlock()

	exp := c.deadline(ttl)
	if c.cap > 0 && w > c.cap {
		if n, ok := c.m[k]; ok {
			c.evictNode(n, EvictCapacity)
		}
		c.evicted = append(c.evicted, eviction[K, V]{key: k, val: v, reason: EvictCapacity})
		return false
	}

	if n, ok := c.m[k]; ok {
		if !c.opt.NoDisposeOnSet {
			c.evicted = append(c.evicted, eviction[K, V]{key: k, val: n.val, reason: EvictOverwrite})
		}
		c.weight += w - n.weight
		n.val, n.exp, n.weight = v, exp, w
		c.pol.OnUpdate(n)
		c.enforceLimitsLocked()
		return true
	}

	n := &node[K, V]{key: k, val: v, exp: exp, weight: w}
	c.m[k] = n
	if ev := c.pol.OnAdd(n); ev != nil {
		c.evictNode(ev.(*node[K, V]), EvictPolicy)
	}
	c.enforceLimitsLocked()
	return true
}

func (c *cache[K, V]) Delete(keys ...K) {
	if c.closed.Load() {
		return
	}
	c.mu.Lock()
	defer c.unlock()

	for _, k := range keys {
		if n, ok := c.m[k]; ok {
			c.evictNode(n, EvictDelete)
		}
	}
}

func (c *cache[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]K, 0, c.len)
	for n := c.head; n != nil; n = n.next {
		keys = append(keys, n.key)
	}
	return keys
}

func (c *cache[K, V]) ForEach(fn func(k K, v V)) {
	if c.closed.Load() {
		return
	}
	visit := make([]eviction[K, V], 0, c.Len())

	c.mu.Lock()
	now := c.now()
	for n := c.head; n != nil; {
		next := n.next
		if c.expiredLocked(n, now) {
			if c.opt.Stale {
				visit = append(visit, eviction[K, V]{key: n.key, val: n.val})
			}
			c.evictNode(n, EvictTTL)
		} else {
			visit = append(visit, eviction[K, V]{key: n.key, val: n.val})
		}
		n = next
	}
	c.unlock()

	for _, e := range visit {
		fn(e.key, e.val)
	}
}

func (c *cache[K, V]) Reset() {
	c.mu.Lock()
	defer c.unlock()

	for n := c.head; n != nil; n = n.next {
		c.pol.OnRemove(n)
		c.evicted = append(c.evicted, eviction[K, V]{key: n.key, val: n.val, reason: EvictReset})
	}
	c.m = make(map[K]*node[K, V])
	c.head, c.tail = nil, nil
	c.len, c.weight = 0, 0
}

func (c *cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.len
}

func (c *cache[K, V]) Weight() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.weight
}

func (c *cache[K, V]) Prune() int {
	if c.closed.Load() {
		return 0
	}
	c.mu.Lock()
	defer c.unlock()

	now := c.now()
	pruned := 0
	for n := c.head; n != nil; {
		next := n.next
		if c.expiredLocked(n, now) {
			c.evictNode(n, EvictTTL)
			pruned++
		}
		n = next
	}
	return pruned
}

// Close marks the cache as closed. Future operations are ignored.
func (c *cache[K, V]) Close() error {
	c.closed.Store(true)
	return nil
}

// -------------------- internals (mu held) --------------------

// unlock releases mu, then reports the size and every removal collected
// while it was held.
func (c *cache[K, V]) unlock() {
	evs := c.evicted
	c.evicted = nil
	entries, weight := c.len, c.weight
	c.mu.Unlock()

	c.opt.Metrics.Size(entries, weight)
	for _, e := range evs {
		c.opt.Metrics.Evict(e.reason)
		if cb := c.opt.OnEvict; cb != nil {
			cb(e.key, e.val, e.reason)
		}
	}
}

func (c *cache[K, V]) expiredLocked(n *node[K, V], now int64) bool {
	return n.exp != 0 && n.exp <= now
}

func (c *cache[K, V]) now() int64 {
	if c.opt.Clock != nil {
		return c.opt.Clock.NowUnixNano()
	}
	return time.Now().UnixNano()
}

// deadline converts a relative ttl into an absolute UnixNano deadline.
// Zero stays zero (no expiration); deadlines past the int64 range saturate.
func (c *cache[K, V]) deadline(ttl time.Duration) int64 {
	if ttl == 0 {
		return 0
	}
	now := c.now()
	if ttl > 0 && now > math.MaxInt64-int64(ttl) {
		return math.MaxInt64
	}
	exp := now + int64(ttl)
	if exp == 0 {
		exp = -1
	}
	return exp
}

func (c *cache[K, V]) weigh(k K, v V) int64 {
	if c.opt.Weigher == nil {
		return 1
	}
	w := c.opt.Weigher(k, v)
	if w < 0 {
		w = 0
	}
	return w
}

// insertFront links n at MRU.
func (c *cache[K, V]) insertFront(n *node[K, V]) {
	n.prev = nil
	n.next = c.head
	if c.head != nil {
		c.head.prev = n
	}
	c.head = n
	if c.tail == nil {
		c.tail = n
	}
	c.len++
	c.weight += n.weight
}

// moveToFront promotes n to MRU.
func (c *cache[K, V]) moveToFront(n *node[K, V]) {
	if n == c.head {
		return
	}
	if n.prev != nil {
		n.prev.next = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	if c.tail == n {
		c.tail = n.prev
	}
	n.prev = nil
	n.next = c.head
	if c.head != nil {
		c.head.prev = n
	}
	c.head = n
	if c.tail == nil {
		c.tail = n
	}
}

// removeNode unlinks n and updates counters.
func (c *cache[K, V]) removeNode(n *node[K, V]) {
	if n.prev != nil {
		n.prev.next = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	if c.head == n {
		c.head = n.next
	}
	if c.tail == n {
		c.tail = n.prev
	}
	n.prev, n.next = nil, nil
	c.len--
	c.weight -= n.weight
	if c.weight < 0 {
		c.weight = 0
	}
}

// evictNode forgets n and queues it for OnEvict.
func (c *cache[K, V]) evictNode(n *node[K, V], reason EvictReason) {
	c.pol.OnRemove(n)
	c.removeNode(n)
	delete(c.m, n.key)
	c.evicted = append(c.evicted, eviction[K, V]{key: n.key, val: n.val, reason: reason})
}

// enforceLimitsLocked evicts from the LRU end until the weight fits.
func (c *cache[K, V]) enforceLimitsLocked() {
	if c.cap <= 0 {
		return
	}
	for c.weight > c.cap {
		tail := c.tail
		if tail == nil {
			break
		}
		c.evictNode(tail, EvictCapacity)
	}
}

// -------------------- policy hooks --------------------

// listHooks adapts the cache's list operations to policy.Hooks.
type listHooks[K comparable, V any] struct{ c *cache[K, V] }

func (h listHooks[K, V]) MoveToFront(x policy.Node[K, V]) { h.c.moveToFront(x.(*node[K, V])) }
func (h listHooks[K, V]) PushFront(x policy.Node[K, V])   { h.c.insertFront(x.(*node[K, V])) }
func (h listHooks[K, V]) Remove(x policy.Node[K, V])      { h.c.removeNode(x.(*node[K, V])) }
func (h listHooks[K, V]) Len() int                        { return h.c.len }

func (h listHooks[K, V]) Back() policy.Node[K, V] {
	if h.c.tail == nil {
		return nil
	}
	return h.c.tail
}
