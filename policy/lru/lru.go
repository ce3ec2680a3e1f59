// Package lru implements strict least-recently-used ordering.
package lru

import "github.com/IvanBrykalov/memstore/policy"

type lru[K comparable, V any] struct {
	h policy.Hooks[K, V]
}

type lruPolicy[K comparable, V any] struct{}

// New returns the LRU policy factory. It is the cache default.
func New[K comparable, V any]() policy.Policy[K, V] { return lruPolicy[K, V]{} }

func (lruPolicy[K, V]) New(h policy.Hooks[K, V]) policy.Instance[K, V] {
	return &lru[K, V]{h: h}
}

// OnAdd links the entry at MRU. Capacity is enforced by the cache, so LRU
// never nominates a victim on its own.
func (p *lru[K, V]) OnAdd(n policy.Node[K, V]) (evict policy.Node[K, V]) {
	p.h.PushFront(n)
	return nil
}

// OnGet promotes a read entry.
func (p *lru[K, V]) OnGet(n policy.Node[K, V]) { p.h.MoveToFront(n) }

// OnUpdate promotes an overwritten entry; a write is a use.
func (p *lru[K, V]) OnUpdate(n policy.Node[K, V]) { p.h.MoveToFront(n) }

func (p *lru[K, V]) OnRemove(_ policy.Node[K, V]) {}
