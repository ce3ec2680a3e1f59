// Package policy defines the contract between the cache engine and its
// recency ordering strategy.
package policy

// Node is the view of a resident entry that a policy is allowed to see.
type Node[K comparable, V any] interface {
	Key() K
	Value() *V
}

// Hooks are the O(1) list primitives the cache exposes to a policy.
// The list runs MRU (front) to LRU (back); the cache owns the key->node map.
//
// All hook calls happen while the cache lock is held.
type Hooks[K comparable, V any] interface {
	// MoveToFront promotes the node to MRU.
	MoveToFront(Node[K, V])
	// PushFront links a freshly admitted node at MRU.
	PushFront(Node[K, V])
	// Remove unlinks the node from the list.
	Remove(Node[K, V])
	// Back returns the LRU node or nil.
	Back() Node[K, V]
	// Len returns the number of linked nodes.
	Len() int
}

// Instance is a policy bound to one cache's hooks.
//
//   - OnAdd may return a node the cache must evict right away.
//   - OnGet and OnUpdate record a use of the node.
//   - OnRemove is a notification; the cache unlinks and forgets the node itself.
type Instance[K comparable, V any] interface {
	OnAdd(Node[K, V]) (evict Node[K, V])
	OnGet(Node[K, V])
	OnUpdate(Node[K, V])
	OnRemove(Node[K, V])
}

// Policy builds an Instance for a cache.
type Policy[K comparable, V any] interface {
	New(Hooks[K, V]) Instance[K, V]
}
