// Package fiberstore plugs a session.Store into Fiber as a fiber.Storage,
// so Fiber's session, cache and limiter middleware can keep their state in
// the same bounded, TTL-aware memory store.
package fiberstore

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/IvanBrykalov/memstore/session"
)

// Storage adapts *session.Store to fiber.Storage. Values are stored as raw
// bytes: Fiber encodes its own payloads, so the store Serializer is not used.
// A configured Secret still encrypts them.
type Storage struct {
	s *session.Store
}

var _ fiber.Storage = (*Storage)(nil)

// New wraps s. Closing the Storage closes s.
func New(s *session.Store) *Storage {
	return &Storage{s: s}
}

// Get returns nil, nil for a missing or expired key.
func (st *Storage) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	b, ok, err := st.s.GetRaw(key)
	if err != nil || !ok {
		return nil, err
	}
	return b, nil
}

// Set stores val for exp; 0 keeps it until evicted or deleted.
// Empty keys and values are ignored.
func (st *Storage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	return st.s.SetRaw(key, val, exp)
}

func (st *Storage) Delete(key string) error {
	if key == "" {
		return nil
	}
	return st.s.Destroy(key)
}

func (st *Storage) Reset() error { return st.s.Clear() }

func (st *Storage) Close() error { return st.s.Close() }

// Store returns the wrapped session store.
func (st *Storage) Store() *session.Store { return st.s }
