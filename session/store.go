package session

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/IvanBrykalov/memstore/cache"
)

// ErrClosed is returned by writes to a closed Store.
var ErrClosed = errors.New("session: store closed")

// ErrTooLarge is returned when a record outweighs the whole store capacity.
var ErrTooLarge = errors.New("session: record exceeds store capacity")

// Backend is the storage contract a session framework consumes.
// Missing sessions are not errors: Get returns (nil, nil) and Touch is a no-op.
type Backend interface {
	Get(sid string) (*Session, error)
	Set(sid string, sess *Session) error
	Destroy(sids ...string) error
	Touch(sid string, sess *Session) error
	IDs() ([]string, error)
	All() (map[string]*Session, error)
	Clear() error
	Len() (int, error)
}

// Store is an in-memory Backend: serialized (and optionally encrypted)
// sessions in a bounded LRU cache with per-session TTL.
// All methods are safe for concurrent use.
type Store struct {
	opt    Options
	cache  cache.Cache[string, []byte]
	ser    Serializer
	cipher Cipher
	log    *slog.Logger
	sweep  *sweeper
	closed atomic.Bool
}

var _ Backend = (*Store)(nil)

// New builds a Store and, when CheckPeriod is set, starts its sweep.
// Invalid options are reported as *ConfigError.
func New(opt Options) (*Store, error) {
	if err := opt.validate(); err != nil {
		return nil, err
	}
	if opt.Serializer == nil {
		opt.Serializer = JSONSerializer{}
	}
	if opt.Logger == nil {
		opt.Logger = slog.New(slog.DiscardHandler)
	}
	if opt.Cipher == nil && opt.Secret != "" {
		c, err := NewAESCipher(opt.Secret)
		if err != nil {
			return nil, err
		}
		opt.Cipher = c
	}

	s := &Store{
		opt: opt,
		cache: cache.New[string, []byte](cache.Options[string, []byte]{
			Capacity:       opt.Max,
			Weigher:        opt.Weigher,
			Stale:          opt.Stale,
			NoDisposeOnSet: opt.NoDisposeOnSet,
			OnEvict:        opt.Dispose,
			Metrics:        opt.Metrics,
			Clock:          opt.Clock,
		}),
		ser:    opt.Serializer,
		cipher: opt.Cipher,
		log:    opt.Logger,
	}
	s.sweep = newSweeper(opt.CheckPeriod, s.cache.Prune, opt.Logger)
	s.log.Debug("init store", "max", opt.Max, "check_period", opt.CheckPeriod)

	s.StartInterval()
	return s, nil
}

// Get returns the session stored under sid, or nil if there is none.
func (s *Store) Get(sid string) (*Session, error) {
	s.log.Debug("GET", "sid", sid)

	data, ok := s.cache.Get(sid)
	if !ok {
		return nil, nil
	}
	plain, err := s.open(sid, data)
	if err != nil {
		return nil, err
	}
	return s.decode(sid, plain)
}

// Set stores sess under sid with the ttl picked by the options.
// Nothing is written when encoding or encryption fails.
func (s *Store) Set(sid string, sess *Session) error {
	ttl := s.opt.ttlFor(sess, sid)
	plain, err := s.encode(sid, sess)
	if err != nil {
		return err
	}
	return s.put(sid, plain, ttl)
}

// Destroy removes every given session. Unknown ids are ignored.
func (s *Store) Destroy(sids ...string) error {
	for _, sid := range sids {
		s.log.Debug("DEL", "sid", sid)
	}
	s.cache.Delete(sids...)
	return nil
}

// Touch refreshes the cookie and ttl of an existing session from sess,
// keeping the rest of the stored record. A missing session is left alone.
func (s *Store) Touch(sid string, sess *Session) error {
	ttl := s.opt.ttlFor(sess, sid)
	s.log.Debug("EXPIRE", "sid", sid, "ttl", ttl)

	data, ok := s.cache.Get(sid)
	if !ok {
		return nil
	}
	plain, err := s.open(sid, data)
	if err != nil {
		return err
	}
	stored, err := s.decode(sid, plain)
	if err != nil {
		return err
	}
	if sess != nil {
		stored.Cookie = sess.Cookie
	}
	plain, err = s.encode(sid, stored)
	if err != nil {
		return err
	}
	return s.put(sid, plain, ttl)
}

// IDs returns the ids of every stored session, most recently used first.
// Expired sessions not yet swept are included.
func (s *Store) IDs() ([]string, error) {
	ids := s.cache.Keys()
	s.log.Debug("IDS", "count", len(ids))
	return ids, nil
}

// All decodes every live session. The first record that fails to decrypt or
// decode fails the whole call.
func (s *Store) All() (map[string]*Session, error) {
	s.log.Debug("ALL")

	out := make(map[string]*Session)
	var firstErr error
	s.cache.ForEach(func(sid string, data []byte) {
		if firstErr != nil {
			return
		}
		plain, err := s.open(sid, data)
		if err != nil {
			firstErr = err
			return
		}
		sess, err := s.decode(sid, plain)
		if err != nil {
			firstErr = err
			return
		}
		out[sid] = sess
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

// Clear removes every session.
func (s *Store) Clear() error {
	s.log.Debug("CLEAR")
	s.cache.Reset()
	return nil
}

// Len returns the number of stored sessions.
func (s *Store) Len() (int, error) {
	n := s.cache.Len()
	s.log.Debug("LEN", "count", n)
	return n, nil
}

// StartInterval (re)starts the periodic sweep. It is a no-op without a
// CheckPeriod; a running sweep is stopped first.
func (s *Store) StartInterval() { s.sweep.Start() }

// StopInterval stops the periodic sweep. Safe to call in any state.
func (s *Store) StopInterval() { s.sweep.Stop() }

// Prune removes every expired session now and returns how many went.
func (s *Store) Prune() int {
	n := s.cache.Prune()
	s.log.Debug("prune", "removed", n)
	return n
}

// GetRaw returns the decrypted bytes stored under sid, bypassing the
// Serializer. It is meant for frameworks that encode sessions themselves.
func (s *Store) GetRaw(sid string) ([]byte, bool, error) {
	data, ok := s.cache.Get(sid)
	if !ok {
		return nil, false, nil
	}
	plain, err := s.open(sid, data)
	if err != nil {
		return nil, false, err
	}
	if s.cipher == nil {
		plain = bytes.Clone(plain)
	}
	return plain, true, nil
}

// SetRaw stores data under sid for ttl (0 = no expiry), encrypting it when a
// cipher is configured but bypassing the Serializer.
func (s *Store) SetRaw(sid string, data []byte, ttl time.Duration) error {
	return s.put(sid, bytes.Clone(data), ttl)
}

// Close stops the sweep and closes the underlying cache. Later writes fail
// with ErrClosed and reads find nothing.
func (s *Store) Close() error {
	s.closed.Store(true)
	s.StopInterval()
	return s.cache.Close()
}

// ---- helpers ----

func (s *Store) put(sid string, plain []byte, ttl time.Duration) error {
	if s.closed.Load() {
		return fmt.Errorf("%w: %q", ErrClosed, sid)
	}
	data, err := s.seal(sid, plain)
	if err != nil {
		return err
	}
	if !s.cache.Set(sid, data, ttl) {
		return fmt.Errorf("%w: %q", ErrTooLarge, sid)
	}
	s.log.Debug("SET", "sid", sid, "bytes", len(data), "ttl", ttl)
	return nil
}

func (s *Store) encode(sid string, sess *Session) ([]byte, error) {
	b, err := s.ser.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("session: encode %q: %w", sid, err)
	}
	return b, nil
}

func (s *Store) decode(sid string, data []byte) (*Session, error) {
	var sess Session
	if err := s.ser.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("session: decode %q: %w", sid, err)
	}
	return &sess, nil
}

func (s *Store) seal(sid string, plain []byte) ([]byte, error) {
	if s.cipher == nil {
		return plain, nil
	}
	b, err := s.cipher.Encrypt(plain)
	if err != nil {
		return nil, fmt.Errorf("session: encrypt %q: %w", sid, err)
	}
	return b, nil
}

func (s *Store) open(sid string, data []byte) ([]byte, error) {
	if s.cipher == nil {
		return data, nil
	}
	b, err := s.cipher.Decrypt(data)
	if err != nil {
		return nil, fmt.Errorf("session: decrypt %q: %w", sid, err)
	}
	return b, nil
}
