package session

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/IvanBrykalov/memstore/cache"
)

// DefaultTTL is used when neither the options nor the cookie say otherwise.
const DefaultTTL = 24 * time.Hour

// ErrInvalidConfig is wrapped by every *ConfigError.
var ErrInvalidConfig = errors.New("session: invalid config")

// ConfigError reports an Options field New refused.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("session: invalid %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// TTLFunc computes the ttl of a write from the store options, the session
// being written and its id.
type TTLFunc func(opt *Options, sess *Session, sid string) time.Duration

// Options configures a Store. Zero values are safe; New applies:
//   - Max == 0          => unbounded
//   - CheckPeriod == 0  => no periodic pruning
//   - nil Serializer    => JSONSerializer
//   - Secret != ""      => AES-GCM cipher keyed by Secret (unless Cipher is set)
//   - nil Logger        => discard
type Options struct {
	// CheckPeriod is the interval of the background sweep that removes
	// expired sessions. Zero disables it; expiry is then only lazy.
	CheckPeriod time.Duration

	// Max bounds the total weight of stored sessions, one per session unless
	// Weigher says otherwise.
	Max int64

	// TTL, when non-zero, is the ttl of every write. Zero means unset, so
	// the ttl falls through to TTLFunc, the cookie MaxAge and DefaultTTL; a
	// store-wide "never expire" is expressed with TTLFunc returning 0.
	TTL time.Duration
	// TTLFunc computes the ttl of every write. Mutually exclusive with TTL.
	TTLFunc TTLFunc

	// Dispose is called for every stored record that leaves the cache
	// (eviction, expiry, overwrite, destroy, clear) with its stored bytes.
	Dispose func(sid string, data []byte, reason cache.EvictReason)

	// Stale lets a read return an expired session once while removing it.
	Stale bool

	// NoDisposeOnSet skips Dispose when a write replaces a record.
	NoDisposeOnSet bool

	// Weigher returns the weight of a stored record (e.g. len(data)).
	Weigher func(sid string, data []byte) int64

	Serializer Serializer

	// Secret enables transparent encryption of stored records.
	Secret string
	// Cipher overrides the cipher derived from Secret.
	Cipher Cipher

	Logger  *slog.Logger
	Metrics cache.Metrics
	Clock   cache.Clock
}

func (o *Options) validate() error {
	switch {
	case o.TTL < 0:
		return &ConfigError{Field: "TTL", Reason: "must not be negative"}
	case o.TTL != 0 && o.TTLFunc != nil:
		return &ConfigError{Field: "TTL", Reason: "set either TTL or TTLFunc, not both"}
	case o.Max < 0:
		return &ConfigError{Field: "Max", Reason: "must not be negative"}
	case o.CheckPeriod < 0:
		return &ConfigError{Field: "CheckPeriod", Reason: "must not be negative"}
	}
	return nil
}

// ttlFor picks the ttl of a write: TTL, then TTLFunc, then the cookie
// MaxAge, then DefaultTTL.
func (o *Options) ttlFor(sess *Session, sid string) time.Duration {
	if o.TTL != 0 {
		return o.TTL
	}
	if o.TTLFunc != nil {
		return o.TTLFunc(o, sess, sid)
	}
	if sess != nil && sess.Cookie.MaxAge != nil {
		return msToDuration(*sess.Cookie.MaxAge)
	}
	return DefaultTTL
}

// msToDuration converts milliseconds, saturating instead of wrapping.
func msToDuration(ms int64) time.Duration {
	const limit = math.MaxInt64 / int64(time.Millisecond)
	switch {
	case ms > limit:
		return time.Duration(math.MaxInt64)
	case ms < -limit:
		return time.Duration(math.MinInt64)
	}
	return time.Duration(ms) * time.Millisecond
}
