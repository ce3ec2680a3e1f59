// Package session is an in-memory session store for web session frameworks.
//
// A Store keeps each session serialized (JSON by default, optionally
// encrypted with a Secret) in a bounded LRU cache from package cache. Every
// write gets a ttl, taken from Options.TTL, Options.TTLFunc, the session's
// cookie MaxAge or DefaultTTL, in that order. Expired sessions disappear
// lazily when read and, when Options.CheckPeriod is set, proactively through
// a background sweep.
//
//	store, err := session.New(session.Options{
//	    Max:         10_000,
//	    CheckPeriod: time.Minute,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	_ = store.Set("sid", &session.Session{
//	    Cookie: session.Cookie{MaxAge: session.MaxAge(30 * time.Minute)},
//	    Values: map[string]any{"user": "alice"},
//	})
//	sess, err := store.Get("sid")
//
// Frameworks built around completion callbacks can use AsyncStore, which
// delivers every result on a dispatcher goroutine after the call returns.
package session
