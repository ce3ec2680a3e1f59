package fiberstore

import (
	"bytes"
	"testing"
	"time"

	"github.com/IvanBrykalov/memstore/session"
)

func newStorage(t *testing.T, opt session.Options) *Storage {
	t.Helper()
	s, err := session.New(opt)
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	st := New(s)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestStorage_SetGetDelete(t *testing.T) {
	t.Parallel()

	st := newStorage(t, session.Options{})
	if err := st.Set("k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	got, err := st.Get("k")
	if err != nil || !bytes.Equal(got, []byte("v")) {
		t.Fatalf("Get = %q, %v", got, err)
	}

	if err := st.Delete("k"); err != nil {
		t.Fatal(err)
	}
	if got, err := st.Get("k"); got != nil || err != nil {
		t.Fatalf("Get after Delete = %q, %v", got, err)
	}
}

func TestStorage_EmptyKeysAndValues(t *testing.T) {
	t.Parallel()

	st := newStorage(t, session.Options{})
	_ = st.Set("", []byte("v"), 0)
	_ = st.Set("k", nil, 0)

	if n, _ := st.Store().Len(); n != 0 {
		t.Fatalf("Len=%d, empty writes must be ignored", n)
	}
	if got, err := st.Get(""); got != nil || err != nil {
		t.Fatalf("Get(\"\") = %q, %v", got, err)
	}
	if err := st.Delete(""); err != nil {
		t.Fatal(err)
	}
}

func TestStorage_Expiry(t *testing.T) {
	t.Parallel()

	st := newStorage(t, session.Options{})
	_ = st.Set("short", []byte("v"), 20*time.Millisecond)
	_ = st.Set("forever", []byte("v"), 0)

	time.Sleep(50 * time.Millisecond)

	if got, _ := st.Get("short"); got != nil {
		t.Fatalf("expired key returned %q", got)
	}
	if got, _ := st.Get("forever"); got == nil {
		t.Fatal("exp=0 must not expire")
	}
}

func TestStorage_Reset(t *testing.T) {
	t.Parallel()

	st := newStorage(t, session.Options{})
	for _, k := range []string{"a", "b", "c"} {
		_ = st.Set(k, []byte(k), time.Minute)
	}
	if err := st.Reset(); err != nil {
		t.Fatal(err)
	}
	if n, _ := st.Store().Len(); n != 0 {
		t.Fatalf("Len=%d after Reset", n)
	}
}

func TestStorage_Encrypted(t *testing.T) {
	t.Parallel()

	st := newStorage(t, session.Options{Secret: "s3cr3t"})
	in := []byte(`{"user":"alice"}`)
	_ = st.Set("k", in, time.Minute)

	got, err := st.Get("k")
	if err != nil || !bytes.Equal(got, in) {
		t.Fatalf("Get = %q, %v", got, err)
	}
}

func TestStorage_Bounded(t *testing.T) {
	t.Parallel()

	st := newStorage(t, session.Options{Max: 2})
	_ = st.Set("a", []byte("1"), 0)
	_ = st.Set("b", []byte("2"), 0)
	_ = st.Set("c", []byte("3"), 0)

	if got, _ := st.Get("a"); got != nil {
		t.Fatal("least recently used key must be evicted")
	}
}
