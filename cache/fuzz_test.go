//go:build go1.18

package cache

import (
	"strings"
	"testing"
)

// Fuzz Set/Get/Delete on arbitrary session ids and payloads.
func FuzzCache_SetGetDelete(f *testing.F) {
	f.Add("", "")
	f.Add("sid", `{"cookie":{"maxAge":1000}}`)
	f.Add("αβγ", "δ")
	f.Add("emoji🙂", "🙂🙂")
	f.Add("long", strings.Repeat("x", 1024))

	f.Fuzz(func(t *testing.T, k, v string) {
		const limit = 1 << 12
		if len(k) > limit {
			k = k[:limit]
		}
		if len(v) > limit {
			v = v[:limit]
		}

		c := New[string, string](Options[string, string]{
			Capacity: limit,
			Weigher:  func(_ string, v string) int64 { return int64(len(v)) },
		})
		t.Cleanup(func() { _ = c.Close() })

		if !c.Set(k, v, 0) {
			t.Fatalf("Set rejected a value within capacity (len=%d)", len(v))
		}
		got, ok := c.Get(k)
		if !ok || got != v {
			t.Fatalf("after Set/Get: want %q, got %q ok=%v", v, got, ok)
		}
		if c.Weight() != int64(len(v)) {
			t.Fatalf("Weight=%d, want %d", c.Weight(), len(v))
		}

		c.Delete(k)
		if _, ok := c.Get(k); ok {
			t.Fatalf("key must be absent after Delete")
		}
		if c.Len() != 0 || c.Weight() != 0 {
			t.Fatalf("Len=%d Weight=%d after Delete", c.Len(), c.Weight())
		}
	})
}
