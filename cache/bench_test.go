package cache

import (
	"math/rand"
	"strconv"
	"sync/atomic"
	"testing"
	"time"
)

// benchmarkMix exercises a read/write mix against a warm cache where
// every write carries a TTL, as session writes do.
func benchmarkMix(b *testing.B, readsPct int) {
	c := New[string, []byte](Options[string, []byte]{
		Capacity: 100_000,
	})
	b.Cleanup(func() { _ = c.Close() })

	payload := []byte(`{"cookie":{"maxAge":86400000},"values":{"user":"u"}}`)
	for i := 0; i < 50_000; i++ {
		c.Set("sid:"+strconv.Itoa(i), payload, time.Hour)
	}

	b.ReportAllocs()
	b.ResetTimer()

	var seed int64 = 1
	keyMask := (1 << 16) - 1

	b.RunParallel(func(pb *testing.PB) {
		r := rand.New(rand.NewSource(atomic.AddInt64(&seed, 1)))
		i := 0
		for pb.Next() {
			k := "sid:" + strconv.Itoa(i&keyMask)
			if r.Intn(100) < readsPct {
				c.Get(k)
			} else {
				c.Set(k, payload, time.Hour)
			}
			i++
		}
	})
}

func BenchmarkCache_90r10w(b *testing.B) { benchmarkMix(b, 90) }
func BenchmarkCache_50r50w(b *testing.B) { benchmarkMix(b, 50) }

// BenchmarkCache_Prune measures a full sweep over a cache where half the
// entries are expired.
func BenchmarkCache_Prune(b *testing.B) {
	clk := &fakeClock{t: 1}
	c := New[int, int](Options[int, int]{Clock: clk})

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		for j := 0; j < 10_000; j++ {
			ttl := time.Duration(0)
			if j%2 == 0 {
				ttl = time.Millisecond
			}
			c.Set(j, j, ttl)
		}
		clk.add(time.Second)
		b.StartTimer()
		c.Prune()
	}
}
