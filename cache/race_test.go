package cache

import (
	"context"
	"math/rand"
	"runtime"
	"strconv"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
)

// Concurrent Set/Get/Delete/Prune/Keys on random keys while the capacity
// invariant is checked. Should pass under `-race` without detector reports.
func TestRace_MixedWithPrune(t *testing.T) {
	const capacity = 512
	c := New[string, []byte](Options[string, []byte]{Capacity: capacity})
	t.Cleanup(func() { _ = c.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	// Periodic sweeper, as the session store runs it.
	g.Go(func() error {
		tick := time.NewTicker(5 * time.Millisecond)
		defer tick.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-tick.C:
				c.Prune()
				if n := c.Len(); n > capacity {
					t.Errorf("Len=%d exceeds capacity %d", n, capacity)
				}
			}
		}
	})

	workers := 2 * runtime.GOMAXPROCS(0)
	for w := 0; w < workers; w++ {
		seed := time.Now().UnixNano() + int64(w)*9973
		g.Go(func() error {
			r := rand.New(rand.NewSource(seed))
			for ctx.Err() == nil {
				k := "sid:" + strconv.Itoa(r.Intn(4096))
				switch r.Intn(100) {
				case 0, 1, 2, 3, 4:
					c.Delete(k)
				case 5, 6:
					c.Keys()
				case 7, 8, 9, 10, 11, 12, 13, 14, 15, 16:
					c.Set(k, []byte("x"), time.Duration(1+r.Intn(20))*time.Millisecond)
				case 17, 18, 19, 20, 21:
					c.Set(k, []byte("x"), 0)
				default:
					c.Get(k)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	if n := c.Len(); n > capacity {
		t.Fatalf("Len=%d exceeds capacity %d", n, capacity)
	}
}
