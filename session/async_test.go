package session

import (
	"reflect"
	"testing"
	"time"
)

func newAsync(t *testing.T) *AsyncStore {
	t.Helper()
	a := NewAsync(newStore(t, Options{}))
	t.Cleanup(func() { _ = a.Close() })
	return a
}

// wait blocks until ch is closed or fails the test after a second.
func wait(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("completion never ran")
	}
}

func TestAsync_CompletionsAreDeferred(t *testing.T) {
	t.Parallel()

	a := newAsync(t)

	var (
		trace   []string
		release = make(chan struct{})
		done    = make(chan struct{})
	)

	// The outer completion blocks until Set has returned to the caller, so an
	// inline completion would deadlock here.
	a.Set("sid", withMaxAge(1000), func(err error) {
		<-release
		if err != nil {
			t.Errorf("Set: %v", err)
		}
		a.Get("sid", func(sess *Session, err error) {
			if sess == nil || err != nil {
				t.Errorf("Get = %v, %v", sess, err)
			}
			trace = append(trace, "inner")
			close(done)
		})
		trace = append(trace, "outer")
	})
	close(release)

	wait(t, done)

	want := []string{"outer", "inner"}
	if !reflect.DeepEqual(trace, want) {
		t.Fatalf("trace %v, want %v", trace, want)
	}
}

func TestAsync_MutatesBeforeReturning(t *testing.T) {
	t.Parallel()

	a := newAsync(t)
	a.Set("sid", withMaxAge(1000), nil)

	if n, _ := a.Store().Len(); n != 1 {
		t.Fatalf("Len=%d right after Set, want 1", n)
	}
}

func TestAsync_FIFO(t *testing.T) {
	t.Parallel()

	a := newAsync(t)

	var got []int
	done := make(chan struct{})
	for i := 0; i < 100; i++ {
		a.Len(func(int, error) {
			got = append(got, i)
			if i == 99 {
				close(done)
			}
		})
	}
	wait(t, done)

	for i, v := range got {
		if v != i {
			t.Fatalf("completion %d ran at position %d", v, i)
		}
	}
}

func TestAsync_Operations(t *testing.T) {
	t.Parallel()

	a := newAsync(t)
	done := make(chan struct{})

	a.Set("a", withMaxAge(1000), nil)
	a.Set("b", withMaxAge(1000), nil)
	a.Touch("a", withMaxAge(5000), nil)

	a.IDs(func(ids []string, err error) {
		if err != nil || !reflect.DeepEqual(ids, []string{"a", "b"}) {
			t.Errorf("IDs = %v, %v", ids, err)
		}
	})
	a.All(func(all map[string]*Session, err error) {
		if err != nil || len(all) != 2 || *all["a"].Cookie.MaxAge != 5000 {
			t.Errorf("All = %v, %v", all, err)
		}
	})
	a.Destroy("a", nil)
	a.Len(func(n int, err error) {
		if n != 1 || err != nil {
			t.Errorf("Len = %d, %v; want 1", n, err)
		}
	})
	a.DestroyMany([]string{"b", "missing"}, nil)
	a.Set("c", withMaxAge(1000), nil)
	a.Clear(func(err error) {
		if err != nil {
			t.Errorf("Clear: %v", err)
		}
	})
	a.Get("c", func(sess *Session, err error) {
		if sess != nil || err != nil {
			t.Errorf("Get after Clear = %v, %v", sess, err)
		}
		close(done)
	})

	wait(t, done)
}

func TestAsync_CloseDrains(t *testing.T) {
	t.Parallel()

	a := NewAsync(newStore(t, Options{}))

	ran := 0
	for i := 0; i < 50; i++ {
		a.Len(func(int, error) { ran++ })
	}
	if err := a.Close(); err != nil {
		t.Fatal(err)
	}
	if ran != 50 {
		t.Fatalf("Close returned with %d/50 completions run", ran)
	}
	_ = a.Close() // idempotent

	late := make(chan struct{})
	a.Clear(func(error) { close(late) })
	wait(t, late)
}
