package session

import "sync"

// AsyncStore exposes a Store through completion callbacks.
//
// Each call changes the store synchronously, before it returns, and then
// queues its completion. Completions run one at a time, in call order, on a
// dedicated goroutine, never on the caller's stack. A nil completion is
// allowed.
type AsyncStore struct {
	s *Store
	q *dispatcher
}

// NewAsync wraps s. Close releases the dispatcher goroutine.
func NewAsync(s *Store) *AsyncStore {
	return &AsyncStore{s: s, q: newDispatcher()}
}

// Store returns the wrapped synchronous store.
func (a *AsyncStore) Store() *Store { return a.s }

func (a *AsyncStore) Get(sid string, fn func(*Session, error)) {
	sess, err := a.s.Get(sid)
	if fn != nil {
		a.q.post(func() { fn(sess, err) })
	}
}

func (a *AsyncStore) Set(sid string, sess *Session, fn func(error)) {
	a.done(a.s.Set(sid, sess), fn)
}

func (a *AsyncStore) Destroy(sid string, fn func(error)) {
	a.done(a.s.Destroy(sid), fn)
}

// DestroyMany removes every session in sids.
func (a *AsyncStore) DestroyMany(sids []string, fn func(error)) {
	a.done(a.s.Destroy(sids...), fn)
}

func (a *AsyncStore) Touch(sid string, sess *Session, fn func(error)) {
	a.done(a.s.Touch(sid, sess), fn)
}

func (a *AsyncStore) IDs(fn func([]string, error)) {
	ids, err := a.s.IDs()
	if fn != nil {
		a.q.post(func() { fn(ids, err) })
	}
}

func (a *AsyncStore) All(fn func(map[string]*Session, error)) {
	all, err := a.s.All()
	if fn != nil {
		a.q.post(func() { fn(all, err) })
	}
}

func (a *AsyncStore) Clear(fn func(error)) {
	a.done(a.s.Clear(), fn)
}

func (a *AsyncStore) Len(fn func(int, error)) {
	n, err := a.s.Len()
	if fn != nil {
		a.q.post(func() { fn(n, err) })
	}
}

// Close runs the completions still queued and stops the dispatcher.
// It must not be called from inside a completion. The wrapped Store stays open.
func (a *AsyncStore) Close() error {
	a.q.close()
	return nil
}

func (a *AsyncStore) done(err error, fn func(error)) {
	if fn != nil {
		a.q.post(func() { fn(err) })
	}
}

// dispatcher is an unbounded FIFO of completions drained by one goroutine.
type dispatcher struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []func()
	closed bool
	done   chan struct{}
}

func newDispatcher() *dispatcher {
	d := &dispatcher{done: make(chan struct{})}
	d.cond = sync.NewCond(&d.mu)
	go d.loop()
	return d
}

// post queues fn. After close, fn still runs, on a goroutine of its own.
func (d *dispatcher) post(fn func()) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		go fn()
		return
	}
	d.queue = append(d.queue, fn)
	d.mu.Unlock()
	d.cond.Signal()
}

func (d *dispatcher) loop() {
	defer close(d.done)
	for {
		d.mu.Lock()
		for len(d.queue) == 0 && !d.closed {
			d.cond.Wait()
		}
		batch := d.queue
		d.queue = nil
		closed := d.closed
		d.mu.Unlock()

		for _, fn := range batch {
			fn()
		}
		if closed && len(batch) == 0 {
			return
		}
	}
}

func (d *dispatcher) close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		<-d.done
		return
	}
	d.closed = true
	d.mu.Unlock()
	d.cond.Broadcast()
	<-d.done
}
