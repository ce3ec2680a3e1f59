package session

import (
	"log/slog"
	"sync"
	"time"
)

// sweeper runs prune every period on its own goroutine.
// Start and Stop are the only mutators of its running state.
type sweeper struct {
	period time.Duration
	prune  func() int
	log    *slog.Logger

	mu   sync.Mutex
	stop chan struct{} // nil when stopped
}

func newSweeper(period time.Duration, prune func() int, log *slog.Logger) *sweeper {
	return &sweeper{period: period, prune: prune, log: log}
}

// Start launches the ticker, replacing a running one. No-op without a period.
func (w *sweeper) Start() {
	if w.period <= 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	w.stopLocked()
	w.log.Debug("starting periodic check for expired sessions", "period", w.period)
	stop := make(chan struct{})
	w.stop = stop
	go w.run(stop)
}

// Stop halts the ticker. A prune already in progress runs to completion.
func (w *sweeper) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopLocked()
}

// Running reports whether a ticker is active.
func (w *sweeper) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stop != nil
}

func (w *sweeper) stopLocked() {
	if w.stop == nil {
		return
	}
	w.log.Debug("stopping periodic check for expired sessions")
	close(w.stop)
	w.stop = nil
}

func (w *sweeper) run(stop <-chan struct{}) {
	t := time.NewTicker(w.period)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			w.tick()
		}
	}
}

// tick prunes once; a panic is logged and the ticker keeps going.
func (w *sweeper) tick() {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("prune failed", "panic", r)
		}
	}()
	if n := w.prune(); n > 0 {
		w.log.Debug("pruned expired sessions", "removed", n)
	}
}
