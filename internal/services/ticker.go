package services

import (
	"context"
	"sync"
	"time"

	"wisespend/internal/logger"
)

// Ticker runs fn on a fixed interval in its own goroutine. Start and Stop are
// idempotent. Stop only signals the goroutine; Close also waits for it, so
// Stop may be called while holding a lock that fn acquires.
type Ticker struct {
	name     string
	interval time.Duration
	fn       func(ctx context.Context)

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewTicker creates a stopped ticker.
func NewTicker(name string, interval time.Duration, fn func(ctx context.Context)) *Ticker {
	return &Ticker{name: name, interval: interval, fn: fn}
}

// Start launches the ticker goroutine if it is not already running. The
// goroutine exits when ctx is cancelled or Stop is called.
func (t *Ticker) Start(ctx context.Context) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		return false
	}

	runCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.wg.Add(1)
	go t.loop(runCtx)

	logger.Named("ticker").Debugw("ticker started", "ticker", t.name, "interval", t.interval.String())
	return true
}

func (t *Ticker) loop(ctx context.Context) {
	defer t.wg.Done()
	tick := time.NewTicker(t.interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			if ctx.Err() != nil {
				return
			}
			t.fn(ctx)
		}
	}
}

// Stop cancels the running goroutine without waiting for it.
func (t *Ticker) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel == nil {
		return false
	}
	t.cancel()
	t.cancel = nil
	logger.Named("ticker").Debugw("ticker stopped", "ticker", t.name)
	return true
}

// Running reports whether the ticker has been started and not stopped.
func (t *Ticker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}

// Close stops the ticker and waits for every goroutine it started.
func (t *Ticker) Close() {
	t.Stop()
	t.wg.Wait()
}
