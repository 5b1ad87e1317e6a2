package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTickerStartStopIdempotent(t *testing.T) {
	var ticks atomic.Int64
	tk := NewTicker("test", 5*time.Millisecond, func(context.Context) { ticks.Add(1) })

	assert.True(t, tk.Start(context.Background()))
	assert.False(t, tk.Start(context.Background()), "second start is a no-op")
	assert.True(t, tk.Running())

	assert.Eventually(t, func() bool { return ticks.Load() >= 2 }, time.Second, 5*time.Millisecond)

	assert.True(t, tk.Stop())
	assert.False(t, tk.Stop(), "second stop is a no-op")
	tk.Close()
	assert.False(t, tk.Running())

	after := ticks.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, ticks.Load(), "no ticks after close")
}

func TestTickerStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	tk := NewTicker("ctx", time.Hour, func(context.Context) {})
	tk.Start(ctx)

	cancel()
	go func() {
		tk.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("ticker goroutine did not exit after context cancellation")
	}
	tk.Close()
}

func TestTickerRestart(t *testing.T) {
	var ticks atomic.Int64
	tk := NewTicker("restart", 5*time.Millisecond, func(context.Context) { ticks.Add(1) })
	defer tk.Close()

	tk.Start(context.Background())
	tk.Stop()
	assert.True(t, tk.Start(context.Background()))
	assert.Eventually(t, func() bool { return ticks.Load() >= 1 }, time.Second, 5*time.Millisecond)
}
