package server

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWatchParent_DetectsReparenting(t *testing.T) {
	var pid atomic.Int64
	pid.Store(100)

	done := make(chan error, 1)
	go func() {
		done <- WatchParent(context.Background(), time.Millisecond, func() int { return int(pid.Load()) })
	}()

	time.Sleep(10 * time.Millisecond)
	pid.Store(1)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrParentExited)
	case <-time.After(2 * time.Second):
		t.Fatal("watchdog did not notice parent change")
	}
}

func TestWatchParent_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- WatchParent(ctx, time.Millisecond, func() int { return 100 })
	}()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watchdog did not stop on cancel")
	}
}
