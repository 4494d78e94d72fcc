package sched

import (
	"context"
	"testing"
	"time"
)

type countingKicker struct {
	kicks int
}

func (c *countingKicker) Kick() { c.kicks++ }

func TestWatchdogKicksUntilCancelled(t *testing.T) {
	kicker := &countingKicker{}
	w := NewWatchdog(kicker, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Watchdog.Run did not return after context cancellation")
	}

	if kicker.kicks == 0 {
		t.Error("Kick was never called")
	}
}
