package sched

import (
	"context"
	"time"
)

// WatchdogKicker resets the hardware watchdog timer. A board wiring
// satisfies this for real; a bench harness can satisfy it with a
// counter.
type WatchdogKicker interface {
	Kick()
}

// Watchdog pets the hardware watchdog on its own ticker, independent of
// Scheduler: a Task100Ms stall must never prevent the watchdog kick,
// and a missed kick must never depend on the main schedule still being
// alive to notice.
type Watchdog struct {
	kicker WatchdogKicker
	period time.Duration
}

// NewWatchdog returns a Watchdog that kicks kicker every period.
func NewWatchdog(kicker WatchdogKicker, period time.Duration) *Watchdog {
	return &Watchdog{kicker: kicker, period: period}
}

// Run blocks, kicking once per period, until ctx is cancelled.
func (w *Watchdog) Run(ctx context.Context) {
	tick := time.NewTicker(w.period)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			w.kicker.Kick()
		}
	}
}
