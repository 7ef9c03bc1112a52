// internal/scheduler/runner.go
package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/a429sched/internal/bus"
	"github.com/tamzrod/a429sched/internal/observability"
)

// DefaultIdle is the pause after a Tick that produced no Wait.
const DefaultIdle = time.Millisecond

// Runner drives one scheduler against one transmit channel.
// One goroutine per channel. Waits use absolute deadlines so dwell
// time does not drift with transmit latency.
type Runner struct {
	s    *Scheduler
	tx   bus.Transmitter
	ch   bus.Channel
	log  zerolog.Logger
	idle time.Duration

	sent   atomic.Uint64
	failed atomic.Uint64

	// OnCycle is called for every Callback job, on the runner goroutine.
	OnCycle func(Action)
}

func NewRunner(s *Scheduler, tx bus.Transmitter, ch bus.Channel, log zerolog.Logger) *Runner {
	return &Runner{s: s, tx: tx, ch: ch, log: log, idle: DefaultIdle}
}

// Run ticks until ctx is cancelled. A halted scheduler keeps being ticked
// at the idle rate so immediate frames still go out and a restart resumes.
func (r *Runner) Run(ctx context.Context) error {
	chName := r.ch.String()
	deadline := time.Now()

	for {
		if ctx.Err() != nil {
			r.s.Stop()
			return ctx.Err()
		}

		waited := false
		for _, a := range r.s.Tick() {
			switch a.Kind {
			case ActionTransmit:
				r.sent.Add(1)
				err := r.tx.Transmit(r.ch, a.Frame)
				observability.RecordTransmit(chName, err)
				if err != nil {
					r.failed.Add(1)
					r.log.Error().Err(err).Str("channel", chName).Stringer("frame", a.Frame).Msg("transmit failed")
				}

			case ActionWait:
				deadline = deadline.Add(a.Wait)
				// fell too far behind: resync instead of bursting
				if lag := time.Since(deadline); lag > time.Second {
					r.log.Warn().Dur("lag", lag).Msg("scheduler behind wall clock, resyncing")
					deadline = time.Now()
				}
				if !sleepUntil(ctx, deadline) {
					r.s.Stop()
					return ctx.Err()
				}
				waited = true

			case ActionCycleComplete:
				observability.RecordSchedulerCycle(chName)
				if r.OnCycle != nil {
					r.OnCycle(a)
				}

			case ActionHalted:
			}
		}

		if !waited {
			if !sleepUntil(ctx, time.Now().Add(r.idle)) {
				r.s.Stop()
				return ctx.Err()
			}
			deadline = time.Now()
		}
	}
}

// TxStats returns the frames handed to the transmitter and how many of
// those transmissions failed.
func (r *Runner) TxStats() (sent, failed uint64) {
	return r.sent.Load(), r.failed.Load()
}

func sleepUntil(ctx context.Context, t time.Time) bool {
	d := time.Until(t)
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
