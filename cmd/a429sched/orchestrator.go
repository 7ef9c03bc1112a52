// cmd/a429sched/orchestrator.go
package main

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/a429sched/internal/bus"
	"github.com/tamzrod/a429sched/internal/observability"
	"github.com/tamzrod/a429sched/internal/poller"
	"github.com/tamzrod/a429sched/internal/receiver"
	"github.com/tamzrod/a429sched/internal/scheduler"
	"github.com/tamzrod/a429sched/internal/status"
	"github.com/tamzrod/a429sched/internal/writer"
)

// rxErrorHold keeps a receive error visible in the status block after
// the last failed poll cycle.
const rxErrorHold = 2 * time.Second

// orchestrator owns the status snapshot and fans poll results out to
// metrics, the register mirror and the recorder.
type orchestrator struct {
	log    zerolog.Logger
	sched  *scheduler.Scheduler
	runner *scheduler.Runner
	rx     *receiver.Table

	mirror   writer.Writer       // nil when disabled
	statusW  writer.StatusWriter // nil when disabled
	recorder chan<- poller.PollResult

	warnings *atomic.Uint64

	snap       status.Snapshot
	lastFailed uint64
	lastRxErr  time.Time
	stale      bool
}

func (o *orchestrator) run(ctx context.Context, in <-chan poller.PollResult) {
	secTicker := time.NewTicker(time.Second)
	defer secTicker.Stop()

	o.snap.Health = status.HealthUnknown

	// Full block write on start (identity re-assert) if enabled.
	o.writeStatus()

	for {
		select {
		case <-ctx.Done():
			return

		case res := <-in:
			o.handle(res)

		case <-secTicker.C:
			o.refresh(time.Now())
			o.writeStatus()
		}
	}
}

func (o *orchestrator) handle(res poller.PollResult) {
	if res.Err != nil {
		o.lastRxErr = res.At
		o.log.Warn().Err(res.Err).Msg("poll cycle failed")
	}

	for ch, n := range res.Lost {
		observability.RecordRxLost(ch, n)
	}

	for _, ev := range res.Events {
		observability.RecordRxEvent(ev.Channel.String(), ev.Status.String())
		switch ev.Status {
		case receiver.StatusTimeout:
			o.stale = true
		case receiver.StatusNew:
			o.stale = false
		}
	}

	if o.mirror != nil {
		if err := o.mirror.Write(res); err != nil {
			o.log.Error().Err(err).Msg("mirror write failed")
		}
	}

	if o.recorder != nil && len(res.Events) > 0 {
		select {
		case o.recorder <- res:
		default:
			o.log.Warn().Int("events", len(res.Events)).Msg("recorder behind, dropping poll result")
		}
	}
}

// refresh rebuilds the snapshot from the live components.
func (o *orchestrator) refresh(now time.Time) {
	s := &o.snap

	sent, failed := o.runner.TxStats()
	txErr := failed > o.lastFailed
	o.lastFailed = failed
	rxErr := !o.lastRxErr.IsZero() && now.Sub(o.lastRxErr) < rxErrorHold
	running := o.sched.Running()

	switch {
	case !running:
		s.Health = status.HealthDisabled
	case txErr:
		s.Health = status.HealthError
		s.LastErrorCode = status.ErrorTransmit
	case rxErr:
		s.Health = status.HealthError
		s.LastErrorCode = status.ErrorReceive
	case o.stale:
		s.Health = status.HealthStale
	default:
		s.Health = status.HealthOK
		s.LastErrorCode = status.ErrorNone
	}

	// seconds_in_error MUST NOT wrap
	if s.Health == status.HealthError || s.Health == status.HealthStale {
		if s.SecondsInError < 65535 {
			s.SecondsInError++
		}
	} else {
		s.SecondsInError = 0
	}

	s.SchedulerState = status.SchedulerIdle
	if running {
		s.SchedulerState = status.SchedulerRunning
	}
	s.PC = o.sched.PC()
	s.Cycles = status.Sat32(o.sched.Cycles())
	s.TxFrames = status.Sat32(sent)
	s.Warnings = status.Sat32(o.warnings.Load())

	if st, err := o.rx.Stats(bus.RX1); err == nil {
		s.Rx1Processed = status.Sat32(st.Processed)
		s.Rx1Lost = status.Sat32(st.Lost)
	}
	if st, err := o.rx.Stats(bus.RX2); err == nil {
		s.Rx2Processed = status.Sat32(st.Processed)
		s.Rx2Lost = status.Sat32(st.Lost)
	}
}

func (o *orchestrator) writeStatus() {
	if o.statusW == nil {
		return
	}
	if err := o.statusW.WriteStatus(o.snap); err != nil {
		o.log.Error().Err(err).Msg("status write failed")
	}
}
