// internal/writer/writer.go
package writer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/a429sched/internal/frame"
	"github.com/tamzrod/a429sched/internal/poller"
	"github.com/tamzrod/a429sched/internal/receiver"
)

// endpointClient is the exact contract the writers use.
// IMPORTANT: There must be NO other version of this interface anywhere.
type endpointClient interface {
	WriteRegisters(unitID uint8, addr uint16, regs []uint16) error
}

// mirrorSpan is the register footprint of one receive channel.
const mirrorSpan = 2 * receiver.Keys

type mirrorWriter struct {
	plan *MirrorPlan
	cli  endpointClient
}

// New builds the receive mirror writer. If plan.Mirror is nil the
// returned writer is disabled and reports false.
func New(plan Plan, clients map[string]endpointClient) (Writer, bool) {
	if plan.Mirror == nil {
		return nil, false
	}
	return &mirrorWriter{
		plan: plan.Mirror,
		cli:  clients[plan.Mirror.Endpoint],
	}, true
}

// Write copies every received frame to its register pair (hi word first).
// A timed-out key is cleared to zero.
func (w *mirrorWriter) Write(res poller.PollResult) error {
	if w.cli == nil {
		return fmt.Errorf("writer: missing client for endpoint %s", w.plan.Endpoint)
	}

	var errs []string

	for _, ev := range res.Events {
		addr, err := w.addrOf(ev)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}

		var f frame.Raw
		if ev.Status != receiver.StatusTimeout {
			f = ev.Frame
		}

		if err := w.cli.WriteRegisters(
			w.plan.UnitID,
			addr,
			[]uint16{uint16(f >> 16), uint16(f)},
		); err != nil {
			errs = append(errs, fmt.Sprintf(
				"writer: ep=%s unit=%d ch=%s key=%d addr=%d err=%v",
				w.plan.Endpoint, w.plan.UnitID, ev.Channel, ev.Key, addr, err,
			))
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, " | "))
	}

	return nil
}

func (w *mirrorWriter) addrOf(ev receiver.Event) (uint16, error) {
	idx := ev.Channel.RXIndex()
	if idx == 0 || ev.Key >= receiver.Keys {
		return 0, fmt.Errorf("writer: event ch=%s key=%d has no mirror slot", ev.Channel, ev.Key)
	}
	return w.plan.BaseAddr + uint16(idx-1)*mirrorSpan + ev.Key*2, nil
}
