// internal/poller/poller.go
package poller

import (
	"errors"
	"fmt"
	"time"

	"github.com/tamzrod/a429sched/internal/bus"
	"github.com/tamzrod/a429sched/internal/receiver"
)

// DefaultFrameBudget bounds frames drained per channel per cycle.
const DefaultFrameBudget = 5

// Client is the receive side of the transceiver.
type Client interface {
	Poll(ch bus.Channel) (bus.Received, bool, error)
}

// overrunCounter is implemented by devices that count dropped frames.
type overrunCounter interface {
	Overruns(ch bus.Channel) uint64
}

// Config is the minimal runtime config the poller needs.
type Config struct {
	Channels    []bus.Channel
	Interval    time.Duration
	FrameBudget int
}

// Poller is a dumb, clock-driven reader.
// It is the only writer of the receive table.
type Poller struct {
	cfg      Config
	client   Client
	table    *receiver.Table
	clock    bus.Clock
	overruns map[bus.Channel]uint64
}

// New creates a poller with immutable config.
func New(cfg Config, client Client, table *receiver.Table, clock bus.Clock) (*Poller, error) {
	if client == nil {
		return nil, errors.New("poller: client required")
	}
	if table == nil {
		return nil, errors.New("poller: receive table required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if len(cfg.Channels) == 0 {
		return nil, errors.New("poller: at least one receive channel required")
	}
	for _, ch := range cfg.Channels {
		if !ch.IsRX() {
			return nil, fmt.Errorf("poller: %s is not a receive channel", ch)
		}
	}
	if cfg.FrameBudget <= 0 {
		cfg.FrameBudget = DefaultFrameBudget
	}
	if clock == nil {
		clock = bus.NewSystemClock()
	}
	return &Poller{
		cfg:      cfg,
		client:   client,
		table:    table,
		clock:    clock,
		overruns: make(map[bus.Channel]uint64),
	}, nil
}

// PollOnce performs exactly one poll cycle.
// A device error aborts the remaining channels; frames already
// ingested stay in the table and are reported.
func (p *Poller) PollOnce() PollResult {
	res := PollResult{At: time.Now()}

	for _, ch := range p.cfg.Channels {
		for n := 0; n < p.cfg.FrameBudget; n++ {
			r, ok, err := p.client.Poll(ch)
			if err != nil {
				res.Err = err
				return res
			}
			if !ok {
				break
			}
			r.Channel = ch
			ev, changed, err := p.table.Ingest(r, p.clock.NowMs())
			if err != nil {
				res.Err = err
				return res
			}
			if changed {
				res.Events = append(res.Events, ev)
			}
		}
		p.collectOverruns(ch, &res)
	}

	res.Events = append(res.Events, p.table.ScanTimeouts(p.clock.NowMs())...)
	return res
}

func (p *Poller) collectOverruns(ch bus.Channel, res *PollResult) {
	oc, ok := p.client.(overrunCounter)
	if !ok {
		return
	}
	total := oc.Overruns(ch)
	delta := total - p.overruns[ch]
	if total < p.overruns[ch] {
		delta = total
	}
	p.overruns[ch] = total
	if delta == 0 {
		return
	}
	p.table.AddLost(ch, delta)
	if res.Lost == nil {
		res.Lost = make(map[string]uint64)
	}
	res.Lost[ch.String()] = delta
}
