// internal/producer/producer.go
package producer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/a429sched/internal/frame"
	"github.com/tamzrod/a429sched/internal/frametable"
	"github.com/tamzrod/a429sched/internal/labels"
)

// Source yields the engineering value of a label at now.
type Source func(now time.Time) float64

type Options struct {
	Interval   time.Duration
	InitialSSM frame.SSM
	Logger     zerolog.Logger
	Now        func() time.Time
}

// Producer keeps frame slots current. It is the single place where
// engineering values become frames: periodic sources on a clock, and
// one-off values pushed by operators.
// Frame slot index = label.
type Producer struct {
	mu      sync.Mutex
	labels  *labels.Table
	frames  *frametable.Table
	opts    Options
	sources map[uint8]Source
	ssm     map[uint8]frame.SSM
	values  map[uint8]float64
}

func New(lt *labels.Table, ft *frametable.Table, opts Options) (*Producer, error) {
	if lt == nil || ft == nil {
		return nil, errors.New("producer: label table and frame table required")
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	if !opts.InitialSSM.Valid() {
		return nil, fmt.Errorf("producer: initial ssm %d", opts.InitialSSM)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	p := &Producer{
		labels:  lt,
		frames:  ft,
		opts:    opts,
		sources: make(map[uint8]Source),
		ssm:     make(map[uint8]frame.SSM),
		values:  make(map[uint8]float64),
	}
	for _, d := range lt.All() {
		p.values[d.Label] = d.Default
	}
	return p, nil
}

// Attach registers src for label. The next update replaces the value.
func (p *Producer) Attach(label uint8, src Source) error {
	if _, ok := p.labels.Lookup(label); !ok {
		return fmt.Errorf("%w: %03o", labels.ErrUnknownLabel, label)
	}
	p.mu.Lock()
	p.sources[label] = src
	p.mu.Unlock()
	return nil
}

// Detach stops updating label; the last value stays in its slot.
func (p *Producer) Detach(label uint8) {
	p.mu.Lock()
	delete(p.sources, label)
	p.mu.Unlock()
}

// Apply encodes value with ssm into the slot of label. A label with a
// source keeps the ssm but gets its value overwritten on the next update.
func (p *Producer) Apply(label uint8, value float64, ssm frame.SSM) (frame.Raw, error) {
	d, ok := p.labels.Lookup(label)
	if !ok {
		return 0, fmt.Errorf("%w: %03o", labels.ErrUnknownLabel, label)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	f, err := p.write(d, value, ssm)
	if err != nil {
		return 0, err
	}
	p.ssm[label] = ssm
	return f, nil
}

// Value returns the last engineering value and ssm applied to label.
func (p *Producer) Value(label uint8) (float64, frame.SSM, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.values[label]
	return v, p.ssmOf(label), ok
}

// Load writes every label's current value. Call once before the
// scheduler starts so no slot transmits an empty frame.
func (p *Producer) Load() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, d := range p.labels.All() {
		if _, err := p.write(d, p.values[d.Label], p.ssmOf(d.Label)); err != nil {
			return err
		}
	}
	return nil
}

// UpdateOnce samples every source once and returns how many slots changed.
func (p *Producer) UpdateOnce() (int, error) {
	now := p.opts.Now()

	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	n := 0
	for label, src := range p.sources {
		d, _ := p.labels.Lookup(label)
		if _, err := p.write(d, src(now), p.ssmOf(label)); err != nil {
			errs = append(errs, err)
			continue
		}
		n++
	}
	return n, errors.Join(errs...)
}

// Run updates sources every Interval until ctx is cancelled.
func (p *Producer) Run(ctx context.Context) {
	ticker := time.NewTicker(p.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := p.UpdateOnce(); err != nil {
				p.opts.Logger.Warn().Err(err).Msg("producer update failed")
			}
		}
	}
}

func (p *Producer) ssmOf(label uint8) frame.SSM {
	if s, ok := p.ssm[label]; ok {
		return s
	}
	return p.opts.InitialSSM
}

// write must be called with mu held.
func (p *Producer) write(d labels.Definition, value float64, ssm frame.SSM) (frame.Raw, error) {
	f, err := d.Encode(value, ssm)
	if err != nil {
		return 0, fmt.Errorf("producer: %03o %s: %w", d.Label, d.Name, err)
	}
	if err := p.frames.Write(uint16(d.Label), f); err != nil {
		return 0, fmt.Errorf("producer: %03o %s: %w", d.Label, d.Name, err)
	}
	p.values[d.Label] = value
	return f, nil
}
