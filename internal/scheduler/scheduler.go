// internal/scheduler/scheduler.go
package scheduler

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tamzrod/a429sched/internal/bus"
	"github.com/tamzrod/a429sched/internal/frame"
)

const (
	DefaultMaxJobs    = 1000
	DefaultTickBudget = 1024
	DefaultQueueSize  = 16
)

// FrameSource is the frame slot table as seen by the scheduler.
type FrameSource interface {
	Len() int
	Cyclic(idx uint16) (frame.Raw, bool, error)
	TakeSingle(idx uint16) (frame.Raw, bool, error)
}

// RxSource serves retransmit jobs.
type RxSource interface {
	Lookup(ch bus.Channel, key uint16, nowMs uint64) (frame.Raw, bool)
}

type Options struct {
	MaxJobs    int
	TickBudget int // jobs executed per Tick before yielding without a Wait
	QueueSize  int
	Clock      bus.Clock
	Logger     zerolog.Logger
	OnWarning  func(Warning)
}

// Scheduler interprets the job table.
// It performs no I/O: Tick returns the actions for the caller to execute.
type Scheduler struct {
	mu   sync.Mutex
	opts Options

	frames FrameSource
	rx     RxSource

	jobs []Job
	used int // highest non-skip index + 1

	pc      uint16
	ret     uint16
	retOK   bool
	running bool
	cycles  uint64
	runID   uuid.UUID

	stopReq atomic.Bool
	queue   chan frame.Raw
}

// New builds an idle scheduler with an empty (all skip) job table.
// rx may be nil when no retransmit jobs are used.
func New(frames FrameSource, rx RxSource, opts Options) (*Scheduler, error) {
	if frames == nil {
		return nil, errors.New("scheduler: frame source required")
	}
	if opts.MaxJobs <= 0 {
		opts.MaxJobs = DefaultMaxJobs
	}
	if opts.MaxJobs > 1<<16 {
		return nil, fmt.Errorf("scheduler: max jobs %d exceeds index space", opts.MaxJobs)
	}
	if opts.TickBudget <= 0 {
		opts.TickBudget = DefaultTickBudget
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.Clock == nil {
		opts.Clock = bus.NewSystemClock()
	}

	return &Scheduler{
		opts:   opts,
		frames: frames,
		rx:     rx,
		jobs:   emptyTable(opts.MaxJobs),
		queue:  make(chan frame.Raw, opts.QueueSize),
	}, nil
}

func emptyTable(n int) []Job {
	jobs := make([]Job, n)
	for i := range jobs {
		jobs[i] = Job{Index: uint16(i), Kind: KindSkip}
	}
	return jobs
}

func (s *Scheduler) validate(j Job) error {
	if int(j.Index) >= len(s.jobs) {
		return fmt.Errorf("%w: index %d >= %d", ErrInvalidJob, j.Index, len(s.jobs))
	}
	if !j.Kind.Valid() {
		return fmt.Errorf("%w: index %d: %s", ErrInvalidJob, j.Index, j.Kind)
	}
	if j.DwellMs > MaxDwellMs {
		return fmt.Errorf("%w: index %d: dwell %d ms > %d", ErrInvalidJob, j.Index, j.DwellMs, MaxDwellMs)
	}
	return nil
}

// ------------------------------------------------------------
// Job table editing
// ------------------------------------------------------------

// LoadJobs replaces the whole table. Indices not listed become Skip.
// PC and the return point are reset.
func (s *Scheduler) LoadJobs(jobs []Job) error {
	table := emptyTable(len(s.jobs))
	seen := make(map[uint16]struct{}, len(jobs))

	for _, j := range jobs {
		if err := s.validate(j); err != nil {
			return err
		}
		if _, dup := seen[j.Index]; dup {
			return fmt.Errorf("%w: index %d listed twice", ErrScheduleIndexConflict, j.Index)
		}
		seen[j.Index] = struct{}{}
		table[j.Index] = j
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = table
	s.recount()
	s.pc = 0
	s.retOK = false
	return nil
}

// SetEntry overwrites one job.
func (s *Scheduler) SetEntry(j Job) error {
	if err := s.validate(j); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[j.Index] = j
	s.recount()
	return nil
}

// ClearEntries resets first..last (inclusive) to Skip.
func (s *Scheduler) ClearEntries(first, last uint16) error {
	if first > last || int(last) >= len(s.jobs) {
		return fmt.Errorf("%w: clear range %d..%d", ErrInvalidJob, first, last)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := int(first); i <= int(last); i++ {
		s.jobs[i] = Job{Index: uint16(i), Kind: KindSkip}
	}
	s.recount()
	return nil
}

func (s *Scheduler) Entry(idx uint16) (Job, error) {
	if int(idx) >= len(s.jobs) {
		return Job{}, fmt.Errorf("%w: index %d", ErrInvalidJob, idx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[idx], nil
}

// Jobs returns the table up to the last non-skip entry.
func (s *Scheduler) Jobs() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Job, s.used)
	copy(out, s.jobs[:s.used])
	return out
}

func (s *Scheduler) Capabilities() Capabilities {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, j := range s.jobs[:s.used] {
		if j.Kind != KindSkip {
			n++
		}
	}
	return Capabilities{
		TotalJobs:  len(s.jobs),
		UsedJobs:   n,
		FrameSlots: s.frames.Len(),
		QueueSize:  cap(s.queue),
	}
}

func (s *Scheduler) recount() {
	s.used = 0
	for i := len(s.jobs) - 1; i >= 0; i-- {
		if s.jobs[i].Kind != KindSkip {
			s.used = i + 1
			return
		}
	}
}

// ------------------------------------------------------------
// Run state
// ------------------------------------------------------------

// Start (re)starts execution at index 0 with no return point.
func (s *Scheduler) Start() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopReq.Store(false)
	s.pc = 0
	s.retOK = false
	s.cycles = 0
	s.running = true
	s.runID = uuid.New()
	s.opts.Logger.Info().Str("run_id", s.runID.String()).Int("jobs", s.used).Msg("scheduler started")
	return s.runID
}

// Stop requests a halt. It takes effect before the next job executes.
func (s *Scheduler) Stop() {
	s.stopReq.Store(true)
}

func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// PC returns the index of the next job.
func (s *Scheduler) PC() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pc
}

// Cycles returns the number of Callback jobs executed since Start.
func (s *Scheduler) Cycles() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cycles
}

// Enqueue schedules f for transmission at the start of the next Tick,
// ahead of the job table and regardless of run state.
func (s *Scheduler) Enqueue(f frame.Raw) error {
	select {
	case s.queue <- f:
		return nil
	default:
		return ErrQueueFull
	}
}

// ------------------------------------------------------------
// Interpreter
// ------------------------------------------------------------

// Tick runs jobs until one yields a Wait, the scheduler halts, or the
// per-tick budget is spent.
func (s *Scheduler) Tick() []Action {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.drainQueue(nil)

	if !s.running {
		return append(out, Halted())
	}

	for n := 0; n < s.opts.TickBudget; n++ {
		if s.stopReq.Swap(false) {
			s.halt("stop requested")
			return append(out, Halted())
		}
		if s.used == 0 {
			return out
		}
		if int(s.pc) >= s.used {
			s.pc = 0
		}

		job := s.jobs[s.pc]

		var halted bool
		out, halted = s.exec(job, out)
		if halted {
			return append(out, Halted())
		}
		if job.DwellMs > 0 {
			return append(out, Wait(job.DwellMs))
		}
	}
	return out
}

func (s *Scheduler) drainQueue(out []Action) []Action {
	for {
		select {
		case f := <-s.queue:
			out = append(out, Transmit(f))
		default:
			return out
		}
	}
}

// exec runs one job and advances PC.
func (s *Scheduler) exec(j Job, out []Action) ([]Action, bool) {
	next := s.pc + 1

	switch j.Kind {
	case KindSkip, KindDwell:

	case KindCallback:
		s.cycles++
		out = append(out, Action{Kind: ActionCycleComplete, Cycle: s.cycles, RunID: s.runID})

	case KindStop:
		s.halt("stop job")
		return out, true

	case KindJump:
		if int(j.FrameRef) >= s.used {
			s.warn(j, fmt.Errorf("%w: jump to %d, table ends at %d", ErrUnreachableJob, j.FrameRef, s.used))
			break
		}
		s.ret = next
		s.retOK = true
		next = j.FrameRef

	case KindReturn:
		if !s.retOK {
			s.warn(j, fmt.Errorf("%w: return without a saved return point", ErrScheduleIndexConflict))
			s.halt("return without jump")
			return out, true
		}
		// The saved point stays until the next Jump overwrites it.
		next = s.ret

	case KindSingle:
		f, ok, err := s.frames.TakeSingle(j.FrameRef)
		if err != nil {
			s.warn(j, fmt.Errorf("%w: %v", ErrUnknownFrame, err))
		} else if ok {
			out = append(out, Transmit(f))
		}

	case KindCyclic:
		f, ok, err := s.frames.Cyclic(j.FrameRef)
		if err != nil {
			s.warn(j, fmt.Errorf("%w: %v", ErrUnknownFrame, err))
		} else if ok {
			out = append(out, Transmit(f))
		}

	case KindRetransmitRx1, KindRetransmitRx2:
		ch := bus.RX1
		if j.Kind == KindRetransmitRx2 {
			ch = bus.RX2
		}
		if j.FrameRef > 0x3FF {
			s.warn(j, fmt.Errorf("%w: receive key %d", ErrUnknownFrame, j.FrameRef))
			break
		}
		if s.rx == nil {
			break
		}
		if f, ok := s.rx.Lookup(ch, j.FrameRef, s.opts.Clock.NowMs()); ok {
			out = append(out, Transmit(f))
		}
	}

	s.pc = next
	return out, false
}

func (s *Scheduler) halt(reason string) {
	s.running = false
	s.retOK = false
	s.opts.Logger.Info().Str("run_id", s.runID.String()).Uint16("pc", s.pc).Str("reason", reason).Msg("scheduler halted")
}

func (s *Scheduler) warn(j Job, err error) {
	s.opts.Logger.Warn().Err(err).Uint16("index", j.Index).Str("kind", j.Kind.String()).Msg("job table fault")
	if s.opts.OnWarning != nil {
		s.opts.OnWarning(Warning{Job: j, Err: err})
	}
}
