// internal/scheduler/types.go
package scheduler

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tamzrod/a429sched/internal/frame"
)

// Kind is the job opcode. Values match the device's job table encoding.
type Kind uint8

const (
	KindSkip Kind = iota
	KindCallback
	KindStop
	KindJump
	KindReturn
	KindDwell
	KindSingle
	KindCyclic
	KindRetransmitRx1
	KindRetransmitRx2
)

// MaxDwellMs is the largest dwell a single job can carry.
const MaxDwellMs = 250

var kindNames = [...]string{
	KindSkip:          "skip",
	KindCallback:      "callback",
	KindStop:          "stop",
	KindJump:          "jump",
	KindReturn:        "return",
	KindDwell:         "dwell",
	KindSingle:        "single",
	KindCyclic:        "cyclic",
	KindRetransmitRx1: "retransmit_rx1",
	KindRetransmitRx2: "retransmit_rx2",
}

func (k Kind) Valid() bool { return int(k) < len(kindNames) }

func (k Kind) String() string {
	if k.Valid() {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range kindNames {
		if n == s {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: kind %q", ErrInvalidJob, s)
}

// Job is one entry of the job table.
// FrameRef is a frame slot for Single/Cyclic, a job index for Jump and
// a receive key (label + SDI) for the retransmit kinds.
type Job struct {
	Index    uint16
	Kind     Kind
	FrameRef uint16
	DwellMs  uint8
}

func (j Job) String() string {
	return fmt.Sprintf("#%d %s ref=%d dwell=%dms", j.Index, j.Kind, j.FrameRef, j.DwellMs)
}

var (
	ErrInvalidJob            = errors.New("scheduler: invalid job")
	ErrScheduleIndexConflict = errors.New("scheduler: schedule index conflict")
	ErrUnreachableJob        = errors.New("scheduler: unreachable job index")
	ErrUnknownFrame          = errors.New("scheduler: unknown frame reference")
	ErrQueueFull             = errors.New("scheduler: immediate queue full")
	ErrScheduleTooLong       = errors.New("scheduler: schedule does not fit")
)

// ---- actions ----

type ActionKind uint8

const (
	ActionTransmit ActionKind = iota + 1
	ActionWait
	ActionCycleComplete
	ActionHalted
)

func (k ActionKind) String() string {
	switch k {
	case ActionTransmit:
		return "transmit"
	case ActionWait:
		return "wait"
	case ActionCycleComplete:
		return "cycle_complete"
	case ActionHalted:
		return "halted"
	}
	return fmt.Sprintf("action(%d)", uint8(k))
}

// Action is one effect requested by Tick.
type Action struct {
	Kind  ActionKind
	Frame frame.Raw     // ActionTransmit
	Wait  time.Duration // ActionWait
	Cycle uint64        // ActionCycleComplete, counts from 1 per run
	RunID uuid.UUID     // ActionCycleComplete
}

func Transmit(f frame.Raw) Action { return Action{Kind: ActionTransmit, Frame: f} }

func Wait(ms uint8) Action {
	return Action{Kind: ActionWait, Wait: time.Duration(ms) * time.Millisecond}
}

func Halted() Action { return Action{Kind: ActionHalted} }

// Warning is a runtime job table fault. The scheduler keeps running.
type Warning struct {
	Job Job
	Err error
}

// Capabilities reports job table usage.
type Capabilities struct {
	TotalJobs  int
	UsedJobs   int
	FrameSlots int
	QueueSize  int
}

// Reason is a short label for metrics and logs.
func (w Warning) Reason() string {
	switch {
	case errors.Is(w.Err, ErrScheduleIndexConflict):
		return "index_conflict"
	case errors.Is(w.Err, ErrUnreachableJob):
		return "unreachable"
	case errors.Is(w.Err, ErrUnknownFrame):
		return "unknown_frame"
	}
	return "other"
}
