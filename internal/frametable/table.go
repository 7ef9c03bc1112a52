// internal/frametable/table.go
package frametable

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/tamzrod/a429sched/internal/frame"
)

// DefaultSize matches the transmit buffer count of the reference device.
const DefaultSize = 256

// Mode is the per-slot transmit mode.
type Mode uint8

const (
	ModeTransmit Mode = iota // send on Cyclic, re-arm Single
	ModeMute                 // skip on Cyclic, drop pending Single
)

var (
	ErrSlotRange = errors.New("frametable: slot index out of range")
	ErrBadMode   = errors.New("frametable: unknown mode")
)

const (
	frameBits uint64 = 0xFFFFFFFF
	armedBit  uint64 = 1 << 32
	mutedBit  uint64 = 1 << 33
)

// Table is a fixed arena of frame slots.
// Each slot is one atomic word: frame, armed flag, muted flag.
// One writer (producer/API) and one reader (scheduler) per slot; reads never tear.
type Table struct {
	slots []atomic.Uint64
}

// New allocates size empty slots.
func New(size int) *Table {
	if size <= 0 {
		size = DefaultSize
	}
	return &Table{slots: make([]atomic.Uint64, size)}
}

func (t *Table) Len() int { return len(t.slots) }

func (t *Table) slot(idx uint16) (*atomic.Uint64, error) {
	if int(idx) >= len(t.slots) {
		return nil, fmt.Errorf("%w: %d >= %d", ErrSlotRange, idx, len(t.slots))
	}
	return &t.slots[idx], nil
}

// Write stores f and arms the slot for a Single job.
// The mute flag is preserved.
func (t *Table) Write(idx uint16, f frame.Raw) error {
	s, err := t.slot(idx)
	if err != nil {
		return err
	}
	for {
		old := s.Load()
		next := uint64(f) | armedBit | old&mutedBit
		if old&mutedBit != 0 {
			next &^= armedBit
		}
		if s.CompareAndSwap(old, next) {
			return nil
		}
	}
}

// SetMode mutes or un-mutes a slot. ModeTransmit also re-arms it.
func (t *Table) SetMode(idx uint16, m Mode) error {
	s, err := t.slot(idx)
	if err != nil {
		return err
	}
	for {
		old := s.Load()
		var next uint64
		switch m {
		case ModeTransmit:
			next = old&frameBits | armedBit
		case ModeMute:
			next = old&frameBits | mutedBit
		default:
			return fmt.Errorf("%w: %d", ErrBadMode, m)
		}
		if s.CompareAndSwap(old, next) {
			return nil
		}
	}
}

// Snapshot is a consistent view of one slot.
type Snapshot struct {
	Frame frame.Raw
	Armed bool
	Muted bool
}

func (t *Table) Read(idx uint16) (Snapshot, error) {
	s, err := t.slot(idx)
	if err != nil {
		return Snapshot{}, err
	}
	v := s.Load()
	return Snapshot{
		Frame: frame.Raw(v & frameBits),
		Armed: v&armedBit != 0,
		Muted: v&mutedBit != 0,
	}, nil
}

// Cyclic returns the slot's frame unless the slot is muted.
func (t *Table) Cyclic(idx uint16) (frame.Raw, bool, error) {
	s, err := t.slot(idx)
	if err != nil {
		return 0, false, err
	}
	v := s.Load()
	if v&mutedBit != 0 {
		return 0, false, nil
	}
	return frame.Raw(v & frameBits), true, nil
}

// TakeSingle returns the frame if the slot is armed and disarms it.
func (t *Table) TakeSingle(idx uint16) (frame.Raw, bool, error) {
	s, err := t.slot(idx)
	if err != nil {
		return 0, false, err
	}
	for {
		old := s.Load()
		if old&armedBit == 0 || old&mutedBit != 0 {
			return 0, false, nil
		}
		if s.CompareAndSwap(old, old&^armedBit) {
			return frame.Raw(old & frameBits), true, nil
		}
	}
}

// Load writes frames keyed by slot index, typically label-indexed defaults.
func (t *Table) Load(frames map[uint8]frame.Raw) error {
	for idx, f := range frames {
		if err := t.Write(uint16(idx), f); err != nil {
			return err
		}
	}
	return nil
}
