// internal/receiver/receiver.go
package receiver

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/tamzrod/a429sched/internal/bus"
	"github.com/tamzrod/a429sched/internal/frame"
)

// Keys is the size of the extended-label address space (label + SDI).
const Keys = 1024

// Status of a receive event.
type Status uint8

const (
	StatusNew     Status = iota + 1 // first frame, or first after a timeout
	StatusUpdate                    // subsequent frame
	StatusTimeout                   // no frame within the channel timeout
)

func (s Status) String() string {
	switch s {
	case StatusNew:
		return "new"
	case StatusUpdate:
		return "update"
	case StatusTimeout:
		return "timeout"
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

var (
	ErrChannel = errors.New("receiver: not a receive channel")
	ErrKey     = errors.New("receiver: key out of range")
)

// Event is one observable change of a receive buffer.
type Event struct {
	Channel bus.Channel
	Key     uint16
	Frame   frame.Raw
	Status  Status
	AgeMs   uint32
}

// Config applies to every channel unless overridden with SetTimeout.
type Config struct {
	TimeoutMs    uint32 // 0 disables timeouts
	OnChangeOnly bool   // suppress Update events that repeat the previous frame
}

// Entry is the last received frame under one key.
type Entry struct {
	Frame frame.Raw
	AgeMs uint32
	Live  bool
}

// ---- slot packing ----
//
// bits 0-31  frame
// bits 32-62 receive time in ms, modulo 2^31
// bit  63    live
const (
	timeMask uint64 = 1<<31 - 1
	liveBit  uint64 = 1 << 63
)

func pack(f frame.Raw, atMs uint64) uint64 {
	return uint64(f) | (atMs&timeMask)<<32 | liveBit
}

func unpack(v uint64, nowMs uint64) Entry {
	at := v >> 32 & timeMask
	return Entry{
		Frame: frame.Raw(uint32(v)),
		AgeMs: uint32((nowMs - at) & timeMask),
		Live:  v&liveBit != 0,
	}
}

type channelBuf struct {
	slots     [Keys]atomic.Uint64
	accept    [Keys]atomic.Bool
	filtered  atomic.Bool
	timeoutMs atomic.Uint32
	processed atomic.Uint64
	lost      atomic.Uint64
}

// Table keeps the last frame per key for each receive channel.
// The poller is the only writer; the scheduler and API read.
type Table struct {
	cfg     Config
	chans   [2]*channelBuf
	sdiData [256]atomic.Bool
}

func New(cfg Config) *Table {
	t := &Table{cfg: cfg}
	for i := range t.chans {
		cb := &channelBuf{}
		cb.timeoutMs.Store(cfg.TimeoutMs)
		t.chans[i] = cb
	}
	return t
}

func (t *Table) channel(ch bus.Channel) (*channelBuf, error) {
	idx := ch.RXIndex()
	if idx == 0 {
		return nil, fmt.Errorf("%w: %s", ErrChannel, ch)
	}
	return t.chans[idx-1], nil
}

// SetSDIData marks labels whose bits 8-9 are data. Their frames are keyed
// by label alone.
func (t *Table) SetSDIData(label uint8, data bool) {
	t.sdiData[label].Store(data)
}

// Key returns the buffer address of f.
func (t *Table) Key(f frame.Raw) uint16 {
	if t.sdiData[f.Label()].Load() {
		return uint16(f.Label())
	}
	return f.ExtendedLabel()
}

func (t *Table) SetTimeout(ch bus.Channel, ms uint32) error {
	cb, err := t.channel(ch)
	if err != nil {
		return err
	}
	cb.timeoutMs.Store(ms)
	return nil
}

// ---- filters ----

// SetFilter accepts key on ch and turns filtering on.
func (t *Table) SetFilter(ch bus.Channel, key uint16) error {
	cb, err := t.channel(ch)
	if err != nil {
		return err
	}
	if key >= Keys {
		return fmt.Errorf("%w: %d", ErrKey, key)
	}
	cb.accept[key].Store(true)
	cb.filtered.Store(true)
	return nil
}

// ClearFilter stops accepting key. Filtering stays on.
func (t *Table) ClearFilter(ch bus.Channel, key uint16) error {
	cb, err := t.channel(ch)
	if err != nil {
		return err
	}
	if key >= Keys {
		return fmt.Errorf("%w: %d", ErrKey, key)
	}
	cb.accept[key].Store(false)
	return nil
}

// ClearFilters removes every filter; ch accepts all frames again.
func (t *Table) ClearFilters(ch bus.Channel) error {
	cb, err := t.channel(ch)
	if err != nil {
		return err
	}
	for i := range cb.accept {
		cb.accept[i].Store(false)
	}
	cb.filtered.Store(false)
	return nil
}

// ---- writer side ----

// Ingest stores r. The second result is false when the frame was filtered
// out or, with OnChangeOnly, repeats the previous frame.
func (t *Table) Ingest(r bus.Received, nowMs uint64) (Event, bool, error) {
	cb, err := t.channel(r.Channel)
	if err != nil {
		return Event{}, false, err
	}
	cb.processed.Add(1)

	key := t.Key(r.Frame)
	if cb.filtered.Load() && !cb.accept[key].Load() {
		return Event{}, false, nil
	}

	at := nowMs - uint64(r.AgeMs)
	if uint64(r.AgeMs) > nowMs {
		at = 0
	}

	prev := cb.slots[key].Load()
	cb.slots[key].Store(pack(r.Frame, at))

	wasLive := prev&liveBit != 0
	if !wasLive {
		return Event{Channel: r.Channel, Key: key, Frame: r.Frame, Status: StatusNew, AgeMs: r.AgeMs}, true, nil
	}
	if t.cfg.OnChangeOnly && frame.Raw(uint32(prev)) == r.Frame {
		return Event{}, false, nil
	}
	return Event{Channel: r.Channel, Key: key, Frame: r.Frame, Status: StatusUpdate, AgeMs: r.AgeMs}, true, nil
}

// AddLost accounts frames the device dropped before they were polled.
func (t *Table) AddLost(ch bus.Channel, n uint64) {
	if cb, err := t.channel(ch); err == nil {
		cb.lost.Add(n)
	}
}

// ScanTimeouts expires keys older than their channel timeout.
func (t *Table) ScanTimeouts(nowMs uint64) []Event {
	var out []Event
	for i, cb := range t.chans {
		timeout := cb.timeoutMs.Load()
		if timeout == 0 {
			continue
		}
		ch := bus.RXChannels[i]
		for key := range cb.slots {
			v := cb.slots[key].Load()
			if v&liveBit == 0 {
				continue
			}
			e := unpack(v, nowMs)
			if e.AgeMs <= timeout {
				continue
			}
			if !cb.slots[key].CompareAndSwap(v, v&^liveBit) {
				continue
			}
			out = append(out, Event{Channel: ch, Key: uint16(key), Frame: e.Frame, Status: StatusTimeout, AgeMs: e.AgeMs})
		}
	}
	return out
}

// ---- reader side ----

// Read returns the buffer under key, live or expired.
// ok is false when nothing was ever received there.
func (t *Table) Read(ch bus.Channel, key uint16, nowMs uint64) (Entry, bool, error) {
	cb, err := t.channel(ch)
	if err != nil {
		return Entry{}, false, err
	}
	if key >= Keys {
		return Entry{}, false, fmt.Errorf("%w: %d", ErrKey, key)
	}
	v := cb.slots[key].Load()
	if v == 0 {
		return Entry{}, false, nil
	}
	return unpack(v, nowMs), true, nil
}

// Lookup returns the frame for retransmission: live and within timeout.
func (t *Table) Lookup(ch bus.Channel, key uint16, nowMs uint64) (frame.Raw, bool) {
	e, ok, err := t.Read(ch, key, nowMs)
	if err != nil || !ok || !e.Live {
		return 0, false
	}
	cb, _ := t.channel(ch)
	if timeout := cb.timeoutMs.Load(); timeout > 0 && e.AgeMs > timeout {
		return 0, false
	}
	return e.Frame, true
}

// Stats are the per-channel counters.
type Stats struct {
	Processed uint64
	Lost      uint64
}

func (t *Table) Stats(ch bus.Channel) (Stats, error) {
	cb, err := t.channel(ch)
	if err != nil {
		return Stats{}, err
	}
	return Stats{Processed: cb.processed.Load(), Lost: cb.lost.Load()}, nil
}
