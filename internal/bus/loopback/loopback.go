// internal/bus/loopback/loopback.go
package loopback

import (
	"sync"

	"github.com/tamzrod/a429sched/internal/bus"
	"github.com/tamzrod/a429sched/internal/frame"
)

// Device is an in-memory transceiver for host-side runs and tests.
// Frames sent on TX1 are logged and, when Loop is set, latched into that RX channel.
type Device struct {
	mu    sync.Mutex
	clock bus.Clock
	loop  bus.Channel
	rx    map[bus.Channel]*ringBuffer
	tx    []frame.Raw
	lost  map[bus.Channel]uint64
}

// New returns a device whose transmit channel loops into loop.
// A zero loop disables the loop.
func New(clock bus.Clock, loop bus.Channel) *Device {
	d := &Device{
		clock: clock,
		loop:  loop,
		rx:    make(map[bus.Channel]*ringBuffer),
		lost:  make(map[bus.Channel]uint64),
	}
	for _, ch := range bus.RXChannels {
		d.rx[ch] = &ringBuffer{}
	}
	return d
}

func (d *Device) Transmit(ch bus.Channel, f frame.Raw) error {
	if !ch.IsTX() {
		return bus.ErrChannel
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.tx) == txLogCapacity {
		d.tx = append(d.tx[:0], d.tx[txLogCapacity/2:]...)
	}
	d.tx = append(d.tx, f)
	if d.loop.IsRX() {
		d.latch(d.loop, f)
	}
	return nil
}

func (d *Device) Poll(ch bus.Channel) (bus.Received, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	rb, ok := d.rx[ch]
	if !ok {
		return bus.Received{}, false, bus.ErrChannel
	}
	e, ok := rb.pop()
	if !ok {
		return bus.Received{}, false, nil
	}
	var age uint32
	if now := d.clock.NowMs(); now > e.at {
		age = uint32(now - e.at)
	}
	return bus.Received{
		Channel: ch,
		Label:   e.f.Label(),
		SDI:     e.f.SDI(),
		Frame:   e.f,
		AgeMs:   age,
	}, true, nil
}

func (d *Device) Close() error { return nil }

// InjectRx latches f as if it arrived on ch.
func (d *Device) InjectRx(ch bus.Channel, f frame.Raw) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.latch(ch, f)
}

// txLogCapacity bounds TxLog; the older half is dropped when full.
const txLogCapacity = 4096

// TxLog returns a copy of the most recently transmitted frames, oldest first.
func (d *Device) TxLog() []frame.Raw {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]frame.Raw, len(d.tx))
	copy(out, d.tx)
	return out
}

// Overruns reports frames dropped because ch's buffer was full.
func (d *Device) Overruns(ch bus.Channel) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lost[ch]
}

func (d *Device) latch(ch bus.Channel, f frame.Raw) {
	rb, ok := d.rx[ch]
	if !ok {
		return
	}
	if rb.push(entry{f: f, at: d.clock.NowMs()}) {
		d.lost[ch]++
	}
}

// ---- ring buffer ----

const ringCapacity = 64

type entry struct {
	f  frame.Raw
	at uint64
}

type ringBuffer struct {
	data       [ringCapacity]entry
	head, tail int
	count      int
}

// push reports whether the oldest entry was overwritten.
func (rb *ringBuffer) push(e entry) bool {
	dropped := false
	if rb.count == ringCapacity {
		rb.head = (rb.head + 1) % ringCapacity
		rb.count--
		dropped = true
	}
	rb.data[rb.tail] = e
	rb.tail = (rb.tail + 1) % ringCapacity
	rb.count++
	return dropped
}

func (rb *ringBuffer) pop() (entry, bool) {
	if rb.count == 0 {
		return entry{}, false
	}
	e := rb.data[rb.head]
	rb.head = (rb.head + 1) % ringCapacity
	rb.count--
	return e, true
}
