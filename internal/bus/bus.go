// internal/bus/bus.go
package bus

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/tamzrod/a429sched/internal/frame"
)

// Channel identifies one transceiver channel.
// Numbering follows the reference device: TX channels from 1, RX channels from 33.
type Channel uint8

const (
	TX1 Channel = 1
	RX1 Channel = 33
	RX2 Channel = 34
)

// RXChannels lists the receive channels in index order.
var RXChannels = []Channel{RX1, RX2}

var ErrChannel = errors.New("bus: unknown channel")

func (c Channel) IsTX() bool { return c == TX1 }
func (c Channel) IsRX() bool { return c == RX1 || c == RX2 }

// RXIndex returns 1 for RX1 and 2 for RX2, 0 otherwise.
func (c Channel) RXIndex() int {
	if !c.IsRX() {
		return 0
	}
	return int(c-RX1) + 1
}

func (c Channel) String() string {
	switch c {
	case TX1:
		return "tx1"
	case RX1:
		return "rx1"
	case RX2:
		return "rx2"
	}
	return fmt.Sprintf("ch%d", uint8(c))
}

// ParseChannel accepts "tx1", "rx1", "rx2".
func ParseChannel(s string) (Channel, error) {
	switch s {
	case "tx1", "TX1":
		return TX1, nil
	case "rx1", "RX1", "1":
		return RX1, nil
	case "rx2", "RX2", "2":
		return RX2, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrChannel, s)
}

// Received is one frame pulled from a receive channel.
type Received struct {
	Channel Channel
	Label   uint8
	SDI     uint8
	Frame   frame.Raw
	AgeMs   uint32 // time since the device latched the frame
}

// Transmitter pushes frames onto a transmit channel.
type Transmitter interface {
	Transmit(ch Channel, f frame.Raw) error
}

// Receiver pulls at most one pending frame from a receive channel.
type Receiver interface {
	Poll(ch Channel) (Received, bool, error)
}

// Transceiver is the opaque device the engine drives.
type Transceiver interface {
	Transmitter
	Receiver
	Close() error
}

// Clock supplies monotonic milliseconds.
type Clock interface {
	NowMs() uint64
}

// SystemClock counts from its creation.
type SystemClock struct {
	start time.Time
}

func NewSystemClock() *SystemClock { return &SystemClock{start: time.Now()} }

func (c *SystemClock) NowMs() uint64 {
	return uint64(time.Since(c.start).Milliseconds())
}

// ManualClock is advanced explicitly.
type ManualClock struct {
	ms atomic.Uint64
}

func (c *ManualClock) NowMs() uint64 { return c.ms.Load() }
func (c *ManualClock) Set(ms uint64) { c.ms.Store(ms) }
func (c *ManualClock) Advance(d time.Duration) { c.ms.Add(uint64(d.Milliseconds())) }
