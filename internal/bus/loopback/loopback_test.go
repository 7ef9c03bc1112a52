// internal/bus/loopback/loopback_test.go
package loopback

import (
	"errors"
	"testing"
	"time"

	"github.com/tamzrod/a429sched/internal/bus"
	"github.com/tamzrod/a429sched/internal/frame"
)

func TestTransmit_LoopsIntoRX(t *testing.T) {
	clk := &bus.ManualClock{}
	d := New(clk, bus.RX1)

	if err := d.Transmit(bus.TX1, frame.Raw(0o324|3<<8)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	clk.Advance(15 * time.Millisecond)

	got, ok, err := d.Poll(bus.RX1)
	if err != nil || !ok {
		t.Fatalf("poll ok=%v err=%v", ok, err)
	}
	if got.Label != 0o324 || got.SDI != 3 || got.AgeMs != 15 {
		t.Fatalf("received %+v", got)
	}
	if _, ok, _ := d.Poll(bus.RX1); ok {
		t.Fatalf("frame delivered twice")
	}
	if len(d.TxLog()) != 1 {
		t.Fatalf("tx log=%v", d.TxLog())
	}
}

func TestTransmit_RejectsRX(t *testing.T) {
	d := New(&bus.ManualClock{}, 0)
	if err := d.Transmit(bus.RX1, 1); !errors.Is(err, bus.ErrChannel) {
		t.Fatalf("err=%v want ErrChannel", err)
	}
}

func TestInjectRx_Overrun(t *testing.T) {
	d := New(&bus.ManualClock{}, 0)
	for i := 0; i < ringCapacity+3; i++ {
		d.InjectRx(bus.RX2, frame.Raw(i))
	}
	if d.Overruns(bus.RX2) != 3 {
		t.Fatalf("overruns=%d want 3", d.Overruns(bus.RX2))
	}
	got, _, _ := d.Poll(bus.RX2)
	if got.Frame != 3 {
		t.Fatalf("oldest surviving frame=%v want 3", got.Frame)
	}
}

func TestTxLog_Bounded(t *testing.T) {
	d := New(&bus.ManualClock{}, 0)
	for i := 0; i < txLogCapacity+10; i++ {
		_ = d.Transmit(bus.TX1, frame.Raw(i))
	}
	log := d.TxLog()
	if len(log) > txLogCapacity {
		t.Fatalf("tx log grew to %d", len(log))
	}
	if log[len(log)-1] != frame.Raw(txLogCapacity+9) {
		t.Fatalf("newest frame lost: %v", log[len(log)-1])
	}
}
