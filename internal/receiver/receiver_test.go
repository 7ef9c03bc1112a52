// internal/receiver/receiver_test.go
package receiver

import (
	"errors"
	"testing"

	"github.com/tamzrod/a429sched/internal/bus"
	"github.com/tamzrod/a429sched/internal/frame"
)

func rx(ch bus.Channel, f frame.Raw, age uint32) bus.Received {
	return bus.Received{Channel: ch, Label: f.Label(), SDI: f.SDI(), Frame: f, AgeMs: age}
}

func TestIngest_NewThenUpdate(t *testing.T) {
	tbl := New(Config{TimeoutMs: 100})
	f := frame.Raw(0o324 | 3<<8 | 0x55<<13)

	ev, ok, err := tbl.Ingest(rx(bus.RX1, f, 0), 1000)
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if ev.Status != StatusNew || ev.Key != 0o324|3<<8 {
		t.Fatalf("event=%+v", ev)
	}

	ev, ok, _ = tbl.Ingest(rx(bus.RX1, f, 0), 1020)
	if !ok || ev.Status != StatusUpdate {
		t.Fatalf("second event=%+v ok=%v", ev, ok)
	}

	got, ok := tbl.Lookup(bus.RX1, 0o324|3<<8, 1050)
	if !ok || got != f {
		t.Fatalf("lookup=%v ok=%v", got, ok)
	}
	if _, ok := tbl.Lookup(bus.RX2, 0o324|3<<8, 1050); ok {
		t.Fatalf("frame leaked to rx2")
	}
}

func TestIngest_OnChangeOnly(t *testing.T) {
	tbl := New(Config{OnChangeOnly: true})
	f := frame.Raw(0o310)

	if _, ok, _ := tbl.Ingest(rx(bus.RX1, f, 0), 0); !ok {
		t.Fatalf("first frame suppressed")
	}
	if _, ok, _ := tbl.Ingest(rx(bus.RX1, f, 0), 5); ok {
		t.Fatalf("repeat not suppressed")
	}
	if _, ok, _ := tbl.Ingest(rx(bus.RX1, f|1<<12, 0), 10); !ok {
		t.Fatalf("changed frame suppressed")
	}
}

func TestTimeout(t *testing.T) {
	tbl := New(Config{TimeoutMs: 50})
	f := frame.Raw(0o110)
	key := tbl.Key(f)

	_, _, _ = tbl.Ingest(rx(bus.RX2, f, 10), 100) // latched at 90

	if evs := tbl.ScanTimeouts(140); len(evs) != 0 {
		t.Fatalf("early timeout: %+v", evs)
	}
	evs := tbl.ScanTimeouts(141)
	if len(evs) != 1 || evs[0].Status != StatusTimeout || evs[0].Channel != bus.RX2 || evs[0].AgeMs != 51 {
		t.Fatalf("timeout events=%+v", evs)
	}
	if evs := tbl.ScanTimeouts(500); len(evs) != 0 {
		t.Fatalf("timeout reported twice: %+v", evs)
	}
	if _, ok := tbl.Lookup(bus.RX2, key, 141); ok {
		t.Fatalf("expired frame available for retransmit")
	}

	e, ok, _ := tbl.Read(bus.RX2, key, 141)
	if !ok || e.Live || e.Frame != f {
		t.Fatalf("read after timeout=%+v ok=%v", e, ok)
	}

	ev, _, _ := tbl.Ingest(rx(bus.RX2, f, 0), 600)
	if ev.Status != StatusNew {
		t.Fatalf("status after timeout=%v want new", ev.Status)
	}
}

func TestFilters(t *testing.T) {
	tbl := New(Config{})
	keep := frame.Raw(0o324 | 3<<8)
	drop := frame.Raw(0o325 | 3<<8)

	if err := tbl.SetFilter(bus.RX1, keep.ExtendedLabel()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok, _ := tbl.Ingest(rx(bus.RX1, drop, 0), 0); ok {
		t.Fatalf("filtered frame accepted")
	}
	if _, ok, _ := tbl.Ingest(rx(bus.RX1, keep, 0), 0); !ok {
		t.Fatalf("accepted frame dropped")
	}

	_ = tbl.ClearFilters(bus.RX1)
	if _, ok, _ := tbl.Ingest(rx(bus.RX1, drop, 0), 0); !ok {
		t.Fatalf("frame dropped after ClearFilters")
	}

	st, _ := tbl.Stats(bus.RX1)
	if st.Processed != 3 {
		t.Fatalf("processed=%d want 3", st.Processed)
	}
}

func TestKey_SDIData(t *testing.T) {
	tbl := New(Config{})
	f := frame.Raw(0o310 | 2<<8)
	if tbl.Key(f) != 0o310|2<<8 {
		t.Fatalf("key=%#x", tbl.Key(f))
	}
	tbl.SetSDIData(0o310, true)
	if tbl.Key(f) != 0o310 {
		t.Fatalf("key=%#x want label only", tbl.Key(f))
	}
}

func TestChannelErrors(t *testing.T) {
	tbl := New(Config{})
	if _, _, err := tbl.Ingest(rx(bus.TX1, 1, 0), 0); !errors.Is(err, ErrChannel) {
		t.Fatalf("err=%v want ErrChannel", err)
	}
	if err := tbl.SetFilter(bus.RX1, Keys); !errors.Is(err, ErrKey) {
		t.Fatalf("err=%v want ErrKey", err)
	}
}
