// internal/frametable/table_test.go
package frametable

import (
	"errors"
	"sync"
	"testing"

	"github.com/tamzrod/a429sched/internal/frame"
)

func TestSingle_ArmedOnce(t *testing.T) {
	tbl := New(8)
	if err := tbl.Write(3, 0x1234); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, ok, err := tbl.TakeSingle(3)
	if err != nil || !ok || f != 0x1234 {
		t.Fatalf("first take: f=%v ok=%v err=%v", f, ok, err)
	}
	if _, ok, _ := tbl.TakeSingle(3); ok {
		t.Fatalf("second take returned a frame")
	}

	// cyclic reads are not affected by the armed state
	if f, ok, _ := tbl.Cyclic(3); !ok || f != 0x1234 {
		t.Fatalf("cyclic: f=%v ok=%v", f, ok)
	}
}

func TestMute(t *testing.T) {
	tbl := New(8)
	_ = tbl.Write(1, 0xAB)
	if err := tbl.SetMode(1, ModeMute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok, _ := tbl.Cyclic(1); ok {
		t.Fatalf("muted slot transmitted cyclically")
	}
	if _, ok, _ := tbl.TakeSingle(1); ok {
		t.Fatalf("muted slot transmitted single")
	}

	// writes keep the mute
	_ = tbl.Write(1, 0xCD)
	if s, _ := tbl.Read(1); !s.Muted || s.Armed || s.Frame != 0xCD {
		t.Fatalf("snapshot after write=%+v", s)
	}

	_ = tbl.SetMode(1, ModeTransmit)
	if f, ok, _ := tbl.TakeSingle(1); !ok || f != 0xCD {
		t.Fatalf("transmit mode did not re-arm: f=%v ok=%v", f, ok)
	}
}

func TestRange(t *testing.T) {
	tbl := New(4)
	if err := tbl.Write(4, 1); !errors.Is(err, ErrSlotRange) {
		t.Fatalf("err=%v want ErrSlotRange", err)
	}
	if _, _, err := tbl.Cyclic(100); !errors.Is(err, ErrSlotRange) {
		t.Fatalf("err=%v want ErrSlotRange", err)
	}
	if err := tbl.SetMode(0, Mode(9)); !errors.Is(err, ErrBadMode) {
		t.Fatalf("err=%v want ErrBadMode", err)
	}
}

func TestNoTornReads(t *testing.T) {
	tbl := New(1)
	a := frame.Raw(0x00000000)
	b := frame.Raw(0xFFFFFFFF)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 10000; i++ {
			if i%2 == 0 {
				_ = tbl.Write(0, a)
			} else {
				_ = tbl.Write(0, b)
			}
		}
	}()

	for i := 0; i < 10000; i++ {
		f, _, _ := tbl.Cyclic(0)
		if f != a && f != b {
			t.Fatalf("torn read: %#x", uint32(f))
		}
	}
	wg.Wait()
}
