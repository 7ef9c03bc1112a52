// internal/producer/producer_test.go
package producer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/a429sched/internal/frame"
	"github.com/tamzrod/a429sched/internal/frametable"
	"github.com/tamzrod/a429sched/internal/labels"
)

var fixedNow = time.Date(2026, 10, 19, 13, 45, 30, 0, time.UTC)

func newTestProducer(t *testing.T) (*Producer, *labels.Table, *frametable.Table) {
	t.Helper()
	lt := labels.ADIRUTable()
	ft := frametable.New(frametable.DefaultSize)
	p, err := New(lt, ft, Options{
		InitialSSM: frame.SSMNormalOperation,
		Logger:     zerolog.Nop(),
		Now:        func() time.Time { return fixedNow },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p, lt, ft
}

func decodeSlot(t *testing.T, lt *labels.Table, ft *frametable.Table, label uint8) (float64, frame.SSM) {
	t.Helper()
	snap, err := ft.Read(uint16(label))
	if err != nil {
		t.Fatalf("read slot %03o: %v", label, err)
	}
	d, _ := lt.Lookup(label)
	v, ssm, err := d.Decode(snap.Frame)
	if err != nil {
		t.Fatalf("decode %03o: %v", label, err)
	}
	return v, ssm
}

func TestLoad_WritesEveryDefault(t *testing.T) {
	p, lt, ft := newTestProducer(t)
	if err := p.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	for _, d := range lt.All() {
		snap, err := ft.Read(uint16(d.Label))
		if err != nil {
			t.Fatalf("read %03o: %v", d.Label, err)
		}
		if snap.Frame.Label() != d.Label || !snap.Armed {
			t.Fatalf("slot %03o: %+v", d.Label, snap)
		}
	}
}

func TestUpdateOnce_UTCSources(t *testing.T) {
	p, lt, ft := newTestProducer(t)
	for l, src := range UTCSources() {
		if err := p.Attach(l, src); err != nil {
			t.Fatalf("Attach %03o: %v", l, err)
		}
	}

	n, err := p.UpdateOnce()
	if err != nil || n != 2 {
		t.Fatalf("UpdateOnce=%d,%v", n, err)
	}

	if v, ssm := decodeSlot(t, lt, ft, LabelUTCSeconds); v != 13*3600+45*60+30 || ssm != frame.SSMNormalOperation {
		t.Fatalf("utc seconds=%v %s", v, ssm)
	}
	if v, _ := decodeSlot(t, lt, ft, LabelUTCTime); v != 1345 {
		t.Fatalf("utc hhmm=%v", v)
	}

	p.Detach(LabelUTCTime)
	if n, _ := p.UpdateOnce(); n != 1 {
		t.Fatalf("detached source still updated: n=%d", n)
	}
}

func TestApply_KeepsSSMForSources(t *testing.T) {
	p, lt, ft := newTestProducer(t)
	if err := p.Attach(LabelUTCSeconds, Constant(10)); err != nil {
		t.Fatalf("Attach: %v", err)
	}

	if _, err := p.Apply(LabelUTCSeconds, 99, frame.SSMFunctionalTest); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if v, ssm := decodeSlot(t, lt, ft, LabelUTCSeconds); v != 99 || ssm != frame.SSMFunctionalTest {
		t.Fatalf("after apply: %v %s", v, ssm)
	}

	if _, err := p.UpdateOnce(); err != nil {
		t.Fatalf("UpdateOnce: %v", err)
	}
	v, ssm, ok := p.Value(LabelUTCSeconds)
	if !ok || v != 10 || ssm != frame.SSMFunctionalTest {
		t.Fatalf("Value=%v %s %v", v, ssm, ok)
	}
}

func TestUnknownLabel(t *testing.T) {
	p, _, _ := newTestProducer(t)
	if err := p.Attach(0o200, Constant(1)); !errors.Is(err, labels.ErrUnknownLabel) {
		t.Fatalf("Attach err=%v", err)
	}
	if _, err := p.Apply(0o200, 1, frame.SSMNormalOperation); !errors.Is(err, labels.ErrUnknownLabel) {
		t.Fatalf("Apply err=%v", err)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	lt := labels.ADIRUTable()
	ft := frametable.New(frametable.DefaultSize)
	p, err := New(lt, ft, Options{Interval: time.Millisecond, InitialSSM: frame.SSMNormalOperation, Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_ = p.Attach(LabelUTCSeconds, Constant(42))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not return after cancel")
	}
	if v, _, _ := p.Value(LabelUTCSeconds); v != 42 {
		t.Fatalf("source never applied: %v", v)
	}
}
