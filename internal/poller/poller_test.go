// internal/poller/poller_test.go
package poller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tamzrod/a429sched/internal/bus"
	"github.com/tamzrod/a429sched/internal/bus/loopback"
	"github.com/tamzrod/a429sched/internal/frame"
	"github.com/tamzrod/a429sched/internal/receiver"
)

type fakeClient struct {
	failCh bus.Channel
}

func (f *fakeClient) Poll(ch bus.Channel) (bus.Received, bool, error) {
	if ch == f.failCh {
		return bus.Received{}, false, errors.New("fail poll")
	}
	return bus.Received{}, false, nil
}

func TestNew_Validation(t *testing.T) {
	tbl := receiver.New(receiver.Config{})
	cases := []struct {
		name string
		cfg  Config
	}{
		{"no interval", Config{Channels: []bus.Channel{bus.RX1}}},
		{"no channels", Config{Interval: time.Millisecond}},
		{"tx channel", Config{Interval: time.Millisecond, Channels: []bus.Channel{bus.TX1}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.cfg, &fakeClient{}, tbl, nil); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestPollOnce_DrainsWithinBudget(t *testing.T) {
	clk := &bus.ManualClock{}
	dev := loopback.New(clk, 0)
	for i := 0; i < 7; i++ {
		dev.InjectRx(bus.RX1, frame.Raw(0o300+i))
	}

	tbl := receiver.New(receiver.Config{})
	p, err := New(Config{Channels: []bus.Channel{bus.RX1, bus.RX2}, Interval: time.Millisecond, FrameBudget: 5}, dev, tbl, clk)
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}

	res := p.PollOnce()
	if res.Err != nil {
		t.Fatalf("PollOnce err=%v", res.Err)
	}
	if len(res.Events) != 5 {
		t.Fatalf("events=%d want 5", len(res.Events))
	}
	for _, ev := range res.Events {
		if ev.Status != receiver.StatusNew || ev.Channel != bus.RX1 {
			t.Fatalf("event=%+v", ev)
		}
	}

	res = p.PollOnce()
	if len(res.Events) != 2 {
		t.Fatalf("second cycle events=%d want 2", len(res.Events))
	}
}

func TestPollOnce_Timeouts(t *testing.T) {
	clk := &bus.ManualClock{}
	dev := loopback.New(clk, 0)
	dev.InjectRx(bus.RX1, frame.Raw(0o310))

	tbl := receiver.New(receiver.Config{TimeoutMs: 100})
	p, _ := New(Config{Channels: []bus.Channel{bus.RX1}, Interval: time.Millisecond}, dev, tbl, clk)

	_ = p.PollOnce()
	clk.Advance(150 * time.Millisecond)

	res := p.PollOnce()
	if len(res.Events) != 1 || res.Events[0].Status != receiver.StatusTimeout {
		t.Fatalf("events=%+v", res.Events)
	}
}

func TestPollOnce_Overruns(t *testing.T) {
	clk := &bus.ManualClock{}
	dev := loopback.New(clk, 0)
	for i := 0; i < 70; i++ {
		dev.InjectRx(bus.RX2, frame.Raw(i))
	}

	tbl := receiver.New(receiver.Config{})
	p, _ := New(Config{Channels: []bus.Channel{bus.RX2}, Interval: time.Millisecond}, dev, tbl, clk)

	res := p.PollOnce()
	if res.Lost["rx2"] != 6 {
		t.Fatalf("lost=%v want rx2=6", res.Lost)
	}
	st, _ := tbl.Stats(bus.RX2)
	if st.Lost != 6 {
		t.Fatalf("table lost=%d want 6", st.Lost)
	}
	if res = p.PollOnce(); res.Lost != nil {
		t.Fatalf("overruns reported twice: %v", res.Lost)
	}
}

func TestPollOnce_ErrorAborts(t *testing.T) {
	tbl := receiver.New(receiver.Config{})
	p, _ := New(Config{Channels: []bus.Channel{bus.RX1, bus.RX2}, Interval: time.Millisecond}, &fakeClient{failCh: bus.RX1}, tbl, &bus.ManualClock{})

	if res := p.PollOnce(); res.Err == nil {
		t.Fatalf("expected error")
	}
}

func TestRun_EmitsOnlyChanges(t *testing.T) {
	clk := &bus.ManualClock{}
	dev := loopback.New(clk, 0)
	tbl := receiver.New(receiver.Config{})
	p, _ := New(Config{Channels: []bus.Channel{bus.RX1}, Interval: time.Millisecond}, dev, tbl, clk)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := make(chan PollResult)
	go p.Run(ctx, out)

	dev.InjectRx(bus.RX1, frame.Raw(0o324))

	select {
	case res := <-out:
		if len(res.Events) != 1 {
			t.Fatalf("events=%+v", res.Events)
		}
	case <-time.After(time.Second):
		t.Fatalf("no poll result")
	}
}
