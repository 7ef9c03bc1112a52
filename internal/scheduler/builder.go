// internal/scheduler/builder.go
package scheduler

import (
	"fmt"

	"github.com/tamzrod/a429sched/internal/labels"
)

// MaxCycleMs bounds the schedule cycle (lcm of the refresh rates).
const MaxCycleMs = 60_000

// BuildGroupSchedule lays out a cyclic schedule for every label of t.
//
// Labels sharing a refresh rate form a group, stored once as Cyclic jobs
// (frame slot = label) followed by Return. The main sequence walks the
// cycle in steps of the gcd of all rates: each step calls the due groups
// with zero-dwell Jumps, then Dwell jobs cover the time to the next step
// that has work. The cycle ends with Callback and Jump(0).
func BuildGroupSchedule(t *labels.Table) ([]Job, error) {
	rates := t.Rates()
	if len(rates) == 0 {
		return nil, fmt.Errorf("%w: no labels", ErrScheduleTooLong)
	}

	step := rates[0]
	cycle := rates[0]
	for _, r := range rates[1:] {
		step = gcd(step, r)
		cycle = cycle / gcd(cycle, r) * r
		if cycle > MaxCycleMs {
			return nil, fmt.Errorf("%w: cycle of rates %v exceeds %d ms", ErrScheduleTooLong, rates, MaxCycleMs)
		}
	}

	// ---- pass 1: main sequence shape ----

	type slot struct {
		due  []int // indices into rates
		wait uint32
	}
	var slots []slot
	for at := uint32(0); at < cycle; at += step {
		var due []int
		for i, r := range rates {
			if at%r == 0 {
				due = append(due, i)
			}
		}
		if len(due) == 0 {
			slots[len(slots)-1].wait += step
			continue
		}
		slots = append(slots, slot{due: due, wait: step})
	}

	mainLen := 2 // Callback + Jump(0)
	for _, s := range slots {
		mainLen += len(s.due) + dwellJobs(s.wait)
	}

	// ---- pass 2: group placement ----

	groupAt := make([]uint16, len(rates))
	next := mainLen
	for i, r := range rates {
		groupAt[i] = uint16(next)
		next += len(t.Group(r)) + 1
	}
	if next > 1<<16 {
		return nil, fmt.Errorf("%w: %d jobs", ErrScheduleTooLong, next)
	}

	jobs := make([]Job, 0, next)
	add := func(k Kind, ref uint16, dwell uint8) {
		jobs = append(jobs, Job{Index: uint16(len(jobs)), Kind: k, FrameRef: ref, DwellMs: dwell})
	}

	for _, s := range slots {
		for _, g := range s.due {
			add(KindJump, groupAt[g], 0)
		}
		for w := s.wait; w > 0; {
			d := w
			if d > MaxDwellMs {
				d = MaxDwellMs
			}
			add(KindDwell, 0, uint8(d))
			w -= d
		}
	}
	add(KindCallback, 0, 0)
	add(KindJump, 0, 0)

	for _, r := range rates {
		for _, d := range t.Group(r) {
			add(KindCyclic, uint16(d.Label), 0)
		}
		add(KindReturn, 0, 0)
	}

	return jobs, nil
}

func dwellJobs(ms uint32) int {
	return int((ms + MaxDwellMs - 1) / MaxDwellMs)
}

func gcd(a, b uint32) uint32 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
