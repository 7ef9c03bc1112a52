// internal/labels/table.go
package labels

import (
	"fmt"
	"sort"

	"github.com/tamzrod/a429sched/internal/frame"
)

// Table is the immutable registry of known labels.
// Safe for concurrent readers once built.
type Table struct {
	defs  map[uint8]Definition
	order []uint8
}

// NewTable validates every definition and rejects duplicate labels.
func NewTable(defs []Definition) (*Table, error) {
	t := &Table{defs: make(map[uint8]Definition, len(defs))}

	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if prev, exists := t.defs[d.Label]; exists {
			return nil, fmt.Errorf("%w: %03o (%q and %q)", ErrDuplicateLabel, d.Label, prev.Name, d.Name)
		}
		t.defs[d.Label] = d
		t.order = append(t.order, d.Label)
	}

	sort.Slice(t.order, func(i, j int) bool { return t.order[i] < t.order[j] })
	return t, nil
}

func (t *Table) Len() int { return len(t.order) }

func (t *Table) Lookup(label uint8) (Definition, bool) {
	d, ok := t.defs[label]
	return d, ok
}

// All returns definitions ordered by label.
func (t *Table) All() []Definition {
	out := make([]Definition, 0, len(t.order))
	for _, l := range t.order {
		out = append(out, t.defs[l])
	}
	return out
}

// Rates returns the distinct refresh rates, fastest first.
func (t *Table) Rates() []uint32 {
	seen := make(map[uint32]struct{})
	var out []uint32
	for _, d := range t.defs {
		if _, ok := seen[d.RefreshMs]; ok {
			continue
		}
		seen[d.RefreshMs] = struct{}{}
		out = append(out, d.RefreshMs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Group returns the labels refreshed every rate ms, ordered by label.
func (t *Table) Group(rate uint32) []Definition {
	var out []Definition
	for _, l := range t.order {
		if d := t.defs[l]; d.RefreshMs == rate {
			out = append(out, d)
		}
	}
	return out
}

// InitialFrames encodes every label's default value.
func (t *Table) InitialFrames(ssm frame.SSM) (map[uint8]frame.Raw, error) {
	out := make(map[uint8]frame.Raw, len(t.order))
	for _, l := range t.order {
		d := t.defs[l]
		f, err := d.Encode(d.Default, ssm)
		if err != nil {
			return nil, fmt.Errorf("labels: default of %03o %s: %w", l, d.Name, err)
		}
		out[l] = f
	}
	return out, nil
}
