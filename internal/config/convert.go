// internal/config/convert.go
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tamzrod/a429sched/internal/codec"
	"github.com/tamzrod/a429sched/internal/frame"
	"github.com/tamzrod/a429sched/internal/labels"
	"github.com/tamzrod/a429sched/internal/scheduler"
)

// ParseLabel reads an octal label: "324", "0324" or "0o324".
func ParseLabel(s string) (uint8, error) {
	t := strings.TrimSpace(s)
	t = strings.TrimPrefix(strings.TrimPrefix(t, "0o"), "0O")
	if t == "" {
		return 0, fmt.Errorf("config: empty label")
	}
	v, err := strconv.ParseUint(t, 8, 8)
	if err != nil {
		return 0, fmt.Errorf("config: label %q is not octal 0..377", s)
	}
	return uint8(v), nil
}

// ParseAddress reads a receive filter entry: "label" or "label/sdi".
// A bare label addresses the label alone.
func ParseAddress(s string) (uint16, error) {
	lbl, sdiPart, hasSDI := strings.Cut(s, "/")
	l, err := ParseLabel(lbl)
	if err != nil {
		return 0, err
	}
	if !hasSDI {
		return uint16(l), nil
	}
	sdi, err := frame.ParseSDI(sdiPart)
	if err != nil {
		return 0, fmt.Errorf("config: address %q: %w", s, err)
	}
	if sdi == frame.SDIData {
		return uint16(l), nil
	}
	return frame.ExtendedLabelOf(l, uint8(sdi)), nil
}

// Definition converts a label entry. Value checks belong to labels.Definition.Validate.
func (lc LabelConfig) Definition() (labels.Definition, error) {
	l, err := ParseLabel(lc.Label)
	if err != nil {
		return labels.Definition{}, err
	}
	sdi, err := frame.ParseSDI(lc.SDI)
	if err != nil {
		return labels.Definition{}, fmt.Errorf("config: label %s: %w", lc.Label, err)
	}
	f, err := codec.ParseFormat(lc.Format)
	if err != nil {
		return labels.Definition{}, fmt.Errorf("config: label %s: %w", lc.Label, err)
	}

	return labels.Definition{
		Label:     l,
		Name:      lc.Name,
		RefreshMs: lc.RateMs,
		SDI:       sdi,
		Format:    f,
		LSB:       lc.LSB,
		Size:      lc.Size,
		Min:       lc.Min,
		Max:       lc.Max,
		Decimals:  lc.Decimals,
		Default:   lc.Default,
		Unit:      lc.Unit,
	}, nil
}

// LabelTable builds the label registry: the builtin set (if any) with
// configured definitions replacing builtin entries of the same label.
func (c *Config) LabelTable() (*labels.Table, error) {
	var defs []labels.Definition
	index := make(map[uint8]int)

	if c.Labels.Builtin == "adiru" {
		for _, d := range labels.ADIRU() {
			index[d.Label] = len(defs)
			defs = append(defs, d)
		}
	}

	for _, lc := range c.Labels.Definitions {
		d, err := lc.Definition()
		if err != nil {
			return nil, err
		}
		if i, ok := index[d.Label]; ok {
			defs[i] = d
			continue
		}
		index[d.Label] = len(defs)
		defs = append(defs, d)
	}

	return labels.NewTable(defs)
}

// Job converts a job table entry.
func (jc JobConfig) Job() (scheduler.Job, error) {
	k, err := scheduler.ParseKind(jc.Kind)
	if err != nil {
		return scheduler.Job{}, fmt.Errorf("config: job %d: %w", jc.Index, err)
	}

	j := scheduler.Job{
		Index:    jc.Index,
		Kind:     k,
		FrameRef: jc.Ref,
		DwellMs:  jc.DwellMs,
	}

	if jc.Label == "" {
		return j, nil
	}

	l, err := ParseLabel(jc.Label)
	if err != nil {
		return scheduler.Job{}, fmt.Errorf("config: job %d: %w", jc.Index, err)
	}

	switch k {
	case scheduler.KindSingle, scheduler.KindCyclic:
		j.FrameRef = uint16(l)
	case scheduler.KindRetransmitRx1, scheduler.KindRetransmitRx2:
		j.FrameRef = uint16(l)
		sdi, err := frame.ParseSDI(jc.SDI)
		if err != nil {
			return scheduler.Job{}, fmt.Errorf("config: job %d: %w", jc.Index, err)
		}
		if sdi != frame.SDIData {
			j.FrameRef = frame.ExtendedLabelOf(l, uint8(sdi))
		}
	default:
		return scheduler.Job{}, fmt.Errorf("config: job %d: label is meaningless for %s", jc.Index, k)
	}

	return j, nil
}

// JobTable converts the whole hand-written job table.
func (s ScheduleConfig) JobTable() ([]scheduler.Job, error) {
	out := make([]scheduler.Job, 0, len(s.Jobs))
	for _, jc := range s.Jobs {
		j, err := jc.Job()
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, nil
}
