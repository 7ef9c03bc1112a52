// internal/api/views.go
package api

import (
	"fmt"

	"github.com/tamzrod/a429sched/internal/frametable"
	"github.com/tamzrod/a429sched/internal/labels"
	"github.com/tamzrod/a429sched/internal/scheduler"
)

type labelView struct {
	Label   string  `json:"label"`
	Name    string  `json:"name"`
	RateMs  uint32  `json:"rate_ms"`
	SDI     string  `json:"sdi"`
	Format  string  `json:"format"`
	Unit    string  `json:"unit,omitempty"`
	Value   float64 `json:"value"`
	SSM     string  `json:"ssm"`
	Frame   string  `json:"frame"`
	Armed   bool    `json:"armed"`
	Muted   bool    `json:"muted"`
	Decoded float64 `json:"decoded"`
}

func (s *Server) labelView(d labels.Definition) labelView {
	v := labelView{
		Label:  fmt.Sprintf("%03o", d.Label),
		Name:   d.Name,
		RateMs: d.RefreshMs,
		SDI:    d.SDI.String(),
		Format: d.Format.String(),
		Unit:   d.Unit,
	}

	value, ssm, _ := s.d.Producer.Value(d.Label)
	v.Value = value
	v.SSM = ssm.String()

	var snap frametable.Snapshot
	if got, err := s.d.Frames.Read(uint16(d.Label)); err == nil {
		snap = got
	}
	v.Frame = fmt.Sprintf("%08X", uint32(snap.Frame))
	v.Armed = snap.Armed
	v.Muted = snap.Muted
	if dec, _, err := d.Decode(snap.Frame); err == nil {
		v.Decoded = dec
	}
	return v
}

type jobView struct {
	Index   uint16 `json:"index"`
	Job     string `json:"job"`
	Ref     uint16 `json:"ref"`
	DwellMs uint8  `json:"dwell_ms"`
}

func newJobView(j scheduler.Job) jobView {
	return jobView{Index: j.Index, Job: j.Kind.String(), Ref: j.FrameRef, DwellMs: j.DwellMs}
}

type valueRequest struct {
	Value *float64 `json:"value" binding:"required"`
	SSM   string   `json:"ssm"`
}

type directRequest struct {
	// Frame is hex, with or without 0x.
	Frame string `json:"frame" binding:"required"`
}

type jobRequest struct {
	Job     string `json:"job" binding:"required"`
	Ref     uint16 `json:"ref"`
	DwellMs uint8  `json:"dwell_ms"`
}
