// internal/config/validate.go
package config

import (
	"fmt"

	"github.com/tamzrod/a429sched/internal/bus"
	"github.com/tamzrod/a429sched/internal/frame"
	"github.com/tamzrod/a429sched/internal/receiver"
	"github.com/tamzrod/a429sched/internal/scheduler"
	"github.com/tamzrod/a429sched/internal/status"
)

// MirrorSpan is the register footprint of the receive mirror:
// two registers per key for both receive channels.
const MirrorSpan = 2 * 2 * receiver.Keys

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil config")
	}

	// ------------------------------------------------------------
	// DEVICE
	// ------------------------------------------------------------

	for i := 0; i < len(cfg.Device.Name); i++ {
		if cfg.Device.Name[i] > 0x7F {
			return fmt.Errorf("device: name must contain ASCII characters only")
		}
	}

	switch cfg.Device.Driver {
	case "loopback":
		if cfg.Device.Loop != "" {
			ch, err := bus.ParseChannel(cfg.Device.Loop)
			if err != nil || !ch.IsRX() {
				return fmt.Errorf("device: loop %q is not a receive channel", cfg.Device.Loop)
			}
		}
	case "modbus":
		if cfg.Device.Endpoint == "" {
			return fmt.Errorf("device: modbus driver requires endpoint")
		}
		if cfg.Device.TimeoutMs <= 0 {
			return fmt.Errorf("device: timeout_ms must be > 0")
		}
	default:
		return fmt.Errorf("device: unknown driver %q", cfg.Device.Driver)
	}

	switch cfg.Device.Parity {
	case "", "auto", "data":
	default:
		return fmt.Errorf("device: parity must be auto or data, got %q", cfg.Device.Parity)
	}

	// ------------------------------------------------------------
	// TRANSMIT
	// ------------------------------------------------------------

	ch, err := bus.ParseChannel(cfg.TX.Channel)
	if err != nil || !ch.IsTX() {
		return fmt.Errorf("tx: channel %q is not a transmit channel", cfg.TX.Channel)
	}
	ssm, err := frame.ParseSSM(cfg.TX.InitialSSM)
	if err != nil {
		return fmt.Errorf("tx: %w", err)
	}
	if ssm == frame.SSMData {
		return fmt.Errorf("tx: initial_ssm must be a status, not DATA")
	}

	// ------------------------------------------------------------
	// RECEIVE
	// ------------------------------------------------------------

	if cfg.RX.IntervalMs < 0 {
		return fmt.Errorf("rx: interval_ms must be >= 0")
	}
	if cfg.RX.FrameBudget < 0 {
		return fmt.Errorf("rx: frame_budget must be >= 0")
	}

	rxSeen := make(map[bus.Channel]struct{})
	for _, rc := range cfg.RX.Channels {
		rch, err := bus.ParseChannel(rc.Channel)
		if err != nil || !rch.IsRX() {
			return fmt.Errorf("rx: channel %q is not a receive channel", rc.Channel)
		}
		if _, dup := rxSeen[rch]; dup {
			return fmt.Errorf("rx: channel %s configured twice", rch)
		}
		rxSeen[rch] = struct{}{}

		for _, f := range rc.Filters {
			if _, err := ParseAddress(f); err != nil {
				return fmt.Errorf("rx %s: filter: %w", rch, err)
			}
		}
	}

	// ------------------------------------------------------------
	// LABELS
	// ------------------------------------------------------------

	switch cfg.Labels.Builtin {
	case "", "adiru":
	default:
		return fmt.Errorf("labels: unknown builtin set %q", cfg.Labels.Builtin)
	}
	if cfg.Labels.Builtin == "" && len(cfg.Labels.Definitions) == 0 {
		return fmt.Errorf("labels: no builtin set and no definitions")
	}

	labelSeen := make(map[uint8]struct{})
	for _, lc := range cfg.Labels.Definitions {
		d, err := lc.Definition()
		if err != nil {
			return err
		}
		if _, dup := labelSeen[d.Label]; dup {
			return fmt.Errorf("labels: label %03o defined twice", d.Label)
		}
		labelSeen[d.Label] = struct{}{}
		if err := d.Validate(); err != nil {
			return err
		}
	}

	// ------------------------------------------------------------
	// SCHEDULE
	// ------------------------------------------------------------

	if cfg.Schedule.MaxJobs < 0 || cfg.Schedule.MaxJobs > 1<<16 {
		return fmt.Errorf("schedule: max_jobs %d out of range", cfg.Schedule.MaxJobs)
	}
	// frame slot index = label, so every label needs a slot
	if cfg.Schedule.FrameSlots != 0 && (cfg.Schedule.FrameSlots <= frame.MaxLabel || cfg.Schedule.FrameSlots > 1<<16) {
		return fmt.Errorf("schedule: frame_slots %d out of range (%d..%d)", cfg.Schedule.FrameSlots, frame.MaxLabel+1, 1<<16)
	}
	if cfg.Schedule.TickBudget < 0 || cfg.Schedule.QueueSize < 0 {
		return fmt.Errorf("schedule: tick_budget and queue_size must be >= 0")
	}

	switch cfg.Schedule.Mode {
	case "groups":
		if len(cfg.Schedule.Jobs) > 0 {
			return fmt.Errorf("schedule: jobs are only used in table mode")
		}
	case "table":
		if len(cfg.Schedule.Jobs) == 0 {
			return fmt.Errorf("schedule: table mode requires jobs")
		}
		maxJobs := cfg.Schedule.MaxJobs
		if maxJobs == 0 {
			maxJobs = scheduler.DefaultMaxJobs
		}
		idxSeen := make(map[uint16]struct{})
		for _, jc := range cfg.Schedule.Jobs {
			j, err := jc.Job()
			if err != nil {
				return err
			}
			if int(j.Index) >= maxJobs {
				return fmt.Errorf("schedule: job index %d >= max_jobs %d", j.Index, maxJobs)
			}
			if _, dup := idxSeen[j.Index]; dup {
				return fmt.Errorf("schedule: job index %d listed twice", j.Index)
			}
			idxSeen[j.Index] = struct{}{}
			if j.DwellMs > scheduler.MaxDwellMs {
				return fmt.Errorf("schedule: job %d: dwell_ms %d > %d", j.Index, j.DwellMs, scheduler.MaxDwellMs)
			}
		}
	default:
		return fmt.Errorf("schedule: mode must be groups or table, got %q", cfg.Schedule.Mode)
	}

	// ------------------------------------------------------------
	// MODBUS MEMORY (OPT-IN)
	// ------------------------------------------------------------

	if cfg.Status.Enabled && cfg.Status.Endpoint == "" {
		return fmt.Errorf("status: enabled but no endpoint")
	}
	if cfg.Mirror.Enabled && cfg.Mirror.Endpoint == "" {
		return fmt.Errorf("mirror: enabled but no endpoint")
	}
	if cfg.Mirror.Enabled && uint32(cfg.Mirror.BaseAddr)+MirrorSpan > 0x10000 {
		return fmt.Errorf("mirror: base_addr %d leaves no room for %d registers", cfg.Mirror.BaseAddr, MirrorSpan)
	}
	if cfg.Status.Enabled && (uint32(cfg.Status.BaseSlot)+1)*status.SlotsPerDevice > 0x10000 {
		return fmt.Errorf("status: base_slot %d out of register range", cfg.Status.BaseSlot)
	}
	if cfg.Status.Enabled && cfg.Mirror.Enabled &&
		cfg.Status.Endpoint == cfg.Mirror.Endpoint &&
		cfg.Status.UnitID == cfg.Mirror.UnitID {
		sStart := uint32(cfg.Status.BaseSlot) * status.SlotsPerDevice
		sEnd := sStart + status.SlotsPerDevice
		mStart := uint32(cfg.Mirror.BaseAddr)
		mEnd := mStart + MirrorSpan
		if sStart < mEnd && mStart < sEnd {
			return fmt.Errorf(
				"status/mirror overlap: endpoint=%s unit_id=%d status=[%d,%d) mirror=[%d,%d)",
				cfg.Status.Endpoint, cfg.Status.UnitID, sStart, sEnd, mStart, mEnd,
			)
		}
	}

	if cfg.Producer.IntervalMs < 0 {
		return fmt.Errorf("producer: interval_ms must be >= 0")
	}

	return nil
}
