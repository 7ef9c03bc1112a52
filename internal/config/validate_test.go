// internal/config/validate_test.go
package config

import (
	"strings"
	"testing"
)

// helper to build a hand-written job table config quickly
func tableConfig(jobs ...JobConfig) *Config {
	cfg := Defaults()
	cfg.Schedule.Mode = "table"
	cfg.Schedule.Jobs = jobs
	return cfg
}

// ---- tests ----

func TestValidate_DefaultsAreValid(t *testing.T) {
	if err := Validate(Defaults()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Rejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"unknown driver", func(c *Config) { c.Device.Driver = "serial" }, "unknown driver"},
		{"modbus without endpoint", func(c *Config) { c.Device.Driver = "modbus" }, "requires endpoint"},
		{"non ascii name", func(c *Config) { c.Device.Name = "héllo" }, "ASCII"},
		{"loop to tx", func(c *Config) { c.Device.Loop = "tx1" }, "not a receive channel"},
		{"rx channel is tx", func(c *Config) { c.RX.Channels = []RXChannelConfig{{Channel: "tx1"}} }, "not a receive channel"},
		{"rx channel twice", func(c *Config) {
			c.RX.Channels = []RXChannelConfig{{Channel: "rx1"}, {Channel: "RX1"}}
		}, "configured twice"},
		{"bad filter", func(c *Config) {
			c.RX.Channels = []RXChannelConfig{{Channel: "rx1", Filters: []string{"999"}}}
		}, "not octal"},
		{"tx on rx channel", func(c *Config) { c.TX.Channel = "rx1" }, "not a transmit channel"},
		{"data initial ssm", func(c *Config) { c.TX.InitialSSM = "DATA" }, "initial_ssm"},
		{"no labels", func(c *Config) { c.Labels.Builtin = "" }, "no builtin set"},
		{"unknown builtin", func(c *Config) { c.Labels.Builtin = "fms" }, "unknown builtin"},
		{"label twice", func(c *Config) {
			d := LabelConfig{Label: "310", RateMs: 100, Format: "bnr", LSB: 11, Size: 18, Min: -180, Max: 180}
			c.Labels.Definitions = []LabelConfig{d, d}
		}, "defined twice"},
		{"zero rate", func(c *Config) {
			c.Labels.Definitions = []LabelConfig{{Label: "310", Format: "bnr", LSB: 11, Size: 18, Max: 1}}
		}, "refresh rate"},
		{"unknown mode", func(c *Config) { c.Schedule.Mode = "burst" }, "mode must be"},
		{"jobs in group mode", func(c *Config) {
			c.Schedule.Jobs = []JobConfig{{Index: 0, Kind: "stop"}}
		}, "only used in table mode"},
		{"status without endpoint", func(c *Config) { c.Status.Enabled = true }, "status: enabled"},
		{"mirror without endpoint", func(c *Config) { c.Mirror.Enabled = true }, "mirror: enabled"},
		{"mirror past register space", func(c *Config) {
			c.Mirror = MirrorConfig{Enabled: true, Endpoint: "ep", BaseAddr: 0xF001}
		}, "leaves no room"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Defaults()
			tc.mutate(cfg)
			err := Validate(cfg)
			if err == nil {
				t.Fatalf("expected error containing %q", tc.want)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not contain %q", err, tc.want)
			}
		})
	}
}

func TestValidate_TableModeJobs(t *testing.T) {
	ok := tableConfig(
		JobConfig{Index: 0, Kind: "cyclic", Label: "310"},
		JobConfig{Index: 1, Kind: "retransmit_rx1", Label: "203", SDI: "2", DwellMs: 50},
		JobConfig{Index: 2, Kind: "jump", Ref: 0},
	)
	if err := Validate(ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dup := tableConfig(
		JobConfig{Index: 3, Kind: "skip"},
		JobConfig{Index: 3, Kind: "stop"},
	)
	if err := Validate(dup); err == nil || !strings.Contains(err.Error(), "listed twice") {
		t.Fatalf("expected duplicate index error, got %v", err)
	}

	long := tableConfig(JobConfig{Index: 0, Kind: "dwell", DwellMs: 251})
	if err := Validate(long); err == nil || !strings.Contains(err.Error(), "dwell_ms") {
		t.Fatalf("expected dwell error, got %v", err)
	}

	outside := tableConfig(JobConfig{Index: 10, Kind: "stop"})
	outside.Schedule.MaxJobs = 10
	if err := Validate(outside); err == nil || !strings.Contains(err.Error(), ">= max_jobs") {
		t.Fatalf("expected range error, got %v", err)
	}

	empty := tableConfig()
	if err := Validate(empty); err == nil {
		t.Fatalf("table mode without jobs must fail")
	}
}

func TestValidate_StatusMirrorOverlapSameEndpoint(t *testing.T) {
	cfg := Defaults()
	cfg.Status = StatusConfig{Enabled: true, Endpoint: "ep1", UnitID: 1, BaseSlot: 10}
	cfg.Mirror = MirrorConfig{Enabled: true, Endpoint: "ep1", UnitID: 1, BaseAddr: 0}

	err := Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "overlap") {
		t.Fatalf("expected overlap error, got %v", err)
	}

	// same registers on another unit id are independent memory
	cfg.Mirror.UnitID = 2
	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// status block placed after the mirror
	cfg.Mirror.UnitID = 1
	cfg.Status.BaseSlot = MirrorSpan/30 + 1
	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_DoesNotMutate(t *testing.T) {
	cfg := Defaults()
	cfg.Device.Name = "A-VERY-LONG-DEVICE-NAME"
	before := *cfg

	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Device != before.Device || cfg.TX.AutoStart != nil || len(cfg.RX.Channels) != 0 {
		t.Fatalf("Validate mutated config")
	}
}

func TestNormalize(t *testing.T) {
	cfg := Defaults()
	cfg.Device.Name = "A-VERY-LONG-DEVICE-NAME"
	cfg.Device.Loop = "RX2"
	cfg.TX.InitialSSM = "ncd"

	Normalize(cfg)

	if cfg.Device.Name != "A-VERY-LONG-DEVI" {
		t.Fatalf("name not truncated: %q", cfg.Device.Name)
	}
	if cfg.TX.AutoStart == nil || !*cfg.TX.AutoStart {
		t.Fatalf("auto_start should default to true")
	}
	if cfg.TX.InitialSSM != "NCD" {
		t.Fatalf("initial_ssm=%q", cfg.TX.InitialSSM)
	}
	if len(cfg.RX.Channels) != 1 || cfg.RX.Channels[0].Channel != "rx2" {
		t.Fatalf("rx channels=%+v, want loop channel rx2", cfg.RX.Channels)
	}
	if cfg.Status.TimeoutMs != cfg.Device.TimeoutMs {
		t.Fatalf("status timeout not inherited")
	}

	mb := Defaults()
	mb.Device.Driver = "modbus"
	mb.Device.Endpoint = "127.0.0.1:502"
	Normalize(mb)
	if len(mb.RX.Channels) != 2 {
		t.Fatalf("modbus driver should listen on both channels, got %+v", mb.RX.Channels)
	}
}

func TestValidate_FrameSlotsCoverLabels(t *testing.T) {
	cfg := Defaults()
	cfg.Schedule.FrameSlots = 100
	if err := Validate(cfg); err == nil || !strings.Contains(err.Error(), "frame_slots") {
		t.Fatalf("expected frame_slots error, got %v", err)
	}
	cfg.Schedule.FrameSlots = 0
	if err := Validate(cfg); err != nil {
		t.Fatalf("zero means default: %v", err)
	}
}
