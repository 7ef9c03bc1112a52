// internal/config/load.go
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Load reads a YAML (.yaml/.yml) or TOML (.toml) file over Defaults().
// Keys absent from the file keep their default.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Defaults()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.NewDecoder(bytes.NewReader(raw)).Decode(cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case ".yaml", ".yml", "":
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("config: unsupported file type %q", filepath.Ext(path))
	}

	return cfg, nil
}

// Defaults is a runnable loopback setup with the ADIRU label set.
func Defaults() *Config {
	return &Config{
		Device: DeviceConfig{
			Name:      "a429sched",
			Driver:    "loopback",
			UnitID:    1,
			TimeoutMs: 1000,
			Parity:    "auto",
			Loop:      "rx1",
		},
		TX: TXConfig{
			Channel:    "tx1",
			InitialSSM: "NO",
		},
		RX: RXConfig{
			IntervalMs:  10,
			FrameBudget: 5,
		},
		Labels: LabelsConfig{
			Builtin: "adiru",
		},
		Schedule: ScheduleConfig{
			Mode:       "groups",
			MaxJobs:    1000,
			FrameSlots: 256,
			TickBudget: 1024,
			QueueSize:  16,
		},
		Producer: ProducerConfig{
			IntervalMs: 1000,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
