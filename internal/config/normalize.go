// internal/config/normalize.go
package config

import "strings"

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	// ------------------------------------------------------------
	// DEVICE
	// ------------------------------------------------------------

	// device_name: ASCII already validated, truncate to 16 characters
	if len(cfg.Device.Name) > 16 {
		cfg.Device.Name = cfg.Device.Name[:16]
	}
	if cfg.Device.Parity == "" {
		cfg.Device.Parity = "auto"
	}
	cfg.Device.Loop = strings.ToLower(cfg.Device.Loop)

	// ------------------------------------------------------------
	// TRANSMIT
	// ------------------------------------------------------------

	if cfg.TX.AutoStart == nil {
		on := true
		cfg.TX.AutoStart = &on
	}
	cfg.TX.InitialSSM = strings.ToUpper(cfg.TX.InitialSSM)

	// ------------------------------------------------------------
	// RECEIVE
	// ------------------------------------------------------------

	// No channel list means: listen where frames can arrive.
	if len(cfg.RX.Channels) == 0 {
		switch {
		case cfg.Device.Driver == "modbus":
			cfg.RX.Channels = []RXChannelConfig{{Channel: "rx1"}, {Channel: "rx2"}}
		case cfg.Device.Loop != "":
			cfg.RX.Channels = []RXChannelConfig{{Channel: cfg.Device.Loop}}
		}
	}
	if cfg.RX.IntervalMs == 0 {
		cfg.RX.IntervalMs = 10
	}
	for i := range cfg.RX.Channels {
		cfg.RX.Channels[i].Channel = strings.ToLower(cfg.RX.Channels[i].Channel)
	}

	// ------------------------------------------------------------
	// MODBUS MEMORY
	// ------------------------------------------------------------

	if cfg.Producer.IntervalMs == 0 {
		cfg.Producer.IntervalMs = 1000
	}
	if cfg.Status.TimeoutMs == 0 {
		cfg.Status.TimeoutMs = cfg.Device.TimeoutMs
	}

	// No other normalization is performed here.
	// Scheduler limits fall back to package defaults when zero.
}
