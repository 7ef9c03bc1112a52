// internal/config/config.go
package config

type Config struct {
	Device   DeviceConfig   `yaml:"device" toml:"device"`
	TX       TXConfig       `yaml:"tx" toml:"tx"`
	RX       RXConfig       `yaml:"rx" toml:"rx"`
	Labels   LabelsConfig   `yaml:"labels" toml:"labels"`
	Schedule ScheduleConfig `yaml:"schedule" toml:"schedule"`
	Producer ProducerConfig `yaml:"producer" toml:"producer"`
	Status   StatusConfig   `yaml:"status" toml:"status"`
	Mirror   MirrorConfig   `yaml:"mirror" toml:"mirror"`
	API      APIConfig      `yaml:"api" toml:"api"`
	Recorder RecorderConfig `yaml:"recorder" toml:"recorder"`
	Log      LogConfig      `yaml:"log" toml:"log"`
}

// ---- DEVICE ----

type DeviceConfig struct {
	Name      string `yaml:"name" toml:"name"`
	Driver    string `yaml:"driver" toml:"driver"` // loopback | modbus
	Endpoint  string `yaml:"endpoint" toml:"endpoint"`
	UnitID    uint8  `yaml:"unit_id" toml:"unit_id"`
	TimeoutMs int    `yaml:"timeout_ms" toml:"timeout_ms"`
	TxBase    uint16 `yaml:"tx_base" toml:"tx_base"`
	RxBase    uint16 `yaml:"rx_base" toml:"rx_base"`
	Parity    string `yaml:"parity" toml:"parity"` // auto | data
	Loop      string `yaml:"loop" toml:"loop"`     // loopback only: rx1 | rx2 | ""
}

// ---- TRANSMIT ----

type TXConfig struct {
	Channel    string `yaml:"channel" toml:"channel"`
	InitialSSM string `yaml:"initial_ssm" toml:"initial_ssm"`
	AutoStart  *bool  `yaml:"auto_start" toml:"auto_start"`
}

// ---- RECEIVE ----

type RXConfig struct {
	IntervalMs   int               `yaml:"interval_ms" toml:"interval_ms"`
	FrameBudget  int               `yaml:"frame_budget" toml:"frame_budget"`
	OnChangeOnly bool              `yaml:"on_change_only" toml:"on_change_only"`
	Channels     []RXChannelConfig `yaml:"channels" toml:"channels"`
}

type RXChannelConfig struct {
	Channel   string `yaml:"channel" toml:"channel"`
	TimeoutMs uint32 `yaml:"timeout_ms" toml:"timeout_ms"`

	// Filters are "label" or "label/sdi", label in octal.
	Filters []string `yaml:"filters" toml:"filters"`

	// StandardFilters accepts exactly the addresses of the label table.
	StandardFilters bool `yaml:"standard_filters" toml:"standard_filters"`
}

// ---- LABELS ----

type LabelsConfig struct {
	Builtin     string        `yaml:"builtin" toml:"builtin"` // adiru
	Definitions []LabelConfig `yaml:"definitions" toml:"definitions"`
}

type LabelConfig struct {
	Label    string  `yaml:"label" toml:"label"` // octal
	Name     string  `yaml:"name" toml:"name"`
	RateMs   uint32  `yaml:"rate_ms" toml:"rate_ms"`
	SDI      string  `yaml:"sdi" toml:"sdi"`
	Format   string  `yaml:"format" toml:"format"`
	LSB      uint8   `yaml:"lsb" toml:"lsb"`
	Size     uint8   `yaml:"size" toml:"size"`
	Min      float64 `yaml:"min" toml:"min"`
	Max      float64 `yaml:"max" toml:"max"`
	Decimals uint8   `yaml:"decimals" toml:"decimals"`
	Default  float64 `yaml:"default" toml:"default"`
	Unit     string  `yaml:"unit" toml:"unit"`
}

// ---- SCHEDULE ----

type ScheduleConfig struct {
	Mode       string      `yaml:"mode" toml:"mode"` // groups | table
	MaxJobs    int         `yaml:"max_jobs" toml:"max_jobs"`
	FrameSlots int         `yaml:"frame_slots" toml:"frame_slots"`
	TickBudget int         `yaml:"tick_budget" toml:"tick_budget"`
	QueueSize  int         `yaml:"queue_size" toml:"queue_size"`
	Jobs       []JobConfig `yaml:"jobs" toml:"jobs"`
}

// JobConfig is one hand-written job table entry.
// Label (octal) and SDI, when set, override Ref: the frame slot for
// single/cyclic, the receive key for retransmit jobs.
type JobConfig struct {
	Index   uint16 `yaml:"index" toml:"index"`
	Kind    string `yaml:"job" toml:"job"`
	Ref     uint16 `yaml:"ref" toml:"ref"`
	Label   string `yaml:"label" toml:"label"`
	SDI     string `yaml:"sdi" toml:"sdi"`
	DwellMs uint8  `yaml:"dwell_ms" toml:"dwell_ms"`
}

// ---- PRODUCER ----

type ProducerConfig struct {
	IntervalMs int  `yaml:"interval_ms" toml:"interval_ms"`
	UTC        bool `yaml:"utc" toml:"utc"`
}

// ---- MODBUS MEMORY ----

type StatusConfig struct {
	Enabled   bool   `yaml:"enabled" toml:"enabled"`
	Endpoint  string `yaml:"endpoint" toml:"endpoint"`
	UnitID    uint8  `yaml:"unit_id" toml:"unit_id"`
	BaseSlot  uint16 `yaml:"base_slot" toml:"base_slot"`
	TimeoutMs int    `yaml:"timeout_ms" toml:"timeout_ms"`
}

type MirrorConfig struct {
	Enabled  bool   `yaml:"enabled" toml:"enabled"`
	Endpoint string `yaml:"endpoint" toml:"endpoint"`
	UnitID   uint8  `yaml:"unit_id" toml:"unit_id"`
	BaseAddr uint16 `yaml:"base_addr" toml:"base_addr"`
}

// ---- SURFACES ----

type APIConfig struct {
	Addr        string   `yaml:"addr" toml:"addr"` // empty disables the API
	CORSOrigins []string `yaml:"cors_origins" toml:"cors_origins"`
}

type RecorderConfig struct {
	Path string `yaml:"path" toml:"path"` // empty disables recording
}

type LogConfig struct {
	Level   string `yaml:"level" toml:"level"`
	NoColor bool   `yaml:"no_color" toml:"no_color"`
	JSON    bool   `yaml:"json" toml:"json"`
}
