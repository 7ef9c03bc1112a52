// internal/observability/logger.go
package observability

import (
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	EnvLogLevel   = "A429_LOG_LEVEL"
	EnvLogNoColor = "A429_LOG_NOCOLOR"
	EnvLogJSON    = "A429_LOG_JSON"
)

// LogConfig is the file-level logging section. Environment wins over file.
type LogConfig struct {
	Level   string
	NoColor bool
	JSON    bool
}

// InitLogger builds the process logger and installs it as the global one.
func InitLogger(app string, cfg LogConfig) zerolog.Logger {
	applyEnvOverrides(&cfg)

	var output io.Writer = zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
		NoColor:    cfg.NoColor,
	}
	if cfg.JSON {
		output = os.Stdout
	}

	level, ok := ParseLevel(cfg.Level)
	if !ok {
		level = zerolog.InfoLevel
	}

	logger := zerolog.New(output).Level(level).With().Timestamp().Str("app", app).Logger()
	log.Logger = logger
	return logger
}

func applyEnvOverrides(cfg *LogConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Level = v
	}
	if v, err := strconv.ParseBool(os.Getenv(EnvLogNoColor)); err == nil {
		cfg.NoColor = v
	}
	if v, err := strconv.ParseBool(os.Getenv(EnvLogJSON)); err == nil {
		cfg.JSON = v
	}
}

// ParseLevel maps the level names used in config and environment.
func ParseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}
