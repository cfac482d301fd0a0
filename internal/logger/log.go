// internal/logger/log.go
package logger

import (
	"io"
	"os"
	"strings"

	"simplelog/internal/config"

	stdlog "log"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// Init configures the global zerolog logger once at startup.
//
//   - LOG_PRETTY=true: colored console output for local development.
//   - otherwise: raw JSON to stdout, ready for CloudWatch Logs.
//   - every line carries "service" and "instance" so lines from multiple
//     tasks can be told apart.
//   - Debug/Info lines can be sampled (1/N); Warn and Error are never
//     sampled.
func Init(cfg config.Config) {
	level := zerolog.InfoLevel
	if l, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.LogLevel))); err == nil {
		level = l
	}
	zerolog.SetGlobalLevel(level)

	var w io.Writer
	if cfg.LogPretty {
		w = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		}
	} else {
		w = os.Stdout
	}

	base := zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("service", cfg.ServiceName).
		Str("instance", cfg.InstanceID).
		Logger()

	logger := base
	if cfg.LogSampleN > 1 {
		logger = base.Sample(&zerolog.LevelSampler{
			DebugSampler: &zerolog.BasicSampler{N: uint32(cfg.LogSampleN)},
			InfoSampler:  &zerolog.BasicSampler{N: uint32(cfg.LogSampleN)},
			// Warn/Error stay unsampled.
		})
	}

	zlog.Logger = logger

	// Route anything written through the stdlib logger into zerolog.
	stdlog.SetFlags(0)
	stdlog.SetOutput(zlog.Logger)
}
