package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config selects the output format and minimum level.
type Config struct {
	Env   string // development -> console; anything else -> JSON
	Level string // trace, debug, info, warn, error

	// Output defaults to os.Stdout.
	Output io.Writer
}

// New builds the process logger and installs it as zerolog's global logger,
// which is what the request middleware and GORM adapter write through.
func New(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	w := out
	if cfg.Env == "development" {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	zl := zerolog.New(w).Level(parseLevel(cfg.Level)).With().Timestamp().Logger()
	log.Logger = zl
	return zl
}

func parseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || s == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// Printf adapts zerolog to writers that expect a Printf method (GORM's logger).
type Printf struct {
	Logger zerolog.Logger
}

func (p Printf) Printf(format string, args ...interface{}) {
	p.Logger.Info().Msgf(format, args...)
}
