// Package logger configures the global zerolog logger from command line
// options.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger holds the logging options shared by all binaries. Embed it in an
// options struct as a go-flags group.
type Logger struct {
	Level  string `long:"log-level"  env:"LOG_LEVEL"  description:"Log level" choice:"trace" choice:"debug" choice:"info" choice:"warn" choice:"error" default:"info"`
	Format string `long:"log-format" env:"LOG_FORMAT" description:"Log format" choice:"console" choice:"json" default:"console"`
	Color  string `long:"log-color"  env:"LOG_COLOR"  description:"Colored console output" choice:"auto" choice:"always" choice:"never" default:"auto"`
}

// Setup applies the options to the global logger writing to stderr.
func (l Logger) Setup() {
	log.Logger = l.New(os.Stderr)
	zerolog.SetGlobalLevel(l.level())
}

// New builds a logger writing to w without touching global state.
func (l Logger) New(w io.Writer) zerolog.Logger {
	if l.Format == "json" {
		return zerolog.New(w).Level(l.level()).With().Timestamp().Logger()
	}

	console := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.DateTime,
		NoColor:    !l.colored(w),
	}
	return zerolog.New(console).Level(l.level()).With().Timestamp().Logger()
}

func (l Logger) level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(l.Level)
	if err != nil || l.Level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

func (l Logger) colored(w io.Writer) bool {
	switch l.Color {
	case "always":
		return true
	case "never":
		return false
	}

	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
