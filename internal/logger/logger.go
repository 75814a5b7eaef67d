// Package logger provides structured diagnostic logging using zerolog.
// Game events go through internal/log; this is for operators.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const milliTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Init configures the global logger. An unknown level falls back to info.
// Output goes to stderr so stdio transports keep stdout to themselves.
func Init(level string, dev bool) {
	zerolog.TimeFieldFormat = milliTimeFormat
	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }

	const callerWidth = 24
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		path := fmt.Sprintf("%s:%d", filepath.Base(file), line)
		if len(path) >= callerWidth {
			return path[len(path)-callerWidth:]
		}
		return path + strings.Repeat(" ", callerWidth-len(path))
	}

	lvl := ParseLevel(level)
	zerolog.SetGlobalLevel(lvl)

	log.Logger = New(os.Stderr, dev).With().Caller().Logger()

	log.Debug().
		Str("level", lvl.String()).
		Bool("dev", dev).
		Msg("Logger initialized")
}

// New returns a console logger writing to w. Colour is only used in dev mode.
func New(w io.Writer, dev bool) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: milliTimeFormat,
		NoColor:    !dev,
	}).With().Timestamp().Logger()
}

// ParseLevel parses a level name, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	if level == "" {
		return zerolog.InfoLevel
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Get returns the global logger instance.
func Get() zerolog.Logger {
	return log.Logger
}
