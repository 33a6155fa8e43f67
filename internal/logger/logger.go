// Package logger configures zerolog for the CLI. Logs go to stderr so
// command output on stdout stays machine readable.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const defaultLevel = zerolog.WarnLevel

// Logger is the process logger set by Init.
var Logger = zerolog.Nop()

// Init installs the process logger and the global level.
func Init(level, format string) {
	Logger = New(os.Stderr, level, format)
	zerolog.SetGlobalLevel(parseLogLevel(level))
	log.Logger = Logger
}

// New builds a logger writing to w without touching global state.
func New(w io.Writer, level, format string) zerolog.Logger {
	if strings.EqualFold(format, "json") {
		return zerolog.New(w).Level(parseLogLevel(level)).With().Timestamp().Logger()
	}

	console := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.Kitchen,
		// Color only on a real stream
		NoColor: w != os.Stderr && w != os.Stdout,
	}
	return zerolog.New(console).Level(parseLogLevel(level)).With().Timestamp().Logger()
}

// parseLogLevel accepts zerolog's level names plus "warning" and "off".
// Anything unknown falls back to warn.
func parseLogLevel(level string) zerolog.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	switch level {
	case "":
		return defaultLevel
	case "warning":
		return zerolog.WarnLevel
	case "off":
		return zerolog.Disabled
	}

	parsed, err := zerolog.ParseLevel(level)
	if err != nil || parsed == zerolog.NoLevel {
		return defaultLevel
	}
	return parsed
}

// GetLogger returns the logger installed by Init.
func GetLogger() zerolog.Logger {
	return Logger
}
