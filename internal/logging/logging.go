// Package logging holds the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Log is the global logger. JSON by default; pretty console output
// outside production.
var Log zerolog.Logger

func init() {
	Log = zerolog.New(os.Stderr).
		With().
		Timestamp().
		Logger()

	if os.Getenv("APP_ENV") != "production" {
		Log = Log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

// SetOutput redirects the global logger, e.g. to a file while the TUI
// owns the terminal.
func SetOutput(w io.Writer) {
	Log = Log.Output(w)
}

// SetLevel adjusts the global level from a config string. Unknown names
// keep the info level.
func SetLevel(level string) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	Log = Log.Level(parsed)
}
