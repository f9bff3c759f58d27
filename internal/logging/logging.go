// Package logging wires the core's structured-logging idiom directly to
// zerolog, grounded on its own zerolog binding
// (logiface-zerolog/izerolog): contextual fields attached per component,
// leveled output, no second backend. The generic logiface abstraction
// itself is not carried forward — a single-deployment appliance has no
// second backend to abstract over (see DESIGN.md).
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New creates the root logger. pretty selects a human-readable console
// writer (for local/CLI use); otherwise output is newline-delimited JSON
// suitable for log aggregation.
func New(pretty bool, level zerolog.Level) zerolog.Logger {
	var w io.Writer = os.Stderr
	if pretty {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Component returns a child logger tagged with the owning component's
// name, the convention every task in cmd/telemetryd follows so log lines
// can be filtered per subsystem.
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
