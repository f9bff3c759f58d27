package outbound

import (
	"context"

	"github.com/rs/zerolog"
)

// LogSink is a Sink that writes each payload as a log line, the default
// wired in cmd/telemetryd until a real cloud transport is configured.
type LogSink struct {
	log zerolog.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log}
}

// Send implements Sink.
func (s *LogSink) Send(ctx context.Context, payload []byte) error {
	s.log.Info().RawJSON("event", payload).Msg("outbound event")
	return nil
}

// LoopbackSink is a Sink that records every payload it receives, used by
// tests to inspect emitted events without a real transport.
type LoopbackSink struct {
	Received [][]byte
}

// NewLoopbackSink creates an empty LoopbackSink.
func NewLoopbackSink() *LoopbackSink {
	return &LoopbackSink{}
}

// Send implements Sink.
func (s *LoopbackSink) Send(ctx context.Context, payload []byte) error {
	cp := make([]byte, len(payload))
	copy(cp, payload)
	s.Received = append(s.Received, cp)
	return nil
}
