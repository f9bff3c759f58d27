// Package features compresses a rolling window of sensor frames into a
// fixed 45-dimensional feature vector for the classifier, at a cadence
// driven by the feature task. The streaming-moments and spectral stages
// are plain functions over a []float64 window with no incremental state,
// since the buffer already hands back a full window on each tick.
package features

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/fleetcore/telemetry-core/internal/ringbuffer"
	"github.com/fleetcore/telemetry-core/internal/types"
)

// Dimensions is the fixed feature vector size.
const Dimensions = 45

const numSignals = 5

// signalNames fixes the per-signal iteration order used throughout the
// 45-dim layout: 5 signals × (4 stat + 3 spectral + 2 temporal) dims.
var signalNames = [numSignals]string{"rpm", "coolant", "speed", "load", "maf"}

// Config controls the feature engine's window and cadence.
type Config struct {
	WindowMs     int64         // primary lookback window, default 30000
	Cadence      time.Duration // feature-task wake interval, default 1s
	SampleRateHz float64       // declared scheduler sample rate, default 5
}

// DefaultConfig returns the package's documented defaults.
func DefaultConfig() Config {
	return Config{WindowMs: 30_000, Cadence: time.Second, SampleRateHz: 5}
}

// Engine computes feature vectors from a sensor-frame ring buffer.
type Engine struct {
	cfg Config
	log zerolog.Logger
}

// New creates an Engine.
func New(cfg Config, log zerolog.Logger) *Engine {
	return &Engine{cfg: cfg, log: log}
}

// Compute produces a Dimensions-length vector from frames (oldest-first, as
// returned by ringbuffer.Buffer.ReadWindow). An empty window yields a
// zero-vector.
func (e *Engine) Compute(frames []types.SensorFrame) []float64 {
	vec := make([]float64, Dimensions)
	if len(frames) == 0 {
		return vec
	}

	signals := extractSignals(frames)

	// 20 statistical dims: mean, stddev, skew, kurtosis per signal.
	for i, xs := range signals {
		m := computeMoments(xs)
		base := i * 4
		vec[base+0] = m.mean
		vec[base+1] = m.stddev
		vec[base+2] = m.skew
		vec[base+3] = m.kurtosis
	}

	// 15 spectral dims: low/medium/high band power per signal.
	for i, xs := range signals {
		low, medium, high := spectralBands(xs, e.cfg.SampleRateHz)
		base := 20 + i*3
		vec[base+0] = low
		vec[base+1] = medium
		vec[base+2] = high
	}

	// 10 temporal dims: mean abs first-difference, mean-crossings per signal.
	for i, xs := range signals {
		m := computeMoments(xs)
		base := 35 + i*2
		vec[base+0] = meanAbsDiff(xs)
		vec[base+1] = meanCrossings(xs, m.mean)
	}

	for i, v := range vec {
		vec[i] = finite(v)
	}
	return vec
}

// extractSignals pulls the five raw-unit signal series out of a frame
// window, in signalNames order, undoing each field's fixed-point scaling.
func extractSignals(frames []types.SensorFrame) [numSignals][]float64 {
	var out [numSignals][]float64
	for i := range out {
		out[i] = make([]float64, len(frames))
	}
	for idx, f := range frames {
		out[0][idx] = float64(f.RPM)
		out[1][idx] = float64(f.CoolantC)
		out[2][idx] = float64(f.SpeedKmh)
		out[3][idx] = float64(f.LoadPct)
		out[4][idx] = float64(f.MAFx100) / 100
	}
	return out
}

// Run wakes at cfg.Cadence, reads the primary window from buf, computes a
// feature vector and sends it non-blocking to out. It returns when ctx is
// canceled.
func (e *Engine) Run(ctx context.Context, buf *ringbuffer.Buffer[types.SensorFrame], out chan<- []float64) error {
	ticker := time.NewTicker(e.cfg.Cadence)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			window := buf.ReadWindow(time.Now().UnixMilli(), e.cfg.WindowMs)
			vec := e.Compute(window)
			select {
			case out <- vec:
			default:
				e.log.Warn().Msg("feature vector dropped: downstream queue full")
			}
		}
	}
}
