package main

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/fleetcore/telemetry-core/internal/config"
	"github.com/fleetcore/telemetry-core/internal/ringbuffer"
	"github.com/fleetcore/telemetry-core/internal/types"
	"github.com/fleetcore/telemetry-core/internal/validator"
)

// fieldFilters despikes each of the five validated signals independently, since a median filter mixes unrelated units if shared
// across fields.
type fieldFilters struct {
	rpm, coolant, speed, load, maf *validator.MedianFilter

	rpmNorm, coolantNorm, speedNorm, loadNorm, mafNorm *validator.Normalizer
}

func newFieldFilters(windowSize int, method validator.NormalizationMethod, alpha float64) *fieldFilters {
	return &fieldFilters{
		rpm:     validator.NewMedianFilter(windowSize),
		coolant: validator.NewMedianFilter(windowSize),
		speed:   validator.NewMedianFilter(windowSize),
		load:    validator.NewMedianFilter(windowSize),
		maf:     validator.NewMedianFilter(windowSize),

		rpmNorm:     validator.NewNormalizer(method, alpha),
		coolantNorm: validator.NewNormalizer(method, alpha),
		speedNorm:   validator.NewNormalizer(method, alpha),
		loadNorm:    validator.NewNormalizer(method, alpha),
		mafNorm:     validator.NewNormalizer(method, alpha),
	}
}

// despike applies the sliding median filter to each validated field of
// frame, returning a new frame with despiked values. The EWMA normalizer
// is run alongside purely to keep its running statistics current for
// health/diagnostic reads; the stored frame keeps raw units
// so the feature engine's fixed-point decoding stays correct.
func (f *fieldFilters) despike(frame types.SensorFrame) types.SensorFrame {
	out := frame

	out.RPM = uint16(clampNonNeg(f.rpm.Filter(float64(frame.RPM))))
	f.rpmNorm.Normalize(float64(out.RPM))

	out.CoolantC = int16(f.coolant.Filter(float64(frame.CoolantC)))
	f.coolantNorm.Normalize(float64(out.CoolantC))

	out.SpeedKmh = uint8(clampNonNeg(f.speed.Filter(float64(frame.SpeedKmh))))
	f.speedNorm.Normalize(float64(out.SpeedKmh))

	out.LoadPct = uint8(clampNonNeg(f.load.Filter(float64(frame.LoadPct))))
	f.loadNorm.Normalize(float64(out.LoadPct))

	out.MAFx100 = uint16(clampNonNeg(f.maf.Filter(float64(frame.MAFx100))))
	f.mafNorm.Normalize(float64(out.MAFx100))

	return out
}

func clampNonNeg(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// runIngest despikes each decoded frame from the scheduler, pushes it onto
// the shared sensor-frame ring buffer and snapshot store, and forwards it
// (non-blocking) to the fusion task's diagnostics channel. Diagnostics are
// never mutated directly on the Fusion value here — fusion windows are a
// single-task resource, owned exclusively by
// the goroutine running Fusion.Run. It returns when ctx is canceled or in
// is closed.
func runIngest(ctx context.Context, in <-chan types.SensorFrame, buf *ringbuffer.Buffer[types.SensorFrame], filters *fieldFilters, store sensorRecorder, fusionIn chan<- types.SensorFrame, log zerolog.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case frame, ok := <-in:
			if !ok {
				return nil
			}
			despiked := filters.despike(frame)
			buf.Push(despiked)
			store.AddSensorFrame(despiked)
			select {
			case fusionIn <- despiked:
			default:
				log.Warn().Msg("diagnostic frame dropped: fusion queue full")
			}
		}
	}
}

// sensorRecorder is the subset of *internal/snapshot.Store ingest needs.
type sensorRecorder interface {
	AddSensorFrame(types.SensorFrame)
}

// medianWindowSize normalizes a configured window size to a valid odd
// size >= 1, defaulting to 5.
func medianWindowSize(cfg config.Config) int {
	size := cfg.Validation.MedianWindowSize
	if size <= 0 {
		return 5
	}
	if size%2 == 0 {
		size++
	}
	return size
}
