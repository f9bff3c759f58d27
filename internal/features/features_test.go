package features

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fleetcore/telemetry-core/internal/types"
)

func frame(ts int64, rpm uint16, coolant int16, speed, load uint8, mafx100 uint16) types.SensorFrame {
	return types.SensorFrame{
		TimestampMs: ts,
		RPM:         rpm,
		CoolantC:    coolant,
		SpeedKmh:    speed,
		LoadPct:     load,
		MAFx100:     mafx100,
	}
}

func TestEngine_EmptyWindowYieldsZeroVector(t *testing.T) {
	e := New(DefaultConfig(), testLogger())
	vec := e.Compute(nil)
	assert.Len(t, vec, Dimensions)
	for _, v := range vec {
		assert.Zero(t, v)
	}
}

func TestEngine_VectorLength(t *testing.T) {
	e := New(DefaultConfig(), testLogger())
	var frames []types.SensorFrame
	for i := 0; i < 150; i++ {
		frames = append(frames, frame(int64(i*200), uint16(1000+i), int16(80+i%20), uint8(40+i%50), uint8(30+i%60), uint16(2000+i*3)))
	}
	vec := e.Compute(frames)
	assert.Len(t, vec, Dimensions)
	for _, v := range vec {
		assert.False(t, isNaNOrInf(v))
	}
}

func TestEngine_ConstantSignalHasZeroVarianceDims(t *testing.T) {
	e := New(DefaultConfig(), testLogger())
	var frames []types.SensorFrame
	for i := 0; i < 50; i++ {
		frames = append(frames, frame(int64(i*200), 2000, 90, 60, 40, 2500))
	}
	vec := e.Compute(frames)

	// rpm is signal index 0: mean, stddev, skew, kurtosis at dims 0-3.
	assert.InDelta(t, 2000, vec[0], 1e-6)
	assert.InDelta(t, 0, vec[1], 1e-6)
	assert.InDelta(t, 0, vec[2], 1e-6)
	assert.InDelta(t, 0, vec[3], 1e-6)
}

func TestMeanCrossings_CountsSignChangesAroundMean(t *testing.T) {
	xs := []float64{1, 5, 1, 5, 1, 5}
	m := computeMoments(xs)
	crossings := meanCrossings(xs, m.mean)
	assert.Equal(t, float64(5), crossings)
}

func TestMeanAbsDiff_ConstantIsZero(t *testing.T) {
	xs := []float64{4, 4, 4, 4}
	assert.Zero(t, meanAbsDiff(xs))
}

func isNaNOrInf(v float64) bool {
	return v != v || v > 1e300 || v < -1e300
}
