package fusion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetcore/telemetry-core/internal/types"
)

func TestFusion_CrashTakesPrecedenceOverHardBraking(t *testing.T) {
	f := New(DefaultConfig())

	f.AddDiagnostic(types.SensorFrame{TimestampMs: 1000, BrakePedal: 90, SpeedKmh: 80})
	f.AddInertial(types.NewInertialSample(1000*1_000_000, 0.5, 0, 0, 0, 0, 0, 25))
	// GForce for (0.5,0,0) is 0.5, below crash_g=3.0 but above hard_brake_g=0.4.
	// Now also push a crash-level sample.
	f.AddInertial(types.NewInertialSample(1000*1_000_000, 3.2, 0, 0, 0, 0, 0, 25))

	ev := f.Tick(1000)
	require.NotNil(t, ev)
	assert.Equal(t, types.EventCrash, ev.Variant)
	assert.Equal(t, types.SeverityCritical, ev.Severity)
	assert.InDelta(t, 3.2, ev.GForce, 1e-6)
}

func TestFusion_HardBrakingRequiresBothSources(t *testing.T) {
	f := New(DefaultConfig())

	f.AddDiagnostic(types.SensorFrame{TimestampMs: 1000, BrakePedal: 90, SpeedKmh: 80})
	f.AddInertial(types.NewInertialSample(1000*1_000_000, 0.5, 0, 0, 0, 0, 0, 25))

	ev := f.Tick(1000)
	require.NotNil(t, ev)
	assert.Equal(t, types.EventHardBraking, ev.Variant)
	assert.Equal(t, types.SeverityMedium, ev.Severity)
}

func TestFusion_StaleSourceSuppressesPredicate(t *testing.T) {
	f := New(DefaultConfig())

	f.AddDiagnostic(types.SensorFrame{TimestampMs: 0, BrakePedal: 90, SpeedKmh: 80})
	f.AddInertial(types.NewInertialSample(0, 0.5, 0, 0, 0, 0, 0, 25))

	// 1 full second later, both diagnostics (500ms budget) and inertial
	// (50ms budget) are stale.
	ev := f.Tick(1000)
	require.NotNil(t, ev)
	assert.Equal(t, types.EventNormal, ev.Variant)
}

func TestFusion_DrowsinessLaneDeparture(t *testing.T) {
	f := New(DefaultConfig())

	f.AddDriverState(types.DriverStateAnalysis{TimestampMs: 1000, Drowsiness: types.DrowsinessModerate})
	f.AddRoadScene(types.RoadSceneAnalysis{TimestampMs: 1000, Lane: types.LaneState{Departing: true}})

	ev := f.Tick(1000)
	require.NotNil(t, ev)
	assert.Equal(t, types.EventDrowsinessLaneDeparture, ev.Variant)
	assert.Equal(t, types.SeverityHigh, ev.Severity)
}

func TestFusion_SustainedDistractionEscalatesSeverity(t *testing.T) {
	f := New(DefaultConfig())

	f.AddDriverState(types.DriverStateAnalysis{TimestampMs: 0, Distraction: types.DistractionPhone})
	ev := f.Tick(1000) // 1s in, below 3s threshold
	assert.NotEqual(t, types.EventSustainedDistraction, safeVariant(ev))

	f.AddDriverState(types.DriverStateAnalysis{TimestampMs: 3500, Distraction: types.DistractionPhone})
	ev = f.Tick(3500)
	require.NotNil(t, ev)
	assert.Equal(t, types.EventSustainedDistraction, ev.Variant)
	assert.Equal(t, types.SeverityMedium, ev.Severity)
}

func TestFusion_SpeedingRequiresSignedLimit(t *testing.T) {
	f := New(DefaultConfig())
	limit := 100.0

	f.AddDiagnostic(types.SensorFrame{TimestampMs: 1000, SpeedKmh: 115})
	f.AddRoadScene(types.RoadSceneAnalysis{
		TimestampMs: 1000,
		Signs:       []types.RecognizedSign{{Class: "speed_limit", SpeedLimitKmh: &limit}},
	})

	ev := f.Tick(1000)
	require.NotNil(t, ev)
	assert.Equal(t, types.EventSpeeding, ev.Variant)
	assert.InDelta(t, 15, ev.ExcessKmh, 1e-6)
}

func TestFusion_HeartbeatWhenNothingMatches(t *testing.T) {
	f := New(DefaultConfig())
	ev := f.Tick(0)
	require.NotNil(t, ev)
	assert.Equal(t, types.EventNormal, ev.Variant)

	ev = f.Tick(1000) // well under the 60s heartbeat interval
	assert.Nil(t, ev)
}

func safeVariant(ev *types.FusedEvent) types.EventVariant {
	if ev == nil {
		return ""
	}
	return ev.Variant
}
