package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetcore/telemetry-core/internal/config"
	"github.com/fleetcore/telemetry-core/internal/types"
	"github.com/fleetcore/telemetry-core/internal/validator"
)

func TestFieldFilters_DespikeRemovesIsolatedSpike(t *testing.T) {
	filters := newFieldFilters(5, validator.NormalizeZScore, 0.1)

	frames := []uint16{3000, 3010, 3005, 9999, 3008, 3012}
	var last types.SensorFrame
	for _, rpm := range frames {
		last = filters.despike(types.SensorFrame{RPM: rpm})
	}

	assert.Less(t, last.RPM, uint16(9999), "the 9999 spike should have been suppressed by the median window")
}

func TestFieldFilters_DespikePassesThroughBeforeWindowFills(t *testing.T) {
	filters := newFieldFilters(5, validator.NormalizeZScore, 0.1)

	out := filters.despike(types.SensorFrame{CoolantC: 90})
	assert.Equal(t, int16(90), out.CoolantC)
}

func TestClampNonNeg(t *testing.T) {
	assert.Equal(t, 0.0, clampNonNeg(-5))
	assert.Equal(t, 3.0, clampNonNeg(3))
}

func TestMedianWindowSize_DefaultsWhenUnset(t *testing.T) {
	cfg := config.Default()
	cfg.Validation.MedianWindowSize = 0
	assert.Equal(t, 5, medianWindowSize(cfg))
}

func TestMedianWindowSize_ForcesOdd(t *testing.T) {
	cfg := config.Default()
	cfg.Validation.MedianWindowSize = 4
	assert.Equal(t, 5, medianWindowSize(cfg))
}

func TestMedianWindowSize_KeepsConfiguredOddValue(t *testing.T) {
	cfg := config.Default()
	cfg.Validation.MedianWindowSize = 7
	require.Equal(t, 7, medianWindowSize(cfg))
}
