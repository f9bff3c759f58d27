package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizer_AlphaOne_InstantTracking(t *testing.T) {
	// with alpha = 1, z = 0 for every sample (mean tracks instantly).
	n := NewNormalizer(NormalizeZScore, 1.0)
	assert.Equal(t, 0.0, n.Normalize(100))
	assert.InDelta(t, 0.0, n.Normalize(50), 1e-9)
	assert.InDelta(t, 0.0, n.Normalize(-30), 1e-9)
}

func TestNormalizer_AlphaZero_NeverUpdates(t *testing.T) {
	// with alpha = 0, mean/variance never update (after init).
	n := NewNormalizer(NormalizeZScore, 0.0)
	n.Normalize(10) // initializes mean=10
	assert.Equal(t, 10.0, n.Mean())
	n.Normalize(9000)
	assert.Equal(t, 10.0, n.Mean())
	assert.Equal(t, 1.0, n.StdDev())
}

func TestNormalizer_FirstSampleIsZero(t *testing.T) {
	n := NewNormalizer(NormalizeZScore, 0.1)
	assert.Equal(t, 0.0, n.Normalize(55))
	assert.Equal(t, 55.0, n.Mean())
	assert.Equal(t, 1.0, n.StdDev())
}

func TestNormalizer_MinMax(t *testing.T) {
	n := NewNormalizer(NormalizeMinMax, 0.1)
	n.Normalize(0)
	n.Normalize(100)
	result := n.Normalize(50)
	assert.InDelta(t, 0.5, result, 0.02)
}

func TestNormalizer_Identity(t *testing.T) {
	n := NewNormalizer(NormalizeIdentity, 0.5)
	n.Normalize(10)
	assert.Equal(t, 20.0, n.Normalize(20))
}

func TestNormalizer_Reset(t *testing.T) {
	n := NewNormalizer(NormalizeZScore, 0.2)
	n.Normalize(100)
	n.Normalize(200)
	n.Reset()
	assert.Equal(t, 0.0, n.Normalize(5))
}
