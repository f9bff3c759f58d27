package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMedianFilter_Idempotence(t *testing.T) {
	// invariant: for a constant input x, outputs equal x.
	f := NewMedianFilter(5)
	for i := 0; i < 20; i++ {
		assert.Equal(t, 42.0, f.Filter(42.0))
	}
}

func TestMedianFilter_PreFillPassthrough(t *testing.T) {
	f := NewMedianFilter(5)
	for _, v := range []float64{10, 11, 10, 100} {
		assert.Equal(t, v, f.Filter(v))
	}
}

func TestMedianFilter_DespikesSpike(t *testing.T) {
	// scenario: window 5; [10,11,10,100,10,11] -> 6th output = 11.
	f := NewMedianFilter(5)
	for _, v := range []float64{10, 11, 10, 100, 10} {
		f.Filter(v)
	}
	assert.Equal(t, 11.0, f.Filter(11))
}

func TestMedianFilter_PanicsOnEvenSize(t *testing.T) {
	assert.Panics(t, func() { NewMedianFilter(4) })
	assert.Panics(t, func() { NewMedianFilter(0) })
}

func TestMedianFilter_Reset(t *testing.T) {
	f := NewMedianFilter(3)
	f.Filter(1)
	f.Filter(2)
	f.Filter(3) // now filled, median of [1,2,3] = 2
	f.Reset()
	assert.Equal(t, 5.0, f.Filter(5)) // passthrough again after reset
}
