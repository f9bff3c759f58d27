package classifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetcore/telemetry-core/internal/features"
	"github.com/fleetcore/telemetry-core/internal/types"
)

func TestRuleBased_WrongLengthVectorYieldsNone(t *testing.T) {
	c := New(nil)
	pred, err := c.Predict(context.Background(), []float64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, types.FaultNone, pred.Label)
	assert.Zero(t, pred.Confidence)
}

func TestRuleBased_OverheatOnHighCoolantMean(t *testing.T) {
	c := New(nil)
	vec := make([]float64, features.Dimensions)
	vec[idxCoolantMean] = 110
	pred, err := c.Predict(context.Background(), vec)
	require.NoError(t, err)
	assert.Equal(t, types.FaultOverheat, pred.Label)
	assert.Greater(t, pred.Confidence, 0.75)
}

func TestRuleBased_NoneOnFlatSignal(t *testing.T) {
	c := New(nil)
	vec := make([]float64, features.Dimensions)
	vec[idxCoolantMean] = 90
	vec[idxRPMMean] = 2000
	pred, err := c.Predict(context.Background(), vec)
	require.NoError(t, err)
	assert.Equal(t, types.FaultNone, pred.Label)
}

type fakeStore struct{ n uint64 }

func (f *fakeStore) NextPredictionID() uint64 {
	f.n++
	return f.n
}

func TestRuleBased_AssignsMonotonicIDs(t *testing.T) {
	store := &fakeStore{}
	c := New(store)
	vec := make([]float64, features.Dimensions)

	p1, _ := c.Predict(context.Background(), vec)
	p2, _ := c.Predict(context.Background(), vec)
	assert.Less(t, p1.ID, p2.ID)
}
