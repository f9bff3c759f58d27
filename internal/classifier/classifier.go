// Package classifier implements the package's classifier capability: a
// single {predict} method the batcher treats as interchangeable with a
// model loader or remote caller. This
// package provides the rule-based fallback: threshold heuristics over the
// feature engine's fixed 45-dim layout (internal/features), with no
// trained model and no external dependency, so the appliance can run
// end-to-end before any model artifact is available.
package classifier

import (
	"context"

	"github.com/fleetcore/telemetry-core/internal/features"
	"github.com/fleetcore/telemetry-core/internal/types"
)

// Feature vector indices for the five sensor signals' statistical dims
// (mean at index+0, stddev at index+1), fixed by the feature engine's
// documented layout.
const (
	idxRPMMean     = 0
	idxRPMStddev   = 1
	idxCoolantMean = 4
	idxCoolantStd  = 5
	idxLoadMean    = 12
	idxMAFMean     = 16
	idxMAFSkew     = 18
)

// RuleBased is a deterministic, stateless fallback classifier.
type RuleBased struct {
	store predictionStore
}

// predictionStore issues the monotonic prediction IDs;
// satisfied by *internal/snapshot.Store.
type predictionStore interface {
	NextPredictionID() uint64
}

// New creates a RuleBased classifier. store may be nil, in which case
// predictions carry ID 0.
func New(store predictionStore) *RuleBased {
	return &RuleBased{store: store}
}

// Predict implements internal/batcher.Classifier.
func (r *RuleBased) Predict(ctx context.Context, vector []float64) (types.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return types.Prediction{}, err
	}
	if len(vector) != features.Dimensions {
		return types.Prediction{Label: types.FaultNone, Confidence: 0}, nil
	}

	label, confidence := classify(vector)

	var id uint64
	if r.store != nil {
		id = r.store.NextPredictionID()
	}

	return types.Prediction{
		ID:         id,
		Label:      label,
		Confidence: confidence,
		Probabilities: map[types.FaultLabel]float64{
			types.FaultNone:          1 - confidence,
			label:                    confidence,
		},
	}, nil
}

func classify(v []float64) (types.FaultLabel, float64) {
	coolantMean := v[idxCoolantMean]
	rpmMean := v[idxRPMMean]
	rpmStd := v[idxRPMStddev]
	loadMean := v[idxLoadMean]
	mafMean := v[idxMAFMean]
	mafSkew := v[idxMAFSkew]

	switch {
	case coolantMean >= 104:
		return types.FaultOverheat, clamp(0.75+(coolantMean-104)/50, 0.75, 0.99)

	case rpmMean > 0 && rpmStd/rpmMean > 0.15:
		return types.FaultMisfire, clamp(0.60+rpmStd/rpmMean, 0.60, 0.95)

	case loadMean > 70 && mafMean > 0 && mafMean < 10:
		return types.FaultLeanCondition, 0.80

	case absF(mafSkew) > 2:
		return types.FaultSensorDrift, 0.70

	default:
		return types.FaultNone, 0.95
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
