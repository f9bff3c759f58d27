package main

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/fleetcore/telemetry-core/internal/alerts"
	"github.com/fleetcore/telemetry-core/internal/health"
	"github.com/fleetcore/telemetry-core/internal/snapshot"
	"github.com/fleetcore/telemetry-core/internal/types"
)

// runAlertTask stores each incoming prediction in the snapshot store and
// evaluates it against the alert manager's gate pipeline, recording fires
// in the manager and the metrics. It returns when ctx is canceled or in
// is closed.
func runAlertTask(ctx context.Context, in <-chan types.Prediction, mgr *alerts.Manager, store *snapshot.Store, metrics *health.Metrics, log zerolog.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case pred, ok := <-in:
			if !ok {
				return nil
			}
			pred.TimestampMs = time.Now().UnixMilli()
			if pred.ID == 0 {
				pred.ID = store.NextPredictionID()
			}
			store.AddPrediction(pred)

			if pred.Label == types.FaultNone {
				continue
			}

			if mgr.ShouldFire(pred.Label, pred.Confidence) {
				mgr.RecordFire(pred.Label)
				metrics.ObserveAlertFired(string(pred.Label))
				log.Warn().
					Str("label", string(pred.Label)).
					Float64("confidence", pred.Confidence).
					Str("severity", alerts.Severity(pred.Confidence).String()).
					Msg("alert fired")
			} else {
				metrics.ObserveAlertThrottled()
			}
		}
	}
}
