package main

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/fleetcore/telemetry-core/internal/health"
	"github.com/fleetcore/telemetry-core/internal/outbound"
	"github.com/fleetcore/telemetry-core/internal/types"
)

// runOutboundTask publishes each fused event through pub and records it in
// the fusion-events metric. It returns
// when ctx is canceled or in is closed.
func runOutboundTask(ctx context.Context, in <-chan types.FusedEvent, pub *outbound.Publisher, metrics *health.Metrics, log zerolog.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-in:
			if !ok {
				return nil
			}
			metrics.ObserveFusionEvent(string(ev.Variant))
			if err := pub.Publish(ctx, ev, nil); err != nil {
				log.Warn().Err(err).Str("variant", string(ev.Variant)).Msg("outbound publish failed")
			}
		}
	}
}
