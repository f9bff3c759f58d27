package outbound

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetcore/telemetry-core/internal/types"
)

func TestEncode_SetsConstantMessageType(t *testing.T) {
	ev := types.FusedEvent{Variant: types.EventHardBraking, Severity: types.SeverityMedium, TimestampMs: 1_700_000_000_000}
	env := Encode("vehicle-1", ev, nil)
	assert.Equal(t, "event", env.MessageType)
	assert.Equal(t, "vehicle-1", env.VehicleID)
	assert.Nil(t, env.DriverID)
}

func TestEncode_TimestampIsRFC3339UTC(t *testing.T) {
	ev := types.FusedEvent{TimestampMs: 1_700_000_000_000}
	env := Encode("v", ev, nil)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z$`, env.Timestamp)
}

func TestPublisher_PublishSendsMarshaledPayload(t *testing.T) {
	sink := NewLoopbackSink()
	pub := NewPublisher("vehicle-1", sink)

	driverID := "driver-7"
	ev := types.FusedEvent{
		Variant: types.EventCrash, Severity: types.SeverityCritical,
		TimestampMs: 1_700_000_000_000, DriverID: &driverID, GForce: 4.2,
	}
	err := pub.Publish(context.Background(), ev, []string{"clip-1.mp4"})
	require.NoError(t, err)
	require.Len(t, sink.Received, 1)

	var env Envelope
	require.NoError(t, json.Unmarshal(sink.Received[0], &env))
	assert.Equal(t, "crash", env.Event.Variant)
	assert.Equal(t, "critical", env.Event.Severity)
	assert.Equal(t, "driver-7", *env.DriverID)
	assert.Equal(t, []string{"clip-1.mp4"}, env.VideoReferences)
	assert.InDelta(t, 4.2, env.Event.GForce, 1e-9)
}
