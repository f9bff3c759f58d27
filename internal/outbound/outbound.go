// Package outbound serializes fused incident events to an envelope schema
// and delivers them through a Sink interface so the (out of scope) cloud
// transport can be swapped freely. Uses encoding/json struct tags directly
// rather than a byte-level string-escaping helper, since this is struct
// marshaling, not hand-rolled JSON writing (see DESIGN.md).
package outbound

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fleetcore/telemetry-core/internal/types"
)

// messageType is the constant envelope discriminator.
const messageType = "event"

// Envelope is the wire schema for one outbound event.
type Envelope struct {
	MessageType     string          `json:"message_type"`
	VehicleID       string          `json:"vehicle_id"`
	Timestamp       string          `json:"timestamp"` // RFC-3339 UTC
	DriverID        *string         `json:"driver_id"`
	Event           EventPayload    `json:"event"`
	VideoReferences []string        `json:"video_references"`
}

// EventPayload is the tagged fused-event variant embedded in Envelope.
type EventPayload struct {
	Variant string  `json:"variant"`
	Severity string `json:"severity"`

	GForce          float64 `json:"g_force,omitempty"`
	LateralAccelG   float64 `json:"lateral_accel_g,omitempty"`
	BrakePedalPct   uint8   `json:"brake_pedal_pct,omitempty"`
	DrowsinessLevel int     `json:"drowsiness_level,omitempty"`
	DistractionSec  float64 `json:"distraction_sec,omitempty"`
	SpeedKmh        uint8   `json:"speed_kmh,omitempty"`
	SpeedLimitKmh   float64 `json:"speed_limit_kmh,omitempty"`
	ExcessKmh       float64 `json:"excess_kmh,omitempty"`
}

// Sink delivers a serialized event to an external transport. Implementations
// own their own retry/backoff policy; the transport itself is out of scope
// here.
type Sink interface {
	Send(ctx context.Context, payload []byte) error
}

// Encode converts a fused event into the wire Envelope, attaching
// vehicleID and any video clip references known for the incident.
func Encode(vehicleID string, ev types.FusedEvent, videoRefs []string) Envelope {
	return Envelope{
		MessageType:     messageType,
		VehicleID:       vehicleID,
		Timestamp:       time.UnixMilli(ev.TimestampMs).UTC().Format(time.RFC3339),
		DriverID:        ev.DriverID,
		VideoReferences: videoRefs,
		Event: EventPayload{
			Variant:         string(ev.Variant),
			Severity:        ev.Severity.String(),
			GForce:          ev.GForce,
			LateralAccelG:   ev.LateralAccelG,
			BrakePedalPct:   ev.BrakePedalPct,
			DrowsinessLevel: int(ev.DrowsinessLevel),
			DistractionSec:  ev.DistractionSec,
			SpeedKmh:        ev.SpeedKmh,
			SpeedLimitKmh:   ev.SpeedLimitKmh,
			ExcessKmh:       ev.ExcessKmh,
		},
	}
}

// Publisher marshals fused events and hands them to a Sink, returning (not
// panicking on) marshal or delivery errors to the caller.
type Publisher struct {
	vehicleID string
	sink      Sink
}

// NewPublisher creates a Publisher for vehicleID, delivering through sink.
func NewPublisher(vehicleID string, sink Sink) *Publisher {
	return &Publisher{vehicleID: vehicleID, sink: sink}
}

// Publish encodes ev and sends it via the configured Sink.
func (p *Publisher) Publish(ctx context.Context, ev types.FusedEvent, videoRefs []string) error {
	env := Encode(p.vehicleID, ev, videoRefs)
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return p.sink.Send(ctx, data)
}
