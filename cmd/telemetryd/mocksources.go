package main

import (
	"context"
	"time"

	"github.com/fleetcore/telemetry-core/internal/types"
)

// mockCameraRig generates synthetic driver-state/road-scene/inertial
// samples at their nominal rates (cabin IR 15 fps, forward road 30 fps,
// inertial ~100 Hz) so `telemetryd serve` runs the full fusion pipeline
// without real camera/IMU hardware attached — the appliance's bus is the
// only input with a mock Driver in internal/bus; the other two sources
// have no equivalent opaque interface here, so this stands in for
// both until real producers are wired.
type mockCameraRig struct {
	driverState chan types.DriverStateAnalysis
	roadScene   chan types.RoadSceneAnalysis
	inertial    chan types.InertialSample
}

func newMockCameraRig() *mockCameraRig {
	return &mockCameraRig{
		driverState: make(chan types.DriverStateAnalysis, 16),
		roadScene:   make(chan types.RoadSceneAnalysis, 16),
		inertial:    make(chan types.InertialSample, 64),
	}
}

// Run produces samples until ctx is canceled.
func (m *mockCameraRig) Run(ctx context.Context) error {
	driverTicker := time.NewTicker(time.Second / 15)
	roadTicker := time.NewTicker(time.Second / 30)
	inertialTicker := time.NewTicker(10 * time.Millisecond)
	defer driverTicker.Stop()
	defer roadTicker.Stop()
	defer inertialTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case t := <-driverTicker.C:
			sample := types.DriverStateAnalysis{
				TimestampMs: t.UnixMilli(),
				FacePresent: true,
				Drowsiness:  types.DrowsinessNormal,
				Distraction: types.DistractionNone,
			}
			select {
			case m.driverState <- sample:
			default:
			}

		case t := <-roadTicker.C:
			sample := types.RoadSceneAnalysis{
				TimestampMs: t.UnixMilli(),
				Lane:        types.LaneState{Detected: true, Position: types.LaneCentered},
			}
			select {
			case m.roadScene <- sample:
			default:
			}

		case t := <-inertialTicker.C:
			sample := types.NewInertialSample(t.UnixNano(), 0, 0, 1, 0, 0, 0, 20)
			select {
			case m.inertial <- sample:
			default:
			}
		}
	}
}
