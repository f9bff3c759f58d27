// Package fusion implements per-source sliding windows and a
// priority-ordered predicate evaluation producing at most one incident per
// tick: window sizes and the Crash/HardBraking/DrowsinessLaneDeparture
// predicates carry forward known semantics, extended here with the
// SustainedDistraction/Speeding predicates and a Normal heartbeat. Window
// storage uses internal/ringbuffer.Buffer, a bounded-capacity,
// drop-oldest-on-push structure.
package fusion

import (
	"context"
	"time"

	"github.com/fleetcore/telemetry-core/internal/ringbuffer"
	"github.com/fleetcore/telemetry-core/internal/types"
)

// Config is the fusion engine's configuration surface.
type Config struct {
	HardBrakeG          float64 // default 0.4
	CrashG              float64 // default 3.0
	SpeedingThresholdKmh float64 // default 10
	BrakePedalThreshold uint8   // default 80
	DrowsinessThreshold types.DrowsinessLevel // default Moderate
	DistractionThreshold time.Duration // default 3s
	HeartbeatInterval   time.Duration // default 60s 

	DiagnosticStaleness time.Duration // default 500ms
	DriverStateStaleness time.Duration // default 300ms
	RoadSceneStaleness  time.Duration // default 600ms
	InertialStaleness   time.Duration // default 50ms
}

// DefaultConfig returns the package's documented defaults.
func DefaultConfig() Config {
	return Config{
		HardBrakeG:            0.4,
		CrashG:                3.0,
		SpeedingThresholdKmh:  10,
		BrakePedalThreshold:   80,
		DrowsinessThreshold:   types.DrowsinessModerate,
		DistractionThreshold:  3 * time.Second,
		HeartbeatInterval:     60 * time.Second,
		DiagnosticStaleness:   500 * time.Millisecond,
		DriverStateStaleness:  300 * time.Millisecond,
		RoadSceneStaleness:    600 * time.Millisecond,
		InertialStaleness:     50 * time.Millisecond,
	}
}

// Window capacities, sized to the sources' nominal rates.
const (
	diagnosticsWindowCap = 300
	driverStateWindowCap = 150
	roadSceneWindowCap   = 60
	inertialWindowCap    = 1000
)

// Fusion merges sensor frames, driver-state/road-scene analyses and
// inertial samples into a single incident stream.
type Fusion struct {
	cfg Config

	diagnostics *ringbuffer.Buffer[types.SensorFrame]
	driverState *ringbuffer.Buffer[types.DriverStateAnalysis]
	roadScene   *ringbuffer.Buffer[types.RoadSceneAnalysis]
	inertial    *ringbuffer.Buffer[types.InertialSample]

	driverID *string

	distracted         bool
	distractionSinceMs int64 // valid only while distracted
	emittedAny         bool
	lastEventMs        int64 // valid only once emittedAny
}

// New creates a Fusion engine with the package's default window capacities.
func New(cfg Config) *Fusion {
	return &Fusion{
		cfg:         cfg,
		diagnostics: ringbuffer.New[types.SensorFrame](diagnosticsWindowCap),
		driverState: ringbuffer.New[types.DriverStateAnalysis](driverStateWindowCap),
		roadScene:   ringbuffer.New[types.RoadSceneAnalysis](roadSceneWindowCap),
		inertial:    ringbuffer.New[types.InertialSample](inertialWindowCap),
	}
}

// SetDriverID sets the current-driver identifier attached to emitted
// events; it does not gate predicates.
func (f *Fusion) SetDriverID(id *string) { f.driverID = id }

// AddDiagnostic pushes a decoded sensor frame onto the diagnostics window.
func (f *Fusion) AddDiagnostic(frame types.SensorFrame) { f.diagnostics.Push(frame) }

// AddDriverState pushes a driver-state analysis, tracking continuous
// distraction for the SustainedDistraction predicate.
func (f *Fusion) AddDriverState(a types.DriverStateAnalysis) {
	f.driverState.Push(a)
	if a.Distraction == types.DistractionNone {
		f.distracted = false
		f.distractionSinceMs = 0
	} else if !f.distracted {
		f.distracted = true
		f.distractionSinceMs = a.TimestampMs
	}
}

// AddRoadScene pushes a road-scene analysis onto its window.
func (f *Fusion) AddRoadScene(a types.RoadSceneAnalysis) { f.roadScene.Push(a) }

// AddInertial pushes an inertial sample onto its window.
func (f *Fusion) AddInertial(s types.InertialSample) { f.inertial.Push(s) }

// Tick evaluates the priority-ordered predicates against the
// latest sample of each source as of nowMs, returning at most one event.
// A source whose latest sample is older than its staleness budget makes any
// predicate requiring it unmet, never approximated.
func (f *Fusion) Tick(nowMs int64) *types.FusedEvent {
	latestDiag, diagOK := f.latestDiagnostic(nowMs)
	latestDriver, driverOK := f.latestDriverState(nowMs)
	latestRoad, roadOK := f.latestRoadScene(nowMs)
	latestInertial, inertialOK := f.latestInertial(nowMs)

	if ev := f.checkCrash(latestInertial, inertialOK, nowMs); ev != nil {
		return f.emit(ev, nowMs)
	}
	if ev := f.checkHardBraking(latestInertial, inertialOK, latestDiag, diagOK, nowMs); ev != nil {
		return f.emit(ev, nowMs)
	}
	if ev := f.checkDrowsinessLaneDeparture(latestDriver, driverOK, latestRoad, roadOK, nowMs); ev != nil {
		return f.emit(ev, nowMs)
	}
	if ev := f.checkSustainedDistraction(latestDriver, driverOK, nowMs); ev != nil {
		return f.emit(ev, nowMs)
	}
	if ev := f.checkSpeeding(latestDiag, diagOK, latestRoad, roadOK, nowMs); ev != nil {
		return f.emit(ev, nowMs)
	}

	if !f.emittedAny || time.Duration(nowMs-f.lastEventMs)*time.Millisecond >= f.cfg.HeartbeatInterval {
		ev := &types.FusedEvent{Variant: types.EventNormal, Severity: types.SeverityLow, TimestampMs: nowMs}
		return f.emit(ev, nowMs)
	}

	return nil
}

func (f *Fusion) emit(ev *types.FusedEvent, nowMs int64) *types.FusedEvent {
	ev.TimestampMs = nowMs
	ev.DriverID = f.driverID
	f.emittedAny = true
	f.lastEventMs = nowMs
	return ev
}

func (f *Fusion) latestDiagnostic(nowMs int64) (types.SensorFrame, bool) {
	last := f.diagnostics.ReadLast(1)
	if len(last) == 0 || !fresh(last[0].TimestampMs, nowMs, f.cfg.DiagnosticStaleness) {
		return types.SensorFrame{}, false
	}
	return last[0], true
}

func (f *Fusion) latestDriverState(nowMs int64) (types.DriverStateAnalysis, bool) {
	last := f.driverState.ReadLast(1)
	if len(last) == 0 || !fresh(last[0].TimestampMs, nowMs, f.cfg.DriverStateStaleness) {
		return types.DriverStateAnalysis{}, false
	}
	return last[0], true
}

func (f *Fusion) latestRoadScene(nowMs int64) (types.RoadSceneAnalysis, bool) {
	last := f.roadScene.ReadLast(1)
	if len(last) == 0 || !fresh(last[0].TimestampMs, nowMs, f.cfg.RoadSceneStaleness) {
		return types.RoadSceneAnalysis{}, false
	}
	return last[0], true
}

func (f *Fusion) latestInertial(nowMs int64) (types.InertialSample, bool) {
	last := f.inertial.ReadLast(1)
	if len(last) == 0 || !fresh(last[0].Stamp(), nowMs, f.cfg.InertialStaleness) {
		return types.InertialSample{}, false
	}
	return last[0], true
}

func fresh(sampleMs, nowMs int64, budget time.Duration) bool {
	return nowMs-sampleMs <= budget.Milliseconds()
}

// checkCrash is priority 1.
func (f *Fusion) checkCrash(s types.InertialSample, ok bool, nowMs int64) *types.FusedEvent {
	if !ok || s.GForce <= f.cfg.CrashG {
		return nil
	}
	return &types.FusedEvent{
		Variant:  types.EventCrash,
		Severity: types.SeverityCritical,
		GForce:   s.GForce,
	}
}

// checkHardBraking is priority 2.
func (f *Fusion) checkHardBraking(s types.InertialSample, inertialOK bool, d types.SensorFrame, diagOK bool, nowMs int64) *types.FusedEvent {
	if !inertialOK || !diagOK {
		return nil
	}
	if absF(s.AxG) <= f.cfg.HardBrakeG || d.BrakePedal <= f.cfg.BrakePedalThreshold {
		return nil
	}
	return &types.FusedEvent{
		Variant:       types.EventHardBraking,
		Severity:      types.SeverityMedium,
		LateralAccelG: absF(s.AxG),
		BrakePedalPct: d.BrakePedal,
		SpeedKmh:      d.SpeedKmh,
	}
}

// checkDrowsinessLaneDeparture is priority 3.
func (f *Fusion) checkDrowsinessLaneDeparture(d types.DriverStateAnalysis, driverOK bool, r types.RoadSceneAnalysis, roadOK bool, nowMs int64) *types.FusedEvent {
	if !driverOK || !roadOK {
		return nil
	}
	if d.Drowsiness < f.cfg.DrowsinessThreshold || !r.Lane.Departing {
		return nil
	}
	return &types.FusedEvent{
		Variant:         types.EventDrowsinessLaneDeparture,
		Severity:        types.SeverityHigh,
		DrowsinessLevel: d.Drowsiness,
	}
}

// checkSustainedDistraction is priority 4.
func (f *Fusion) checkSustainedDistraction(d types.DriverStateAnalysis, driverOK bool, nowMs int64) *types.FusedEvent {
	if !driverOK || d.Distraction == types.DistractionNone || !f.distracted {
		return nil
	}
	durationMs := nowMs - f.distractionSinceMs
	if time.Duration(durationMs)*time.Millisecond < f.cfg.DistractionThreshold {
		return nil
	}
	sev := types.SeverityMedium
	if time.Duration(durationMs)*time.Millisecond >= 2*f.cfg.DistractionThreshold {
		sev = types.SeverityHigh
	}
	return &types.FusedEvent{
		Variant:        types.EventSustainedDistraction,
		Severity:       sev,
		DistractionSec: float64(durationMs) / 1000,
	}
}

// checkSpeeding is priority 5: requires a recognized speed-limit sign.
func (f *Fusion) checkSpeeding(d types.SensorFrame, diagOK bool, r types.RoadSceneAnalysis, roadOK bool, nowMs int64) *types.FusedEvent {
	if !diagOK || !roadOK {
		return nil
	}
	var limit *float64
	for _, sign := range r.Signs {
		if sign.SpeedLimitKmh != nil {
			limit = sign.SpeedLimitKmh
		}
	}
	if limit == nil {
		return nil
	}
	excess := float64(d.SpeedKmh) - *limit
	if excess <= f.cfg.SpeedingThresholdKmh {
		return nil
	}
	sev := types.SeverityLow
	if excess >= 2*f.cfg.SpeedingThresholdKmh {
		sev = types.SeverityMedium
	}
	return &types.FusedEvent{
		Variant:       types.EventSpeeding,
		Severity:      sev,
		SpeedKmh:      d.SpeedKmh,
		SpeedLimitKmh: *limit,
		ExcessKmh:     excess,
	}
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// Sources bundles the four input channels the fusion task selects over.
type Sources struct {
	Diagnostics <-chan types.SensorFrame
	DriverState <-chan types.DriverStateAnalysis
	RoadScene   <-chan types.RoadSceneAnalysis
	Inertial    <-chan types.InertialSample
}

// Run merges from src, re-evaluating predicates on each arrival and sending
// any resulting event to out (non-blocking). It
// returns when ctx is canceled.
func (f *Fusion) Run(ctx context.Context, src Sources, out chan<- types.FusedEvent) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case frame, ok := <-src.Diagnostics:
			if !ok {
				return nil
			}
			f.AddDiagnostic(frame)
			f.tickAndEmit(frame.TimestampMs, out)

		case a, ok := <-src.DriverState:
			if !ok {
				return nil
			}
			f.AddDriverState(a)
			f.tickAndEmit(a.TimestampMs, out)

		case a, ok := <-src.RoadScene:
			if !ok {
				return nil
			}
			f.AddRoadScene(a)
			f.tickAndEmit(a.TimestampMs, out)

		case s, ok := <-src.Inertial:
			if !ok {
				return nil
			}
			f.AddInertial(s)
			f.tickAndEmit(s.Stamp(), out)
		}
	}
}

func (f *Fusion) tickAndEmit(nowMs int64, out chan<- types.FusedEvent) {
	if ev := f.Tick(nowMs); ev != nil {
		select {
		case out <- *ev:
		default:
		}
	}
}
