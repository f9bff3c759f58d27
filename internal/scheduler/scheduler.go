// Package scheduler implements a min-heap of diagnostic PID
// queries keyed by (next_due, -priority), adaptive coolant-triggered rate
// boosting, and a no-backoff failure policy that keeps every other PID
// timely even when one PID is durably unsupported. Built on Go's
// container/heap plus a single-goroutine run loop with a context
// cancellation suspension point on every iteration.
package scheduler

import (
	"container/heap"
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/fleetcore/telemetry-core/internal/bus"
	"github.com/fleetcore/telemetry-core/internal/types"
	"github.com/fleetcore/telemetry-core/internal/validator"
)

// Config is the scheduler's configuration surface.
type Config struct {
	CriticalRateHz   float64       // default 5: rpm, speed, coolant, load
	DiagnosticRateHz float64       // default 1: MAF
	SlowRateHz       float64       // default 0.5: fuel trims, O2 voltage

	MaxRetries             int
	QueryTimeout           time.Duration
	CoolantBoostThresholdC float64
	BoostMultiplier        float64
}

// DefaultConfig returns the package's documented defaults.
func DefaultConfig() Config {
	return Config{
		CriticalRateHz:         5,
		DiagnosticRateHz:       1,
		SlowRateHz:             0.5,
		MaxRetries:             3,
		QueryTimeout:           bus.DefaultTimeout,
		CoolantBoostThresholdC: 95,
		BoostMultiplier:        2,
	}
}

// Metrics is the narrow set of counters the scheduler updates; callers
// supply a Prometheus-backed implementation (internal/health) or NopMetrics
// in tests.
type Metrics interface {
	ObserveQuerySuccess(pidName string)
	ObserveQueryFailure(pidName string)
	ObserveFrameDropped()
}

type NopMetrics struct{}

func (NopMetrics) ObserveQuerySuccess(string) {}
func (NopMetrics) ObserveQueryFailure(string) {}
func (NopMetrics) ObserveFrameDropped()       {}

// Scheduler multiplexes diagnostic PID queries over a half-duplex Driver. It is the sole writer of the shared current
// sensor frame and the sole producer on Out.
type Scheduler struct {
	cfg      Config
	driver   bus.Driver
	validate *validator.Validator
	log      zerolog.Logger
	metrics  Metrics

	out chan<- types.SensorFrame

	queue pidHeap

	current types.SensorFrame
	present validator.Fields

	boosted map[byte]bool
}

// New creates a Scheduler with the standard ~10-PID rate table. out is the bounded channel to the buffer-ingest task; sends are
// non-blocking and drop the frame (counted via Metrics) when out is full.
func New(driver bus.Driver, v *validator.Validator, out chan<- types.SensorFrame, cfg Config, log zerolog.Logger, metrics Metrics) *Scheduler {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	s := &Scheduler{
		cfg:      cfg,
		driver:   driver,
		validate: v,
		log:      log,
		metrics:  metrics,
		out:      out,
		boosted:  make(map[byte]bool),
	}

	now := time.Now()
	add := func(pid types.PID, rate float64) {
		heap.Push(&s.queue, &scheduledPID{pid: pid, rateHz: rate, nextDue: now})
	}
	add(types.PIDEngineRPM, cfg.CriticalRateHz)
	add(types.PIDVehicleSpeed, cfg.CriticalRateHz)
	add(types.PIDCoolantTemp, cfg.CriticalRateHz)
	add(types.PIDCalcLoad, cfg.CriticalRateHz)
	add(types.PIDMAF, cfg.DiagnosticRateHz)
	add(types.PIDSTFT1, cfg.SlowRateHz)
	add(types.PIDLTFT1, cfg.SlowRateHz)
	add(types.PIDO2Voltage, cfg.SlowRateHz)

	return s
}

// Len reports the number of PIDs under management (for tests/diagnostics).
func (s *Scheduler) Len() int { return s.queue.Len() }

// Run drives the scheduler until ctx is canceled, at which point it
// returns ctx.Err(). The suspension points are the next-due timer and the
// bus query itself.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		item := heap.Pop(&s.queue).(*scheduledPID)

		if wait := time.Until(item.nextDue); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				heap.Push(&s.queue, item)
				return ctx.Err()
			}
		}

		s.tick(ctx, item)
		heap.Push(&s.queue, item)
	}
}

func (s *Scheduler) tick(ctx context.Context, item *scheduledPID) {
	queryCtx, cancel := context.WithTimeout(ctx, s.cfg.QueryTimeout)
	raw, err := s.driver.QueryPID(queryCtx, item.pid.Code)
	cancel()

	if err != nil {
		item.failures++
		s.metrics.ObserveQueryFailure(item.pid.Name)

		ev := s.log.Warn().Str("pid", item.pid.Name).Int("failures", item.failures).Err(err)
		if item.failures >= s.cfg.MaxRetries {
			ev.Bool("max_retries_reached", true).Msg("pid query failed repeatedly")
		} else {
			ev.Msg("pid query failed")
		}

		// No adapter-wide backoff: reschedule at the normal interval so
		// other PIDs stay timely even when this one is durably
		// unsupported.
		item.nextDue = time.Now().Add(item.interval())
		return
	}

	item.failures = 0
	s.metrics.ObserveQuerySuccess(item.pid.Name)

	nowMs := time.Now().UnixMilli()
	value := decodeValue(item.pid.Code, raw)

	if rangeErr := s.checkRange(item.pid.Code, value); rangeErr != nil {
		s.log.Warn().Str("pid", item.pid.Name).Err(rangeErr).Msg("range violation, field dropped")
	} else {
		applyToFrame(&s.current, &s.present, item.pid.Code, value)
		s.current.TimestampMs = nowMs

		if item.pid.Code == types.PIDCoolantTemp.Code {
			s.applyBoost(item, value)
		}

		// Every required field must have a fresh decode since the last
		// emitted frame before this one goes out; present is cleared below
		// so a stale field from a prior cycle can't carry a frame forever.
		if len(s.validate.ValidateComplete(s.present)) == 0 {
			clone := s.current
			select {
			case s.out <- clone:
			default:
				s.metrics.ObserveFrameDropped()
			}
			s.present = 0
		}
	}

	item.nextDue = time.Now().Add(item.interval())
}

// checkRange validates a single decoded value against its field's
// configured range, used per-field so one bad reading never
// drops the whole frame.
func (s *Scheduler) checkRange(code byte, value float64) error {
	switch code {
	case types.PIDEngineRPM.Code:
		return s.validate.ValidateRange(validator.FieldRPM, value, s.validate.RangeFor(validator.FieldRPM))
	case types.PIDVehicleSpeed.Code:
		return s.validate.ValidateRange(validator.FieldSpeed, value, s.validate.RangeFor(validator.FieldSpeed))
	case types.PIDCoolantTemp.Code:
		return s.validate.ValidateRange(validator.FieldCoolant, value, s.validate.RangeFor(validator.FieldCoolant))
	case types.PIDCalcLoad.Code:
		return s.validate.ValidateRange(validator.FieldLoad, value, s.validate.RangeFor(validator.FieldLoad))
	case types.PIDMAF.Code:
		return s.validate.ValidateRange(validator.FieldMAF, value, s.validate.RangeFor(validator.FieldMAF))
	default:
		return nil // fuel trims / O2 voltage are not range-checked 
	}
}

// applyBoost implements the adaptive rate boost: a coolant reading at
// or above the threshold multiplies the coolant PID's rate for the next
// schedule-next call; any other reading restores the base rate.
func (s *Scheduler) applyBoost(item *scheduledPID, coolantC float64) {
	if coolantC >= s.cfg.CoolantBoostThresholdC {
		if !s.boosted[item.pid.Code] {
			s.boosted[item.pid.Code] = true
		}
		item.rateHz = s.cfg.CriticalRateHz * s.cfg.BoostMultiplier
	} else if s.boosted[item.pid.Code] {
		s.boosted[item.pid.Code] = false
		item.rateHz = s.cfg.CriticalRateHz
	}
}

