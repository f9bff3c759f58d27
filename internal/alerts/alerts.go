// Package alerts implements a confidence gate, an hourly
// throttle and a per-label cooldown gating whether a predicted fault
// raises an alert.
//
// The hourly throttle is a tumbling window: a count and a window-start
// timestamp that resets wholesale once 3600s have elapsed since that start,
// rather than a continuous sliding log that ages out each fire
// individually. That reset allows a fresh burst immediately after the
// window turns over (see DESIGN.md for why this is built directly here
// instead of wired to a pack rate limiter). Per-label cooldown is a
// separate, plain per-label last-fired timestamp, checked without side
// effects in ShouldFire and updated in RecordFire, so it can be peeked
// without spending the hourly budget on a call the cooldown was always
// going to reject.
package alerts

import (
	"sync"
	"time"

	"github.com/fleetcore/telemetry-core/internal/types"
)

// Config is the alert manager's configuration surface.
type Config struct {
	ConfidenceThreshold float64
	CriticalThreshold   float64
	CooldownSeconds     int64
	MaxAlertsPerHour    int
}

// DefaultConfig returns the package's documented defaults.
func DefaultConfig() Config {
	return Config{
		ConfidenceThreshold: 0.75,
		CriticalThreshold:   0.90,
		CooldownSeconds:     1800,
		MaxAlertsPerHour:    10,
	}
}

// hourlyWindow is the tumbling-window period for the global hourly cap.
const hourlyWindow = time.Hour

// Manager implements the package's should_fire/record_fire/severity
// contract.
type Manager struct {
	cfg   Config
	clock func() time.Time

	mu          sync.Mutex
	hourStart   time.Time
	hourlyCount int
	lastFired   map[types.FaultLabel]time.Time
	states      map[types.FaultLabel]*types.AlertState
}

// New creates a Manager using cfg.
func New(cfg Config) *Manager {
	return &Manager{
		cfg:       cfg,
		clock:     time.Now,
		lastFired: make(map[types.FaultLabel]time.Time),
		states:    make(map[types.FaultLabel]*types.AlertState),
	}
}

// Severity bands confidence into the package's four severity levels.
func Severity(confidence float64) types.Severity {
	switch {
	case confidence >= 0.90:
		return types.SeverityCritical
	case confidence >= 0.85:
		return types.SeverityHigh
	case confidence >= 0.75:
		return types.SeverityMedium
	default:
		return types.SeverityLow
	}
}

// ShouldFire runs the three-stage pipeline: confidence gate, per-label
// cooldown, then the hourly tumbling-window throttle.
func (m *Manager) ShouldFire(label types.FaultLabel, confidence float64) bool {
	if confidence < m.cfg.ConfidenceThreshold {
		return false
	}
	if Severity(confidence) == types.SeverityCritical && confidence < m.cfg.CriticalThreshold {
		return false
	}

	if m.withinCooldown(label) {
		return false
	}

	if m.hourlyThrottled() {
		return false
	}

	return true
}

func (m *Manager) withinCooldown(label types.FaultLabel) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	last, ok := m.lastFired[label]
	if !ok {
		return false
	}
	return m.clock().Sub(last) < time.Duration(m.cfg.CooldownSeconds)*time.Second
}

// hourlyThrottled starts the tumbling window on first use and resets it if
// it has fully elapsed, then reports whether the hourly cap is already
// reached.
func (m *Manager) hourlyThrottled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.clock()
	if m.hourStart.IsZero() {
		m.hourStart = now
	} else if now.Sub(m.hourStart) > hourlyWindow {
		m.hourStart = now
		m.hourlyCount = 0
	}
	return m.hourlyCount >= m.cfg.MaxAlertsPerHour
}

// RecordFire updates the label's cooldown timestamp, the hourly count, and
// bookkeeping state.
func (m *Manager) RecordFire(label types.FaultLabel) {
	now := m.clock()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.hourlyCount++
	m.lastFired[label] = now

	s, ok := m.states[label]
	if !ok {
		s = &types.AlertState{Label: label}
		m.states[label] = s
	}
	s.LastFiredMs = now.UnixMilli()
	s.FireCount++
}

// Acknowledge flips the acknowledged flag for label, if it has ever fired.
func (m *Manager) Acknowledge(label types.FaultLabel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.states[label]; ok {
		s.Acknowledged = true
	}
}

// State returns a copy of label's current alert state, if it has ever
// fired.
func (m *Manager) State(label types.FaultLabel) (types.AlertState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.states[label]
	if !ok {
		return types.AlertState{}, false
	}
	return *s, true
}
