// Package snapshot implements bounded, thread-safe
// collections of recent sensor frames and predictions for UI/health reads.
// Volatile — nothing here is durable.
//
// Grounded on the same bounded-drop-oldest discipline as
// internal/ringbuffer (itself derived from its catrate/ring.go),
// generalized here to plain mutex-guarded slices rather than the ring
// buffer's lock-free single-producer contract, since the snapshot store has
// no single-writer guarantee: predictions and sensor records arrive from
// distinct tasks.
package snapshot

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/fleetcore/telemetry-core/internal/types"
)

// Capacity defaults.
const (
	DefaultSensorCapacity     = 100_000
	DefaultPredictionCapacity = 10_000
)

// Store holds the bounded recent-history collections.
type Store struct {
	sensorCap     int
	predictionCap int

	sensorMu sync.Mutex
	sensors  []types.SensorFrame // oldest first

	predictionMu sync.Mutex
	predictions  []types.Prediction // oldest first

	nextPredictionID atomic.Uint64
}

// New creates a Store with the given capacities; 0 selects the package default.
func New(sensorCap, predictionCap int) *Store {
	if sensorCap <= 0 {
		sensorCap = DefaultSensorCapacity
	}
	if predictionCap <= 0 {
		predictionCap = DefaultPredictionCapacity
	}
	return &Store{sensorCap: sensorCap, predictionCap: predictionCap}
}

// AddSensorFrame appends frame, dropping the oldest record if the
// collection is at capacity.
func (s *Store) AddSensorFrame(frame types.SensorFrame) {
	s.sensorMu.Lock()
	defer s.sensorMu.Unlock()
	s.sensors = append(s.sensors, frame)
	if len(s.sensors) > s.sensorCap {
		s.sensors = s.sensors[len(s.sensors)-s.sensorCap:]
	}
}

// NextPredictionID issues a monotonically increasing id for a new
// prediction.
func (s *Store) NextPredictionID() uint64 {
	return s.nextPredictionID.Add(1)
}

// AddPrediction appends pred (whose ID should already be set via
// NextPredictionID), dropping the oldest if at capacity.
func (s *Store) AddPrediction(pred types.Prediction) {
	s.predictionMu.Lock()
	defer s.predictionMu.Unlock()
	s.predictions = append(s.predictions, pred)
	if len(s.predictions) > s.predictionCap {
		s.predictions = s.predictions[len(s.predictions)-s.predictionCap:]
	}
}

// RecentSensorFrames returns the newest k sensor frames, newest first.
func (s *Store) RecentSensorFrames(k int) []types.SensorFrame {
	s.sensorMu.Lock()
	defer s.sensorMu.Unlock()
	n := len(s.sensors)
	if k > n {
		k = n
	}
	out := make([]types.SensorFrame, k)
	for i := 0; i < k; i++ {
		out[i] = s.sensors[n-1-i]
	}
	return out
}

// SensorFramesSince returns all retained sensor frames with TimestampMs >=
// sinceMs, oldest first.
func (s *Store) SensorFramesSince(sinceMs int64) []types.SensorFrame {
	s.sensorMu.Lock()
	defer s.sensorMu.Unlock()
	idx := sort.Search(len(s.sensors), func(i int) bool {
		return s.sensors[i].TimestampMs >= sinceMs
	})
	out := make([]types.SensorFrame, len(s.sensors)-idx)
	copy(out, s.sensors[idx:])
	return out
}

// RecentPredictions returns the newest k predictions, newest first.
func (s *Store) RecentPredictions(k int) []types.Prediction {
	s.predictionMu.Lock()
	defer s.predictionMu.Unlock()
	n := len(s.predictions)
	if k > n {
		k = n
	}
	out := make([]types.Prediction, k)
	for i := 0; i < k; i++ {
		out[i] = s.predictions[n-1-i]
	}
	return out
}

// PredictionsSince returns all retained predictions with TimestampMs >=
// sinceMs, oldest first.
func (s *Store) PredictionsSince(sinceMs int64) []types.Prediction {
	s.predictionMu.Lock()
	defer s.predictionMu.Unlock()
	idx := sort.Search(len(s.predictions), func(i int) bool {
		return s.predictions[i].TimestampMs >= sinceMs
	})
	out := make([]types.Prediction, len(s.predictions)-idx)
	copy(out, s.predictions[idx:])
	return out
}

// PredictionsBySeverity filters predictions by the severity band their
// confidence falls into, newest first.
func (s *Store) PredictionsBySeverity(severityOf func(types.Prediction) types.Severity, want types.Severity) []types.Prediction {
	s.predictionMu.Lock()
	defer s.predictionMu.Unlock()
	var out []types.Prediction
	for i := len(s.predictions) - 1; i >= 0; i-- {
		if severityOf(s.predictions[i]) == want {
			out = append(out, s.predictions[i])
		}
	}
	return out
}
