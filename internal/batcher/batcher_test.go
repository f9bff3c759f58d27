package batcher

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetcore/telemetry-core/internal/types"
)

type fakeClassifier struct {
	calls int64
}

func (f *fakeClassifier) Predict(ctx context.Context, vector []float64) (types.Prediction, error) {
	atomic.AddInt64(&f.calls, 1)
	return types.Prediction{Label: types.FaultNone, Confidence: 0.1}, nil
}

func TestBatcher_FlushesOnTimeout(t *testing.T) {
	fc := &fakeClassifier{}
	out := make(chan types.Prediction, 8)
	cfg := Config{BatchSize: 16, BatchTimeout: 50 * time.Millisecond}
	b := New(fc, out, cfg, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = b.Run(ctx) }()

	start := time.Now()
	b.Submit([]float64{1, 2, 3})

	select {
	case pred := <-out:
		assert.Equal(t, types.FaultNone, pred.Label)
		assert.LessOrEqual(t, time.Since(start), cfg.BatchTimeout+200*time.Millisecond)
	case <-time.After(time.Second):
		t.Fatal("expected a prediction within batch timeout")
	}
}

func TestBatcher_FlushesOnSize(t *testing.T) {
	fc := &fakeClassifier{}
	out := make(chan types.Prediction, 32)
	cfg := Config{BatchSize: 4, BatchTimeout: 10 * time.Second}
	b := New(fc, out, cfg, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = b.Run(ctx) }()

	for i := 0; i < 4; i++ {
		b.Submit([]float64{float64(i)})
	}

	for i := 0; i < 4; i++ {
		select {
		case <-out:
		case <-time.After(time.Second):
			t.Fatalf("expected prediction %d before batch_timeout", i)
		}
	}
}

func TestDropOldestQueue_EvictsOldestOnOverflow(t *testing.T) {
	q := newDropOldestQueue(2)
	q.push([]float64{1})
	q.push([]float64{2})
	q.push([]float64{3}) // should evict [1]

	done := make(chan struct{})
	v1, ok1 := q.pop(done)
	require.True(t, ok1)
	v2, ok2 := q.pop(done)
	require.True(t, ok2)

	assert.Equal(t, []float64{2}, v1)
	assert.Equal(t, []float64{3}, v2)
}
