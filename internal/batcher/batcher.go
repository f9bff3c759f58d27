// Package batcher implements batch-or-timeout coalescing of
// feature vectors for the classifier, behind a bounded drop-oldest upstream
// queue.
//
// Grounded directly on github.com/joeycumines/go-microbatch, which already
// implements the ping/pong "block for first item, drain until size or
// timeout" state machine this package needs. This package adapts it: Job
// carries a feature vector plus its eventual types.Prediction, and a
// dropOldestQueue sits in front to give the package's freshness-preserving
// backpressure, which go-microbatch's own Submit (which blocks the caller
// until the batcher accepts the job) does not provide on its own.
package batcher

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	microbatch "github.com/joeycumines/go-microbatch"

	"github.com/fleetcore/telemetry-core/internal/types"
)

// Classifier is the package's classifier capability: predict on a single
// feature vector. Implementations may be rule-based fallbacks, model
// loaders, or remote callers.
type Classifier interface {
	Predict(ctx context.Context, vector []float64) (types.Prediction, error)
}

// Config controls batch size/timeout and queue depth.
type Config struct {
	BatchSize    int           // default 16
	BatchTimeout time.Duration // default 5000ms
}

// DefaultConfig returns the package's documented defaults.
func DefaultConfig() Config {
	return Config{BatchSize: 16, BatchTimeout: 5 * time.Second}
}

// job is one feature vector in flight through the microbatch.Batcher.
type job struct {
	vector []float64
	result types.Prediction
	err    error
}

// Batcher coalesces feature vectors into batches and dispatches predictions
// to Out in submission order.
type Batcher struct {
	cfg        Config
	classifier Classifier
	log        zerolog.Logger

	queue *dropOldestQueue
	mb    *microbatch.Batcher[*job]

	out chan<- types.Prediction

	done chan struct{}
}

// New creates a Batcher. out is the downstream prediction sink; sends are
// non-blocking and drop (logged) when out is full.
func New(classifier Classifier, out chan<- types.Prediction, cfg Config, log zerolog.Logger) *Batcher {
	b := &Batcher{
		cfg:        cfg,
		classifier: classifier,
		log:        log,
		queue:      newDropOldestQueue(cfg.BatchSize * 2),
		out:        out,
		done:       make(chan struct{}),
	}

	b.mb = microbatch.NewBatcher(&microbatch.BatcherConfig{
		MaxSize:       cfg.BatchSize,
		FlushInterval: cfg.BatchTimeout,
		MaxConcurrency: 1,
	}, b.process)

	return b
}

// Submit enqueues a feature vector, dropping the oldest queued vector on
// overflow . Never blocks.
func (b *Batcher) Submit(vector []float64) {
	b.queue.push(vector)
}

// Run reads from the upstream queue and feeds the underlying microbatch
// batcher until ctx is canceled, at which point the batcher is closed.
func (b *Batcher) Run(ctx context.Context) error {
	defer close(b.done)
	defer b.mb.Close()

	for {
		vector, ok := b.queue.pop(ctx.Done())
		if !ok {
			return ctx.Err()
		}

		result, err := b.mb.Submit(ctx, &job{vector: vector})
		if err != nil {
			return err
		}

		go b.await(ctx, result)
	}
}

func (b *Batcher) await(ctx context.Context, result *microbatch.JobResult[*job]) {
	if err := result.Wait(ctx); err != nil {
		b.log.Warn().Err(err).Msg("classifier batch failed")
		return
	}
	if result.Job.err != nil {
		b.log.Warn().Err(result.Job.err).Msg("classifier prediction failed")
		return
	}

	select {
	case b.out <- result.Job.result:
	default:
		b.log.Warn().Msg("prediction dropped: downstream queue full")
	}
}

// process is the microbatch.BatchProcessor: it calls the classifier once
// per job, preserving one prediction per input in submission order.
func (b *Batcher) process(ctx context.Context, jobs []*job) error {
	for _, j := range jobs {
		j.result, j.err = b.classifier.Predict(ctx, j.vector)
	}
	return nil
}
