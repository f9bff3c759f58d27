package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/fleetcore/telemetry-core/internal/alerts"
	"github.com/fleetcore/telemetry-core/internal/batcher"
	"github.com/fleetcore/telemetry-core/internal/bus"
	"github.com/fleetcore/telemetry-core/internal/classifier"
	"github.com/fleetcore/telemetry-core/internal/config"
	"github.com/fleetcore/telemetry-core/internal/features"
	"github.com/fleetcore/telemetry-core/internal/fusion"
	"github.com/fleetcore/telemetry-core/internal/health"
	"github.com/fleetcore/telemetry-core/internal/logging"
	"github.com/fleetcore/telemetry-core/internal/outbound"
	"github.com/fleetcore/telemetry-core/internal/ringbuffer"
	"github.com/fleetcore/telemetry-core/internal/scheduler"
	"github.com/fleetcore/telemetry-core/internal/snapshot"
	"github.com/fleetcore/telemetry-core/internal/types"
	"github.com/fleetcore/telemetry-core/internal/validator"
)

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the full telemetry and event fusion pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

// runServe wires the fixed task topology — bus reader (via the scheduler),
// ingest, feature engine, batcher, fusion, alerts and outbound publishing —
// under one errgroup.Group, so the first task error cancels every other
// task's context.
func runServe(ctx context.Context, opts *options) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	log := logging.New(opts.pretty, parseLevel(opts.logLevel))
	healthReg := health.New()
	metrics := health.NewMetrics(healthReg.Registerer())

	driver := bus.NewMockDriver()
	v := validator.New(cfg.ToValidator())
	filters := newFieldFilters(medianWindowSize(cfg), cfg.NormalizerMethod(), cfg.Validation.NormalizerAlpha)

	sensorBuf := ringbuffer.New[types.SensorFrame](30_000)
	store := snapshot.New(cfg.Snapshot.SensorCapacity, cfg.Snapshot.PredictionCapacity)
	cls := classifier.New(store)

	schedOut := make(chan types.SensorFrame, 64)
	fusionDiagIn := make(chan types.SensorFrame, 64)
	featureVectors := make(chan []float64, 16)
	predictions := make(chan types.Prediction, 64)
	fusedEvents := make(chan types.FusedEvent, 16)

	sched := scheduler.New(driver, v, schedOut, cfg.ToScheduler(), logging.Component(log, "scheduler"), metrics)
	featureEngine := features.New(cfg.ToFeatures(), logging.Component(log, "features"))
	batch := batcher.New(cls, predictions, cfg.ToBatcher(), logging.Component(log, "batcher"))
	fuse := fusion.New(cfg.ToFusion())
	alertMgr := alerts.New(cfg.ToAlerts())
	sink := outbound.NewLogSink(logging.Component(log, "outbound"))
	pub := outbound.NewPublisher(cfg.VehicleID, sink)

	cameras := newMockCameraRig()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return driverInit(gctx, driver) })
	g.Go(func() error { return sched.Run(gctx) })
	g.Go(func() error {
		return runIngest(gctx, schedOut, sensorBuf, filters, store, fusionDiagIn, logging.Component(log, "ingest"))
	})
	g.Go(func() error { return featureEngine.Run(gctx, sensorBuf, featureVectors) })
	g.Go(func() error { return relayFeatureVectors(gctx, featureVectors, batch) })
	g.Go(func() error { return batch.Run(gctx) })
	g.Go(func() error { return cameras.Run(gctx) })
	g.Go(func() error {
		return fuse.Run(gctx, fusion.Sources{
			Diagnostics: fusionDiagIn,
			DriverState: cameras.driverState,
			RoadScene:   cameras.roadScene,
			Inertial:    cameras.inertial,
		}, fusedEvents)
	})
	g.Go(func() error { return runAlertTask(gctx, predictions, alertMgr, store, metrics, logging.Component(log, "alerts")) })
	g.Go(func() error { return runOutboundTask(gctx, fusedEvents, pub, metrics, logging.Component(log, "outbound")) })
	g.Go(func() error { return reportRingBufferFill(gctx, sensorBuf, metrics) })

	healthReg.Set("telemetryd", health.StatusOK, "serving")
	log.Info().Str("vehicle_id", cfg.VehicleID).Msg("telemetryd started")

	err = g.Wait()
	if ctx.Err() != nil {
		log.Info().Msg("telemetryd shutting down")
		return nil
	}
	return err
}

func driverInit(ctx context.Context, driver *bus.MockDriver) error {
	if err := driver.Init(ctx, bus.Config{Timeout: bus.DefaultTimeout}); err != nil {
		return err
	}
	<-ctx.Done()
	return driver.Shutdown(context.Background())
}

// relayFeatureVectors forwards each computed feature vector into the
// batcher's non-blocking drop-oldest queue.
func relayFeatureVectors(ctx context.Context, in <-chan []float64, b *batcher.Batcher) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case vec, ok := <-in:
			if !ok {
				return nil
			}
			b.Submit(vec)
		}
	}
}

// reportRingBufferFill periodically publishes the diagnostics ring
// buffer's occupancy gauge, waking once a second via a plain ticker.
func reportRingBufferFill(ctx context.Context, buf *ringbuffer.Buffer[types.SensorFrame], metrics *health.Metrics) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			metrics.SetRingBufferFill("diagnostics", buf.FillRatio())
		}
	}
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}
