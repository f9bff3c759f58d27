package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fleetcore/telemetry-core/internal/classifier"
	"github.com/fleetcore/telemetry-core/internal/features"
	"github.com/fleetcore/telemetry-core/internal/logging"
	"github.com/fleetcore/telemetry-core/internal/ringbuffer"
	"github.com/fleetcore/telemetry-core/internal/snapshot"
	"github.com/fleetcore/telemetry-core/internal/types"
)

// replayFrame is one line of a recorded frame log: a decoded sensor frame
// plus the wall-clock offset it was captured at, in milliseconds.
type replayFrame struct {
	TimestampMs int64  `json:"timestamp_ms"`
	RPM         uint16 `json:"rpm"`
	SpeedKmh    uint8  `json:"speed_kmh"`
	CoolantC    int16  `json:"coolant_c"`
	LoadPct     uint8  `json:"load_pct"`
	MAFx100     uint16 `json:"maf_x100"`
}

func newReplayCmd(opts *options) *cobra.Command {
	var logPath string

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Feed a recorded frame log through despiking, features and the classifier for offline diagnosis",
		RunE: func(cmd *cobra.Command, args []string) error {
			if logPath == "" {
				return fmt.Errorf("replay: --log is required")
			}
			return runReplay(cmd.Context(), opts, logPath)
		},
	}
	cmd.Flags().StringVar(&logPath, "log", "", "path to a newline-delimited JSON frame log")
	return cmd
}

// runReplay feeds a recorded frame log through despike, the feature
// engine and the rule-based classifier in a single goroutine — there is
// no live bus or camera rig, so no task supervision is needed.
func runReplay(ctx context.Context, opts *options, logPath string) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	f, err := os.Open(logPath)
	if err != nil {
		return fmt.Errorf("replay: opening %s: %w", logPath, err)
	}
	defer f.Close()

	filters := newFieldFilters(medianWindowSize(cfg), cfg.NormalizerMethod(), cfg.Validation.NormalizerAlpha)
	buf := ringbuffer.New[types.SensorFrame](30_000)
	store := snapshot.New(cfg.Snapshot.SensorCapacity, cfg.Snapshot.PredictionCapacity)
	cls := classifier.New(store)
	log := logging.New(opts.pretty, parseLevel(opts.logLevel))
	featureEngine := features.New(cfg.ToFeatures(), logging.Component(log, "replay"))

	scanner := bufio.NewScanner(f)
	count := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		var rf replayFrame
		if err := json.Unmarshal(scanner.Bytes(), &rf); err != nil {
			return fmt.Errorf("replay: line %d: %w", count+1, err)
		}

		frame := types.SensorFrame{
			TimestampMs: rf.TimestampMs,
			RPM:         rf.RPM,
			SpeedKmh:    rf.SpeedKmh,
			CoolantC:    rf.CoolantC,
			LoadPct:     rf.LoadPct,
			MAFx100:     rf.MAFx100,
		}
		despiked := filters.despike(frame)
		buf.Push(despiked)
		store.AddSensorFrame(despiked)
		count++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("replay: reading %s: %w", logPath, err)
	}

	window := buf.ReadWindow(lastTimestamp(buf), cfg.Features.WindowMs)
	vec := featureEngine.Compute(window)
	pred, err := cls.Predict(ctx, vec)
	if err != nil {
		return fmt.Errorf("replay: classify: %w", err)
	}

	fmt.Printf("replayed %d frames: label=%s confidence=%.3f\n", count, pred.Label, pred.Confidence)
	return nil
}

func lastTimestamp(buf *ringbuffer.Buffer[types.SensorFrame]) int64 {
	last := buf.ReadLast(1)
	if len(last) == 0 {
		return 0
	}
	return last[0].TimestampMs
}
