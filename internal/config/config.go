// Package config loads the telemetry core's configuration surface loaded from YAML, grounded on the pack's own use of
// gopkg.in/yaml.v3 for typed, nested service configuration
// (99souls-ariadne, the sawpanic-cryptorun manifest).
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fleetcore/telemetry-core/internal/alerts"
	"github.com/fleetcore/telemetry-core/internal/batcher"
	"github.com/fleetcore/telemetry-core/internal/features"
	"github.com/fleetcore/telemetry-core/internal/fusion"
	"github.com/fleetcore/telemetry-core/internal/scheduler"
	"github.com/fleetcore/telemetry-core/internal/validator"
)

// Config is the root configuration object, loaded once at startup; any
// load error is fatal.
type Config struct {
	VehicleID string `yaml:"vehicle_id"`

	Validation ValidationConfig `yaml:"validation"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Features   FeaturesConfig   `yaml:"features"`
	Batcher    BatcherConfig    `yaml:"batcher"`
	Fusion     FusionConfig     `yaml:"fusion"`
	Alerts     AlertsConfig     `yaml:"alerts"`
	Snapshot   SnapshotConfig   `yaml:"snapshot"`
}

// ValidationConfig mirrors internal/validator's range and filter/normalizer
// options.
type ValidationConfig struct {
	RPM              RangeConfig `yaml:"rpm"`
	Coolant          RangeConfig `yaml:"coolant"`
	Speed            RangeConfig `yaml:"speed"`
	Load             RangeConfig `yaml:"load"`
	MAF              RangeConfig `yaml:"maf"`
	MedianWindowSize int         `yaml:"median_window_size"`
	NormalizerMode   string      `yaml:"normalizer_mode"` // "z_score" | "min_max" | "identity"
	NormalizerAlpha  float64     `yaml:"normalizer_alpha"`
}

type RangeConfig struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// SchedulerConfig mirrors internal/scheduler.Config.
type SchedulerConfig struct {
	BaseRateHz             float64 `yaml:"base_rate_hz"`
	DiagnosticRateHz       float64 `yaml:"diagnostic_rate_hz"`
	SlowRateHz             float64 `yaml:"slow_rate_hz"`
	MaxRetries             int     `yaml:"max_retries"`
	RetryBackoffMs         int     `yaml:"retry_backoff_ms"`
	CoolantBoostThresholdC float64 `yaml:"coolant_boost_threshold"`
	BoostMultiplier        float64 `yaml:"boost_multiplier"`
	QueryTimeoutMs         int     `yaml:"query_timeout_ms"`
}

// FeaturesConfig mirrors internal/features.Config.
type FeaturesConfig struct {
	WindowMs     int64   `yaml:"window_ms"`
	CadenceMs    int64   `yaml:"cadence_ms"`
	SampleRateHz float64 `yaml:"sample_rate_hz"`
}

// BatcherConfig mirrors internal/batcher.Config.
type BatcherConfig struct {
	BatchSize      int `yaml:"batch_size"`
	BatchTimeoutMs int `yaml:"batch_timeout_ms"`
}

// FusionConfig mirrors internal/fusion.Config.
type FusionConfig struct {
	HardBrakeG           float64 `yaml:"hard_brake_g"`
	CrashG               float64 `yaml:"crash_g"`
	SpeedingThresholdKmh float64 `yaml:"speeding_threshold_kmh"`
}

// AlertsConfig mirrors internal/alerts.Config.
type AlertsConfig struct {
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
	CriticalThreshold   float64 `yaml:"critical_threshold"`
	CooldownSeconds     int64   `yaml:"cooldown_seconds"`
	MaxAlertsPerHour    int     `yaml:"max_alerts_per_hour"`
}

// SnapshotConfig mirrors internal/snapshot retention caps.
type SnapshotConfig struct {
	SensorCapacity     int `yaml:"sensor_capacity"`
	PredictionCapacity int `yaml:"prediction_capacity"`
}

// Default returns a Config seeded entirely from each component's own
// documented defaults.
func Default() Config {
	sched := scheduler.DefaultConfig()
	feat := features.DefaultConfig()
	batch := batcher.DefaultConfig()
	fuse := fusion.DefaultConfig()
	alert := alerts.DefaultConfig()
	v := validator.DefaultConfig()

	return Config{
		VehicleID: "unidentified",
		Validation: ValidationConfig{
			RPM:              RangeConfig{v.RPM.Min, v.RPM.Max},
			Coolant:          RangeConfig{v.Coolant.Min, v.Coolant.Max},
			Speed:            RangeConfig{v.Speed.Min, v.Speed.Max},
			Load:             RangeConfig{v.Load.Min, v.Load.Max},
			MAF:              RangeConfig{v.MAF.Min, v.MAF.Max},
			MedianWindowSize: 5,
			NormalizerMode:   "z_score",
			NormalizerAlpha:  0.1,
		},
		Scheduler: SchedulerConfig{
			BaseRateHz:             sched.CriticalRateHz,
			DiagnosticRateHz:       sched.DiagnosticRateHz,
			SlowRateHz:             sched.SlowRateHz,
			MaxRetries:             sched.MaxRetries,
			RetryBackoffMs:         0,
			CoolantBoostThresholdC: sched.CoolantBoostThresholdC,
			BoostMultiplier:        sched.BoostMultiplier,
			QueryTimeoutMs:         int(sched.QueryTimeout.Milliseconds()),
		},
		Features: FeaturesConfig{
			WindowMs:     feat.WindowMs,
			CadenceMs:    feat.Cadence.Milliseconds(),
			SampleRateHz: feat.SampleRateHz,
		},
		Batcher: BatcherConfig{
			BatchSize:      batch.BatchSize,
			BatchTimeoutMs: int(batch.BatchTimeout.Milliseconds()),
		},
		Fusion: FusionConfig{
			HardBrakeG:           fuse.HardBrakeG,
			CrashG:               fuse.CrashG,
			SpeedingThresholdKmh: fuse.SpeedingThresholdKmh,
		},
		Alerts: AlertsConfig{
			ConfidenceThreshold: alert.ConfidenceThreshold,
			CriticalThreshold:   alert.CriticalThreshold,
			CooldownSeconds:     alert.CooldownSeconds,
			MaxAlertsPerHour:    alert.MaxAlertsPerHour,
		},
		Snapshot: SnapshotConfig{SensorCapacity: 0, PredictionCapacity: 0},
	}
}

// Load reads and parses a YAML config file at path, starting from Default()
// so any field the file omits keeps its documented default.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// ToScheduler converts to internal/scheduler.Config.
func (c Config) ToScheduler() scheduler.Config {
	return scheduler.Config{
		CriticalRateHz:         c.Scheduler.BaseRateHz,
		DiagnosticRateHz:       c.Scheduler.DiagnosticRateHz,
		SlowRateHz:             c.Scheduler.SlowRateHz,
		MaxRetries:             c.Scheduler.MaxRetries,
		QueryTimeout:           time.Duration(c.Scheduler.QueryTimeoutMs) * time.Millisecond,
		CoolantBoostThresholdC: c.Scheduler.CoolantBoostThresholdC,
		BoostMultiplier:        c.Scheduler.BoostMultiplier,
	}
}

// ToValidator converts to internal/validator.Config.
func (c Config) ToValidator() validator.Config {
	return validator.Config{
		RPM:     validator.Range{Min: c.Validation.RPM.Min, Max: c.Validation.RPM.Max},
		Coolant: validator.Range{Min: c.Validation.Coolant.Min, Max: c.Validation.Coolant.Max},
		Speed:   validator.Range{Min: c.Validation.Speed.Min, Max: c.Validation.Speed.Max},
		Load:    validator.Range{Min: c.Validation.Load.Min, Max: c.Validation.Load.Max},
		MAF:     validator.Range{Min: c.Validation.MAF.Min, Max: c.Validation.MAF.Max},
	}
}

// ToFeatures converts to internal/features.Config.
func (c Config) ToFeatures() features.Config {
	return features.Config{
		WindowMs:     c.Features.WindowMs,
		Cadence:      time.Duration(c.Features.CadenceMs) * time.Millisecond,
		SampleRateHz: c.Features.SampleRateHz,
	}
}

// ToBatcher converts to internal/batcher.Config.
func (c Config) ToBatcher() batcher.Config {
	return batcher.Config{
		BatchSize:    c.Batcher.BatchSize,
		BatchTimeout: time.Duration(c.Batcher.BatchTimeoutMs) * time.Millisecond,
	}
}

// ToFusion converts to internal/fusion.Config, keeping fusion's other
// defaults (staleness budgets, thresholds not in the YAML surface).
func (c Config) ToFusion() fusion.Config {
	f := fusion.DefaultConfig()
	f.HardBrakeG = c.Fusion.HardBrakeG
	f.CrashG = c.Fusion.CrashG
	f.SpeedingThresholdKmh = c.Fusion.SpeedingThresholdKmh
	return f
}

// ToAlerts converts to internal/alerts.Config.
func (c Config) ToAlerts() alerts.Config {
	return alerts.Config{
		ConfidenceThreshold: c.Alerts.ConfidenceThreshold,
		CriticalThreshold:   c.Alerts.CriticalThreshold,
		CooldownSeconds:     c.Alerts.CooldownSeconds,
		MaxAlertsPerHour:    c.Alerts.MaxAlertsPerHour,
	}
}

// NormalizerMethod parses the configured normalizer mode string into
// internal/validator.NormalizationMethod, defaulting to z-score on an
// unrecognized value.
func (c Config) NormalizerMethod() validator.NormalizationMethod {
	switch c.Validation.NormalizerMode {
	case "min_max":
		return validator.NormalizeMinMax
	case "identity":
		return validator.NormalizeIdentity
	default:
		return validator.NormalizeZScore
	}
}
