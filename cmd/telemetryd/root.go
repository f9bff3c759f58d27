package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

// options holds the flags shared across subcommands.
type options struct {
	configPath string
	pretty     bool
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:     "telemetryd",
		Short:   "In-vehicle telemetry and event fusion core",
		Long:    "telemetryd ingests a diagnostics bus, an inertial sensor and two camera feeds, fuses them into an incident stream, and keeps a local in-memory snapshot of recent sensor frames and predictions.",
		Version: version,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML config file (defaults built in if omitted)")
	root.PersistentFlags().BoolVar(&opts.pretty, "pretty", false, "use human-readable console logging instead of JSON")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")

	root.AddCommand(newServeCmd(opts), newReplayCmd(opts))
	return root
}

func parseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}
