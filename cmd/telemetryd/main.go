// Command telemetryd is the in-vehicle telemetry and event fusion
// appliance: it wires the bus reader, diagnostics scheduler, feature
// engine, inference batcher, event fusion, alert manager and snapshot
// store into one supervised task group.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
