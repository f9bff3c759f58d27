// Package bus defines the opaque diagnostics-bus driver interface used by
// the scheduler and a mock/loopback implementation suitable
// for tests and the no-hardware "serve" CLI path. Concrete bus/hardware
// drivers are out of scope.
package bus

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Sentinel errors a Driver implementation returns from QueryPID.
var (
	ErrTimeout       = errors.New("bus: timeout waiting for response")
	ErrBusOff        = errors.New("bus: adapter not responding")
	ErrNotConnected  = errors.New("bus: vehicle not connected")
)

// PIDUnsupported indicates the vehicle does not support the requested PID.
type PIDUnsupported struct {
	Code byte
}

func (e *PIDUnsupported) Error() string {
	return fmt.Sprintf("bus: pid %02X not supported by vehicle", e.Code)
}

// ChecksumMismatch indicates the declared checksum byte did not match the
// computed checksum over the response payload.
type ChecksumMismatch struct {
	Expected, Actual byte
}

func (e *ChecksumMismatch) Error() string {
	return fmt.Sprintf("bus: checksum mismatch: expected %02X, got %02X", e.Expected, e.Actual)
}

// Protocol names a wire protocol a Driver may be configured to speak.
type Protocol int

const (
	ProtocolAuto Protocol = iota
	ProtocolISO15765_4CAN11Bit500
	ProtocolISO15765_4CAN29Bit500
	ProtocolISO9141_2
)

// Config carries driver-specific connection parameters; fields beyond
// Timeout are opaque to the core.
type Config struct {
	Device  string
	Timeout time.Duration
}

// DefaultTimeout is the default bus-query timeout.
const DefaultTimeout = 2000 * time.Millisecond

// Driver is the opaque half-duplex diagnostics bus capability the
// scheduler (internal/scheduler) drives.
type Driver interface {
	Init(ctx context.Context, cfg Config) error
	SetProtocol(ctx context.Context, p Protocol) error
	QueryPID(ctx context.Context, code byte) ([]byte, error)
	Shutdown(ctx context.Context) error
}
