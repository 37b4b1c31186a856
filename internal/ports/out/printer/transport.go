package printer

import (
	"context"
	"errors"
)

// Kind names the active transport variant for diagnostics (/health).
type Kind string

const (
	KindSerial Kind = "serial"
	KindUSB    Kind = "usb"
	KindFile   Kind = "file"
)

var (
	// ErrNotOpen indicates Write was called before Open or after Close.
	ErrNotOpen = errors.New("printer: transport not open")

	// ErrDeviceNotFound indicates the configured device does not exist.
	// Always an open-time error, never a write-time one.
	ErrDeviceNotFound = errors.New("printer: device not found")
)

// Transport ships a rendered command stream to one physical or simulated
// device. Exactly one variant is active per process; the orchestrator owns
// serialization of writes, so implementations may assume one Write at a time.
//
// Open and Write honor ctx deadlines where the underlying device permits;
// stuck device I/O must surface as an error rather than hang the caller.
type Transport interface {
	Open(ctx context.Context) error
	Write(ctx context.Context, data []byte) (int, error)
	Close() error
	Kind() Kind
}
