// Package serialport ships receipts over a serial link, the common wiring
// for cheap TTL thermal printers.
package serialport

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.bug.st/serial"

	"github.com/Lamplight-Studio/idea-print-agent/internal/ports/out/printer"
)

type Transport struct {
	path string
	baud int
	port serial.Port
}

func New(path string, baud int) *Transport {
	return &Transport{path: path, baud: baud}
}

func (t *Transport) Kind() printer.Kind { return printer.KindSerial }

func (t *Transport) Open(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	port, err := serial.Open(t.path, &serial.Mode{BaudRate: t.baud})
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", printer.ErrDeviceNotFound, t.path)
		}
		return fmt.Errorf("open serial port %s: %w", t.path, err)
	}
	t.port = port
	return nil
}

// Write performs a blocking full-buffer write. The serial stack has no
// cancellation mid-write, so the write runs in a goroutine and a ctx expiry
// surfaces as a failure while the kernel finishes draining the buffer; a
// write is atomic once started.
func (t *Transport) Write(ctx context.Context, data []byte) (int, error) {
	if t.port == nil {
		return 0, printer.ErrNotOpen
	}

	type result struct {
		n   int
		err error
	}
	done := make(chan result, 1)
	go func() {
		n, err := t.port.Write(data)
		if err == nil {
			err = t.port.Drain()
		}
		done <- result{n, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return r.n, fmt.Errorf("write serial port: %w", r.err)
		}
		if r.n != len(data) {
			return r.n, fmt.Errorf("short serial write: %d of %d bytes", r.n, len(data))
		}
		return r.n, nil
	case <-ctx.Done():
		return 0, fmt.Errorf("serial write timed out: %w", ctx.Err())
	}
}

func (t *Transport) Close() error {
	if t.port == nil {
		return nil
	}
	err := t.port.Close()
	t.port = nil
	return err
}
