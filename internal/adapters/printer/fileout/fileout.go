// Package fileout writes rendered receipts to a regular file.
//
// This is the offline/test transport: it lets the whole pipeline run with no
// device attached, and the file then holds exactly the bytes the printer
// would have received for the most recent print.
package fileout

import (
	"context"
	"fmt"
	"os"

	"github.com/Lamplight-Studio/idea-print-agent/internal/ports/out/printer"
)

type Transport struct {
	path string
	f    *os.File
}

func New(path string) *Transport {
	return &Transport{path: path}
}

func (t *Transport) Kind() printer.Kind { return printer.KindFile }

func (t *Transport) Open(ctx context.Context) error {
	_ = ctx
	f, err := os.OpenFile(t.path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open output file %s: %w", t.path, err)
	}
	t.f = f
	return nil
}

// Write replaces the file contents with data, so the file always holds one
// complete command stream rather than a concatenation of old prints.
func (t *Transport) Write(ctx context.Context, data []byte) (int, error) {
	if t.f == nil {
		return 0, printer.ErrNotOpen
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := t.f.Truncate(0); err != nil {
		return 0, fmt.Errorf("truncate output file: %w", err)
	}
	if _, err := t.f.Seek(0, 0); err != nil {
		return 0, fmt.Errorf("rewind output file: %w", err)
	}
	n, err := t.f.Write(data)
	if err != nil {
		return n, fmt.Errorf("write output file: %w", err)
	}
	if err := t.f.Sync(); err != nil {
		return n, fmt.Errorf("sync output file: %w", err)
	}
	return n, nil
}

func (t *Transport) Close() error {
	if t.f == nil {
		return nil
	}
	err := t.f.Close()
	t.f = nil
	return err
}
