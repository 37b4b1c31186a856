// Package usbraw ships receipts straight to a USB printer's bulk OUT
// endpoint, bypassing any spooler.
package usbraw

import (
	"context"
	"fmt"

	"github.com/google/gousb"

	"github.com/Lamplight-Studio/idea-print-agent/internal/ports/out/printer"
)

type Transport struct {
	vendorID  gousb.ID
	productID gousb.ID

	usbCtx   *gousb.Context
	dev      *gousb.Device
	intf     *gousb.Interface
	intfDone func()
	out      *gousb.OutEndpoint
}

func New(vendorID, productID uint16) *Transport {
	return &Transport{
		vendorID:  gousb.ID(vendorID),
		productID: gousb.ID(productID),
	}
}

func (t *Transport) Kind() printer.Kind { return printer.KindUSB }

// Open locates the device by vendor:product pair and claims its first bulk
// OUT endpoint. A missing device is an open-time error; Write never probes.
func (t *Transport) Open(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	usbCtx := gousb.NewContext()
	dev, err := usbCtx.OpenDeviceWithVIDPID(t.vendorID, t.productID)
	if err != nil {
		usbCtx.Close()
		return fmt.Errorf("open usb device %s:%s: %w", t.vendorID, t.productID, err)
	}
	if dev == nil {
		usbCtx.Close()
		return fmt.Errorf("%w: %s:%s", printer.ErrDeviceNotFound, t.vendorID, t.productID)
	}

	// The kernel usblp driver usually owns the interface; take it over for
	// the duration of the claim.
	if err := dev.SetAutoDetach(true); err != nil {
		dev.Close()
		usbCtx.Close()
		return fmt.Errorf("detach kernel driver: %w", err)
	}

	intf, intfDone, err := dev.DefaultInterface()
	if err != nil {
		dev.Close()
		usbCtx.Close()
		return fmt.Errorf("claim usb interface: %w", err)
	}

	outNum := -1
	for _, ep := range intf.Setting.Endpoints {
		if ep.Direction == gousb.EndpointDirectionOut && ep.TransferType == gousb.TransferTypeBulk {
			outNum = ep.Number
			break
		}
	}
	if outNum < 0 {
		intfDone()
		dev.Close()
		usbCtx.Close()
		return fmt.Errorf("usb device %s:%s has no bulk OUT endpoint", t.vendorID, t.productID)
	}

	out, err := intf.OutEndpoint(outNum)
	if err != nil {
		intfDone()
		dev.Close()
		usbCtx.Close()
		return fmt.Errorf("open OUT endpoint %d: %w", outNum, err)
	}

	t.usbCtx, t.dev, t.intf, t.intfDone, t.out = usbCtx, dev, intf, intfDone, out
	return nil
}

func (t *Transport) Write(ctx context.Context, data []byte) (int, error) {
	if t.out == nil {
		return 0, printer.ErrNotOpen
	}
	n, err := t.out.WriteContext(ctx, data)
	if err != nil {
		return n, fmt.Errorf("write usb endpoint: %w", err)
	}
	if n != len(data) {
		return n, fmt.Errorf("short usb write: %d of %d bytes", n, len(data))
	}
	return n, nil
}

func (t *Transport) Close() error {
	if t.intfDone != nil {
		t.intfDone()
		t.intfDone = nil
	}
	t.intf = nil
	t.out = nil

	var err error
	if t.dev != nil {
		err = t.dev.Close()
		t.dev = nil
	}
	if t.usbCtx != nil {
		if cerr := t.usbCtx.Close(); err == nil {
			err = cerr
		}
		t.usbCtx = nil
	}
	return err
}
