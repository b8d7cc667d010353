package jtag

import (
	"context"
	"fmt"
	"time"

	"github.com/google/gousb"
)

// USB identifiers of the Raspberry Pi debug probe.
const (
	VendorIDRaspberryPi = 0x2E8A
	ProductIDCMSISDAP   = 0x000C

	DefaultPacketSize = 64
	DefaultTimeout    = 5 * time.Second
)

// USBTransport talks to a CMSIS-DAP v2 probe over its vendor-class bulk
// endpoints.
type USBTransport struct {
	ctx  *gousb.Context
	dev  *gousb.Device
	cfg  *gousb.Config
	intf *gousb.Interface

	out *gousb.OutEndpoint
	in  *gousb.InEndpoint

	packetSize int
	timeout    time.Duration
}

// OpenUSBTransport opens the probe with the given IDs. An empty serial takes
// the first match.
func OpenUSBTransport(vid, pid uint16, serial string) (*USBTransport, error) {
	ctx := gousb.NewContext()
	devs, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return uint16(desc.Vendor) == vid && uint16(desc.Product) == pid
	})
	if err != nil && len(devs) == 0 {
		ctx.Close()
		return nil, fmt.Errorf("cmsis-dap: open %04x:%04x: %w", vid, pid, err)
	}

	var dev *gousb.Device
	for _, d := range devs {
		if dev == nil {
			if sn, _ := d.SerialNumber(); serial == "" || sn == serial {
				dev = d
				continue
			}
		}
		d.Close()
	}
	if dev == nil {
		ctx.Close()
		return nil, fmt.Errorf("cmsis-dap: no probe %04x:%04x serial %q", vid, pid, serial)
	}
	// Detaching the kernel driver is not supported everywhere.
	_ = dev.SetAutoDetach(true)

	t := &USBTransport{ctx: ctx, dev: dev, packetSize: DefaultPacketSize, timeout: DefaultTimeout}
	if err := t.claim(); err != nil {
		t.Close()
		return nil, err
	}
	return t, nil
}

// claim takes the first vendor-class interface with a bulk endpoint pair.
func (t *USBTransport) claim() error {
	cfgNum, err := t.dev.ActiveConfigNum()
	if err != nil {
		return fmt.Errorf("cmsis-dap: active config: %w", err)
	}
	cfg, err := t.dev.Config(cfgNum)
	if err != nil {
		return fmt.Errorf("cmsis-dap: config %d: %w", cfgNum, err)
	}
	t.cfg = cfg

	for _, desc := range cfg.Desc.Interfaces {
		if len(desc.AltSettings) == 0 || desc.AltSettings[0].Class != gousb.ClassVendorSpec {
			continue
		}
		setting := desc.AltSettings[0]
		var outAddr, inAddr int
		for _, ep := range setting.Endpoints {
			if ep.TransferType != gousb.TransferTypeBulk {
				continue
			}
			if ep.Direction == gousb.EndpointDirectionOut && outAddr == 0 {
				outAddr = ep.Number
			}
			if ep.Direction == gousb.EndpointDirectionIn && inAddr == 0 {
				inAddr = ep.Number
				t.packetSize = ep.MaxPacketSize
			}
		}
		if outAddr == 0 || inAddr == 0 {
			continue
		}
		intf, err := cfg.Interface(desc.Number, setting.Alternate)
		if err != nil {
			return fmt.Errorf("cmsis-dap: claim interface %d: %w", desc.Number, err)
		}
		t.intf = intf
		if t.out, err = intf.OutEndpoint(outAddr); err != nil {
			return fmt.Errorf("cmsis-dap: OUT endpoint: %w", err)
		}
		if t.in, err = intf.InEndpoint(inAddr); err != nil {
			return fmt.Errorf("cmsis-dap: IN endpoint: %w", err)
		}
		log.Debugf("cmsis-dap: interface %d, endpoints %#x/%#x, packet %d", desc.Number, outAddr, inAddr, t.packetSize)
		return nil
	}
	return fmt.Errorf("cmsis-dap: no vendor interface with bulk endpoints")
}

// WriteRead sends one padded command packet and reads the response.
func (t *USBTransport) WriteRead(cmd []byte) ([]byte, error) {
	if len(cmd) > t.packetSize {
		return nil, fmt.Errorf("cmsis-dap: command of %d bytes exceeds packet size %d", len(cmd), t.packetSize)
	}
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	packet := make([]byte, t.packetSize)
	copy(packet, cmd)
	if _, err := t.out.WriteContext(ctx, packet); err != nil {
		return nil, fmt.Errorf("cmsis-dap: usb write: %w", err)
	}
	resp := make([]byte, t.packetSize)
	n, err := t.in.ReadContext(ctx, resp)
	if err != nil {
		return nil, fmt.Errorf("cmsis-dap: usb read: %w", err)
	}
	return resp[:n], nil
}

func (t *USBTransport) PacketSize() int { return t.packetSize }

// Close releases the interface, device and context.
func (t *USBTransport) Close() error {
	if t.intf != nil {
		t.intf.Close()
		t.intf = nil
	}
	if t.cfg != nil {
		t.cfg.Close()
		t.cfg = nil
	}
	var err error
	if t.dev != nil {
		err = t.dev.Close()
		t.dev = nil
	}
	if t.ctx != nil {
		t.ctx.Close()
		t.ctx = nil
	}
	return err
}
