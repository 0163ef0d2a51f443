package printer

import (
	"fmt"

	"github.com/google/gousb"
)

type usbConn struct {
	ctx  *gousb.Context
	dev  *gousb.Device
	cfg  *gousb.Config
	intf *gousb.Interface
	out  *gousb.OutEndpoint
	in   *gousb.InEndpoint
}

// NewUSBPrinter opens the first device matching vendorID:productID and
// writes to the bulk OUT endpoint of its first interface.
func NewUSBPrinter(vendorID, productID gousb.ID) (*Printer, error) {
	ctx := gousb.NewContext()
	conn := &usbConn{ctx: ctx}

	dev, err := ctx.OpenDeviceWithVIDPID(vendorID, productID)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("opening usb device %s:%s: %w", vendorID, productID, err)
	}
	if dev == nil {
		conn.Close()
		return nil, fmt.Errorf("usb device %s:%s not found", vendorID, productID)
	}
	conn.dev = dev

	if err := dev.SetAutoDetach(true); err != nil {
		conn.Close()
		return nil, fmt.Errorf("detaching kernel driver: %w", err)
	}

	if conn.cfg, err = dev.Config(1); err != nil {
		conn.Close()
		return nil, fmt.Errorf("usb config: %w", err)
	}
	if conn.intf, err = conn.cfg.Interface(0, 0); err != nil {
		conn.Close()
		return nil, fmt.Errorf("usb interface: %w", err)
	}

	outNum, inNum, ok := bulkEndpoints(conn.intf.Setting)
	if !ok {
		conn.Close()
		return nil, fmt.Errorf("usb device %s:%s has no bulk out endpoint", vendorID, productID)
	}
	if conn.out, err = conn.intf.OutEndpoint(outNum); err != nil {
		conn.Close()
		return nil, fmt.Errorf("usb out endpoint: %w", err)
	}
	if inNum > 0 {
		// Status reads are optional.
		conn.in, _ = conn.intf.InEndpoint(inNum)
	}

	return newPrinter(&RawTransport{conn: conn}), nil
}

// bulkEndpoints finds the bulk endpoint numbers of an interface setting.
// inNum is zero when there is no bulk IN endpoint.
func bulkEndpoints(setting gousb.InterfaceSetting) (outNum, inNum int, ok bool) {
	for _, ep := range setting.Endpoints {
		if ep.TransferType != gousb.TransferTypeBulk {
			continue
		}
		switch ep.Direction {
		case gousb.EndpointDirectionOut:
			if !ok {
				outNum, ok = ep.Number, true
			}
		case gousb.EndpointDirectionIn:
			if inNum == 0 {
				inNum = ep.Number
			}
		}
	}
	return outNum, inNum, ok
}

func (u *usbConn) Read(p []byte) (int, error) {
	if u.in != nil {
		return u.in.Read(p)
	}
	return 0, fmt.Errorf("usb read not supported")
}

func (u *usbConn) Write(p []byte) (int, error) {
	return u.out.Write(p)
}

func (u *usbConn) Close() error {
	if u.intf != nil {
		u.intf.Close()
	}
	var err error
	if u.cfg != nil {
		err = u.cfg.Close()
	}
	if u.dev != nil {
		if cerr := u.dev.Close(); err == nil {
			err = cerr
		}
	}
	if u.ctx != nil {
		if cerr := u.ctx.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
