package printer

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/google/gousb"
)

// Deliverer hands a finished stream to something that prints it.
type Deliverer interface {
	Deliver(ctx context.Context, s Stream) (Ack, error)
}

// Ack records that a stream left this process. It is not proof that paper
// came out: a missing bridge app, an unpaired printer or a printer that is
// off all look like success from here.
type Ack struct {
	// Job is set by the caller that tracks the request.
	Job       string    `json:"job,omitempty"`
	Transport string    `json:"transport"`
	Bytes     int       `json:"bytes"`
	URI       string    `json:"uri,omitempty"`
	IssuedAt  time.Time `json:"issuedAt"`
}

// TransportError is a failed hand-off.
type TransportError struct {
	Transport string
	Op        string
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s transport: %s: %v", e.Transport, e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Dialer opens a printer for one delivery.
type Dialer func(ctx context.Context) (*Printer, error)

// DirectDeliverer writes streams straight to a device. Each delivery opens
// and closes its own connection.
type DirectDeliverer struct {
	Name   string
	Dial   Dialer
	Logger *slog.Logger

	now func() time.Time
}

// NewDirectDeliverer returns a deliverer named after its transport.
func NewDirectDeliverer(name string, dial Dialer, logger *slog.Logger) *DirectDeliverer {
	if logger == nil {
		logger = slog.Default()
	}
	return &DirectDeliverer{Name: name, Dial: dial, Logger: logger, now: time.Now}
}

func (d *DirectDeliverer) Deliver(ctx context.Context, s Stream) (Ack, error) {
	if err := ctx.Err(); err != nil {
		return Ack{}, err
	}

	p, err := d.Dial(ctx)
	if err != nil {
		return Ack{}, &TransportError{Transport: d.Name, Op: "open", Err: err}
	}

	n, err := p.Send(s)
	if err != nil {
		_ = p.CloseConnection()
		return Ack{}, &TransportError{Transport: d.Name, Op: "write", Err: err}
	}
	// LPD submits the job on close, so its errors count.
	if err := p.CloseConnection(); err != nil {
		return Ack{}, &TransportError{Transport: d.Name, Op: "close", Err: err}
	}

	now := time.Now
	if d.now != nil {
		now = d.now
	}
	if d.Logger != nil {
		d.Logger.Info("stream delivered", "transport", d.Name, "bytes", n)
	}
	return Ack{Transport: d.Name, Bytes: n, IssuedAt: now()}, nil
}

// DialTCP connects to addr. Port 515 is treated as LPD with queue "lp",
// anything else (usually 9100) as raw.
func DialTCP(addr string) Dialer {
	return func(ctx context.Context) (*Printer, error) {
		var d net.Dialer
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("dialing %s: %w", addr, err)
		}
		return NewPrinter(conn)
	}
}

// DialLPD connects to the daemon at addr and submits to queue.
func DialLPD(addr, queue string) Dialer {
	return func(ctx context.Context) (*Printer, error) {
		var d net.Dialer
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("dialing %s: %w", addr, err)
		}
		return newPrinter(NewLPDTransport(conn, queue)), nil
	}
}

// DialUSB opens the USB printer vendorID:productID.
func DialUSB(vendorID, productID uint16) Dialer {
	return func(context.Context) (*Printer, error) {
		return NewUSBPrinter(gousb.ID(vendorID), gousb.ID(productID))
	}
}

// DialSerial opens a serial port printer.
func DialSerial(portName string, baudRate int) Dialer {
	return func(context.Context) (*Printer, error) {
		return NewSerialPrinter(portName, baudRate)
	}
}

// DialSpooler opens an installed Windows printer by name.
func DialSpooler(printerName string) Dialer {
	return func(context.Context) (*Printer, error) {
		return NewWinPrintSpoolerPrinter(printerName)
	}
}
