package printer

import (
	"fmt"
	"slices"
	"time"

	"go.bug.st/serial"
)

// DefaultBaudRate suits most RS-232 receipt printers.
const DefaultBaudRate = 9600

// NewSerialPrinter opens portName (COMx, /dev/ttyUSBx, /dev/cu.usbmodem*)
// at 8N1 and the given baud rate.
func NewSerialPrinter(portName string, baudRate int) (*Printer, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("listing serial ports: %w", err)
	}
	if !slices.Contains(ports, portName) {
		return nil, fmt.Errorf("serial port %s not found (available: %v)", portName, ports)
	}

	if baudRate <= 0 {
		baudRate = DefaultBaudRate
	}
	mode := &serial.Mode{
		BaudRate: baudRate,
		Parity:   serial.NoParity,
		DataBits: 8,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("opening serial port %s: %w", portName, err)
	}
	if err := port.SetReadTimeout(100 * time.Millisecond); err != nil {
		port.Close()
		return nil, fmt.Errorf("setting read timeout on %s: %w", portName, err)
	}

	// XON in case the printer was left paused by flow control.
	if _, err := port.Write([]byte{0x11}); err != nil {
		port.Close()
		return nil, fmt.Errorf("writing to serial port %s: %w", portName, err)
	}

	return newPrinter(&RawTransport{conn: port}), nil
}
