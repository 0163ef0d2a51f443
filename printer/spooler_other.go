//go:build !windows

package printer

import "errors"

// ErrSpoolerUnsupported is returned by NewWinPrintSpoolerPrinter outside
// Windows.
var ErrSpoolerUnsupported = errors.New("print spooler transport is only available on windows")

// NewWinPrintSpoolerPrinter is only implemented on Windows.
func NewWinPrintSpoolerPrinter(printerName string) (*Printer, error) {
	return nil, ErrSpoolerUnsupported
}
