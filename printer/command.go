package printer

import (
	"fmt"

	utilInternal "github.com/AlexStarov/escpos-receipt/util"
)

// Control characters
const (
	esc = 0x1B
	gs  = 0x1D
	lf  = 0x0A
)

// initialize resets the printer (ESC @).
func initialize() []byte {
	return []byte{esc, '@'}
}

// lineSpacing sets the line feed amount in dots (ESC 3 n).
func lineSpacing(n byte) []byte {
	return []byte{esc, '3', n}
}

// rasterHeader starts a GS v 0 raster bit image in normal mode (no
// doubling): xL xH is the row byte count, yL yH the number of rows.
func rasterHeader(stride, rows int) ([]byte, error) {
	x, err := utilInternal.IntLowHigh(stride, 2)
	if err != nil {
		return nil, fmt.Errorf("raster width: %w", err)
	}
	y, err := utilInternal.IntLowHigh(rows, 2)
	if err != nil {
		return nil, fmt.Errorf("raster height: %w", err)
	}

	header := []byte{gs, 'v', '0', 0x00} // GS v 0 m xL xH yL yH d1...dk
	header = append(header, x...)
	return append(header, y...), nil
}

// feedLines prints the buffer and feeds n lines (ESC d n).
func feedLines(n byte) []byte {
	return []byte{esc, 'd', n}
}

// cut feeds to the cutter and cuts (GS V A 0).
func cut() []byte {
	return []byte{gs, 'V', 'A', '0'}
}

// kickDrawer pulses the cash drawer on pin 2 (ESC p 0 t1 t2).
func kickDrawer() []byte {
	return []byte{esc, 'p', 0x00, 0x0A, 0xFF}
}
