package util

import "fmt"

// IntLowHigh splits n into b little-endian bytes (low byte first), the way
// ESC/POS encodes its numeric parameters (xL xH, yL yH, p1..p4).
func IntLowHigh(n int, b int) ([]byte, error) {
	if b < 1 || b > 4 {
		return nil, fmt.Errorf("IntLowHigh: 1-4 bytes only, got %d", b)
	}
	if n < 0 || (b < 4 && n >= 1<<(8*uint(b))) {
		return nil, fmt.Errorf("IntLowHigh: %d does not fit in %d byte(s)", n, b)
	}

	out := make([]byte, b)
	for i := 0; i < b; i++ {
		out[i] = byte(n % 256)
		n = n / 256
	}
	return out, nil
}

// RowStride is the number of bytes one pixel row occupies at 1 bit per pixel.
func RowStride(width int) int {
	return (width + 7) >> 3
}
