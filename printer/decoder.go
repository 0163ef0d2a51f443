package printer

import (
	"fmt"

	imgInternal "github.com/AlexStarov/escpos-receipt/image"
)

// Decode parses a Stream produced by Encoder back into the raster it
// carries. Both framings of one bitmap decode to the same frame. The
// original width is not on the wire, so the frame is Stride*8 dots wide;
// the padding dots are white.
func Decode(s Stream) (*imgInternal.Frame, error) {
	var (
		stride, height int
		data           []byte
	)

	for i := 0; i < len(s); {
		need := func(n int) error {
			if i+n > len(s) {
				return fmt.Errorf("truncated command 0x%02x at offset %d", s[i], i)
			}
			return nil
		}

		switch s[i] {
		case lf:
			i++

		case esc:
			if err := need(2); err != nil {
				return nil, err
			}
			size := 0
			switch s[i+1] {
			case '@':
				size = 2
			case '3', 'd':
				size = 3
			case 'p':
				size = 5
			default:
				return nil, fmt.Errorf("unexpected ESC 0x%02x at offset %d", s[i+1], i)
			}
			if err := need(size); err != nil {
				return nil, err
			}
			i += size

		case gs:
			if err := need(2); err != nil {
				return nil, err
			}
			switch s[i+1] {
			case 'v':
				if err := need(8); err != nil {
					return nil, err
				}
				if s[i+2] != '0' {
					return nil, fmt.Errorf("unsupported raster command GS v 0x%02x at offset %d", s[i+2], i)
				}
				xw := int(s[i+4]) | int(s[i+5])<<8
				rows := int(s[i+6]) | int(s[i+7])<<8
				if stride != 0 && xw != stride {
					return nil, fmt.Errorf("raster width changes from %d to %d bytes at offset %d", stride, xw, i)
				}
				stride = xw
				n := xw * rows
				if err := need(8 + n); err != nil {
					return nil, err
				}
				data = append(data, s[i+8:i+8+n]...)
				height += rows
				i += 8 + n
			case 'V':
				if err := need(3); err != nil {
					return nil, err
				}
				// Function B cuts (m = 'A', 'B') carry a feed parameter.
				if s[i+2] == 'A' || s[i+2] == 'B' {
					if err := need(4); err != nil {
						return nil, err
					}
					i += 4
				} else {
					i += 3
				}
			default:
				return nil, fmt.Errorf("unexpected GS 0x%02x at offset %d", s[i+1], i)
			}

		default:
			return nil, fmt.Errorf("unexpected byte 0x%02x at offset %d", s[i], i)
		}
	}

	if stride == 0 || height == 0 {
		return nil, fmt.Errorf("stream carries no raster image")
	}
	return &imgInternal.Frame{Width: stride * 8, Height: height, Stride: stride, Data: data}, nil
}
