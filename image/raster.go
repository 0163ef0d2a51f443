package image

import (
	"fmt"

	"github.com/AlexStarov/escpos-receipt/util"
)

// Frame is a bitmap packed 1 bit per dot, MSB first, a set bit meaning
// black. Each row takes Stride = ceil(Width/8) bytes; padding bits at the
// right edge are zero.
type Frame struct {
	Width, Height, Stride int
	Data                  []byte
}

// Row returns the packed bytes of row y.
func (f *Frame) Row(y int) []byte {
	return f.Data[y*f.Stride : (y+1)*f.Stride]
}

// Validate checks the frame's size invariants.
func (f *Frame) Validate() error {
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("raster frame has empty dimensions %dx%d", f.Width, f.Height)
	}
	if f.Stride != util.RowStride(f.Width) {
		return fmt.Errorf("raster stride %d does not match width %d", f.Stride, f.Width)
	}
	if len(f.Data) != f.Stride*f.Height {
		return fmt.Errorf("raster data is %d bytes, want %d", len(f.Data), f.Stride*f.Height)
	}
	return nil
}

// Pack packs the bitmap into a Frame.
func Pack(b *Bitmap) *Frame {
	stride := util.RowStride(b.Width)
	data := make([]byte, stride*b.Height)

	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			if b.Pix[y*b.Width+x] == Black {
				// line_start is y * stride, then 8 dots per byte
				data[y*stride+x/8] |= 0x80 >> uint(x%8)
			}
		}
	}

	return &Frame{Width: b.Width, Height: b.Height, Stride: stride, Data: data}
}

// Unpack reads every dot of f back into a Bitmap.
func Unpack(f *Frame) *Bitmap {
	b := NewBitmap(f.Width, f.Height)
	for y := 0; y < f.Height; y++ {
		row := f.Data[y*f.Stride:]
		for x := 0; x < f.Width; x++ {
			if row[x/8]&(0x80>>uint(x%8)) != 0 {
				b.Pix[y*f.Width+x] = Black
			}
		}
	}
	return b
}
