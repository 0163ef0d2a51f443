package image

import "image"

// Dot is the state of one printer dot.
type Dot uint8

const (
	White Dot = 0
	Black Dot = 1
)

// Bitmap is a strictly two-level image, row-major.
type Bitmap struct {
	Width, Height int
	Pix           []Dot
}

// NewBitmap returns an all-white bitmap.
func NewBitmap(width, height int) *Bitmap {
	return &Bitmap{
		Width:  width,
		Height: height,
		Pix:    make([]Dot, width*height),
	}
}

// At returns the dot at column x of row y.
func (b *Bitmap) At(x, y int) Dot {
	return b.Pix[y*b.Width+x]
}

func (b *Bitmap) Set(x, y int, d Dot) {
	b.Pix[y*b.Width+x] = d
}

// BlackCount returns the number of black dots.
func (b *Bitmap) BlackCount() int {
	n := 0
	for _, d := range b.Pix {
		if d == Black {
			n++
		}
	}
	return n
}

// Equal reports whether both bitmaps have the same size and dots.
func (b *Bitmap) Equal(o *Bitmap) bool {
	if b.Width != o.Width || b.Height != o.Height || len(b.Pix) != len(o.Pix) {
		return false
	}
	for i := range b.Pix {
		if b.Pix[i] != o.Pix[i] {
			return false
		}
	}
	return true
}

// Gray renders the bitmap as a grayscale image, black dots at 0 and white
// dots at 255. Used for previews.
func (b *Bitmap) Gray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, b.Width, b.Height))
	for i, d := range b.Pix {
		if d == Black {
			img.Pix[i] = 0
		} else {
			img.Pix[i] = 0xff
		}
	}
	return img
}
