package image

import (
	"fmt"
	"image"
	"strings"
)

// thresholdLevel splits dark from light on the 0..255 luminance scale.
const thresholdLevel = 128

// Strategy reduces an image to two levels.
type Strategy interface {
	Reduce(img image.Image) *Bitmap
	String() string
}

// Reduce converts img to a Bitmap using s.
func Reduce(img image.Image, s Strategy) *Bitmap {
	return s.Reduce(img)
}

// ParseStrategy maps a configuration name to a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "threshold", "":
		return Threshold{}, nil
	case "dither", "floyd-steinberg", "floydsteinberg":
		return FloydSteinberg{}, nil
	default:
		return nil, fmt.Errorf("unknown monochrome strategy %q", name)
	}
}

// Threshold marks a dot black when its luminance is below 128. Every dot
// is decided on its own.
type Threshold struct{}

func (Threshold) String() string { return "threshold" }

func (Threshold) Reduce(img image.Image) *Bitmap {
	w, h, lum := luminance(img)
	bm := NewBitmap(w, h)
	for i, l := range lum {
		if l < thresholdLevel {
			bm.Pix[i] = Black
		}
	}
	return bm
}

// FloydSteinberg quantizes dots in row-major order and pushes each dot's
// quantization error onto the neighbours not yet visited: 7/16 right,
// 3/16 below-left, 5/16 below and 1/16 below-right. Neighbours outside
// the image are dropped.
type FloydSteinberg struct{}

func (FloydSteinberg) String() string { return "floyd-steinberg" }

func (FloydSteinberg) Reduce(img image.Image) *Bitmap {
	w, h, lum := luminance(img)
	buf := make([]float32, len(lum))
	for i, l := range lum {
		buf[i] = float32(l)
	}

	bm := NewBitmap(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			old := buf[i]
			var q float32 = 255
			if old < thresholdLevel {
				q = 0
				bm.Pix[i] = Black
			}
			e := old - q

			if x+1 < w {
				buf[i+1] += e * 7 / 16
			}
			if y+1 < h {
				if x > 0 {
					buf[i+w-1] += e * 3 / 16
				}
				buf[i+w] += e * 5 / 16
				if x+1 < w {
					buf[i+w+1] += e * 1 / 16
				}
			}
		}
	}
	return bm
}

// luminance returns L = 0.299R + 0.587G + 0.114B for every pixel on the
// 0..255 scale, computed in integers so gray inputs map to themselves.
// Translucent pixels are composited over white paper.
func luminance(img image.Image) (w, h int, lum []int32) {
	b := img.Bounds()
	w, h = b.Dx(), b.Dy()
	lum = make([]int32, w*h)

	switch src := img.(type) {
	case *image.Gray:
		for y := 0; y < h; y++ {
			row := src.Pix[(y+b.Min.Y-src.Rect.Min.Y)*src.Stride+(b.Min.X-src.Rect.Min.X):]
			for x := 0; x < w; x++ {
				lum[y*w+x] = int32(row[x])
			}
		}
	case *image.RGBA:
		for y := 0; y < h; y++ {
			row := src.Pix[(y+b.Min.Y-src.Rect.Min.Y)*src.Stride+(b.Min.X-src.Rect.Min.X)*4:]
			for x := 0; x < w; x++ {
				p := row[x*4 : x*4+4]
				paper := int32(0xff - p[3])
				lum[y*w+x] = weigh(int32(p[0])+paper, int32(p[1])+paper, int32(p[2])+paper)
			}
		}
	default:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				r, g, bl, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
				paper := 0xffff - a
				lum[y*w+x] = weigh(int32((r+paper)>>8), int32((g+paper)>>8), int32((bl+paper)>>8))
			}
		}
	}
	return w, h, lum
}

func weigh(r, g, b int32) int32 {
	return (299*r + 587*g + 114*b) / 1000
}
