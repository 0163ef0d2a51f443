package printer

import (
	"errors"
	"fmt"
	"strings"

	imgInternal "github.com/AlexStarov/escpos-receipt/image"
)

// ErrInvalidFrame reports a raster frame that breaks its size invariants.
// It means a bug upstream, not a runtime condition.
var ErrInvalidFrame = errors.New("invalid raster frame")

// Framing selects how the raster is wrapped in commands.
type Framing uint8

const (
	// Block sends the whole image as one GS v 0 command.
	Block Framing = iota
	// Strip sends one GS v 0 command per row group, each followed by a
	// line feed. Suits printers with small input buffers.
	Strip
)

func (f Framing) String() string {
	switch f {
	case Block:
		return "block"
	case Strip:
		return "strip"
	default:
		return fmt.Sprintf("Framing(%d)", uint8(f))
	}
}

// ParseFraming maps "block" and "strip" to a Framing.
func ParseFraming(s string) (Framing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "block", "":
		return Block, nil
	case "strip":
		return Strip, nil
	default:
		return 0, fmt.Errorf("unknown framing mode %q", s)
	}
}

// Stream is a complete printer command sequence. Treat it as read-only.
type Stream []byte

// Encoder turns a bitmap into a Stream: initialization, the framed raster,
// then feed, optional drawer kick and cut.
type Encoder struct {
	Mode Framing
	// StripRows is the number of rows per strip command.
	StripRows int
	// FeedLines are fed after the image so it clears the cutter.
	FeedLines byte
	Cut       bool
	Kick      bool
}

// NewEncoder returns an encoder with one row per strip, four feed lines
// and a cut.
func NewEncoder(mode Framing) *Encoder {
	return &Encoder{
		Mode:      mode,
		StripRows: 1,
		FeedLines: 4,
		Cut:       true,
	}
}

// Encode packs bm and frames it.
func (e *Encoder) Encode(bm *imgInternal.Bitmap) (Stream, error) {
	if bm == nil || bm.Width <= 0 || bm.Height <= 0 || len(bm.Pix) != bm.Width*bm.Height {
		return nil, fmt.Errorf("%w: bitmap dimensions do not match its dots", ErrInvalidFrame)
	}
	return e.EncodeFrame(imgInternal.Pack(bm))
}

// EncodeFrame frames an already packed raster.
func (e *Encoder) EncodeFrame(f *imgInternal.Frame) (Stream, error) {
	if f == nil {
		return nil, fmt.Errorf("%w: no frame", ErrInvalidFrame)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFrame, err)
	}

	out := make([]byte, 0, len(f.Data)+64)
	out = append(out, initialize()...)

	var err error
	switch e.Mode {
	case Block:
		out, err = e.appendBlock(out, f)
	case Strip:
		out, err = e.appendStrips(out, f)
	default:
		err = fmt.Errorf("unknown framing mode %d", e.Mode)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFrame, err)
	}

	if e.FeedLines > 0 {
		out = append(out, feedLines(e.FeedLines)...)
	}
	if e.Kick {
		out = append(out, kickDrawer()...)
	}
	if e.Cut {
		out = append(out, cut()...)
	}
	return Stream(out), nil
}

func (e *Encoder) appendBlock(out []byte, f *imgInternal.Frame) ([]byte, error) {
	header, err := rasterHeader(f.Stride, f.Height)
	if err != nil {
		return nil, err
	}
	out = append(out, header...)
	return append(out, f.Data...), nil
}

func (e *Encoder) appendStrips(out []byte, f *imgInternal.Frame) ([]byte, error) {
	rows := e.StripRows
	if rows <= 0 {
		rows = 1
	}

	// Zero line spacing so the LF after each strip adds no blank paper.
	out = append(out, lineSpacing(0)...)
	for y := 0; y < f.Height; y += rows {
		n := rows
		if n > f.Height-y {
			n = f.Height - y
		}
		header, err := rasterHeader(f.Stride, n)
		if err != nil {
			return nil, err
		}
		out = append(out, header...)
		out = append(out, f.Data[y*f.Stride:(y+n)*f.Stride]...)
		out = append(out, lf)
	}
	return out, nil
}
