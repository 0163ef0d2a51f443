package layout

import (
	"image"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

type alignment uint8

const (
	alignLeft alignment = iota
	alignCenter
	alignRight
)

func measure(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}

func lineHeight(face font.Face) int {
	return face.Metrics().Height.Ceil()
}

func drawString(dst *image.RGBA, face font.Face, s string, x, baseline int) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.Black,
		Face: face,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(s)
}

// wrap breaks text into lines no wider than limit, breaking only between
// words. A word wider than limit gets a line of its own. Explicit newlines
// start a new line; blank paragraphs are dropped.
func wrap(face font.Face, text string, limit int) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			continue
		}

		line := words[0]
		for _, w := range words[1:] {
			candidate := line + " " + w
			if measure(face, candidate) <= limit {
				line = candidate
				continue
			}
			lines = append(lines, line)
			line = w
		}
		lines = append(lines, line)
	}
	return lines
}

// wrapEach wraps every entry on its own, so each configured line starts a
// new printed line. A blank entry stays one blank line.
func wrapEach(face font.Face, entries []string, limit int) []string {
	var lines []string
	for _, e := range entries {
		wrapped := wrap(face, e, limit)
		if len(wrapped) == 0 {
			wrapped = []string{""}
		}
		lines = append(lines, wrapped...)
	}
	return lines
}
