package layout

import (
	"fmt"
	"image"
	"strings"
	"time"
)

// Width is a printer width preset in dots.
type Width int

const (
	// Width58mm is the narrow 58 mm roll at 203 dpi.
	Width58mm Width = 384
	// Width80mm is the wide 80 mm roll at 203 dpi.
	Width80mm Width = 576
)

func (w Width) Valid() bool {
	return w == Width58mm || w == Width80mm
}

func (w Width) String() string {
	switch w {
	case Width58mm:
		return "58mm"
	case Width80mm:
		return "80mm"
	default:
		return fmt.Sprintf("Width(%d)", int(w))
	}
}

// ParseWidth accepts "58", "58mm", "narrow", "80", "80mm" and "wide".
func ParseWidth(s string) (Width, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "58", "58mm", "narrow":
		return Width58mm, nil
	case "80", "80mm", "wide":
		return Width80mm, nil
	default:
		return 0, fmt.Errorf("unknown printer width %q", s)
	}
}

// Config controls one render.
type Config struct {
	Width Width
	// Margin on each side in dots; Width/24 when zero.
	Margin int
	// Currency glyph printed before amounts, "$" when empty.
	Currency   string
	TotalLabel string
	// Footer lines, printed one per line without wrapping.
	Footer []string

	// Optional assets, nil when absent.
	Logo image.Image
	QR   image.Image
}

var defaultFooter = []string{"Thank you!", "Please come again"}

func (c Config) withDefaults() Config {
	if c.Margin <= 0 {
		c.Margin = int(c.Width) / 24
	}
	if c.Currency == "" {
		c.Currency = "$"
	}
	if c.TotalLabel == "" {
		c.TotalLabel = "TOTAL"
	}
	if c.Footer == nil {
		c.Footer = defaultFooter
	}
	return c
}

// TimeSource provides the time printed on the receipt.
type TimeSource interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
