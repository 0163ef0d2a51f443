// Package layout draws a receipt document onto a fixed-width canvas. The
// canvas height follows from the content: every block (header, items,
// total, assets, footer) contributes its own height, and absent assets
// contribute nothing.
package layout

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/AlexStarov/escpos-receipt/order"
)

// Font sizes in dots (72 DPI, so one point is one dot).
const (
	titleSize = 36
	totalSize = 32
	bodySize  = 24
	smallSize = 20
)

// Vertical spacing in dots.
const (
	paddingTop    = 8
	paddingBottom = 32
	sectionGap    = 10
	itemGap       = 6
	dividerHeight = 18
	priceGap      = 12
	logoMaxHeight = 120
	qrMaxSide     = 240
)

// Engine renders receipts. Parsed fonts are shared; faces are created per
// render, so an Engine is safe for concurrent use.
type Engine struct {
	regular, bold *opentype.Font
	clock         TimeSource

	regularData, boldData []byte
}

// Option configures an Engine.
type Option func(*Engine)

// WithFont replaces the Go fonts. bold may be nil to reuse regular.
func WithFont(regular, bold []byte) Option {
	return func(e *Engine) {
		e.regularData = regular
		e.boldData = bold
		if bold == nil {
			e.boldData = regular
		}
	}
}

// WithClock sets the time source of the timestamp block.
func WithClock(c TimeSource) Option {
	return func(e *Engine) { e.clock = c }
}

// NewEngine parses the fonts once.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		clock:       systemClock{},
		regularData: goregular.TTF,
		boldData:    gobold.TTF,
	}
	for _, opt := range opts {
		opt(e)
	}

	var err error
	if e.regular, err = opentype.Parse(e.regularData); err != nil {
		return nil, fmt.Errorf("parsing regular font: %w", err)
	}
	if e.bold, err = opentype.Parse(e.boldData); err != nil {
		return nil, fmt.Errorf("parsing bold font: %w", err)
	}
	return e, nil
}

// Plan is the measured layout of one receipt.
type Plan struct {
	Width, Height int
	blocks        []block
}

// Text returns every text line of the plan, top to bottom.
func (p *Plan) Text() []string {
	var out []string
	for _, b := range p.blocks {
		out = append(out, b.texts...)
	}
	return out
}

type block struct {
	height int
	texts  []string
	draw   func(dst *image.RGBA, top int)
}

// Render lays out doc and paints it onto a white canvas.
func (e *Engine) Render(doc order.Document, cfg Config) (*image.RGBA, error) {
	plan, err := e.Plan(doc, cfg)
	if err != nil {
		return nil, err
	}
	return plan.Paint(), nil
}

// Paint draws the plan onto a new canvas.
func (p *Plan) Paint() *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, p.Width, p.Height))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	top := 0
	for _, b := range p.blocks {
		if b.draw != nil {
			b.draw(canvas, top)
		}
		top += b.height
	}
	return canvas
}

// Plan measures doc without painting it.
func (e *Engine) Plan(doc order.Document, cfg Config) (*Plan, error) {
	if !cfg.Width.Valid() {
		return nil, fmt.Errorf("unsupported canvas width %d", int(cfg.Width))
	}
	cfg = cfg.withDefaults()
	if 2*cfg.Margin >= int(cfg.Width) {
		return nil, fmt.Errorf("margin %d leaves no room on a %s canvas", cfg.Margin, cfg.Width)
	}

	r, err := e.newRenderer(cfg)
	if err != nil {
		return nil, err
	}

	blocks := []block{spacer(paddingTop)}
	blocks = append(blocks, r.logoBlock()...)
	blocks = append(blocks,
		r.textBlock(r.title, wrap(r.title, doc.ShopName, r.contentWidth()), alignCenter),
		r.textBlock(r.small, r.contactLines(doc.Details), alignCenter),
		spacer(sectionGap),
		r.textBlock(r.small, []string{e.clock.Now().Format("2006-01-02 15:04:05")}, alignLeft),
		r.textBlock(r.small, wrap(r.small, "Order: "+doc.OrderID, r.contentWidth()), alignLeft),
		r.divider(),
	)
	for _, line := range doc.Lines {
		blocks = append(blocks, r.itemBlock(line))
	}
	blocks = append(blocks,
		r.divider(),
		r.textBlock(r.body, wrapEach(r.body, []string{cfg.TotalLabel}, r.contentWidth()), alignLeft),
		r.textBlock(r.total, []string{FormatAmount(doc.TotalAmount, cfg.Currency)}, alignRight),
		r.divider(),
	)
	blocks = append(blocks, r.qrBlock()...)
	blocks = append(blocks,
		r.textBlock(r.body, wrapEach(r.body, cfg.Footer, r.contentWidth()), alignCenter),
		spacer(paddingBottom),
	)

	plan := &Plan{Width: int(cfg.Width), blocks: blocks}
	for _, b := range blocks {
		plan.Height += b.height
	}
	return plan, nil
}

type renderer struct {
	cfg                       Config
	title, total, body, small font.Face
}

func (e *Engine) newRenderer(cfg Config) (*renderer, error) {
	r := &renderer{cfg: cfg}
	faces := []struct {
		dst  *font.Face
		font *opentype.Font
		size float64
	}{
		{&r.title, e.bold, titleSize},
		{&r.total, e.bold, totalSize},
		{&r.body, e.regular, bodySize},
		{&r.small, e.regular, smallSize},
	}
	for _, f := range faces {
		face, err := opentype.NewFace(f.font, &opentype.FaceOptions{
			Size:    f.size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return nil, fmt.Errorf("creating font face: %w", err)
		}
		*f.dst = face
	}
	return r, nil
}

func (r *renderer) left() int         { return r.cfg.Margin }
func (r *renderer) right() int        { return int(r.cfg.Width) - r.cfg.Margin }
func (r *renderer) contentWidth() int { return r.right() - r.left() }

func (r *renderer) x(face font.Face, s string, align alignment) int {
	switch align {
	case alignCenter:
		return r.left() + (r.contentWidth()-measure(face, s))/2
	case alignRight:
		return r.right() - measure(face, s)
	default:
		return r.left()
	}
}

func spacer(h int) block {
	return block{height: h}
}

func (r *renderer) textBlock(face font.Face, lines []string, align alignment) block {
	if len(lines) == 0 {
		return block{}
	}
	lh := lineHeight(face)
	ascent := face.Metrics().Ascent.Ceil()
	return block{
		height: len(lines) * lh,
		texts:  lines,
		draw: func(dst *image.RGBA, top int) {
			for i, s := range lines {
				drawString(dst, face, s, r.x(face, s, align), top+i*lh+ascent)
			}
		},
	}
}

func (r *renderer) contactLines(d order.StaticDetails) []string {
	var lines []string
	for _, s := range []string{d.Address, d.Phone} {
		lines = append(lines, wrap(r.small, s, r.contentWidth())...)
	}
	return lines
}

func (r *renderer) divider() block {
	return block{
		height: dividerHeight,
		draw: func(dst *image.RGBA, top int) {
			mid := top + dividerHeight/2 - 1
			for x := r.left(); x < r.right(); x++ {
				if (x-r.left())/6%2 == 1 {
					continue
				}
				dst.Set(x, mid, color.Black)
				dst.Set(x, mid+1, color.Black)
			}
		},
	}
}

// itemBlock prints the item name with the line total right-aligned on its
// first line, then the secondary name and quantity.
func (r *renderer) itemBlock(line order.Line) block {
	price := FormatAmount(line.LineTotal(), r.cfg.Currency)
	limit := r.contentWidth() - measure(r.body, price) - priceGap

	names := wrap(r.body, line.PrimaryName, limit)
	if len(names) == 0 {
		names = []string{""}
	}
	details := wrap(r.small, strings.TrimSpace(fmt.Sprintf("%s x%d", line.SecondaryName, line.Quantity)), limit)

	bodyLH, smallLH := lineHeight(r.body), lineHeight(r.small)
	bodyAscent, smallAscent := r.body.Metrics().Ascent.Ceil(), r.small.Metrics().Ascent.Ceil()

	texts := append([]string{}, names...)
	texts = append(texts, price)
	texts = append(texts, details...)

	return block{
		height: len(names)*bodyLH + len(details)*smallLH + itemGap,
		texts:  texts,
		draw: func(dst *image.RGBA, top int) {
			for i, s := range names {
				drawString(dst, r.body, s, r.left(), top+i*bodyLH+bodyAscent)
			}
			drawString(dst, r.body, price, r.x(r.body, price, alignRight), top+bodyAscent)

			y := top + len(names)*bodyLH
			for i, s := range details {
				drawString(dst, r.small, s, r.left(), y+i*smallLH+smallAscent)
			}
		},
	}
}

// logoBlock shrinks the logo to fit half the content width.
func (r *renderer) logoBlock() []block {
	if r.cfg.Logo == nil {
		return nil
	}
	logo := resize.Thumbnail(uint(r.contentWidth()/2), logoMaxHeight, r.cfg.Logo, resize.Lanczos3)
	return []block{r.imageBlock(logo), spacer(sectionGap)}
}

// qrBlock scales the QR code with nearest neighbour so modules stay sharp.
func (r *renderer) qrBlock() []block {
	if r.cfg.QR == nil {
		return nil
	}
	side := r.contentWidth() / 2
	if side > qrMaxSide {
		side = qrMaxSide
	}
	qr := resize.Resize(uint(side), 0, r.cfg.QR, resize.NearestNeighbor)
	return []block{spacer(sectionGap), r.imageBlock(qr), spacer(sectionGap)}
}

func (r *renderer) imageBlock(img image.Image) block {
	b := img.Bounds()
	return block{
		height: b.Dy(),
		draw: func(dst *image.RGBA, top int) {
			x := r.left() + (r.contentWidth()-b.Dx())/2
			rect := image.Rect(x, top, x+b.Dx(), top+b.Dy())
			draw.Draw(dst, rect, img, b.Min, draw.Over)
		},
	}
}
