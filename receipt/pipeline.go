// Package receipt runs one print request through layout, monochrome
// conversion, raster encoding and delivery.
package receipt

import (
	"context"
	"fmt"
	stdimage "image"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/AlexStarov/escpos-receipt/asset"
	imgInternal "github.com/AlexStarov/escpos-receipt/image"
	"github.com/AlexStarov/escpos-receipt/layout"
	"github.com/AlexStarov/escpos-receipt/order"
	"github.com/AlexStarov/escpos-receipt/printer"
)

// Options configures one request.
type Options struct {
	Width    layout.Width
	Framing  printer.Framing
	Strategy imgInternal.Strategy

	// Asset references resolved through the loader; empty means none.
	LogoRef string
	QRRef   string

	// Details fill the contact lines a document leaves empty.
	Details  order.StaticDetails
	Currency string
	Footer   []string

	// StripRows is the row count per strip command, 1 when zero.
	StripRows int
	Kick      bool
}

// DefaultOptions prints on 58 mm paper, strip framed and dithered.
func DefaultOptions() Options {
	return Options{
		Width:    layout.Width58mm,
		Framing:  printer.Strip,
		Strategy: imgInternal.FloydSteinberg{},
	}
}

// Pipeline holds what requests share: the engine with its parsed fonts,
// the asset loader and the deliverer. Everything else is per request.
type Pipeline struct {
	engine    *layout.Engine
	loader    *asset.Loader
	deliverer printer.Deliverer
	logger    *slog.Logger
}

// NewPipeline wires the stages. loader may be nil when no assets are used;
// deliverer may be nil when only Build is called.
func NewPipeline(engine *layout.Engine, loader *asset.Loader, deliverer printer.Deliverer, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{engine: engine, loader: loader, deliverer: deliverer, logger: logger}
}

// Render lays out doc on a canvas after resolving its assets.
func (p *Pipeline) Render(ctx context.Context, doc order.Document, opts Options) (*stdimage.RGBA, error) {
	doc = doc.Clone().WithDefaultDetails(opts.Details)

	cfg := layout.Config{
		Width:    opts.Width,
		Currency: opts.Currency,
		Footer:   opts.Footer,
	}
	if img, ok := p.loader.Load(ctx, opts.LogoRef); ok {
		cfg.Logo = img
	}
	if img, ok := p.loader.Load(ctx, opts.QRRef); ok {
		cfg.QR = img
	}
	if err := ctx.Err(); err != nil {
		return nil, newError(KindCanceled, "load assets", err)
	}

	canvas, err := p.engine.Render(doc, cfg)
	if err != nil {
		return nil, newError(KindRender, "layout", err)
	}
	return canvas, nil
}

// Build turns doc into a printer command stream.
func (p *Pipeline) Build(ctx context.Context, doc order.Document, opts Options) (printer.Stream, error) {
	start := time.Now()

	canvas, err := p.Render(ctx, doc, opts)
	if err != nil {
		return nil, err
	}

	strategy := opts.Strategy
	if strategy == nil {
		strategy = imgInternal.Threshold{}
	}
	bitmap := imgInternal.Reduce(canvas, strategy)
	if err := ctx.Err(); err != nil {
		return nil, newError(KindCanceled, "monochrome", err)
	}

	enc := printer.NewEncoder(opts.Framing)
	if opts.StripRows > 0 {
		enc.StripRows = opts.StripRows
	}
	enc.Kick = opts.Kick
	stream, err := enc.Encode(bitmap)
	if err != nil {
		return nil, &Error{Kind: KindEncoding, Op: "encode", Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, newError(KindCanceled, "encode", err)
	}

	p.logger.Debug("receipt built",
		"order", doc.OrderID,
		"width", bitmap.Width,
		"height", bitmap.Height,
		"framing", opts.Framing,
		"strategy", strategy,
		"bytes", len(stream),
		"elapsed", time.Since(start),
	)
	return stream, nil
}

// Print builds the stream and delivers it. Nothing is delivered when ctx
// is done first.
func (p *Pipeline) Print(ctx context.Context, doc order.Document, opts Options) (printer.Ack, error) {
	if p.deliverer == nil {
		return printer.Ack{}, &Error{Kind: KindHandoff, Op: "deliver", Err: fmt.Errorf("no deliverer configured")}
	}

	job := uuid.NewString()
	log := p.logger.With("job", job, "order", doc.OrderID)

	stream, err := p.Build(ctx, doc, opts)
	if err != nil {
		log.Error("building receipt failed", "error", err)
		return printer.Ack{}, err
	}

	if err := ctx.Err(); err != nil {
		log.Info("print canceled before delivery")
		return printer.Ack{}, newError(KindCanceled, "deliver", err)
	}

	ack, err := p.deliverer.Deliver(ctx, stream)
	if err != nil {
		e := newError(KindHandoff, "deliver", err)
		log.Error("delivery failed", "error", err, "remedy", e.Remedy())
		return printer.Ack{}, e
	}

	ack.Job = job
	log.Info("receipt handed off", "transport", ack.Transport, "bytes", ack.Bytes)
	return ack, nil
}
