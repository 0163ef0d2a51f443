package asset

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"
)

// DefaultTimeout bounds a single asset load.
const DefaultTimeout = 3 * time.Second

// ErrUnavailable marks an asset that could not be resolved in time. The
// loader logs it and reports the asset as absent; it is never returned to
// a print caller.
var ErrUnavailable = errors.New("asset unavailable")

// Loader resolves asset references through a Source, waiting at most
// Timeout for fetch and decode together.
type Loader struct {
	source  Source
	timeout time.Duration
	logger  *slog.Logger
}

// NewLoader returns a Loader. A zero timeout means DefaultTimeout and a nil
// logger means slog.Default().
func NewLoader(source Source, timeout time.Duration, logger *slog.Logger) *Loader {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{source: source, timeout: timeout, logger: logger}
}

// Load returns the decoded asset and true, or nil and false when ref is
// empty or the asset could not be loaded before the deadline.
func (l *Loader) Load(ctx context.Context, ref string) (image.Image, bool) {
	if ref == "" || l == nil || l.source == nil {
		return nil, false
	}

	start := time.Now()
	img, err := l.fetch(ctx, ref)
	if err != nil {
		l.logger.Warn("asset unavailable", "ref", ref, "elapsed", time.Since(start), "error", err)
		return nil, false
	}
	l.logger.Debug("asset loaded", "ref", ref, "bounds", img.Bounds().Size(), "elapsed", time.Since(start))
	return img, true
}

type loadResult struct {
	img image.Image
	err error
}

func (l *Loader) fetch(ctx context.Context, ref string) (image.Image, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	// Buffered so the worker can finish after we stop waiting for it.
	done := make(chan loadResult, 1)
	go func() {
		data, err := l.source.Fetch(ctx, ref)
		if err != nil {
			done <- loadResult{err: err}
			return
		}
		img, _, err := Decode(data)
		done <- loadResult{img: img, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, r.err)
		}
		return r.img, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())
	}
}
