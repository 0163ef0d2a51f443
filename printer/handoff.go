package printer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// DefaultScheme is the URI scheme registered by the RawBT Android bridge.
const DefaultScheme = "rawbt"

// ErrURITooLong is returned when the encoded stream does not fit in a URI
// the platform can hand over.
var ErrURITooLong = errors.New("uri exceeds the platform limit")

// Opener navigates to a URI so that the app registered for its scheme
// receives it.
type Opener interface {
	Open(ctx context.Context, uri string) error
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context, uri string) error

func (f OpenerFunc) Open(ctx context.Context, uri string) error { return f(ctx, uri) }

// SystemOpener uses the desktop's URL handler (xdg-open, open, or
// url.dll on Windows).
type SystemOpener struct{}

func (SystemOpener) Open(ctx context.Context, uri string) error {
	name, args := openCommand(uri)
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// URIHandoff delivers a stream as "scheme:<percent-encoded bytes>" to an
// external bridge application. Success means navigation was issued and
// nothing more.
type URIHandoff struct {
	Scheme string
	// MaxURILength caps the URI; zero means the platform limit.
	MaxURILength int
	Opener       Opener
	Logger       *slog.Logger
}

// NewURIHandoff returns a hand-off using the system opener.
func NewURIHandoff(scheme string, logger *slog.Logger) *URIHandoff {
	if scheme == "" {
		scheme = DefaultScheme
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &URIHandoff{Scheme: scheme, Opener: SystemOpener{}, Logger: logger}
}

// URI builds the hand-off URI for s.
func (h *URIHandoff) URI(s Stream) string {
	scheme := h.Scheme
	if scheme == "" {
		scheme = DefaultScheme
	}
	return scheme + ":" + EncodeURIComponent(s)
}

func (h *URIHandoff) Deliver(ctx context.Context, s Stream) (Ack, error) {
	uri := h.URI(s)

	limit := h.MaxURILength
	if limit <= 0 {
		limit = platformMaxURILength
	}
	if len(uri) > limit {
		return Ack{}, &TransportError{
			Transport: "uri",
			Op:        "encode",
			Err:       fmt.Errorf("%w: %d > %d bytes", ErrURITooLong, len(uri), limit),
		}
	}

	if err := ctx.Err(); err != nil {
		return Ack{}, err
	}

	opener := h.Opener
	if opener == nil {
		opener = SystemOpener{}
	}
	if err := opener.Open(ctx, uri); err != nil {
		return Ack{}, &TransportError{Transport: "uri", Op: "open", Err: err}
	}

	if h.Logger != nil {
		h.Logger.Info("hand-off issued", "scheme", h.Scheme, "bytes", len(s), "uri_length", len(uri))
	}
	return Ack{Transport: "uri", Bytes: len(s), URI: uri, IssuedAt: time.Now()}, nil
}

const upperhex = "0123456789ABCDEF"

// EncodeURIComponent percent-encodes every byte outside
// A-Z a-z 0-9 - _ . ! ~ * ' ( ) as %XX. Bytes are encoded one by one, so
// arbitrary binary survives.
func EncodeURIComponent(b []byte) string {
	n := 0
	for _, c := range b {
		if !unreserved(c) {
			n++
		}
	}
	if n == 0 {
		return string(b)
	}

	var sb strings.Builder
	sb.Grow(len(b) + 2*n)
	for _, c := range b {
		if unreserved(c) {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(upperhex[c>>4])
		sb.WriteByte(upperhex[c&0x0f])
	}
	return sb.String()
}

func unreserved(c byte) bool {
	switch {
	case 'A' <= c && c <= 'Z', 'a' <= c && c <= 'z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
