package receipt

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind uint8

const (
	// KindRender is a layout failure: bad width, font problems.
	KindRender Kind = iota + 1
	// KindEncoding means the raster broke its size invariants, a bug
	// upstream.
	KindEncoding
	// KindHandoff is a failed delivery to the bridge or device.
	KindHandoff
	// KindCanceled means the caller gave up before delivery.
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindRender:
		return "render"
	case KindEncoding:
		return "encoding"
	case KindHandoff:
		return "handoff"
	case KindCanceled:
		return "canceled"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Error is returned by every Pipeline operation.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Remedy is a hint for the operator, empty unless the hand-off failed.
func (e *Error) Remedy() string {
	if e.Kind != KindHandoff {
		return ""
	}
	return "check the bridge app is installed, the printer is paired and powered on"
}

// KindOf returns the kind of err, or zero when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func newError(kind Kind, op string, err error) *Error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		kind = KindCanceled
	}
	return &Error{Kind: kind, Op: op, Err: err}
}
