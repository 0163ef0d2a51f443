// Package log builds the structured logger used by the receipt binaries.
// Records go to stdout and, when a directory is configured, to a set of
// three rotating files keyed by the day of the month.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Options configures New.
type Options struct {
	// Dir holds the rotating log files. Empty disables the file sink.
	Dir string
	// Prefix of the file names, "escpos" when empty.
	Prefix string
	Level  slog.Level
	// Stdout receives a copy of every record, os.Stdout when nil.
	Stdout io.Writer
}

// New returns a text logger writing to stdout and the rotating file set.
// The returned closer releases the current log file.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	out := opts.Stdout
	if out == nil {
		out = os.Stdout
	}

	var closer io.Closer = nopCloser{}
	w := out
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("creating log directory: %w", err)
		}
		rf := NewRotatingFile(opts.Dir, opts.Prefix)
		closer = rf
		w = io.MultiWriter(out, rf)
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: opts.Level}))
	return logger, closer, nil
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// RotatingFile is an io.Writer over <dir>/<prefix>-{0,1,2}.log. Days 1-9 go
// to suffix 0, days 10-19 to suffix 1 and the rest of the month to suffix 2.
// Entering a period removes the file of the following period, which is the
// oldest one.
type RotatingFile struct {
	dir    string
	prefix string
	now    func() time.Time

	mu     sync.Mutex
	f      *os.File
	suffix int
}

// NewRotatingFile returns a RotatingFile; files are opened lazily on Write.
func NewRotatingFile(dir, prefix string) *RotatingFile {
	if prefix == "" {
		prefix = "escpos"
	}
	return &RotatingFile{dir: dir, prefix: prefix, now: time.Now, suffix: -1}
}

func (r *RotatingFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	suffix := suffixForDay(now.Day())
	if r.f == nil || suffix != r.suffix {
		if err := r.open(now, suffix); err != nil {
			return 0, err
		}
	}
	return r.f.Write(p)
}

// Close closes the current file.
func (r *RotatingFile) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.f == nil {
		return nil
	}
	err := r.f.Close()
	r.f = nil
	r.suffix = -1
	return err
}

func (r *RotatingFile) open(now time.Time, suffix int) error {
	if r.f != nil {
		_ = r.f.Close()
		r.f = nil
	}

	oldest := r.path((suffix + 1) % 3)
	if err := os.Remove(oldest); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %s: %w", oldest, err)
	}

	flags := os.O_APPEND | os.O_CREATE | os.O_WRONLY
	path := r.path(suffix)
	// A file left over from the same period of an earlier month is stale.
	if st, err := os.Stat(path); err == nil && st.ModTime().Before(periodStart(now)) {
		flags |= os.O_TRUNC
	}

	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	r.f = f
	r.suffix = suffix
	return nil
}

func (r *RotatingFile) path(suffix int) string {
	return filepath.Join(r.dir, fmt.Sprintf("%s-%d.log", r.prefix, suffix))
}

func suffixForDay(day int) int {
	switch {
	case day <= 9:
		return 0
	case day <= 19:
		return 1
	default:
		return 2
	}
}

func periodStart(now time.Time) time.Time {
	day := 1
	switch suffixForDay(now.Day()) {
	case 1:
		day = 10
	case 2:
		day = 20
	}
	return time.Date(now.Year(), now.Month(), day, 0, 0, 0, 0, now.Location())
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
