package receipt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"time"

	imgInternal "github.com/AlexStarov/escpos-receipt/image"
	"github.com/AlexStarov/escpos-receipt/layout"
	"github.com/AlexStarov/escpos-receipt/order"
	"github.com/AlexStarov/escpos-receipt/printer"
)

// maxOrderSize caps request bodies.
const maxOrderSize = 1 << 20

// Server exposes the pipeline over HTTP.
type Server struct {
	pipeline *Pipeline
	defaults Options
	logger   *slog.Logger
	mux      *http.ServeMux
}

// NewServer creates a new Server with default mux
func NewServer(pipeline *Pipeline, defaults Options, logger *slog.Logger) *Server {
	return NewServerWithMux(pipeline, defaults, logger, http.NewServeMux())
}

// NewServerWithMux creates a new Server with a custom mux for testing
func NewServerWithMux(pipeline *Pipeline, defaults Options, logger *slog.Logger, mux *http.ServeMux) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		pipeline: pipeline,
		defaults: defaults,
		logger:   logger,
		mux:      mux,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("POST /api/receipts/encode", s.handleEncode)
	s.mux.HandleFunc("POST /api/receipts/print", s.handlePrint)
	s.mux.HandleFunc("POST /api/receipts/preview", s.handlePreview)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
}

// Start serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", "address", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down server: %w", err)
		}
		return nil
	}
}

// ServeHTTP implements http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleEncode returns the raw command stream.
func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	doc, opts, ok := s.readRequest(w, r)
	if !ok {
		return
	}

	stream, err := s.pipeline.Build(r.Context(), doc, opts)
	if err != nil {
		s.writePipelineError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", receiptFilename(doc, "bin")))
	if _, err := w.Write(stream); err != nil {
		s.logger.Error("Error writing response", "error", err)
	}
}

// handlePrint delivers the receipt and returns the Ack.
func (s *Server) handlePrint(w http.ResponseWriter, r *http.Request) {
	doc, opts, ok := s.readRequest(w, r)
	if !ok {
		return
	}

	ack, err := s.pipeline.Print(r.Context(), doc, opts)
	if err != nil {
		s.writePipelineError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ack)
}

// handlePreview returns the receipt as the printer would see it, decoded
// back from the command stream.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	doc, opts, ok := s.readRequest(w, r)
	if !ok {
		return
	}

	stream, err := s.pipeline.Build(r.Context(), doc, opts)
	if err != nil {
		s.writePipelineError(w, err)
		return
	}
	frame, err := printer.Decode(stream)
	if err != nil {
		s.writePipelineError(w, &Error{Kind: KindEncoding, Op: "decode", Err: err})
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, imgInternal.Unpack(frame).Gray()); err != nil {
		s.logger.Error("Error encoding preview", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readRequest parses the order body and applies query overrides to the
// server defaults. It writes the error response itself.
func (s *Server) readRequest(w http.ResponseWriter, r *http.Request) (order.Document, Options, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxOrderSize))
	if err != nil {
		s.writeError(w, http.StatusRequestEntityTooLarge, "Order is too large", "")
		return order.Document{}, Options{}, false
	}

	doc, err := order.Parse(body)
	if err != nil {
		s.logger.Warn("Rejected order", "error", err)
		s.writeError(w, http.StatusBadRequest, err.Error(), "")
		return order.Document{}, Options{}, false
	}

	opts, err := applyQuery(s.defaults, r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error(), "")
		return order.Document{}, Options{}, false
	}
	return doc, opts, true
}

// applyQuery lets a request pick width, framing, strategy and assets.
func applyQuery(opts Options, r *http.Request) (Options, error) {
	q := r.URL.Query()
	if v := q.Get("width"); v != "" {
		w, err := layout.ParseWidth(v)
		if err != nil {
			return opts, err
		}
		opts.Width = w
	}
	if v := q.Get("framing"); v != "" {
		f, err := printer.ParseFraming(v)
		if err != nil {
			return opts, err
		}
		opts.Framing = f
	}
	if v := q.Get("strategy"); v != "" {
		st, err := imgInternal.ParseStrategy(v)
		if err != nil {
			return opts, err
		}
		opts.Strategy = st
	}
	if q.Has("logo") {
		opts.LogoRef = q.Get("logo")
	}
	if q.Has("qr") {
		opts.QRRef = q.Get("qr")
	}
	return opts, nil
}

func (s *Server) writePipelineError(w http.ResponseWriter, err error) {
	var e *Error
	if !errors.As(err, &e) {
		s.logger.Error("Unexpected pipeline error", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Internal server error", "")
		return
	}

	switch e.Kind {
	case KindHandoff:
		s.writeError(w, http.StatusBadGateway, e.Error(), e.Remedy())
	case KindCanceled:
		s.writeError(w, http.StatusServiceUnavailable, e.Error(), "")
	default:
		s.logger.Error("Pipeline failed", "kind", e.Kind, "op", e.Op, "error", e.Err)
		s.writeError(w, http.StatusInternalServerError, e.Error(), "")
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, message, remedy string) {
	body := map[string]string{"error": message}
	if remedy != "" {
		body["remedy"] = remedy
	}
	s.writeJSON(w, code, body)
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Error encoding response", "error", err)
	}
}

func receiptFilename(doc order.Document, ext string) string {
	if doc.OrderID == "" {
		return "receipt." + ext
	}
	return "receipt-" + doc.OrderID + "." + ext
}
