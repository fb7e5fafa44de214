// Package labelscan runs uploaded label images through OCR and the
// extraction heuristic.
package labelscan

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rxcatalog/rxcatalog/internal/extraction"
	"github.com/rxcatalog/rxcatalog/internal/ocr"
	"github.com/rxcatalog/rxcatalog/internal/platform/httpx"
)

// Outcome labels recorded on the scans counter.
const (
	OutcomeOK          = "ok"
	OutcomeBadImage    = "bad_image"
	OutcomeEngineError = "engine_error"
)

// Result is what a scan yields.
type Result struct {
	Text string `json:"extracted_text"`
	extraction.Result
}

// Service glues an OCR engine to the extraction heuristic.
type Service struct {
	engine  ocr.Engine
	metrics *Metrics
	logger  *slog.Logger
	timeout time.Duration
}

// Option tunes a Service.
type Option func(*Service)

// WithMetrics records scan outcomes.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithTimeout bounds the engine call.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// NewService constructs a Service.
func NewService(engine ocr.Engine, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{engine: engine, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan validates the image, recognizes its text and extracts SKU fields.
// Any decode or engine failure aborts the scan with an upstream error.
func (s *Service) Scan(ctx context.Context, image []byte) (Result, error) {
	start := time.Now()
	name := s.engine.Name()

	format, cfg, err := ocr.DecodeConfig(image)
	if err != nil {
		s.metrics.observe(name, OutcomeBadImage, time.Since(start).Seconds())
		return Result{}, fmt.Errorf("label scan: %w: %w", httpx.ErrUpstream, err)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	text, err := s.engine.Recognize(ctx, image)
	if err != nil {
		s.metrics.observe(name, OutcomeEngineError, time.Since(start).Seconds())
		s.logger.Warn("ocr engine failed",
			slog.String("engine", name),
			slog.String("format", format),
			slog.Any("error", err))
		return Result{}, fmt.Errorf("label scan: %w: %w", httpx.ErrUpstream, err)
	}

	res := Result{Text: text, Result: extraction.Extract(text)}
	s.metrics.observe(name, OutcomeOK, time.Since(start).Seconds())
	s.metrics.observeConfidence(res.Confidence)
	s.logger.Info("label scanned",
		slog.String("engine", name),
		slog.String("format", format),
		slog.Int("width", cfg.Width),
		slog.Int("height", cfg.Height),
		slog.Float64("confidence", res.Confidence))
	return res, nil
}
