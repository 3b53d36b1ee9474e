package ocr

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/gazette-ocr/internal/common"
	"github.com/joseph-ayodele/gazette-ocr/internal/metrics"
)

// MinTextLength is the shortest tier-1/tier-2 result the cascade accepts.
const MinTextLength = 50

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Ocrmypdf  string // binary name or absolute path; if empty -> "ocrmypdf"

	Lang             string // tesseract form, e.g. "tur+eng"
	DPI              int    // rasterization DPI for tier 2, default 300
	ColumnDetection  bool
	MinColumnGapPx   int
	BlockSize        int
	DenoiseStrength  int
	ForcedOCRTimeout time.Duration // default 120s
}

// ConfigFrom maps application settings to cascade settings.
func ConfigFrom(c common.OCRConfig) Config {
	return Config{
		Pdftotext:        c.Pdftotext,
		Pdftoppm:         c.Pdftoppm,
		Ocrmypdf:         c.Ocrmypdf,
		Lang:             c.Lang,
		DPI:              c.DPI,
		ColumnDetection:  c.ColumnDetection,
		MinColumnGapPx:   c.MinColumnGapPx,
		BlockSize:        c.BinarizeBlockSize,
		DenoiseStrength:  c.DenoiseStrength,
		ForcedOCRTimeout: c.ForcedOCRTimeout,
	}
}

// Cascade extracts text from PDF bytes with three tiers of increasing cost:
// the embedded text layer, column-aware image OCR and forced full-document OCR.
type Cascade struct {
	cfg     Config
	runner  Runner
	engine  Recognizer
	metrics *metrics.Metrics
	logger  *slog.Logger
}

type Option func(*Cascade)

// WithRunner replaces the external command runner.
func WithRunner(r Runner) Option { return func(c *Cascade) { c.runner = r } }

// WithMetrics records per-tier outcomes.
func WithMetrics(m *metrics.Metrics) Option { return func(c *Cascade) { c.metrics = m } }

func NewCascade(cfg Config, engine Recognizer, logger *slog.Logger, opts ...Option) *Cascade {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Ocrmypdf == "" {
		cfg.Ocrmypdf = "ocrmypdf"
	}
	if cfg.Lang == "" {
		cfg.Lang = "tur+eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.MinColumnGapPx <= 0 {
		cfg.MinColumnGapPx = 4
	}
	if cfg.BlockSize < 3 {
		cfg.BlockSize = 31
	}
	if cfg.ForcedOCRTimeout <= 0 {
		cfg.ForcedOCRTimeout = 120 * time.Second
	}
	logger = logger.With("component", "ocr")
	c := &Cascade{cfg: cfg, engine: engine, logger: logger, runner: ExecRunner{Logger: logger}}
	for _, o := range opts {
		o(c)
	}
	return c
}

// ExtractText returns the first tier result of at least MinTextLength
// characters, or the tier-3 result unconditionally. Only tier 3 can fail.
// The gate counts the raw tier output; tier-1 text keeps its layout spacing.
func (c *Cascade) ExtractText(ctx context.Context, pdf []byte) (string, error) {
	start := time.Now()

	raw := c.textLayer(ctx, pdf)
	if longEnough(raw, MinTextLength) {
		text := NormalizeLayout(raw)
		c.metrics.OCRTier("1", "success")
		c.logger.Info("ocr tier1 success", "chars", len(text), "duration_ms", time.Since(start).Milliseconds())
		return text, nil
	}
	c.metrics.OCRTier("1", "insufficient")
	c.logger.Info("ocr tier1 insufficient", "chars", len(raw))

	raw = c.imageOCR(ctx, pdf)
	if longEnough(raw, MinTextLength) {
		text := Normalize(raw)
		c.metrics.OCRTier("2", "success")
		c.logger.Info("ocr tier2 success", "chars", len(text), "duration_ms", time.Since(start).Milliseconds())
		return text, nil
	}
	c.metrics.OCRTier("2", "insufficient")
	c.logger.Info("ocr tier2 insufficient", "chars", len(raw))

	text, err := c.forcedOCR(ctx, pdf)
	if err != nil {
		c.metrics.OCRTier("3", "failed")
		return "", err
	}
	c.metrics.OCRTier("3", "success")
	c.logger.Info("ocr tier3 success", "chars", len(text), "duration_ms", time.Since(start).Milliseconds())
	return NormalizeLayout(text), nil
}
