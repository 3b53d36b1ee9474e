package captcha

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/joseph-ayodele/gazette-ocr/constants"
	"github.com/joseph-ayodele/gazette-ocr/internal/common"
	"github.com/joseph-ayodele/gazette-ocr/internal/imaging"
	"github.com/joseph-ayodele/gazette-ocr/internal/metrics"
	"github.com/joseph-ayodele/gazette-ocr/internal/ocr"
	"github.com/joseph-ayodele/gazette-ocr/internal/site"
)

const (
	whitelist  = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	answerSize = 4
)

var endpoints = map[constants.CaptchaContext]string{
	constants.CaptchaLogin:  site.PathLoginCaptcha,
	constants.CaptchaSearch: site.PathSearchCaptcha,
}

// ImageSource fetches raw CAPTCHA images.
type ImageSource interface {
	GetBytes(ctx context.Context, rawURL string) ([]byte, error)
	URL(path string) string
}

// Solver reads CAPTCHA challenges with the OCR engine.
type Solver struct {
	source      ImageSource
	engine      ocr.Recognizer
	maxAttempts int
	now         func() time.Time
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

func NewSolver(source ImageSource, engine ocr.Recognizer, maxAttempts int, m *metrics.Metrics, logger *slog.Logger) *Solver {
	if logger == nil {
		logger = slog.Default()
	}
	if maxAttempts < 1 {
		maxAttempts = 5
	}
	return &Solver{
		source:      source,
		engine:      engine,
		maxAttempts: maxAttempts,
		now:         time.Now,
		metrics:     m,
		logger:      logger.With("component", "captcha"),
	}
}

// Solve fetches fresh challenges until one reads as a non-empty answer.
func (s *Solver) Solve(ctx context.Context, cc constants.CaptchaContext) (string, error) {
	path, ok := endpoints[cc]
	if !ok {
		path = endpoints[constants.CaptchaSearch]
	}
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := s.attempt(ctx, path)
		switch {
		case err != nil:
			s.metrics.CaptchaAttempt(string(cc), "error")
			s.logger.Warn("captcha attempt failed", "context", cc, "attempt", attempt, "error", err)
		case text == "":
			s.metrics.CaptchaAttempt(string(cc), "empty")
			s.logger.Warn("captcha empty", "context", cc, "attempt", attempt)
		default:
			s.metrics.CaptchaAttempt(string(cc), "solved")
			s.logger.Info("captcha solved", "context", cc, "attempt", attempt, "length", len(text))
			return text, nil
		}
	}
	return "", common.NewAppErrorDetail(common.KindCaptchaFailed,
		fmt.Sprintf("captcha not solved in %d attempts", s.maxAttempts),
		"context="+string(cc), common.ErrCaptchaFailed)
}

func (s *Solver) attempt(ctx context.Context, path string) (string, error) {
	u := fmt.Sprintf("%s?%d", s.source.URL(path), s.now().UnixMilli())
	raw, err := s.source.GetBytes(ctx, u)
	if err != nil {
		return "", fmt.Errorf("fetch image: %w", err)
	}
	img, err := imaging.Decode(raw)
	if err != nil {
		return "", err
	}
	png, err := imaging.EncodePNG(imaging.PrepareCaptcha(img))
	if err != nil {
		return "", err
	}
	text, err := s.engine.Recognize(ctx, png, ocr.RecognizeOptions{
		Languages: []string{"eng"},
		PSM:       ocr.PSMSingleLine,
		Whitelist: whitelist,
	})
	if err != nil {
		return "", err
	}
	return Clean(text), nil
}

// Clean keeps letters and digits and truncates to the answer length.
func Clean(raw string) string {
	var b strings.Builder
	n := 0
	for _, r := range strings.TrimSpace(raw) {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		b.WriteRune(r)
		n++
		if n == answerSize {
			break
		}
	}
	return b.String()
}
