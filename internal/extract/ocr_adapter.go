package extract

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/gazette-ocr/internal/entity"
)

// NoticeReader runs both stages on one PDF.
type NoticeReader struct {
	text   TextExtractor
	parser NoticeParser
	logger *slog.Logger
}

func NewNoticeReader(text TextExtractor, parser NoticeParser, logger *slog.Logger) *NoticeReader {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoticeReader{text: text, parser: parser, logger: logger.With("component", "notice_reader")}
}

func (r *NoticeReader) Read(ctx context.Context, pdf []byte) (entity.ParsedNotice, error) {
	start := time.Now()
	text, err := r.text.ExtractText(ctx, pdf)
	if err != nil {
		return entity.ParsedNotice{}, err
	}
	notice := r.parser.Parse(text)
	r.logger.Debug("notice read",
		"pdf_bytes", len(pdf),
		"text_chars", len(text),
		"notice_type", notice.NoticeType,
		"confidence", notice.Confidence,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return notice, nil
}
