package ocr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/gazette-ocr/internal/common"
)

// forcedOCR is tier 3: ocrmypdf rebuilds the text layer of the whole
// document, which is then read back like tier 1. Temp files are removed on
// every path, including timeout and cancellation.
func (c *Cascade) forcedOCR(ctx context.Context, pdf []byte) (string, error) {
	dir, err := os.MkdirTemp("", "gz-t3-*")
	if err != nil {
		return "", common.NewAppError(common.KindOCRFailed, "forced OCR setup failed", err)
	}
	defer c.removeAll(dir)

	in := filepath.Join(dir, "in.pdf")
	out := filepath.Join(dir, "out.pdf")
	if err := os.WriteFile(in, pdf, 0o600); err != nil {
		return "", common.NewAppError(common.KindOCRFailed, "forced OCR setup failed", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, c.cfg.ForcedOCRTimeout)
	defer cancel()

	_, errb, err := c.runner.Run(runCtx, c.cfg.Ocrmypdf,
		"--language", c.cfg.Lang,
		"--force-ocr",
		"--deskew",
		"--clean",
		in, out,
	)
	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return "", common.NewAppErrorDetail(common.KindOCRFailed, "forced OCR timed out",
				fmt.Sprintf("timeout=%s", c.cfg.ForcedOCRTimeout), err)
		}
		return "", common.NewAppErrorDetail(common.KindOCRFailed, "forced OCR failed",
			truncate(strings.TrimSpace(string(errb)), 500), err)
	}

	text, err := c.pdfToText(ctx, out)
	if err != nil {
		return "", common.NewAppError(common.KindOCRFailed, "reading forced OCR output failed", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", common.NewAppError(common.KindOCRFailed, "no text after forced OCR", common.ErrOCRFailed)
	}
	return text, nil
}
