package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joseph-ayodele/gazette-ocr/internal/imaging"
)

// imageOCR is tier 2: render pages, split each into columns and recognize
// every column as a text block. Any failure yields "".
func (c *Cascade) imageOCR(ctx context.Context, pdf []byte) string {
	if c.engine == nil {
		c.logger.Warn("tier2 skipped: no recognizer configured")
		return ""
	}
	text, err := c.pdfToOCR(ctx, pdf)
	if err != nil {
		c.logger.Warn("tier2 image ocr failed", "error", err)
		return ""
	}
	return text
}

func (c *Cascade) pdfToOCR(ctx context.Context, pdf []byte) (string, error) {
	tmpDir, err := os.MkdirTemp("", "gz-t2-*")
	if err != nil {
		return "", err
	}
	defer c.removeAll(tmpDir)

	in := filepath.Join(tmpDir, "in.pdf")
	if err := os.WriteFile(in, pdf, 0o600); err != nil {
		return "", err
	}
	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := c.runner.Run(ctx, c.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", c.cfg.DPI), "-png", in, prefix)
	if err != nil {
		return "", fmt.Errorf("pdftoppm: %w: %s", err, truncate(string(errb), 500))
	}

	// collect generated pngs (page-1.png, ... zero padded by pdftoppm)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) == 0 {
		return "", fmt.Errorf("no pages rendered")
	}

	pages := make([]string, 0, len(matches))
	for _, path := range matches {
		txt, err := c.ocrPage(ctx, path)
		if err != nil {
			return "", fmt.Errorf("page %s: %w", filepath.Base(path), err)
		}
		pages = append(pages, txt)
	}
	return strings.Join(pages, "\n"), nil
}

func (c *Cascade) ocrPage(ctx context.Context, path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	img, err := imaging.Decode(raw)
	if err != nil {
		return "", err
	}
	gray := imaging.ToGray(img)

	cols := []imaging.Column{{Start: 0, End: gray.Bounds().Dx()}}
	if c.cfg.ColumnDetection {
		cols = imaging.DetectColumns(gray, c.cfg.MinColumnGapPx)
	}
	c.logger.Debug("page columns", "page", filepath.Base(path), "columns", len(cols))

	opts := RecognizeOptions{Languages: langs(c.cfg.Lang), PSM: PSMSingleBlock}
	parts := make([]string, 0, len(cols))
	for _, col := range cols {
		strip := imaging.CropColumns(gray, col.Start, col.End)
		prepared := imaging.PreparePage(strip, imaging.PageOptions{
			DenoiseStrength: c.cfg.DenoiseStrength,
			BlockSize:       c.cfg.BlockSize,
		})
		png, err := imaging.EncodePNG(prepared)
		if err != nil {
			return "", err
		}
		txt, err := c.engine.Recognize(ctx, png, opts)
		if err != nil {
			return "", err
		}
		parts = append(parts, txt)
	}
	return strings.Join(parts, "\n"), nil
}

func langs(spec string) []string {
	var out []string
	for _, l := range strings.Split(spec, "+") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
