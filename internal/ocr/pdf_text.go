package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// textLayer is tier 1: the embedded text layer of every page, layout kept.
// Any failure yields "".
func (c *Cascade) textLayer(ctx context.Context, pdf []byte) string {
	dir, err := os.MkdirTemp("", "gz-t1-*")
	if err != nil {
		c.logger.Warn("tier1 temp dir", "error", err)
		return ""
	}
	defer c.removeAll(dir)

	path := filepath.Join(dir, "in.pdf")
	if err := os.WriteFile(path, pdf, 0o600); err != nil {
		c.logger.Warn("tier1 write input", "error", err)
		return ""
	}
	text, err := c.pdfToText(ctx, path)
	if err != nil {
		c.logger.Warn("tier1 text layer failed", "error", err)
		return ""
	}
	return text
}

// pdfToText runs pdftotext on a file; pages are joined with newlines.
func (c *Cascade) pdfToText(ctx context.Context, path string) (string, error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := c.runner.Run(ctx, c.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w: %s", err, truncate(string(errb), 500))
	}
	// A form-feed \f is used as page separator by default
	pages := strings.Split(string(out), "\f")
	kept := pages[:0]
	for _, p := range pages {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n"), nil
}

func (c *Cascade) removeAll(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		c.logger.Warn("failed to remove temp dir", "dir", dir, "error", err)
	}
}
