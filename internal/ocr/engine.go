package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Page segmentation modes used by the pipeline.
const (
	PSMSingleBlock = int(gosseract.PSM_SINGLE_BLOCK)
	PSMSingleLine  = int(gosseract.PSM_SINGLE_LINE)
)

// RecognizeOptions configures one recognition call.
type RecognizeOptions struct {
	Languages []string
	PSM       int
	Whitelist string
}

// Recognizer turns an encoded image into text.
type Recognizer interface {
	Recognize(ctx context.Context, img []byte, opts RecognizeOptions) (string, error)
}

// TesseractEngine recognizes text with libtesseract through gosseract.
// A fresh client is used per call; clients are not safe for concurrent use.
type TesseractEngine struct {
	TessdataDir   string
	clientFactory func() *gosseract.Client
}

func NewTesseractEngine(tessdataDir string) *TesseractEngine {
	return &TesseractEngine{TessdataDir: tessdataDir, clientFactory: gosseract.NewClient}
}

func (e *TesseractEngine) Recognize(ctx context.Context, img []byte, opts RecognizeOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c := e.clientFactory()
	defer c.Close()

	if e.TessdataDir != "" {
		if err := c.SetTessdataPrefix(e.TessdataDir); err != nil {
			return "", fmt.Errorf("set tessdata: %w", err)
		}
	}
	if len(opts.Languages) > 0 {
		if err := c.SetLanguage(opts.Languages...); err != nil {
			return "", fmt.Errorf("set languages: %w", err)
		}
	}
	if opts.PSM > 0 {
		if err := c.SetPageSegMode(gosseract.PageSegMode(opts.PSM)); err != nil {
			return "", fmt.Errorf("set psm: %w", err)
		}
	}
	if opts.Whitelist != "" {
		if err := c.SetWhitelist(opts.Whitelist); err != nil {
			return "", fmt.Errorf("set whitelist: %w", err)
		}
	}
	if err := c.SetImageFromBytes(img); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return strings.TrimSpace(text), nil
}
