package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/joseph-ayodele/gazette-ocr/constants"
	"github.com/joseph-ayodele/gazette-ocr/internal/common"
)

const streamChunk = 64 << 10

// Fetcher downloads gazette PDFs. The viewer answers either with the PDF
// itself or with an HTML page embedding it.
type Fetcher struct {
	client   *Client
	maxBytes int64
	logger   *slog.Logger
}

func NewFetcher(client *Client, maxBytes int64, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{client: client, maxBytes: maxBytes, logger: logger.With("component", "fetcher")}
}

// Fetch returns the PDF bytes behind rawURL. All failures are
// PDF_FETCH_FAILED; an HTML page without an embedded document wraps
// common.ErrPDFLinkNotInHTML so callers can treat it as a lost session.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := f.client.Get(ctx, rawURL)
	if err != nil {
		return nil, f.wrap(rawURL, err)
	}
	ct := constants.NormalizeContentType(resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	drain(resp)
	if err != nil {
		return nil, f.wrap(rawURL, err)
	}

	switch {
	case strings.Contains(ct, constants.ContentTypePDF):
		if err := f.checkSize(rawURL, int64(len(body))); err != nil {
			return nil, err
		}
		f.logger.Info("pdf fetched", "url", rawURL, "size_bytes", len(body), "mode", "direct")
		return body, nil

	case strings.Contains(ct, constants.ContentTypeHTML):
		embedded, ok := embeddedPDF(body, rawURL)
		if !ok {
			return nil, common.NewAppErrorDetail(common.KindFetchFailed,
				"PDF link not found in HTML page", "url="+rawURL, common.ErrPDFLinkNotInHTML)
		}
		return f.stream(ctx, embedded)

	case constants.HasPDFMagic(body):
		if err := f.checkSize(rawURL, int64(len(body))); err != nil {
			return nil, err
		}
		f.logger.Info("pdf fetched", "url", rawURL, "size_bytes", len(body), "mode", "raw")
		return body, nil
	}

	return nil, common.NewAppErrorDetail(common.KindFetchFailed,
		fmt.Sprintf("unexpected content type %q", ct), "url="+rawURL, common.ErrUnexpectedContentType)
}

// stream downloads the embedded document, enforcing the size cap against
// the advertised length and against the bytes actually received.
func (f *Fetcher) stream(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := f.client.Get(ctx, rawURL)
	if err != nil {
		return nil, f.wrap(rawURL, err)
	}
	defer drain(resp)

	if resp.ContentLength > 0 {
		if err := f.checkSize(rawURL, resp.ContentLength); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	chunk := make([]byte, streamChunk)
	var total int64
	for {
		n, rerr := resp.Body.Read(chunk)
		if n > 0 {
			total += int64(n)
			if err := f.checkSize(rawURL, total); err != nil {
				return nil, err
			}
			buf.Write(chunk[:n])
		}
		if errors.Is(rerr, io.EOF) {
			break
		}
		if rerr != nil {
			return nil, f.wrap(rawURL, rerr)
		}
	}
	f.logger.Info("pdf fetched", "url", rawURL, "size_bytes", total, "mode", "embedded")
	return buf.Bytes(), nil
}

func (f *Fetcher) checkSize(rawURL string, n int64) error {
	if n <= f.maxBytes {
		return nil
	}
	return common.NewAppErrorDetail(common.KindFetchFailed,
		fmt.Sprintf("PDF size limit exceeded (%d bytes)", n),
		fmt.Sprintf("max=%d bytes, url=%s", f.maxBytes, rawURL),
		common.ErrSizeExceeded)
}

func (f *Fetcher) wrap(rawURL string, err error) error {
	var se *StatusError
	if errors.As(err, &se) {
		return common.NewAppErrorDetail(common.KindFetchFailed,
			fmt.Sprintf("PDF download failed (HTTP %d)", se.Code), "url="+rawURL, err)
	}
	return common.NewAppErrorDetail(common.KindFetchFailed, "PDF download error", "url="+rawURL, err)
}

// embeddedPDF finds the document referenced by an embed, iframe or object
// element, in that order, resolved against the page URL.
func embeddedPDF(page []byte, pageURL string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return "", false
	}
	candidates := []struct{ sel, attr string }{
		{selEmbed, "src"},
		{selIframe, "src"},
		{selObject, "data"},
	}
	for _, c := range candidates {
		ref, ok := doc.Find(c.sel).First().Attr(c.attr)
		ref = strings.TrimSpace(ref)
		if !ok || ref == "" {
			continue
		}
		return resolveRef(pageURL, ref), true
	}
	return "", false
}

func resolveRef(base, ref string) string {
	if strings.HasPrefix(ref, "http") {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
