package site

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/joseph-ayodele/gazette-ocr/internal/common"
)

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36 Edg/124.0.0.0",
}

const maxBackoff = 30 * time.Second

// StatusError is a non-2xx upstream answer.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.Code, e.URL)
}

// IsStatus reports whether err carries an upstream status equal to code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

// Client is the one HTTP client shared by every component talking to the
// registry site. It holds the session cookies and paces remote calls.
type Client struct {
	baseURL   string
	http      *http.Client
	jar       *Jar
	pacer     Pacer
	retries   int
	backoff   time.Duration
	userAgent string
	logger    *slog.Logger
}

func NewClient(baseURL string, cfg common.HTTPConfig, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("site: base url: %w", err)
	}
	jar, err := NewJar()
	if err != nil {
		return nil, err
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: !cfg.VerifySSL} //nolint:gosec
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	retries := cfg.MaxRetries
	if retries < 1 {
		retries = 1
	}
	backoff := time.Duration(cfg.BackoffFactor * float64(time.Second))
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: timeout, Jar: jar, Transport: transport},
		jar:       jar,
		pacer:     Pacer{Delay: cfg.RateLimitDelay},
		retries:   retries,
		backoff:   backoff,
		userAgent: userAgents[rand.IntN(len(userAgents))],
		logger:    logger.With("component", "site"),
	}, nil
}

// BaseURL is the site root without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// URL joins a site-relative path onto the base URL.
func (c *Client) URL(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// Pace waits the configured rate-limit delay.
func (c *Client) Pace(ctx context.Context) error { return c.pacer.Wait(ctx) }

// ResetCookies drops every stored cookie, ending the upstream session.
func (c *Client) ResetCookies() { c.jar.Reset() }

// Get issues a GET and returns the open response after a status check.
// The caller closes the body.
func (c *Client) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	resp, err := c.do(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode/100 != 2 {
		drain(resp)
		return nil, &StatusError{URL: rawURL, Code: resp.StatusCode}
	}
	return resp, nil
}

// Visit issues a GET for its side effects (session cookies) and returns the
// status code without judging it. Only transport failures are errors.
func (c *Client) Visit(ctx context.Context, rawURL string) (int, error) {
	resp, err := c.do(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	})
	if err != nil {
		return 0, err
	}
	drain(resp)
	return resp.StatusCode, nil
}

// GetBytes issues a GET and reads the whole body.
func (c *Client) GetBytes(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := c.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer drain(resp)
	return io.ReadAll(resp.Body)
}

// PostForm submits form values and reads the whole body.
func (c *Client) PostForm(ctx context.Context, rawURL string, form url.Values) ([]byte, error) {
	encoded := form.Encode()
	resp, err := c.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(encoded))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	})
	if err != nil {
		return nil, err
	}
	defer drain(resp)
	if resp.StatusCode/100 != 2 {
		return nil, &StatusError{URL: rawURL, Code: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}

// do retries transport failures with exponential backoff; HTTP statuses
// are returned to the caller untouched.
func (c *Client) do(ctx context.Context, build func() (*http.Request, error)) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt < c.retries; attempt++ {
		req, err := build()
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.http.Do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Warn("http transport error", "method", req.Method, "url", req.URL.String(), "attempt", attempt+1, "error", err)

		if attempt < c.retries-1 {
			wait := min(c.backoff*time.Duration(1<<attempt), maxBackoff)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, lastErr
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
