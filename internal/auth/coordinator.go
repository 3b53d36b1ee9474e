package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/joseph-ayodele/gazette-ocr/constants"
	"github.com/joseph-ayodele/gazette-ocr/internal/common"
	"github.com/joseph-ayodele/gazette-ocr/internal/metrics"
	"github.com/joseph-ayodele/gazette-ocr/internal/site"
)

// Transport is the slice of the site client the login flow needs.
type Transport interface {
	Visit(ctx context.Context, rawURL string) (int, error)
	PostForm(ctx context.Context, rawURL string, form url.Values) ([]byte, error)
	Pace(ctx context.Context) error
	URL(path string) string
	BaseURL() string
	ResetCookies()
}

// Credentials for the member login.
type Credentials struct {
	Email    string
	Password string
}

type Options struct {
	Credentials Credentials
	MaxRetries  int
	RetryDelay  time.Duration // multiplied by the attempt number
}

// Coordinator owns the login lifecycle of the one shared upstream session.
// Logins are single-flight: concurrent callers wait for the one in progress.
type Coordinator struct {
	transport Transport
	captcha   site.CaptchaSolver
	session   *Session
	opts      Options
	mu        sync.Mutex
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewCoordinator(t Transport, captcha site.CaptchaSolver, session *Session, opts Options, m *metrics.Metrics, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 3
	}
	return &Coordinator{
		transport: t,
		captcha:   captcha,
		session:   session,
		opts:      opts,
		metrics:   m,
		logger:    logger.With("component", "auth"),
	}
}

// EnsureAuthenticated logs in unless the session is still valid.
func (c *Coordinator) EnsureAuthenticated(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session.IsAuthenticated() {
		return nil
	}
	return c.loginWithRetry(ctx)
}

// Logout forgets the session and its cookies. No-op when not logged in.
func (c *Coordinator) Logout(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.session.IsAuthenticated() {
		return
	}
	c.session.Invalidate()
	c.transport.ResetCookies()
	c.logger.Info("logout complete")
}

func (c *Coordinator) loginWithRetry(ctx context.Context) error {
	var lastErr error
	for attempt := 1; attempt <= c.opts.MaxRetries; attempt++ {
		err := c.login(ctx)
		if err == nil {
			c.metrics.Login("success")
			return nil
		}
		if errors.Is(err, common.ErrMissingCredentials) {
			c.metrics.Login("missing_credentials")
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.metrics.Login("failed")
		lastErr = err
		c.logger.Warn("login attempt failed", "attempt", attempt, "max_attempts", c.opts.MaxRetries, "error", err)
		if attempt < c.opts.MaxRetries {
			if err := sleep(ctx, c.opts.RetryDelay*time.Duration(attempt)); err != nil {
				return err
			}
		}
	}
	return common.NewAppErrorDetail(common.KindAuthFailed,
		fmt.Sprintf("login failed after %d attempts", c.opts.MaxRetries), errString(lastErr), lastErr)
}

func (c *Coordinator) login(ctx context.Context) error {
	creds := c.opts.Credentials
	if creds.Email == "" || creds.Password == "" {
		return common.NewAppErrorDetail(common.KindAuthFailed, "login credentials missing",
			"TOBB_LOGIN_EMAIL and TOBB_LOGIN_PASSWORD are required", common.ErrMissingCredentials)
	}

	status, err := c.transport.Visit(ctx, c.transport.BaseURL())
	if err != nil {
		return fmt.Errorf("session init: %w", err)
	}
	if status/100 != 2 {
		c.logger.Warn("session init page status", "status", status)
	}
	if err := c.transport.Pace(ctx); err != nil {
		return err
	}
	answer, err := c.captcha.Solve(ctx, constants.CaptchaLogin)
	if err != nil {
		return err
	}

	body, err := c.transport.PostForm(ctx, c.transport.URL(site.PathLoginSubmit), url.Values{
		"LoginEmail": {creds.Email},
		"LoginSifre": {creds.Password},
		"Captcha":    {answer},
	})
	if err != nil {
		return fmt.Errorf("login submit: %w", err)
	}
	reply := strings.TrimSpace(string(body))
	if reply != "1" {
		c.session.Invalidate()
		return common.NewAppErrorDetail(common.KindAuthFailed, "login rejected",
			"response="+truncate(reply, 100), common.ErrAuthFailed)
	}
	c.session.MarkAuthenticated()
	c.logger.Info("login success", "email", creds.Email)
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	return site.Pacer{Delay: d}.Wait(ctx)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
