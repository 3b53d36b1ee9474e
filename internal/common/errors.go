package common

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies failures surfaced by the extraction core.
type Kind string

const (
	KindNotFound      Kind = "NOT_FOUND"
	KindFetchFailed   Kind = "PDF_FETCH_FAILED"
	KindOCRFailed     Kind = "OCR_FAILED"
	KindParseFailed   Kind = "PARSING_FAILED"
	KindCaptchaFailed Kind = "CAPTCHA_FAILED"
	KindAuthFailed    Kind = "AUTH_FAILED"
	KindInvalidInput  Kind = "INVALID_INPUT"
	KindInternal      Kind = "INTERNAL_ERROR"
)

// AppError represents application-specific errors
type AppError struct {
	Kind    Kind
	Message string
	Detail  string
	Cause   error
}

func (e *AppError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is match an AppError against the per-kind sentinels below.
func (e *AppError) Is(target error) bool {
	if k, ok := kindSentinels[target]; ok {
		return k == e.Kind
	}
	return false
}

// Sentinels per kind, plus the sub-kinds callers branch on.
var (
	ErrNotFound      = errors.New("not found")
	ErrFetchFailed   = errors.New("fetch failed")
	ErrOCRFailed     = errors.New("ocr failed")
	ErrParseFailed   = errors.New("parse failed")
	ErrCaptchaFailed = errors.New("captcha failed")
	ErrAuthFailed    = errors.New("auth failed")
	ErrInvalidInput  = errors.New("invalid input")

	// ErrPDFLinkNotInHTML means the viewer answered with an HTML page that embeds no PDF.
	// Upstream this almost always means the session expired.
	ErrPDFLinkNotInHTML      = errors.New("pdf link not found in html page")
	ErrSizeExceeded          = errors.New("pdf size limit exceeded")
	ErrUnexpectedContentType = errors.New("unexpected content type")
	ErrMissingCredentials    = errors.New("login credentials missing")
)

var kindSentinels = map[error]Kind{
	ErrNotFound:      KindNotFound,
	ErrFetchFailed:   KindFetchFailed,
	ErrOCRFailed:     KindOCRFailed,
	ErrParseFailed:   KindParseFailed,
	ErrCaptchaFailed: KindCaptchaFailed,
	ErrAuthFailed:    KindAuthFailed,
	ErrInvalidInput:  KindInvalidInput,
}

// Error constructors
func NewAppError(kind Kind, message string, cause error) *AppError {
	return &AppError{Kind: kind, Message: message, Cause: cause}
}

func NewAppErrorDetail(kind Kind, message, detail string, cause error) *AppError {
	return &AppError{Kind: kind, Message: message, Detail: detail, Cause: cause}
}

// KindOf returns the kind of the outermost AppError in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// HTTPStatus maps a kind to the status code exposed by the HTTP boundary.
func HTTPStatus(k Kind) int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindFetchFailed:
		return http.StatusBadGateway
	case KindParseFailed, KindInvalidInput:
		return http.StatusUnprocessableEntity
	case KindCaptchaFailed:
		return http.StatusServiceUnavailable
	case KindAuthFailed:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
