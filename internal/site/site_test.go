package site

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/gazette-ocr/constants"
	"github.com/joseph-ayodele/gazette-ocr/internal/common"
)

type fixedCaptcha string

func (f fixedCaptcha) Solve(context.Context, constants.CaptchaContext) (string, error) {
	return string(f), nil
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(baseURL, common.HTTPConfig{MaxRetries: 1}, nil)
	require.NoError(t, err)
	return c
}

func newServer(t *testing.T, mux *http.ServeMux) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}
