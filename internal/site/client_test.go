package site

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientResetCookies(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/set", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "PHPSESSID", Value: "s1", Path: "/"})
	})
	mux.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("PHPSESSID"); err == nil {
			_, _ = w.Write([]byte(c.Value))
		}
	})
	srv := newServer(t, mux)
	c := newTestClient(t, srv.URL)
	ctx := context.Background()

	_, err := c.GetBytes(ctx, c.URL("/set"))
	require.NoError(t, err)
	b, err := c.GetBytes(ctx, c.URL("echo"))
	require.NoError(t, err)
	assert.Equal(t, "s1", string(b))

	c.ResetCookies()
	b, err = c.GetBytes(ctx, c.URL("echo"))
	require.NoError(t, err)
	assert.Empty(t, string(b))
}

func TestClientSendsUserAgentAndForm(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/form", func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.UserAgent(), "Mozilla/5.0")
		require.NoError(t, r.ParseForm())
		_, _ = w.Write([]byte(r.PostForm.Get("q")))
	})
	srv := newServer(t, mux)
	c := newTestClient(t, srv.URL)

	b, err := c.PostForm(context.Background(), c.URL("form"), url.Values{"q": {"İş"}})
	require.NoError(t, err)
	assert.Equal(t, "İş", string(b))
}

func TestPacerHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Pacer{Delay: time.Hour}.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoError(t, Pacer{}.Wait(context.Background()))
}
