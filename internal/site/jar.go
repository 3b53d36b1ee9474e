package site

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"

	"golang.org/x/net/publicsuffix"
)

// Jar is a cookie jar that can be emptied in place, so the http.Client
// holding it never needs to be rebuilt on logout.
type Jar struct {
	mu  sync.RWMutex
	jar *cookiejar.Jar
}

func NewJar() (*Jar, error) {
	j, err := newCookieJar()
	if err != nil {
		return nil, err
	}
	return &Jar{jar: j}, nil
}

func newCookieJar() (*cookiejar.Jar, error) {
	j, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("site: cookie jar: %w", err)
	}
	return j, nil
}

func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	j.jar.SetCookies(u, cookies)
}

func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.jar.Cookies(u)
}

// Reset drops all cookies.
func (j *Jar) Reset() {
	fresh, err := newCookieJar()
	if err != nil {
		// cookiejar.New only fails on a broken options value.
		return
	}
	j.mu.Lock()
	j.jar = fresh
	j.mu.Unlock()
}
