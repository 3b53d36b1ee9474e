package auth

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultSessionTTL is how long an upstream login is trusted.
const DefaultSessionTTL = 30 * time.Minute

// Session tracks whether the shared upstream login is still valid.
// Expiry is detected lazily when the state is read.
type Session struct {
	mu     sync.Mutex
	since  time.Time
	active bool
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

func NewSession(ttl time.Duration, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Session{ttl: ttl, now: time.Now, logger: logger.With("component", "session")}
}

// IsAuthenticated reports validity, clearing the state once the TTL has passed.
func (s *Session) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return false
	}
	if elapsed := s.now().Sub(s.since); elapsed > s.ttl {
		s.active = false
		s.logger.Info("session expired", "elapsed", elapsed.String())
		return false
	}
	return true
}

func (s *Session) MarkAuthenticated() {
	s.mu.Lock()
	s.since = s.now()
	s.active = true
	s.mu.Unlock()
	s.logger.Info("session authenticated")
}

func (s *Session) Invalidate() {
	s.mu.Lock()
	s.active = false
	s.mu.Unlock()
	s.logger.Info("session invalidated")
}
