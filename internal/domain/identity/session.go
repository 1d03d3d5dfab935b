package identity

import "sync"

// Session holds the signed-in user and bearer token. It replaces a
// process-wide token variable: the API client reads the token through
// Token on every request. Safe for concurrent use.
type Session struct {
	mu    sync.RWMutex
	user  *User
	token string
}

// NewSession returns an empty, signed-out session
func NewSession() *Session {
	return &Session{}
}

// Attach signs the session in
func (s *Session) Attach(u User, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &u
	s.token = token
}

// Clear signs the session out
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.token = ""
}

// Token returns the bearer token, "" when signed out
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the signed-in user
func (s *Session) User() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// LoggedIn reports whether a token is attached
func (s *Session) LoggedIn() bool {
	return s.Token() != ""
}
