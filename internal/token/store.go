package token

import "sync"

// Store guards the single credential set shared by the request pipeline and
// the auth lifecycle manager. Stored credentials are treated as immutable:
// every grant or refresh replaces the whole set.
type Store struct {
	mu    sync.RWMutex
	creds *Credentials
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Set replaces the stored credentials.
func (s *Store) Set(c *Credentials) {
	s.mu.Lock()
	s.creds = c
	s.mu.Unlock()
}

// Current returns the stored credentials, or nil when unauthenticated.
// Callers must not mutate the returned value.
func (s *Store) Current() *Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.creds
}

// Clear drops the stored credentials.
func (s *Store) Clear() {
	s.mu.Lock()
	s.creds = nil
	s.mu.Unlock()
}

// RefreshToken returns the stored refresh token, or empty when none exists.
func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.creds == nil {
		return ""
	}

	return s.creds.RefreshToken
}
