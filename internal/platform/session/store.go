// Package session holds the server-side session record created at login and
// consulted by the route guard. Sessions are keyed by access token; the only
// operations are Set, Get and Clear, so the store interface stays small
// enough to back with either a map or a database table.
package session

import (
	"context"
	"sync"
	"time"
)

// User is the authenticated identity attached to a session. ID is the
// numeric identifier downstream services key on; Sub is the identity
// provider's UUID for the same account.
type User struct {
	ID       int64  `json:"id"`
	Sub      string `json:"sub"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Session is one logged-in browser session.
type Session struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	User         User      `json:"user"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Store persists sessions keyed by access token. Get returns (nil, nil)
// when no live session exists for the token.
type Store interface {
	Set(ctx context.Context, s *Session) error
	Get(ctx context.Context, token string) (*Session, error)
	Clear(ctx context.Context, token string) error
}

// MemoryStore is the default Store: a mutex-guarded map with TTL expiry.
// Sessions are lost on restart and not shared across instances.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore creates an in-memory store. A zero ttl defaults to one hour.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &MemoryStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Set records the session, stamping CreatedAt if unset.
func (m *MemoryStore) Set(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = m.now()
	}
	m.sessions[s.Token] = s
	return nil
}

// Get returns the session for the token, or (nil, nil) when the token is
// unknown or the session has expired. Expired entries are removed lazily.
func (m *MemoryStore) Get(_ context.Context, token string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[token]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if m.now().Sub(s.CreatedAt) > m.ttl {
		m.mu.Lock()
		delete(m.sessions, token)
		m.mu.Unlock()
		return nil, nil
	}
	return s, nil
}

// Clear removes the session for the token. Clearing an unknown token is not
// an error.
func (m *MemoryStore) Clear(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

// Len reports the number of live entries, expired ones included until their
// next Get. Used by tests.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
