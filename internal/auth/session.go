package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/spec-kit/gatelaunch/internal/domain"
)

// SessionRegistry keeps server-side sessions in process memory.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionRegistry builds a registry. A nil clock defaults to time.Now.
func NewSessionRegistry(ttl time.Duration, now func() time.Time) *SessionRegistry {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	if now == nil {
		now = time.Now
	}
	return &SessionRegistry{sessions: make(map[string]domain.Session), ttl: ttl, now: now}
}

// TTL returns the lifetime of new sessions.
func (r *SessionRegistry) TTL() time.Duration {
	return r.ttl
}

// Create mints a random token bound to userID.
func (r *SessionRegistry) Create(userID string) (domain.Session, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return domain.Session{}, err
	}
	created := r.now()
	session := domain.Session{
		Token:     hex.EncodeToString(buf),
		UserID:    userID,
		CreatedAt: created,
		ExpiresAt: created.Add(r.ttl),
	}
	r.mu.Lock()
	r.sessions[session.Token] = session
	r.mu.Unlock()
	return session, nil
}

// Resolve returns the live session for token. Expired entries are removed on lookup.
func (r *SessionRegistry) Resolve(token string) (domain.Session, bool) {
	if token == "" {
		return domain.Session{}, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[token]
	if !ok {
		return domain.Session{}, false
	}
	if session.Expired(r.now()) {
		delete(r.sessions, token)
		return domain.Session{}, false
	}
	return session, true
}

// Revoke deletes the token. It is idempotent.
func (r *SessionRegistry) Revoke(token string) {
	r.mu.Lock()
	delete(r.sessions, token)
	r.mu.Unlock()
}

// Sweep removes every expired session and returns how many were dropped.
func (r *SessionRegistry) Sweep() int {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for token, session := range r.sessions {
		if session.Expired(now) {
			delete(r.sessions, token)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked sessions.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweeper adapts Sweep to the scheduler task signature.
func (r *SessionRegistry) Sweeper() func(context.Context) error {
	return func(context.Context) error {
		r.Sweep()
		return nil
	}
}
