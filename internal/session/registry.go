// Package session keeps the bearer tokens issued to admins at login.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"
)

// DefaultTTL is the fixed lifetime of a token. Tokens are never refreshed.
const DefaultTTL = 24 * time.Hour

// tokenBytes random bytes hex-encode into a 64 character token.
const tokenBytes = 32

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrSessionExpired = fmt.Errorf("%w: session expired", ErrUnauthorized)
)

// Session is what a token resolves to.
type Session struct {
	Token     string    `json:"-"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Registry maps opaque tokens to authenticated admins.
//
// Validate must fail with an error matching ErrUnauthorized for unknown or
// expired tokens, and evict expired entries as it finds them.
type Registry interface {
	Create(ctx context.Context, userID int64, username string) (string, error)
	Validate(ctx context.Context, token string) (*Session, error)
	Invalidate(ctx context.Context, token string) error
}

// NewToken returns 32 bytes from crypto/rand, hex encoded.
func NewToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// MemoryRegistry is the process-local registry. Its lifetime is the process
// lifetime: a restart logs every admin out.
type MemoryRegistry struct {
	mu       sync.RWMutex
	sessions map[string]Session
	ttl      time.Duration
	now      func() time.Time
}

type Option func(*MemoryRegistry)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *MemoryRegistry) { r.now = now }
}

func NewMemoryRegistry(ttl time.Duration, opts ...Option) *MemoryRegistry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	r := &MemoryRegistry{
		sessions: make(map[string]Session),
		ttl:      ttl,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *MemoryRegistry) Create(_ context.Context, userID int64, username string) (string, error) {
	token, err := NewToken()
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	r.sessions[token] = Session{
		Token:     token,
		UserID:    userID,
		Username:  username,
		ExpiresAt: r.now().Add(r.ttl),
	}
	r.mu.Unlock()

	return token, nil
}

func (r *MemoryRegistry) Validate(_ context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	r.mu.RLock()
	s, ok := r.sessions[token]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrUnauthorized
	}

	if !r.now().Before(s.ExpiresAt) {
		r.mu.Lock()
		// an Invalidate may have raced us here
		if cur, ok := r.sessions[token]; ok && !r.now().Before(cur.ExpiresAt) {
			delete(r.sessions, token)
		}
		r.mu.Unlock()
		return nil, ErrSessionExpired
	}

	return &s, nil
}

func (r *MemoryRegistry) Invalidate(_ context.Context, token string) error {
	r.mu.Lock()
	delete(r.sessions, token)
	r.mu.Unlock()
	return nil
}

// Len counts stored entries, expired ones included until they are touched.
func (r *MemoryRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Count is Len behind the signature shared with the Redis registry.
func (r *MemoryRegistry) Count(context.Context) (int, error) {
	return r.Len(), nil
}
