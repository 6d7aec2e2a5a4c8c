package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bragawork/internal/client"
	"bragawork/internal/session"
	"bragawork/internal/util"
)

const (
	sessionPrefix = "session:"

	// expiryGrace keeps a key around past its expires_at so Validate can
	// still tell an expired token from an unknown one.
	expiryGrace = time.Hour
)

// SessionCache is a session.Registry stored in Redis, so admin sessions
// survive restarts and are shared between instances.
type SessionCache struct {
	client *client.RedisClient
	ttl    time.Duration
	now    func() time.Time
}

var _ session.Registry = (*SessionCache)(nil)

func NewSessionCache(c *client.RedisClient, ttl time.Duration) *SessionCache {
	if ttl <= 0 {
		ttl = session.DefaultTTL
	}
	return &SessionCache{client: c, ttl: ttl, now: time.Now}
}

func (c *SessionCache) Create(ctx context.Context, userID int64, username string) (string, error) {
	token, err := session.NewToken()
	if err != nil {
		return "", err
	}

	s := session.Session{
		UserID:    userID,
		Username:  username,
		ExpiresAt: c.now().Add(c.ttl).UTC(),
	}
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := c.client.Set(ctx, sessionPrefix+token, data, c.ttl+expiryGrace); err != nil {
		util.Error("Failed to store session",
			util.Int64("user_id", userID),
			util.ErrorField(err))
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	util.Debug("Session stored",
		util.Int64("user_id", userID),
		util.Duration("ttl", c.ttl))
	return token, nil
}

func (c *SessionCache) Validate(ctx context.Context, token string) (*session.Session, error) {
	if token == "" {
		return nil, session.ErrUnauthorized
	}

	key := sessionPrefix + token
	raw, err := c.client.Get(ctx, key)
	if errors.Is(err, client.ErrKeyNotFound) {
		return nil, session.ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var s session.Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		util.Warn("Dropping unreadable session", util.ErrorField(err))
		_ = c.client.Del(ctx, key)
		return nil, session.ErrUnauthorized
	}

	if !c.now().Before(s.ExpiresAt) {
		_ = c.client.Del(ctx, key)
		return nil, session.ErrSessionExpired
	}

	s.Token = token
	return &s, nil
}

func (c *SessionCache) Invalidate(ctx context.Context, token string) error {
	if err := c.client.Del(ctx, sessionPrefix+token); err != nil {
		return fmt.Errorf("failed to invalidate session: %w", err)
	}
	return nil
}

// Count reports stored sessions, expired ones included until their key lapses.
func (c *SessionCache) Count(ctx context.Context) (int, error) {
	return c.client.Count(ctx, sessionPrefix+"*")
}
