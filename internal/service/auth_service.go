package service

import (
	"context"
	"errors"
	"fmt"

	"bragawork/internal/events"
	"bragawork/internal/hashing"
	"bragawork/internal/models"
	"bragawork/internal/repository/sqlstore"
	"bragawork/internal/session"
	"bragawork/internal/util"
)

const (
	msgCredentialsRequired = "Usuário e senha são obrigatórios."
	msgBadCredentials      = "Usuário ou senha incorretos."
)

// Actor identifies the admin behind an authenticated request.
type Actor struct {
	UserID   int64
	Username string
}

// ActorFrom converts a validated session.
func ActorFrom(s *session.Session) Actor {
	if s == nil {
		return Actor{}
	}
	return Actor{UserID: s.UserID, Username: s.Username}
}

type LoginResult struct {
	Token string
	User  *models.AdminUser
}

// AuthService checks admin credentials and issues session tokens.
type AuthService struct {
	admins    sqlstore.AdminRepository
	hasher    *hashing.Hasher
	sessions  session.Registry
	publisher events.Publisher
}

func NewAuthService(
	admins sqlstore.AdminRepository,
	hasher *hashing.Hasher,
	sessions session.Registry,
	publisher events.Publisher,
) *AuthService {
	return &AuthService{
		admins:    admins,
		hasher:    hasher,
		sessions:  sessions,
		publisher: publisher,
	}
}

// Login never tells an unknown username apart from a wrong password.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, reject(ErrInvalidInput, msgCredentialsRequired)
	}

	user, err := s.admins.GetActiveByUsername(ctx, username)
	if errors.Is(err, sqlstore.ErrNotFound) {
		s.loginFailed(ctx, username, "unknown_user")
		return nil, reject(ErrInvalidCredentials, msgBadCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load admin: %w", err)
	}

	err = s.hasher.ComparePassword(user.PasswordHash, password)
	if errors.Is(err, hashing.ErrMismatch) {
		s.loginFailed(ctx, username, "bad_password")
		return nil, reject(ErrInvalidCredentials, msgBadCredentials)
	}
	if err != nil {
		return nil, err
	}

	if err := s.admins.TouchLastLogin(ctx, user.ID); err != nil {
		return nil, err
	}

	token, err := s.sessions.Create(ctx, user.ID, user.Username)
	if err != nil {
		return nil, err
	}

	util.Info("Admin logged in",
		util.Int64("admin_id", user.ID),
		util.String("username", user.Username))
	events.Emit(ctx, s.publisher, events.New(events.LoginSucceeded, user.ID, user.Username))

	return &LoginResult{Token: token, User: user}, nil
}

func (s *AuthService) loginFailed(ctx context.Context, username, reason string) {
	util.Warn("Admin login rejected",
		util.String("username", username),
		util.String("reason", reason))
	events.Emit(ctx, s.publisher, events.New(events.LoginFailed, 0, username).With("reason", reason))
}

// Authenticate resolves a bearer token. The error matches
// session.ErrUnauthorized, or session.ErrSessionExpired for a stale token.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*session.Session, error) {
	return s.sessions.Validate(ctx, token)
}

// Logout invalidates the token. Logging out twice is not an error.
func (s *AuthService) Logout(ctx context.Context, token string, actor Actor) error {
	if err := s.sessions.Invalidate(ctx, token); err != nil {
		return err
	}
	events.Emit(ctx, s.publisher, events.New(events.Logout, actor.UserID, actor.Username))
	return nil
}
