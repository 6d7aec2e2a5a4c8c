package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"bragawork/internal/service"
	"bragawork/internal/session"
	"bragawork/internal/util"
)

const (
	msgNotAuthorized  = "Não autorizado. Faça login primeiro."
	msgSessionExpired = "Sessão expirada. Faça login novamente."
)

type ctxKey int

const (
	sessionKey ctxKey = iota
	tokenKey
)

// SessionFromContext returns the session attached by RequireAuth.
func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	s, ok := ctx.Value(sessionKey).(*session.Session)
	return s, ok
}

func actorFrom(r *http.Request) service.Actor {
	s, _ := SessionFromContext(r.Context())
	return service.ActorFrom(s)
}

func tokenFrom(r *http.Request) string {
	t, _ := r.Context().Value(tokenKey).(string)
	return t
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func requestID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}

// Authenticator resolves bearer tokens.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*session.Session, error)
}

type authGuard struct {
	responder
	auth Authenticator
}

// authenticate validates the request's token, answering 401 itself when the
// token is missing, unknown or expired.
func (g authGuard) authenticate(w http.ResponseWriter, r *http.Request) (*http.Request, bool) {
	token := bearerToken(r)
	s, err := g.auth.Authenticate(r.Context(), token)
	switch {
	case err == nil:
		ctx := context.WithValue(r.Context(), sessionKey, s)
		ctx = context.WithValue(ctx, tokenKey, token)
		return r.WithContext(ctx), true
	case errors.Is(err, session.ErrSessionExpired):
		g.respondWithJSON(w, http.StatusUnauthorized, errorResponse(msgSessionExpired))
	case errors.Is(err, session.ErrUnauthorized):
		g.respondWithJSON(w, http.StatusUnauthorized, errorResponse(msgNotAuthorized))
	default:
		g.logger.Error("Session lookup failed",
			util.String("request_id", requestID(r)),
			util.ErrorField(err))
		g.respondWithJSON(w, http.StatusInternalServerError, errorResponse("Erro ao validar sessão."))
	}
	return r, false
}

// RequireAuth admits only requests carrying a live session token.
func RequireAuth(auth Authenticator, logger *zap.Logger) func(http.Handler) http.Handler {
	g := authGuard{responder: responder{logger: logger}, auth: auth}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r, ok := g.authenticate(w, r)
			if !ok {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LoggerMiddleware creates a middleware that logs HTTP requests
func LoggerMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				logger.Info("HTTP request",
					util.String("method", r.Method),
					util.String("path", r.URL.Path),
					util.String("request_id", requestID(r)),
					util.String("remote_addr", r.RemoteAddr),
					util.Int("status", ww.Status()),
					util.Duration("duration", time.Since(start)),
					util.String("user_agent", r.UserAgent()),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
