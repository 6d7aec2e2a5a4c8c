package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"bragawork/internal/service"
	"bragawork/internal/util"
)

type AuthHandler struct {
	responder
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{responder: responder{logger: logger}, auth: auth}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

func (h *AuthHandler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/login", h.Login)
}

func (h *AuthHandler) RegisterProtectedRoutes(r chi.Router) {
	r.Post("/logout", h.Logout)
}

// Login handles POST /api/login. Rejected credentials answer HTTP 200 with
// success:false.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	res, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.respondWithError(w, r, err, "Erro ao realizar login.")
		return
	}

	h.respondWithJSON(w, http.StatusOK, successResponse("Login realizado com sucesso!").
		With("token", res.Token).
		With("user", loginUser{
			ID:       res.User.ID,
			Username: res.User.Username,
			FullName: res.User.FullName,
			Email:    res.User.Email,
		}))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	if err := h.auth.Logout(r.Context(), tokenFrom(r), actor); err != nil {
		h.respondWithError(w, r, err, "Erro ao encerrar sessão.")
		return
	}

	h.logger.Info("Admin logged out", util.String("username", actor.Username))
	h.respondWithJSON(w, http.StatusOK, successResponse("Sessão encerrada."))
}
