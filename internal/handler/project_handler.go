package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"bragawork/internal/service"
)

type ProjectHandler struct {
	responder
	projects *service.ProjectService
	guard    authGuard
}

func NewProjectHandler(projects *service.ProjectService, auth Authenticator, logger *zap.Logger) *ProjectHandler {
	base := responder{logger: logger}
	return &ProjectHandler{
		responder: base,
		projects:  projects,
		guard:     authGuard{responder: base, auth: auth},
	}
}

func (h *ProjectHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/get-projects", h.GetProjects)
	r.Post("/project-view", h.RecordView)
}

func (h *ProjectHandler) RegisterProtectedRoutes(r chi.Router) {
	r.Post("/save-project", h.SaveProject)
	r.Post("/delete-project", h.DeleteProject)
}

// GetProjects answers with a bare array: approved projects for the public
// carousel, or every project with ?admin=true, which needs a session.
func (h *ProjectHandler) GetProjects(w http.ResponseWriter, r *http.Request) {
	includeAll := r.URL.Query().Get("admin") == "true"
	if includeAll {
		var ok bool
		if r, ok = h.guard.authenticate(w, r); !ok {
			return
		}
	}

	projects, err := h.projects.List(r.Context(), includeAll)
	h.respondWithList(w, r, projects, err)
}

func (h *ProjectHandler) SaveProject(w http.ResponseWriter, r *http.Request) {
	var req service.ProjectInput
	if !h.decodeJSON(w, r, &req) {
		return
	}

	id, err := h.projects.Save(r.Context(), req, actorFrom(r))
	if err != nil {
		h.respondWithError(w, r, err, "Erro ao salvar projeto.")
		return
	}
	h.respondWithJSON(w, http.StatusOK, successResponse("Projeto salvo com sucesso!").With("id", id))
}

func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	if err := h.projects.Delete(r.Context(), req.ID, actorFrom(r)); err != nil {
		h.respondWithError(w, r, err, "Erro ao excluir projeto.")
		return
	}
	h.respondWithJSON(w, http.StatusOK, successResponse("Projeto excluído com sucesso!"))
}

func (h *ProjectHandler) RecordView(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	if err := h.projects.RecordView(r.Context(), req.ID); err != nil {
		h.respondWithError(w, r, err, "Erro ao registrar visualização.")
		return
	}
	h.respondWithJSON(w, http.StatusOK, successResponse(""))
}
