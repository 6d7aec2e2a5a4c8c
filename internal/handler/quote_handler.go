package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"bragawork/internal/service"
)

type QuoteHandler struct {
	responder
	quotes *service.QuoteService
}

func NewQuoteHandler(quotes *service.QuoteService, logger *zap.Logger) *QuoteHandler {
	return &QuoteHandler{responder: responder{logger: logger}, quotes: quotes}
}

type updateQuoteRequest struct {
	ID         service.ID `json:"id"`
	Status     string     `json:"status"`
	AdminNotes string     `json:"adminNotes"`
}

type idRequest struct {
	ID service.ID `json:"id"`
}

func (h *QuoteHandler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/submit-quote", h.SubmitQuote)
}

func (h *QuoteHandler) RegisterProtectedRoutes(r chi.Router) {
	r.Get("/get-quotes", h.GetQuotes)
	r.Post("/update-quote", h.UpdateQuote)
	r.Post("/delete-quote", h.DeleteQuote)
}

func (h *QuoteHandler) SubmitQuote(w http.ResponseWriter, r *http.Request) {
	var req service.QuoteInput
	if !h.decodeJSON(w, r, &req) {
		return
	}

	id, err := h.quotes.Submit(r.Context(), req)
	if err != nil {
		h.respondWithError(w, r, err, "Erro ao enviar solicitação. Tente novamente.")
		return
	}

	h.respondWithJSON(w, http.StatusOK,
		successResponse("Solicitação enviada com sucesso! Entraremos em contato em breve.").
			With("quoteId", id))
}

// GetQuotes answers with a bare array.
func (h *QuoteHandler) GetQuotes(w http.ResponseWriter, r *http.Request) {
	quotes, err := h.quotes.List(r.Context())
	h.respondWithList(w, r, quotes, err)
}

func (h *QuoteHandler) UpdateQuote(w http.ResponseWriter, r *http.Request) {
	var req updateQuoteRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	if err := h.quotes.Update(r.Context(), req.ID, req.Status, req.AdminNotes, actorFrom(r)); err != nil {
		h.respondWithError(w, r, err, "Erro ao atualizar solicitação.")
		return
	}
	h.respondWithJSON(w, http.StatusOK, successResponse("Solicitação atualizada com sucesso!"))
}

func (h *QuoteHandler) DeleteQuote(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	if err := h.quotes.Delete(r.Context(), req.ID, actorFrom(r)); err != nil {
		h.respondWithError(w, r, err, "Erro ao excluir solicitação.")
		return
	}
	h.respondWithJSON(w, http.StatusOK, successResponse("Solicitação excluída com sucesso!"))
}
