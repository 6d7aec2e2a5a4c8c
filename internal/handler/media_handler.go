package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"bragawork/internal/service"
	"bragawork/internal/util"
)

const (
	uploadField = "image"

	// multipartOverhead is allowed on top of the file limit for boundaries
	// and part headers.
	multipartOverhead = 64 << 10

	msgNoFile = "Nenhum arquivo foi enviado."
)

type MediaHandler struct {
	responder
	media *service.MediaService
}

func NewMediaHandler(media *service.MediaService, logger *zap.Logger) *MediaHandler {
	return &MediaHandler{responder: responder{logger: logger}, media: media}
}

func (h *MediaHandler) RegisterProtectedRoutes(r chi.Router) {
	r.Post("/upload-image", h.UploadImage)
	r.Get("/list-images", h.ListImages)
}

// UploadImage stores the multipart field "image".
func (h *MediaHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.media.MaxBytes()+multipartOverhead)

	if err := r.ParseMultipartForm(8 << 20); err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case errors.As(err, &tooBig):
			h.respondWithError(w, r, h.media.TooLarge(), "")
		case errors.Is(err, http.ErrNotMultipart):
			h.respondWithJSON(w, http.StatusOK, errorResponse(msgNoFile))
		default:
			h.respondWithJSON(w, http.StatusBadRequest, errorResponse(msgBadRequest))
		}
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		h.respondWithJSON(w, http.StatusOK, errorResponse(msgNoFile))
		return
	}
	defer file.Close()

	img, err := h.media.Upload(r.Context(), header.Filename, header.Header.Get("Content-Type"), header.Size, file, actorFrom(r))
	if err != nil {
		h.respondWithError(w, r, err, "Erro ao fazer upload da imagem.")
		return
	}

	h.respondWithJSON(w, http.StatusOK, successResponse("Imagem enviada com sucesso!").
		With("imageUrl", img.URL).
		With("filename", img.Filename))
}

func (h *MediaHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	images, err := h.media.ListImages(r.Context())
	if err != nil {
		h.logger.Error("Failed to list images", util.ErrorField(err))
		h.respondWithJSON(w, http.StatusOK, errorResponse("Erro ao listar imagens.").
			With("images", []struct{}{}))
		return
	}
	h.respondWithJSON(w, http.StatusOK, successResponse("").With("images", images))
}
