package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"bragawork/internal/service"
	"bragawork/internal/util"
)

const (
	// maxJSONBody bounds every JSON request body.
	maxJSONBody = 1 << 20

	// resultStatusHeader marks a list response that is empty because the
	// query failed rather than because nothing matched.
	resultStatusHeader = "X-Result-Status"

	msgBadRequest = "Requisição inválida."
)

// Response is the flat envelope: success, an optional message and any
// payload keys next to them. The two list endpoints answer with bare arrays
// instead.
type Response map[string]interface{}

func successResponse(message string) Response {
	r := Response{"success": true}
	if message != "" {
		r["message"] = message
	}
	return r
}

func errorResponse(message string) Response {
	return Response{"success": false, "message": message}
}

// With adds a payload key.
func (r Response) With(key string, value interface{}) Response {
	r[key] = value
	return r
}

type responder struct {
	logger *zap.Logger
}

func (h responder) respondWithJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", util.ErrorField(err))
	}
}

// respondWithError answers a failed operation with HTTP 200 and
// success:false. Rejections carry their own message; anything else is logged
// and replaced by generic.
func (h responder) respondWithError(w http.ResponseWriter, r *http.Request, err error, generic string) {
	msg := service.PublicMessage(err, "")
	if msg == "" {
		h.logger.Error("Request failed",
			util.String("path", r.URL.Path),
			util.String("request_id", requestID(r)),
			util.ErrorField(err),
		)
		msg = generic
	}
	h.respondWithJSON(w, http.StatusOK, errorResponse(msg))
}

// respondWithList writes a bare JSON array. On failure it still writes [],
// flagged through the result status header.
func (h responder) respondWithList(w http.ResponseWriter, r *http.Request, list interface{}, err error) {
	if err != nil {
		h.logger.Error("List query failed",
			util.String("path", r.URL.Path),
			util.String("request_id", requestID(r)),
			util.ErrorField(err),
		)
		w.Header().Set(resultStatusHeader, "error")
		h.respondWithJSON(w, http.StatusOK, []struct{}{})
		return
	}
	h.respondWithJSON(w, http.StatusOK, list)
}

// decodeJSON reads a bounded JSON body into dst, writing the 400 itself on
// failure. An empty body decodes to the zero value.
func (h responder) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Debug("Rejected request body",
			util.String("path", r.URL.Path),
			util.ErrorField(err))
		h.respondWithJSON(w, http.StatusBadRequest, errorResponse(msgBadRequest))
		return false
	}
	return true
}
