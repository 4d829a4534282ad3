package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dtroode/dailyphrase/internal/model"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound), errors.Is(err, model.ErrTokenNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, model.ErrTokenExpired):
		writeError(w, http.StatusGone, "token expired")
	case errors.Is(err, model.ErrTokenAlreadyConsumed):
		writeError(w, http.StatusConflict, "token already used")
	case errors.Is(err, model.ErrUserNotPending), errors.Is(err, model.ErrInvalidTransition), errors.Is(err, model.ErrRunIncomplete):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("HTTP: request failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
