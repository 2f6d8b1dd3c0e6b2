package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/wikihugo/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error" validate:"required"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errResponse{Error: msg})
}

// writeServiceError maps lookup and corpus errors to client statuses and
// logs everything else as an internal error.
func writeServiceError(w http.ResponseWriter, msg string, err error, attrs ...any) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, apperr.ErrRedirectCycle), errors.Is(err, apperr.ErrParse),
		errors.Is(err, apperr.ErrDuplicatePath), errors.Is(err, apperr.ErrDuplicateWikiName):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.Error(msg, append(attrs, slog.String("error", err.Error()))...)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
