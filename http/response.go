package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/sagarc03/cardfs"
)

// WriteText writes a plain-text status response.
func WriteText(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	if _, err := io.WriteString(w, message); err != nil {
		slog.Debug("failed to write response", "error", err)
	}
}

// HandleError writes appropriate error response based on error type
func HandleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cardfs.ErrNotFound):
		WriteText(w, http.StatusNotFound, "not found")
	case errors.Is(err, cardfs.ErrInvalidInput):
		WriteText(w, http.StatusBadRequest, "invalid input")
	case errors.Is(err, cardfs.ErrForbidden):
		WriteText(w, http.StatusForbidden, "forbidden")
	default:
		slog.Error("request error", "error", err)
		WriteText(w, http.StatusInternalServerError, "internal error")
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}
