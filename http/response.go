package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sagarc03/aimage"
)

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errCode,
		Message: message,
	}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// HandleError writes appropriate error response based on error type.
// Server-side faults are logged to slog.Default().
func HandleError(w http.ResponseWriter, err error) {
	handleError(w, slog.Default(), err)
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	handleError(w, h.logger.With("request_id", middleware.GetReqID(r.Context())), err)
}

func handleError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, aimage.ErrUnauthorized):
		WriteError(w, http.StatusUnauthorized, "unauthorized", "Valid credentials required")
	case errors.Is(err, aimage.ErrEmptyPayload):
		WriteError(w, http.StatusBadRequest, "empty_payload", "Request body is empty")
	case errors.Is(err, aimage.ErrUnsupportedMediaType):
		WriteError(w, http.StatusRequestedRangeNotSatisfiable, "unsupported_media_type", "Media type is not an allowed image type")
	case errors.Is(err, aimage.ErrIdentifierCollision):
		logger.Warn("request error", "error", err)
		WriteError(w, http.StatusConflict, "identifier_collision", "Generated identifier is already in use")
	case errors.Is(err, aimage.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not_found", "Image not found")
	case errors.Is(err, aimage.ErrDeleteFailed):
		logger.Error("request error", "error", err)
		WriteError(w, http.StatusInternalServerError, "delete_failed", "Image could not be deleted")
	default:
		logger.Error("request error", "error", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

func writeText(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = io.WriteString(w, body)
}

// writeImage sends the stored bytes as a plain 200. Range requests are not
// honored, so 416 keeps its single meaning of an unsupported media type.
func writeImage(w http.ResponseWriter, contentType string, content []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}
