package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/diewo77/go-freelance/httpx"
	"github.com/diewo77/go-freelance/internal/services"
)

// writeServiceError maps the service error taxonomy onto HTTP statuses.
// fallback is the operation-specific code for unexpected failures.
func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	var ve *services.ValidationError
	var de *services.DocumentWriteError
	switch {
	case errors.As(err, &ve):
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", ve.Violations)
	case errors.Is(err, services.ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
	case errors.Is(err, services.ErrInvalidReference):
		httpx.JSONError(w, http.StatusBadRequest, "invalid_reference", nil)
	case errors.Is(err, services.ErrConflict):
		httpx.JSONError(w, http.StatusConflict, "conflict", nil)
	case errors.As(err, &de):
		httpx.JSONError(w, http.StatusInternalServerError, "document_write_failed", nil)
	default:
		httpx.JSONError(w, http.StatusInternalServerError, fallback, nil)
	}
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (uint, bool) {
	id64, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil || id64 == 0 {
		return 0, false
	}
	return uint(id64), true
}
