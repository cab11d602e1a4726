package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/retrolist/games-service/internal/api/response"
	"github.com/retrolist/games-service/internal/apperrors"
)

// decodeJSON decodes the request body into dst and writes the appropriate
// error response on failure. Returns false when the caller should stop.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			response.RespondContentTooLarge(w, "request body exceeds maximum allowed size")
			return false
		}

		response.RespondBadRequest(w, "Invalid request body")

		return false
	}

	return true
}

// respondServiceError maps service-layer errors to problem responses.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		response.RespondBadRequest(w, err.Error())
	case errors.Is(err, apperrors.ErrNotFound):
		response.RespondNotFound(w, err.Error())
	case errors.Is(err, apperrors.ErrConflict):
		response.RespondConflict(w, err.Error())
	case errors.Is(err, apperrors.ErrForbidden):
		response.RespondForbidden(w, err.Error())
	default:
		response.RespondInternalServerError(w, "An unexpected error occurred")
	}
}
