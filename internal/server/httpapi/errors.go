package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

// statusFor maps a service error to an HTTP status code. Anything
// unrecognised is a 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrTokenRequired):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrNoRefreshToken),
		errors.Is(err, common.ErrRefreshTokenInvalid),
		errors.Is(err, common.ErrOwnership):
		return http.StatusForbidden
	case errors.Is(err, common.ErrValidation),
		errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrEmailTaken):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrHandleTaken),
		errors.Is(err, common.ErrHandleExhausted),
		errors.Is(err, common.ErrTaskExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes {"error": ...}. For 5xx the fallback message is used so
// that internal detail never reaches the client.
func writeError(w http.ResponseWriter, err error, fallback string) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = fallback
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return common.ErrValidation
	}
	return nil
}
