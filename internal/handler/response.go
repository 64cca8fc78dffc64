package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"forecast-vintage-api/internal/model"
	"forecast-vintage-api/pkg/apierror"
)

const msgUnknownError = "unknown error"

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeText(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(message))
}

func writeSuccess(w http.ResponseWriter, result any) {
	writeJSON(w, http.StatusOK, model.APIResponse{Success: model.StatusSuccess, Result: result})
}

func writeFailure(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, model.APIResponse{Success: model.StatusFailure, ErrorMessage: message})
}

// writeError maps err onto the wire. Request and gate errors become plain
// text with a 4xx status; credential mismatches and store failures are
// reported in a success:0 envelope with status 200.
func writeError(w http.ResponseWriter, err error) {
	var apiErr *apierror.APIError
	switch {
	case errors.As(err, &apiErr):
		writeText(w, apiErr.HTTPStatus, apiErr.Message)
	case errors.Is(err, model.ErrInvalidInput):
		writeText(w, http.StatusBadRequest, "invalid parameters")
	case errors.Is(err, model.ErrMissingToken):
		writeText(w, http.StatusForbidden, "Missing token")
	case errors.Is(err, model.ErrInvalidToken), errors.Is(err, model.ErrExpiredToken):
		writeText(w, http.StatusForbidden, "Invalid token")
	case errors.Is(err, model.ErrInsufficientPermissions):
		writeText(w, http.StatusForbidden, "Insufficient permissions")
	case errors.Is(err, model.ErrInvalidCredentials):
		writeFailure(w, model.ErrInvalidCredentials.Error())
	case errors.Is(err, model.ErrAccountDeactivated):
		writeFailure(w, model.ErrAccountDeactivated.Error())
	default:
		slog.Error("unhandled error in writeError", "error", err.Error())
		writeFailure(w, msgUnknownError)
	}
}
