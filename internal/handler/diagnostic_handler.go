package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"forecast-vintage-api/internal/model"
)

type diagnosticStore interface {
	Echo(ctx context.Context, value string) ([]string, error)
	Ping(ctx context.Context) error
}

type DiagnosticHandler struct {
	store diagnosticStore
}

func NewDiagnosticHandler(store diagnosticStore) *DiagnosticHandler {
	return &DiagnosticHandler{store: store}
}

// Test echoes varname through the database so admins can check the token
// chain and the store in one call.
func (h *DiagnosticHandler) Test(w http.ResponseWriter, r *http.Request) {
	varname := r.URL.Query().Get("varname")
	if varname == "" {
		writeText(w, http.StatusBadRequest, "Missing varname!")
		return
	}

	values, err := h.store.Echo(r.Context(), varname)
	if err != nil {
		writeError(w, err)
		return
	}

	rows := make([]model.EchoRow, 0, len(values))
	for _, value := range values {
		rows = append(rows, model.EchoRow{Col1: value})
	}
	writeSuccess(w, rows)
}

func (h *DiagnosticHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		slog.Warn("health check failed", "error", err)
		writeText(w, http.StatusServiceUnavailable, "unavailable")
		return
	}

	writeText(w, http.StatusOK, "ok")
}

// WrongRequestType answers requests that reach an endpoint with the wrong
// method.
func WrongRequestType(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, model.APIResponse{Success: model.StatusFailure, Error: "invalid request (wrong request type)!"})
}

// WrongTokenRequestType answers GET /api/get_token. Its message places the
// exclamation mark inside the parentheses, unlike WrongRequestType.
func WrongTokenRequestType(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, model.APIResponse{Success: model.StatusFailure, Error: "invalid request (wrong request type!)"})
}

// EmptyRequest answers a POST to the API root.
func EmptyRequest(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, model.APIResponse{Success: model.StatusFailure, Error: "invalid request (empty)"})
}
