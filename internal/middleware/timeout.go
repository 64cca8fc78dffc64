package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"forecast-vintage-api/internal/model"
)

const defaultRequestTimeout = 30 * time.Second

// Timeout bounds an API request. When the deadline passes the client gets
// a 503 carrying the usual failure envelope; the handler's context is
// cancelled so in-flight queries stop.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	body, _ := json.Marshal(model.APIResponse{Success: model.StatusFailure, ErrorMessage: "request timed out"})

	return func(next http.Handler) http.Handler {
		limited := http.TimeoutHandler(next, timeout, string(body))

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Handlers overwrite this; it only survives on the timeout body.
			w.Header().Set("Content-Type", "application/json")
			limited.ServeHTTP(w, r)
		})
	}
}
