package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"forecast-vintage-api/internal/model"
)

func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if recovered := recover(); recovered != nil {
				if recovered == http.ErrAbortHandler {
					panic(recovered)
				}
				slog.Error("panic recovered", "error", fmt.Sprintf("%v", recovered), "path", r.URL.Path, "stack", string(debug.Stack()))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = jsonEncode(w, model.APIResponse{
					Success:      model.StatusFailure,
					ErrorMessage: "unknown error",
				})
			}
		}()

		next.ServeHTTP(w, r)
	})
}
