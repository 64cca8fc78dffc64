package middleware

import (
	"net/http"
	"slices"
	"time"

	"github.com/rs/cors"
)

const corsMaxAge = time.Hour

// CORS lets browser dashboards call the API. A "*" entry, or no entry at
// all, allows every origin. Rate-limit headers are exposed so clients can
// back off before hitting 429.
func CORS(origins []string) func(http.Handler) http.Handler {
	allowed := origins
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		allowed = []string{"*"}
	}

	return cors.New(cors.Options{
		AllowedOrigins: allowed,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{
			requestIDHeader,
			headerRateLimitPolicy,
			headerRateLimitLimit,
			headerRateLimitRemaining,
			headerRateLimitReset,
			headerRetryAfter,
		},
		MaxAge: int(corsMaxAge / time.Second),
	}).Handler
}
