package middleware

import (
	"context"
	"net/http"
	"strings"

	"forecast-vintage-api/internal/model"
	"forecast-vintage-api/internal/service"
)

const (
	msgMissingToken           = "Missing token"
	msgInvalidToken           = "Invalid token"
	msgInsufficientPermission = "Insufficient permissions"
)

type tokenValidator interface {
	Verify(tokenString string) (model.Identity, error)
}

type contextKey string

const identityContextKey contextKey = "identity"

type AuthMiddleware struct {
	validator tokenValidator
}

func NewAuthMiddleware(validator tokenValidator) *AuthMiddleware {
	return &AuthMiddleware{validator: validator}
}

// Authenticate requires a valid bearer token and stores the caller's
// identity in the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writePlain(w, http.StatusForbidden, msgMissingToken)
			return
		}

		identity, err := m.validator.Verify(token)
		if err != nil {
			writePlain(w, http.StatusForbidden, msgInvalidToken)
			return
		}

		ctx := context.WithValue(r.Context(), identityContextKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Authorize admits only identities whose role is in allowedRoles, or admin
// when no roles are given. It must run after Authenticate.
func (m *AuthMiddleware) Authorize(allowedRoles ...string) func(http.Handler) http.Handler {
	roles := make([]string, 0, len(allowedRoles))
	for _, role := range allowedRoles {
		if trimmed := strings.TrimSpace(role); trimmed != "" {
			roles = append(roles, trimmed)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var identity *model.Identity
			if found, ok := IdentityFromContext(r.Context()); ok {
				identity = &found
			}

			if err := service.Authorize(identity, roles); err != nil {
				writePlain(w, http.StatusForbidden, msgInsufficientPermission)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func IdentityFromContext(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(model.Identity)
	return identity, ok
}

// WithIdentity adapts a handler that takes the authenticated identity as an
// explicit argument. Requests without one are rejected.
func WithIdentity(fn func(w http.ResponseWriter, r *http.Request, identity model.Identity)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok {
			writePlain(w, http.StatusForbidden, msgMissingToken)
			return
		}
		fn(w, r, identity)
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return "", false
	}

	token := strings.TrimSpace(header[7:])
	return token, token != ""
}
