package handler

import (
	"net/http"

	"forecast-vintage-api/internal/middleware"
	"forecast-vintage-api/internal/model"
)

func actorFromRequest(r *http.Request) model.AuditActor {
	actor := model.AuditActor{IP: middleware.ClientIP(r)}

	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		return actor
	}

	actor.Username = identity.Username
	actor.Role = identity.Role

	return actor
}
