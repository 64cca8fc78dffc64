package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"forecast-vintage-api/internal/model"
	"forecast-vintage-api/internal/service"
	"forecast-vintage-api/pkg/apierror"
)

type UserHandler struct {
	credentials *service.CredentialService
}

func NewUserHandler(credentials *service.CredentialService) *UserHandler {
	return &UserHandler{credentials: credentials}
}

// AddUser creates a credential on behalf of an admin. Only username is
// required; the generated auth key is returned once.
func (h *UserHandler) AddUser(w http.ResponseWriter, r *http.Request, identity model.Identity) {
	values, err := bodyParams(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	input := model.NewCredential{
		Username: param(values, "username"),
		AuthKey:  values.Get("auth_key"),
		Role:     param(values, "auth_level"),
	}
	if input.Username == "" {
		writeText(w, http.StatusBadRequest, "Missing username!")
		return
	}

	input.IsActive, err = parseActiveFlag(param(values, "is_active"))
	if err != nil {
		writeError(w, err)
		return
	}

	actor := actorFromRequest(r)
	actor.Username, actor.Role = identity.Username, identity.Role

	created, err := h.credentials.Create(r.Context(), actor, input)
	switch {
	case err == nil:
		writeSuccess(w, created)
	case errors.Is(err, model.ErrDuplicateUsername):
		writeJSON(w, http.StatusOK, model.APIResponse{Success: model.StatusFailure, Result: err.Error()})
	case errors.Is(err, model.ErrInvalidInput):
		writeError(w, err)
	default:
		slog.Error("add user failed", "username", input.Username, "error", err)
		writeJSON(w, http.StatusOK, model.APIResponse{Success: model.StatusFailure, Result: msgUnknownError})
	}
}

// parseActiveFlag accepts the boolean spellings of strconv.ParseBool. An
// empty value leaves the default in place.
func parseActiveFlag(raw string) (*bool, error) {
	if raw == "" {
		return nil, nil
	}

	active, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apierror.BadRequest("invalid parameters", "is_active")
	}
	return &active, nil
}
