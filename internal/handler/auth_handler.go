package handler

import (
	"net/http"

	"forecast-vintage-api/internal/service"
)

type AuthHandler struct {
	credentials *service.CredentialService
}

func NewAuthHandler(credentials *service.CredentialService) *AuthHandler {
	return &AuthHandler{credentials: credentials}
}

// GetHash returns the bcrypt hash of auth_key, for bootstrapping credential
// rows by hand.
func (h *AuthHandler) GetHash(w http.ResponseWriter, r *http.Request) {
	values, err := bodyParams(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	authKey := values.Get("auth_key")
	if authKey == "" {
		writeText(w, http.StatusBadRequest, "Missing auth_key!")
		return
	}

	hash, err := h.credentials.HashAuthKey(r.Context(), authKey)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, hash)
}

func (h *AuthHandler) GetToken(w http.ResponseWriter, r *http.Request) {
	values, err := bodyParams(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	username := param(values, "username")
	authKey := values.Get("auth_key")
	if username == "" || authKey == "" {
		writeText(w, http.StatusBadRequest, "Missing auth key!")
		return
	}

	token, err := h.credentials.IssueToken(r.Context(), actorFromRequest(r), username, authKey)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, token)
}
