package service

import (
	"slices"

	"forecast-vintage-api/internal/model"
)

// DefaultAllowedRoles applies when a gate is configured without roles.
var DefaultAllowedRoles = []string{model.RoleAdmin}

// Authorize decides whether an authenticated identity may proceed. A nil
// identity means authentication never ran and is always rejected.
func Authorize(identity *model.Identity, allowedRoles []string) error {
	if identity == nil || identity.Role == "" {
		return model.ErrInsufficientPermissions
	}
	if len(allowedRoles) == 0 {
		allowedRoles = DefaultAllowedRoles
	}
	if !slices.Contains(allowedRoles, identity.Role) {
		return model.ErrInsufficientPermissions
	}
	return nil
}
