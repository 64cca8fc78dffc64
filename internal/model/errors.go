package model

import "errors"

var (
	// Credential related errors
	ErrCredentialNotFound = errors.New("credential not found")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or auth_key")
	ErrAccountDeactivated = errors.New("account deactivated")

	// Token related errors
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")

	// Permission related errors
	ErrInsufficientPermissions = errors.New("insufficient permissions")

	// Observation related errors
	ErrDuplicateVintage = errors.New("duplicate observation at vintage date")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
