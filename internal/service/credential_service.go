package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"forecast-vintage-api/internal/model"
)

const generatedAuthKeyBytes = 10

type credentialStore interface {
	FindByUsername(ctx context.Context, username string) (model.Credential, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, c model.Credential) (int64, error)
}

type auditLogger interface {
	Log(ctx context.Context, action string, actor model.AuditActor, status string, resource string, errText string)
}

type CredentialService struct {
	store  credentialStore
	hasher *PasswordHasher
	tokens *TokenService
	audit  auditLogger

	// decoy is compared against when the username is unknown.
	decoy string
}

func NewCredentialService(store credentialStore, hasher *PasswordHasher, tokens *TokenService, audit auditLogger) (*CredentialService, error) {
	key, err := GenerateAuthKey()
	if err != nil {
		return nil, err
	}
	decoy, err := hasher.Hash(context.Background(), key)
	if err != nil {
		return nil, fmt.Errorf("hash decoy key: %w", err)
	}

	return &CredentialService{store: store, hasher: hasher, tokens: tokens, audit: audit, decoy: decoy}, nil
}

// Create stores a new credential and returns the plaintext auth key, which
// is never retrievable again.
func (s *CredentialService) Create(ctx context.Context, actor model.AuditActor, input model.NewCredential) (model.CreatedCredential, error) {
	input, err := applyCredentialDefaults(input)
	if err != nil {
		return model.CreatedCredential{}, err
	}

	exists, err := s.store.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return model.CreatedCredential{}, err
	}
	if exists {
		s.logAudit(ctx, "credential.create", actor, "failure", input.Username, model.ErrDuplicateUsername.Error())
		return model.CreatedCredential{}, model.ErrDuplicateUsername
	}

	hash, err := s.hasher.Hash(ctx, input.AuthKey)
	if err != nil {
		return model.CreatedCredential{}, err
	}

	rows, err := s.store.Create(ctx, model.Credential{
		Username:    input.Username,
		AuthKeyHash: hash,
		Role:        input.Role,
		IsActive:    *input.IsActive,
	})
	if err != nil {
		s.logAudit(ctx, "credential.create", actor, "failure", input.Username, err.Error())
		return model.CreatedCredential{}, err
	}

	slog.Info("credential created", "username", input.Username, "auth_level", input.Role, "is_active", *input.IsActive)
	s.logAudit(ctx, "credential.create", actor, "success", input.Username, "")

	return model.CreatedCredential{AuthKey: input.AuthKey, Rows: rows}, nil
}

// IssueToken verifies the auth key for username and returns a signed session
// token. Unknown users and wrong keys produce the same error.
func (s *CredentialService) IssueToken(ctx context.Context, actor model.AuditActor, username string, authKey string) (string, error) {
	actor.Username = username

	credential, err := s.store.FindByUsername(ctx, username)
	if errors.Is(err, model.ErrCredentialNotFound) {
		// Burn the same bcrypt work as a real comparison.
		s.hasher.Verify(ctx, authKey, s.decoy)
		s.logAudit(ctx, "token.issue", actor, "failure", username, model.ErrInvalidCredentials.Error())
		return "", model.ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}

	if !s.hasher.Verify(ctx, authKey, credential.AuthKeyHash) {
		s.logAudit(ctx, "token.issue", actor, "failure", username, model.ErrInvalidCredentials.Error())
		return "", model.ErrInvalidCredentials
	}
	if !credential.IsActive {
		s.logAudit(ctx, "token.issue", actor, "failure", username, model.ErrAccountDeactivated.Error())
		return "", model.ErrAccountDeactivated
	}

	token, _, err := s.tokens.Issue(credential.Username, credential.Role)
	if err != nil {
		return "", err
	}

	actor.Role = credential.Role
	s.logAudit(ctx, "token.issue", actor, "success", username, "")
	return token, nil
}

func (s *CredentialService) HashAuthKey(ctx context.Context, authKey string) (string, error) {
	return s.hasher.Hash(ctx, authKey)
}

func (s *CredentialService) logAudit(ctx context.Context, action string, actor model.AuditActor, status string, resource string, errText string) {
	if s.audit == nil {
		return
	}
	s.audit.Log(ctx, action, actor, status, resource, errText)
}

func applyCredentialDefaults(input model.NewCredential) (model.NewCredential, error) {
	input.Username = strings.TrimSpace(input.Username)
	if input.Username == "" {
		return input, fmt.Errorf("%w: username is required", model.ErrInvalidInput)
	}

	if input.AuthKey == "" {
		key, err := GenerateAuthKey()
		if err != nil {
			return input, err
		}
		input.AuthKey = key
	}

	input.Role = strings.TrimSpace(input.Role)
	if input.Role == "" {
		input.Role = model.RoleBusiness
	}

	if input.IsActive == nil {
		active := true
		input.IsActive = &active
	}

	return input, nil
}

// GenerateAuthKey returns 20 random hexadecimal characters.
func GenerateAuthKey() (string, error) {
	buf := make([]byte, generatedAuthKeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate auth key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
