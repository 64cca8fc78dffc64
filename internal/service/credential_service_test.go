package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"forecast-vintage-api/internal/model"
)

func newTestCredentialService(t *testing.T, store credentialStore, audit auditLogger) *CredentialService {
	t.Helper()

	tokens, err := NewTokenService(testSecret, time.Hour)
	require.NoError(t, err)

	svc, err := NewCredentialService(store, newTestHasher(), tokens, audit)
	require.NoError(t, err)
	return svc
}

func boolPtr(v bool) *bool { return &v }

func TestCredentialServiceCreateDefaults(t *testing.T) {
	t.Parallel()

	store := newMemoryCredentialStore()
	audit := &mockAuditLogger{}
	audit.On("Log", "credential.create", mock.Anything, "success", "acme", "").Once()

	svc := newTestCredentialService(t, store, audit)
	created, err := svc.Create(context.Background(), model.AuditActor{Username: "root"}, model.NewCredential{Username: "  acme "})
	require.NoError(t, err)

	assert.Len(t, created.AuthKey, 20)
	assert.Regexp(t, `^[0-9a-f]{20}$`, created.AuthKey)
	assert.EqualValues(t, 1, created.Rows)

	stored := store.rows["acme"]
	assert.Equal(t, model.RoleBusiness, stored.Role)
	assert.True(t, stored.IsActive)
	assert.NotEqual(t, created.AuthKey, stored.AuthKeyHash)
	assert.True(t, svc.hasher.Verify(context.Background(), created.AuthKey, stored.AuthKeyHash))

	audit.AssertExpectations(t)
}

func TestCredentialServiceCreateExplicitFields(t *testing.T) {
	t.Parallel()

	store := newMemoryCredentialStore()
	svc := newTestCredentialService(t, store, nil)

	created, err := svc.Create(context.Background(), model.AuditActor{}, model.NewCredential{
		Username: "ops",
		AuthKey:  "chosen-key",
		Role:     model.RoleAdmin,
		IsActive: boolPtr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "chosen-key", created.AuthKey)

	stored := store.rows["ops"]
	assert.Equal(t, model.RoleAdmin, stored.Role)
	assert.False(t, stored.IsActive)
}

func TestCredentialServiceCreateFailures(t *testing.T) {
	t.Parallel()

	t.Run("empty username", func(t *testing.T) {
		t.Parallel()
		store := newMemoryCredentialStore()
		_, err := newTestCredentialService(t, store, nil).Create(context.Background(), model.AuditActor{}, model.NewCredential{Username: " "})
		require.ErrorIs(t, err, model.ErrInvalidInput)
		assert.Zero(t, store.calls)
	})

	t.Run("duplicate username", func(t *testing.T) {
		t.Parallel()
		store := newMemoryCredentialStore()
		store.rows["acme"] = model.Credential{Username: "acme", Role: model.RoleBusiness, IsActive: true}

		audit := &mockAuditLogger{}
		audit.On("Log", "credential.create", mock.Anything, "failure", "acme", model.ErrDuplicateUsername.Error()).Once()

		_, err := newTestCredentialService(t, store, audit).Create(context.Background(), model.AuditActor{}, model.NewCredential{Username: "acme"})
		require.ErrorIs(t, err, model.ErrDuplicateUsername)
		assert.Zero(t, store.calls)
		audit.AssertExpectations(t)
	})

	t.Run("store error", func(t *testing.T) {
		t.Parallel()
		store := newMemoryCredentialStore()
		store.err = errors.New("connection reset")
		_, err := newTestCredentialService(t, store, nil).Create(context.Background(), model.AuditActor{}, model.NewCredential{Username: "acme"})
		require.EqualError(t, err, "connection reset")
	})
}

func TestCredentialServiceIssueToken(t *testing.T) {
	t.Parallel()

	store := newMemoryCredentialStore()
	svc := newTestCredentialService(t, store, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, model.AuditActor{}, model.NewCredential{Username: "acme", AuthKey: "good-key"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, model.AuditActor{}, model.NewCredential{Username: "gone", AuthKey: "good-key", IsActive: boolPtr(false)})
	require.NoError(t, err)

	t.Run("valid key", func(t *testing.T) {
		t.Parallel()
		token, err := svc.IssueToken(ctx, model.AuditActor{IP: "10.0.0.1"}, "acme", "good-key")
		require.NoError(t, err)

		identity, err := svc.tokens.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, model.Identity{Username: "acme", Role: model.RoleBusiness}, identity)
	})

	t.Run("wrong key", func(t *testing.T) {
		t.Parallel()
		_, err := svc.IssueToken(ctx, model.AuditActor{}, "acme", "bad-key")
		require.ErrorIs(t, err, model.ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		t.Parallel()
		_, err := svc.IssueToken(ctx, model.AuditActor{}, "nobody", "good-key")
		require.ErrorIs(t, err, model.ErrInvalidCredentials)
	})

	t.Run("deactivated", func(t *testing.T) {
		t.Parallel()
		_, err := svc.IssueToken(ctx, model.AuditActor{}, "gone", "good-key")
		require.ErrorIs(t, err, model.ErrAccountDeactivated)
	})

	t.Run("deactivated with wrong key hides state", func(t *testing.T) {
		t.Parallel()
		_, err := svc.IssueToken(ctx, model.AuditActor{}, "gone", "bad-key")
		require.ErrorIs(t, err, model.ErrInvalidCredentials)
	})
}

func TestCredentialServiceIssueTokenAudits(t *testing.T) {
	t.Parallel()

	store := newMemoryCredentialStore()
	audit := &mockAuditLogger{}
	audit.On("Log", "credential.create", mock.Anything, "success", "acme", "").Once()
	audit.On("Log", "token.issue", model.AuditActor{Username: "acme", Role: model.RoleBusiness, IP: "10.0.0.1"}, "success", "acme", "").Once()
	audit.On("Log", "token.issue", model.AuditActor{Username: "acme", IP: "10.0.0.1"}, "failure", "acme", model.ErrInvalidCredentials.Error()).Once()

	svc := newTestCredentialService(t, store, audit)
	ctx := context.Background()

	_, err := svc.Create(ctx, model.AuditActor{}, model.NewCredential{Username: "acme", AuthKey: "good-key"})
	require.NoError(t, err)

	_, err = svc.IssueToken(ctx, model.AuditActor{IP: "10.0.0.1"}, "acme", "good-key")
	require.NoError(t, err)
	_, err = svc.IssueToken(ctx, model.AuditActor{IP: "10.0.0.1"}, "acme", "bad-key")
	require.ErrorIs(t, err, model.ErrInvalidCredentials)

	audit.AssertExpectations(t)
}

func TestCredentialServiceDecoySurvivesCancelledLookup(t *testing.T) {
	t.Parallel()

	svc := newTestCredentialService(t, newMemoryCredentialStore(), nil)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.IssueToken(cancelled, model.AuditActor{}, "nobody", "any-key")
	require.ErrorIs(t, err, model.ErrInvalidCredentials)

	require.NotEmpty(t, svc.decoy)
	cost, err := bcrypt.Cost([]byte(svc.decoy))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)

	_, err = svc.IssueToken(context.Background(), model.AuditActor{}, "nobody", "any-key")
	require.ErrorIs(t, err, model.ErrInvalidCredentials)
	assert.NotEmpty(t, svc.decoy)
}

func TestNewCredentialServiceFailsWithoutDecoy(t *testing.T) {
	t.Parallel()

	tokens, err := NewTokenService(testSecret, time.Hour)
	require.NoError(t, err)

	hasher := newTestHasher()
	hasher.cost = bcrypt.MaxCost + 1

	_, err = NewCredentialService(newMemoryCredentialStore(), hasher, tokens, nil)
	require.Error(t, err)
}

func TestGenerateAuthKey(t *testing.T) {
	t.Parallel()

	first, err := GenerateAuthKey()
	require.NoError(t, err)
	second, err := GenerateAuthKey()
	require.NoError(t, err)

	assert.Regexp(t, `^[0-9a-f]{20}$`, first)
	assert.NotEqual(t, first, second)
}
