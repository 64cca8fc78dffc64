package service

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"forecast-vintage-api/internal/model"
)

type memoryCredentialStore struct {
	mu    sync.Mutex
	rows  map[string]model.Credential
	err   error
	calls int
}

func newMemoryCredentialStore() *memoryCredentialStore {
	return &memoryCredentialStore{rows: map[string]model.Credential{}}
}

func (s *memoryCredentialStore) FindByUsername(_ context.Context, username string) (model.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return model.Credential{}, s.err
	}
	c, ok := s.rows[username]
	if !ok {
		return model.Credential{}, model.ErrCredentialNotFound
	}
	return c, nil
}

func (s *memoryCredentialStore) ExistsByUsername(_ context.Context, username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	_, ok := s.rows[username]
	return ok, nil
}

func (s *memoryCredentialStore) Create(_ context.Context, c model.Credential) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	if _, ok := s.rows[c.Username]; ok {
		return 0, model.ErrDuplicateUsername
	}
	s.rows[c.Username] = c
	return 1, nil
}

type mockAuditLogger struct {
	mock.Mock
}

func (m *mockAuditLogger) Log(_ context.Context, action string, actor model.AuditActor, status string, resource string, errText string) {
	m.Called(action, actor, status, resource, errText)
}

func newTestHasher() *PasswordHasher {
	return NewPasswordHasher(bcrypt.MinCost, 2)
}
