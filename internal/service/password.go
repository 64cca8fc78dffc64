package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"

	"forecast-vintage-api/internal/model"
)

const DefaultBcryptCost = 10

// PasswordHasher hashes and verifies auth keys with bcrypt. Every call runs
// while holding one of a bounded number of slots so hashing bursts cannot
// occupy every scheduler thread.
type PasswordHasher struct {
	cost  int
	slots *semaphore.Weighted
}

func NewPasswordHasher(cost int, concurrency int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}

	return &PasswordHasher{cost: cost, slots: semaphore.NewWeighted(int64(concurrency))}
}

// Hash returns a bcrypt digest with a freshly generated salt embedded in it.
func (h *PasswordHasher) Hash(ctx context.Context, secret string) (string, error) {
	if err := h.slots.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("acquire hashing slot: %w", err)
	}
	defer h.slots.Release(1)

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fmt.Errorf("%w: auth_key must be at most 72 bytes", model.ErrInvalidInput)
	}
	if err != nil {
		return "", fmt.Errorf("hash auth key: %w", err)
	}

	return string(hash), nil
}

// Verify reports whether secret matches hash. The comparison is constant
// time in the length of the digest.
func (h *PasswordHasher) Verify(ctx context.Context, secret string, hash string) bool {
	if err := h.slots.Acquire(ctx, 1); err != nil {
		return false
	}
	defer h.slots.Release(1)

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}
