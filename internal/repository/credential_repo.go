package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"forecast-vintage-api/internal/model"
)

const uniqueViolation = "23505"

type CredentialRepository struct {
	pool *pgxpool.Pool
}

func NewCredentialRepository(pool *pgxpool.Pool) *CredentialRepository {
	return &CredentialRepository{pool: pool}
}

func (r *CredentialRepository) FindByUsername(ctx context.Context, username string) (model.Credential, error) {
	var c model.Credential
	err := r.pool.QueryRow(ctx,
		`SELECT username, auth_key, auth_level, is_active
		 FROM api_v1_credentials
		 WHERE username = $1::text
		 LIMIT 1`, username).
		Scan(&c.Username, &c.AuthKeyHash, &c.Role, &c.IsActive)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Credential{}, model.ErrCredentialNotFound
	}
	if err != nil {
		return model.Credential{}, fmt.Errorf("find credential by username: %w", err)
	}
	return c, nil
}

func (r *CredentialRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM api_v1_credentials WHERE username = $1::text)`,
		username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check username exists: %w", err)
	}
	return exists, nil
}

// Create inserts one credential row and reports the number of rows written.
func (r *CredentialRepository) Create(ctx context.Context, c model.Credential) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO api_v1_credentials (username, auth_key, auth_level, is_active)
		 VALUES ($1, $2, $3, $4)`,
		c.Username, c.AuthKeyHash, c.Role, c.IsActive)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, model.ErrDuplicateUsername
		}
		return 0, fmt.Errorf("create credential: %w", err)
	}
	return tag.RowsAffected(), nil
}
