package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type DiagnosticRepository struct {
	pool *pgxpool.Pool
}

func NewDiagnosticRepository(pool *pgxpool.Pool) *DiagnosticRepository {
	return &DiagnosticRepository{pool: pool}
}

// Echo round-trips value through the database.
func (r *DiagnosticRepository) Echo(ctx context.Context, value string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT $1::text AS col1`, value)
	if err != nil {
		return nil, fmt.Errorf("echo query: %w", err)
	}
	defer rows.Close()

	out := make([]string, 0, 1)
	for rows.Next() {
		var col string
		if err := rows.Scan(&col); err != nil {
			return nil, fmt.Errorf("scan echo row: %w", err)
		}
		out = append(out, col)
	}
	return out, rows.Err()
}

func (r *DiagnosticRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
