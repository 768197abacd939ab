package sequence

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository hands out monotonically increasing values per named sequence.
// The upsert is atomic, so concurrent callers never see the same value.
type Repository interface {
	Next(ctx context.Context, name string) (int64, error)
}

// base is the first value any sequence yields.
const base = 1001

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Next(ctx context.Context, name string) (int64, error) {
	const q = `
INSERT INTO sequences (name, last_value, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (name)
DO UPDATE SET last_value = sequences.last_value + 1, updated_at = NOW()
RETURNING last_value
`
	var v int64
	if err := r.pool.QueryRow(ctx, q, name, base).Scan(&v); err != nil {
		return 0, fmt.Errorf("next sequence %q: %w", name, err)
	}
	return v, nil
}
