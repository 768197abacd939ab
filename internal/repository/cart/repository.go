package cart

import (
	"context"

	"genwear/internal/domain"
)

// Repository stores one cart document per customer. Writes replace the full
// item list; there is no server-side merge.
type Repository interface {
	GetItems(ctx context.Context, customerID string) ([]domain.CartLine, error)
	ReplaceItems(ctx context.Context, customerID string, items []domain.CartLine) error
}
