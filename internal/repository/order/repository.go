package order

import (
	"context"

	"genwear/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error)
	SetStatus(ctx context.Context, id string, status domain.OrderStatus) error
}
