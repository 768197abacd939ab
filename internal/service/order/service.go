package order

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"genwear/internal/domain"
)

var (
	// ErrCustomerNotFound is returned when the order's identity does not
	// resolve to a stored customer.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrInvalidStatus is returned for unknown status values.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrBackwardTransition is returned when a status update would move an
	// order backwards in its lifecycle.
	ErrBackwardTransition = errors.New("status cannot move backwards")
)

// numberPrefix plus the sequence value forms the human-readable order
// number, e.g. GW-1001.
const numberPrefix = "GW-"

// pointsDivisorCents converts an order total into loyalty points: one point
// per whole currency unit spent.
const pointsDivisorCents = 100

type orderRepo interface {
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error)
	SetStatus(ctx context.Context, id string, status domain.OrderStatus) error
}

type sequenceRepo interface {
	Next(ctx context.Context, name string) (int64, error)
}

type customerRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	AddPoints(ctx context.Context, id string, delta int64) error
}

// Service drives order creation, listing and status updates.
type Service struct {
	repo      orderRepo
	sequences sequenceRepo
	customers customerRepo
	logger    *log.Logger
}

// New creates a Service.
func New(repo orderRepo, sequences sequenceRepo, customers customerRepo, logger *log.Logger) *Service {
	return &Service{repo: repo, sequences: sequences, customers: customers, logger: logger}
}

// ItemInput is one snapshot line in an incoming order.
type ItemInput struct {
	ProductID  string                `json:"productId" validate:"required"`
	Name       string                `json:"name" validate:"required"`
	PriceCents int64                 `json:"priceCents" validate:"required,gt=0"`
	Image      string                `json:"image,omitempty"`
	Quantity   int                   `json:"quantity" validate:"required,min=1"`
	Size       string                `json:"size" validate:"required"`
	Color      string                `json:"color,omitempty"`
	Custom     *domain.Customization `json:"customizations,omitempty"`
}

// AddressInput mirrors the shipping form fields.
type AddressInput struct {
	FullName   string `json:"fullName" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone,omitempty"`
	Street     string `json:"street" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
	Country    string `json:"country" validate:"required"`
}

// CreateInput is the payload for order creation. TotalCents must equal the
// sum of line totals minus DiscountCents; a struct-level validator rule in
// internal/validation enforces that before the service runs.
type CreateInput struct {
	Items           []ItemInput  `json:"items" validate:"required,min=1,dive"`
	TotalCents      int64        `json:"totalCents" validate:"required,gt=0"`
	DiscountCents   int64        `json:"discountCents,omitempty"`
	DiscountCode    string       `json:"discountCode,omitempty"`
	ShippingAddress AddressInput `json:"shippingAddress" validate:"required"`
	PaymentMethod   string       `json:"paymentMethod" validate:"required,oneof=card cod"`
}

// Create inserts exactly one order for the customer: next sequence number,
// snapshot of the submitted items, status PENDING. Loyalty points are
// awarded afterwards on a best-effort basis.
func (s *Service) Create(ctx context.Context, customerID string, in CreateInput) (*domain.Order, error) {
	if _, err := s.customers.GetByID(ctx, customerID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}

	seq, err := s.sequences.Next(ctx, "orders")
	if err != nil {
		return nil, fmt.Errorf("next order number: %w", err)
	}

	items := make([]domain.OrderItem, 0, len(in.Items))
	for _, it := range in.Items {
		item := domain.OrderItem{
			ProductID:  it.ProductID,
			Name:       it.Name,
			PriceCents: it.PriceCents,
			Image:      it.Image,
			Quantity:   it.Quantity,
			Size:       it.Size,
			Color:      it.Color,
		}
		if it.Custom != nil {
			c := *it.Custom
			item.Custom = &c
		}
		items = append(items, item)
	}

	order := domain.Order{
		ID:            uuid.NewString(),
		OrderNumber:   fmt.Sprintf("%s%d", numberPrefix, seq),
		CustomerID:    customerID,
		Items:         items,
		TotalCents:    in.TotalCents,
		DiscountCents: in.DiscountCents,
		DiscountCode:  in.DiscountCode,
		ShippingAddress: domain.ShippingAddress{
			FullName:   in.ShippingAddress.FullName,
			Email:      in.ShippingAddress.Email,
			Phone:      in.ShippingAddress.Phone,
			Street:     in.ShippingAddress.Street,
			City:       in.ShippingAddress.City,
			PostalCode: in.ShippingAddress.PostalCode,
			Country:    in.ShippingAddress.Country,
		},
		PaymentMethod: domain.PaymentMethod(in.PaymentMethod),
		Status:        domain.StatusPending,
		CreatedAt:     time.Now().UTC(),
	}

	created, err := s.repo.Create(ctx, order)
	if err != nil {
		return nil, err
	}

	if pts := created.TotalCents / pointsDivisorCents; pts > 0 {
		if err := s.customers.AddPoints(ctx, customerID, pts); err != nil && s.logger != nil {
			s.logger.Printf("order %s: awarding %d points failed: %v", created.OrderNumber, pts, err)
		}
	}
	return created, nil
}

// List returns the customer's orders, newest first.
func (s *Service) List(ctx context.Context, customerID string) ([]domain.Order, error) {
	return s.repo.ListByCustomer(ctx, customerID)
}

// Get returns one order, scoped to its owner.
func (s *Service) Get(ctx context.Context, customerID, orderID string) (*domain.Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.CustomerID != customerID {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

// UpdateStatus idempotently sets an order's status. Re-sending the current
// status succeeds without a write; backward transitions are rejected.
func (s *Service) UpdateStatus(ctx context.Context, orderID, newStatus string) (*domain.Order, error) {
	status := domain.OrderStatus(strings.ToUpper(strings.TrimSpace(newStatus)))
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status == status {
		return o, nil
	}
	if !o.Status.CanTransitionTo(status) {
		return nil, ErrBackwardTransition
	}
	if err := s.repo.SetStatus(ctx, orderID, status); err != nil {
		return nil, err
	}
	o.Status = status
	return o, nil
}
