package domain

import "time"

// OrderStatus is the lifecycle state of a placed order. Transitions only
// move forward; PENDING is the initial state for every order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusPaid      OrderStatus = "PAID"
	StatusShipped   OrderStatus = "SHIPPED"
	StatusDelivered OrderStatus = "DELIVERED"
)

var statusRank = map[OrderStatus]int{
	StatusPending:   0,
	StatusPaid:      1,
	StatusShipped:   2,
	StatusDelivered: 3,
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// CanTransitionTo reports whether moving from s to next is allowed.
// Setting the same status again is allowed so updates stay idempotent.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	return to >= from
}

// PaymentMethod identifies how an order was paid.
type PaymentMethod string

const (
	PaymentCard           PaymentMethod = "card"
	PaymentCashOnDelivery PaymentMethod = "cod"
)

// ShippingAddress holds the postal and contact fields collected at checkout.
type ShippingAddress struct {
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// OrderItem is a point-in-time snapshot of a cart line. It is copied at
// checkout and never mutated afterwards.
type OrderItem struct {
	ProductID  string         `json:"productId"`
	Name       string         `json:"name"`
	PriceCents int64          `json:"priceCents"`
	Image      string         `json:"image,omitempty"`
	Quantity   int            `json:"quantity"`
	Size       string         `json:"size"`
	Color      string         `json:"color,omitempty"`
	Custom     *Customization `json:"customizations,omitempty"`
}

// Order is an immutable-once-created record of a completed checkout; only
// Status may change after insert.
type Order struct {
	ID              string          `json:"orderId"`
	OrderNumber     string          `json:"orderNumber"`
	CustomerID      string          `json:"-"`
	Items           []OrderItem     `json:"items"`
	TotalCents      int64           `json:"totalCents"`
	DiscountCents   int64           `json:"discountCents,omitempty"`
	DiscountCode    string          `json:"discountCode,omitempty"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	Status          OrderStatus     `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
}
