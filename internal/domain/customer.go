package domain

import "time"

// Customer represents a registered storefront account.
type Customer struct {
	ID              string           `json:"id"`
	Email           string           `json:"email"`
	PasswordHash    string           `json:"-"`
	FirstName       string           `json:"firstName,omitempty"`
	LastName        string           `json:"lastName,omitempty"`
	Points          int64            `json:"points"`
	ShippingAddress *ShippingAddress `json:"shippingAddress,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
}
