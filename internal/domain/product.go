package domain

import "time"

// Product is a catalog entry: a base apparel item the storefront sells.
type Product struct {
	ID           string    `json:"id"`
	SKU          string    `json:"sku"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	PriceCents   int64     `json:"priceCents"`
	Image        string    `json:"image,omitempty"`
	Sizes        []string  `json:"sizes,omitempty"`
	Colors       []string  `json:"colors,omitempty"`
	Customizable bool      `json:"customizable"`
	CreatedAt    time.Time `json:"createdAt"`
}
