package seed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type productSeed struct {
	SKU          string
	Name         string
	Description  string
	PriceCents   int64
	Image        string
	Sizes        []string
	Colors       []string
	Customizable bool
}

// Apply inserts basic catalog data for manual testing. It is idempotent via
// ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	apparelSizes := []string{"XS", "S", "M", "L", "XL"}

	products := []productSeed{
		{
			SKU:          "GW-TEE-CLASSIC",
			Name:         "Classic Tee",
			Description:  "Soft cotton tee, the canvas for your own designs",
			PriceCents:   2499,
			Image:        "/images/classic-tee.png",
			Sizes:        apparelSizes,
			Colors:       []string{"white", "black", "navy"},
			Customizable: true,
		},
		{
			SKU:          "GW-HOODIE-STUDIO",
			Name:         "Studio Hoodie",
			Description:  "Heavyweight fleece hoodie with print-ready front panel",
			PriceCents:   5999,
			Image:        "/images/studio-hoodie.png",
			Sizes:        apparelSizes,
			Colors:       []string{"heather", "black"},
			Customizable: true,
		},
		{
			SKU:          "GW-CAP-SNAP",
			Name:         "Snapback Cap",
			Description:  "Structured six-panel cap, one size fits most",
			PriceCents:   1899,
			Image:        "/images/snapback-cap.png",
			Sizes:        []string{"OS"},
			Colors:       []string{"black", "olive"},
			Customizable: false,
		},
	}

	for _, p := range products {
		if err := upsertProduct(ctx, pool, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.SKU, err)
		}
	}

	return nil
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, p productSeed) error {
	sizes, err := json.Marshal(p.Sizes)
	if err != nil {
		return err
	}
	colors, err := json.Marshal(p.Colors)
	if err != nil {
		return err
	}

	const q = `
INSERT INTO products (sku, name, description, price_cents, image, sizes, colors, customizable)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (sku) DO UPDATE
SET name = EXCLUDED.name,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    image = EXCLUDED.image,
    sizes = EXCLUDED.sizes,
    colors = EXCLUDED.colors,
    customizable = EXCLUDED.customizable
`
	_, err = pool.Exec(ctx, q, p.SKU, p.Name, p.Description, p.PriceCents, p.Image, sizes, colors, p.Customizable)
	return err
}
