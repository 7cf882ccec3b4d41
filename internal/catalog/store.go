// Package catalog resolves authoritative product variant prices. The
// Postgres store is the source of truth for the duration of one validation
// request; a Redis read-through cache keeps repeated carts off the database.
package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/afilo-dev/pricing-api/internal/pricing"
)

// Store reads variant records from Postgres.
type Store struct {
	Pool *pgxpool.Pool
}

const variantsByProductsSQL = `
SELECT product_id, variant_id, base_price::text
FROM product_variants
WHERE product_id = ANY($1)
`

// VariantsByProducts returns every variant for the given product IDs in a
// single query.
func (s Store) VariantsByProducts(ctx context.Context, productIDs []string) ([]pricing.Variant, error) {
	if s.Pool == nil {
		return nil, fmt.Errorf("catalog: pool not configured")
	}
	rows, err := s.Pool.Query(ctx, variantsByProductsSQL, productIDs)
	if err != nil {
		return nil, fmt.Errorf("query variants: %w", err)
	}
	defer rows.Close()

	var variants []pricing.Variant
	for rows.Next() {
		var (
			v     pricing.Variant
			price string
		)
		if err := rows.Scan(&v.ProductID, &v.VariantID, &price); err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		v.BasePrice, err = decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("parse base price for %s/%s: %w", v.ProductID, v.VariantID, err)
		}
		variants = append(variants, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate variants: %w", err)
	}
	return variants, nil
}
