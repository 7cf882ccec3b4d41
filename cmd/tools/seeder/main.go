// Seeder loads a small demo catalog so the validation endpoint has
// authoritative prices to work with in development.
package main

import (
	"context"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

type variantSeed struct {
	productID string
	title     string
	variantID string
	basePrice string
}

var seeds = []variantSeed{
	{"prod-atlas", "Afilo Atlas Suite", "var-atlas-std", "100.00"},
	{"prod-atlas", "Afilo Atlas Suite", "var-atlas-pro", "250.00"},
	{"prod-forge", "Afilo Forge Toolkit", "var-forge-std", "50.00"},
	{"prod-forge", "Afilo Forge Toolkit", "var-forge-max", "120.00"},
	{"prod-nimbus", "Afilo Nimbus Platform", "var-nimbus-std", "1000.00"},
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	for _, seed := range seeds {
		if _, err := pool.Exec(ctx, `
			INSERT INTO products (id, title) VALUES ($1, $2)
			ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title
		`, seed.productID, seed.title); err != nil {
			log.Fatalf("Failed to seed product %s: %v", seed.productID, err)
		}
		if _, err := pool.Exec(ctx, `
			INSERT INTO product_variants (product_id, variant_id, base_price)
			VALUES ($1, $2, $3)
			ON CONFLICT (product_id, variant_id) DO UPDATE SET base_price = EXCLUDED.base_price
		`, seed.productID, seed.variantID, seed.basePrice); err != nil {
			log.Fatalf("Failed to seed variant %s/%s: %v", seed.productID, seed.variantID, err)
		}
	}

	log.Println("Seeding completed successfully!")
}
