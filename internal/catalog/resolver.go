package catalog

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/afilo-dev/pricing-api/internal/obs"
	"github.com/afilo-dev/pricing-api/internal/pricing"
)

// VariantSource is the batched lookup the resolver draws from.
type VariantSource interface {
	VariantsByProducts(ctx context.Context, productIDs []string) ([]pricing.Variant, error)
}

// Resolver deduplicates requested products, consults the cache, and fetches
// the remainder from the source in one batched call. A fetch failure fails
// the whole resolution; partially authoritative pricing is unsafe to trust.
type Resolver struct {
	Source VariantSource
	Cache  *Cache
}

type cacheEntry struct {
	Variants []pricing.Variant `json:"variants"`
}

func cacheKey(productID string) string {
	return "catalog:variants:" + productID
}

// Resolve returns the authoritative snapshot for the requested keys. Keys
// whose product/variant pair does not exist are simply absent from the map;
// the caller decides what a missing entry means.
func (r Resolver) Resolve(ctx context.Context, keys []pricing.Key) (map[pricing.Key]pricing.Variant, error) {
	if r.Source == nil {
		return nil, fmt.Errorf("catalog: source not configured")
	}

	seen := make(map[string]struct{}, len(keys))
	var productIDs []string
	for _, key := range keys {
		if _, ok := seen[key.ProductID]; ok {
			continue
		}
		seen[key.ProductID] = struct{}{}
		productIDs = append(productIDs, key.ProductID)
	}
	sort.Strings(productIDs)

	snapshot := make(map[pricing.Key]pricing.Variant, len(keys))
	var missing []string
	for _, id := range productIDs {
		var entry cacheEntry
		hit, err := r.Cache.GetJSON(ctx, cacheKey(id), &entry)
		if err != nil || !hit {
			// Cache trouble degrades to a source fetch, never a failure.
			missing = append(missing, id)
			continue
		}
		for _, v := range entry.Variants {
			snapshot[pricing.Key{ProductID: v.ProductID, VariantID: v.VariantID}] = v
		}
	}

	if len(missing) == 0 {
		return snapshot, nil
	}

	start := time.Now()
	fetched, err := r.Source.VariantsByProducts(ctx, missing)
	if obs.ResolverLatency != nil {
		obs.ResolverLatency.Observe(obs.DurationMillis(time.Since(start)))
	}
	if err != nil {
		return nil, fmt.Errorf("fetch variants: %w", err)
	}

	byProduct := make(map[string][]pricing.Variant, len(missing))
	for _, v := range fetched {
		snapshot[pricing.Key{ProductID: v.ProductID, VariantID: v.VariantID}] = v
		byProduct[v.ProductID] = append(byProduct[v.ProductID], v)
	}
	for id, variants := range byProduct {
		_ = r.Cache.SetJSON(ctx, cacheKey(id), cacheEntry{Variants: variants})
	}
	return snapshot, nil
}
