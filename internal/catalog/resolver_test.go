package catalog_test

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/afilo-dev/pricing-api/internal/catalog"
	"github.com/afilo-dev/pricing-api/internal/pricing"
)

type fakeSource struct {
	variants []pricing.Variant
	err      error
	calls    [][]string
}

func (f *fakeSource) VariantsByProducts(_ context.Context, productIDs []string) ([]pricing.Variant, error) {
	f.calls = append(f.calls, productIDs)
	if f.err != nil {
		return nil, f.err
	}
	var out []pricing.Variant
	requested := make(map[string]struct{}, len(productIDs))
	for _, id := range productIDs {
		requested[id] = struct{}{}
	}
	for _, v := range f.variants {
		if _, ok := requested[v.ProductID]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

func variant(productID, variantID, price string) pricing.Variant {
	return pricing.Variant{
		ProductID: productID,
		VariantID: variantID,
		BasePrice: decimal.RequireFromString(price),
	}
}

func TestResolveDeduplicatesProducts(t *testing.T) {
	source := &fakeSource{variants: []pricing.Variant{
		variant("p1", "v1", "10.00"),
		variant("p1", "v2", "20.00"),
		variant("p2", "v1", "30.00"),
	}}
	resolver := catalog.Resolver{Source: source}

	keys := []pricing.Key{
		{ProductID: "p2", VariantID: "v1"},
		{ProductID: "p1", VariantID: "v1"},
		{ProductID: "p1", VariantID: "v2"},
		{ProductID: "p1", VariantID: "v1"},
	}
	snapshot, err := resolver.Resolve(context.Background(), keys)
	require.NoError(t, err)

	require.Len(t, source.calls, 1)
	require.Equal(t, []string{"p1", "p2"}, source.calls[0])
	require.Len(t, snapshot, 3)
	require.True(t, snapshot[pricing.Key{ProductID: "p1", VariantID: "v2"}].BasePrice.Equal(decimal.RequireFromString("20.00")))
}

func TestResolveMissingVariantAbsentFromSnapshot(t *testing.T) {
	source := &fakeSource{variants: []pricing.Variant{variant("p1", "v1", "10.00")}}
	resolver := catalog.Resolver{Source: source}

	snapshot, err := resolver.Resolve(context.Background(), []pricing.Key{
		{ProductID: "p1", VariantID: "v1"},
		{ProductID: "p1", VariantID: "ghost"},
		{ProductID: "p9", VariantID: "v1"},
	})
	require.NoError(t, err)
	require.Len(t, snapshot, 1)
	_, ok := snapshot[pricing.Key{ProductID: "p1", VariantID: "ghost"}]
	require.False(t, ok)
}

func TestResolveUsesCacheOnSecondPass(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()

	source := &fakeSource{variants: []pricing.Variant{variant("p1", "v1", "10.00")}}
	resolver := catalog.Resolver{
		Source: source,
		Cache:  catalog.NewCache(client, time.Minute),
	}

	keys := []pricing.Key{{ProductID: "p1", VariantID: "v1"}}
	first, err := resolver.Resolve(context.Background(), keys)
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.Len(t, source.calls, 1)

	second, err := resolver.Resolve(context.Background(), keys)
	require.NoError(t, err)
	require.Len(t, second, 1)
	require.Len(t, source.calls, 1, "cached product must not hit the source again")
	require.True(t, second[keys[0]].BasePrice.Equal(decimal.RequireFromString("10.00")))
}

func TestResolveCacheFailureFallsBackToSource(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()
	mr.Close() // cache is unreachable from the start

	source := &fakeSource{variants: []pricing.Variant{variant("p1", "v1", "10.00")}}
	resolver := catalog.Resolver{
		Source: source,
		Cache:  catalog.NewCache(client, time.Minute),
	}

	snapshot, err := resolver.Resolve(context.Background(), []pricing.Key{{ProductID: "p1", VariantID: "v1"}})
	require.NoError(t, err)
	require.Len(t, snapshot, 1)
	require.Len(t, source.calls, 1)
}

func TestResolveSourceErrorFailsResolution(t *testing.T) {
	source := &fakeSource{err: errors.New("db down")}
	resolver := catalog.Resolver{Source: source}

	_, err := resolver.Resolve(context.Background(), []pricing.Key{{ProductID: "p1", VariantID: "v1"}})
	require.Error(t, err)
}

func TestResolveWithoutSource(t *testing.T) {
	_, err := catalog.Resolver{}.Resolve(context.Background(), []pricing.Key{{ProductID: "p1", VariantID: "v1"}})
	require.Error(t, err)
}
