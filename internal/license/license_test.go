package license_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/afilo-dev/pricing-api/internal/license"
)

func TestResolveKnownTypes(t *testing.T) {
	for _, typ := range []license.Type{
		license.TypePersonal,
		license.TypeCommercial,
		license.TypeExtended,
		license.TypeEnterprise,
		license.TypeDeveloper,
		license.TypeFree,
	} {
		def, err := license.Resolve(typ)
		require.NoError(t, err, "type %s", typ)
		require.Equal(t, typ, def.Type)
		require.Positive(t, def.MaxSeats)
		require.False(t, def.PriceMultiplier.IsNegative())
	}
}

func TestResolveUnknownType(t *testing.T) {
	_, err := license.Resolve(license.Type("Platinum"))
	require.Error(t, err)
	var unknown *license.UnknownTypeError
	require.True(t, errors.As(err, &unknown))
	require.Contains(t, unknown.Error(), "Platinum")
}

func TestBulkDiscountBreakpoints(t *testing.T) {
	cases := []struct {
		quantity int
		want     string
	}{
		{0, "0"},
		{1, "0"},
		{2, "0"},
		{4, "0"},
		{5, "0.10"},
		{9, "0.10"},
		{10, "0.20"},
		{11, "0.20"},
		{500, "0.20"},
	}
	for _, tc := range cases {
		got := license.BulkDiscountRate(tc.quantity)
		require.True(t, got.Equal(decimal.RequireFromString(tc.want)), "quantity %d: got %s", tc.quantity, got)
	}
}

func TestBulkDiscountMonotonic(t *testing.T) {
	prev := decimal.Zero
	for q := 1; q <= 50; q++ {
		rate := license.BulkDiscountRate(q)
		require.True(t, rate.GreaterThanOrEqual(prev), "rate decreased at quantity %d", q)
		prev = rate
	}
}

func TestEducationalRateUnknownTierIsZero(t *testing.T) {
	for _, tier := range []string{"", "alumni", "STUDENT", "Student ", "n/a"} {
		require.True(t, license.EducationalRate(tier).IsZero(), "tier %q", tier)
	}
	require.True(t, license.EducationalRate("student").Equal(decimal.RequireFromString("0.30")))
	require.True(t, license.EducationalRate("teacher").Equal(decimal.RequireFromString("0.25")))
	require.True(t, license.EducationalRate("institution").Equal(decimal.RequireFromString("0.40")))
}

func TestTaxRateFallsBackToDefault(t *testing.T) {
	fallback := license.TaxRate(license.DefaultTaxRegion)
	for _, region := range []string{"ZZ", "", "us", "Mars"} {
		require.True(t, license.TaxRate(region).Equal(fallback), "region %q", region)
	}
	require.True(t, license.TaxRate("US").IsZero())
	require.True(t, license.TaxRate("CA").Equal(decimal.RequireFromString("0.13")))
}

func TestAllIsStableAndComplete(t *testing.T) {
	defs := license.All()
	require.Len(t, defs, 6)
	require.Equal(t, defs, license.All())
}
