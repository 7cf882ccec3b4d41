// Package license holds the static pricing tables: license tiers, bulk
// discount breakpoints, educational discounts, and regional tax rates.
// The server table is the source of truth; storefront clients render
// tiers from GET /api/v1/licenses rather than shipping their own copy.
package license

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Type identifies a license tier.
type Type string

const (
	TypePersonal   Type = "Personal"
	TypeCommercial Type = "Commercial"
	TypeExtended   Type = "Extended"
	TypeEnterprise Type = "Enterprise"
	TypeDeveloper  Type = "Developer"
	TypeFree       Type = "Free"
)

// Definition describes the pricing attributes of one license tier.
type Definition struct {
	Type            Type            `json:"licenseType"`
	MaxSeats        int             `json:"maxSeats"`
	PriceMultiplier decimal.Decimal `json:"priceMultiplier"`
}

// UnknownTypeError indicates a license type with no definition.
type UnknownTypeError struct {
	Type Type
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown license type %q", string(e.Type))
}

var definitions = map[Type]Definition{
	TypePersonal:   {Type: TypePersonal, MaxSeats: 5, PriceMultiplier: decimal.NewFromInt(1)},
	TypeCommercial: {Type: TypeCommercial, MaxSeats: 25, PriceMultiplier: decimal.NewFromInt(2)},
	TypeExtended:   {Type: TypeExtended, MaxSeats: 100, PriceMultiplier: decimal.RequireFromString("3.5")},
	TypeEnterprise: {Type: TypeEnterprise, MaxSeats: 500, PriceMultiplier: decimal.NewFromInt(5)},
	TypeDeveloper:  {Type: TypeDeveloper, MaxSeats: 10, PriceMultiplier: decimal.RequireFromString("1.5")},
	TypeFree:       {Type: TypeFree, MaxSeats: 1, PriceMultiplier: decimal.Zero},
}

// Resolve returns the definition for the given type.
func Resolve(t Type) (Definition, error) {
	def, ok := definitions[t]
	if !ok {
		return Definition{}, &UnknownTypeError{Type: t}
	}
	return def, nil
}

// All returns every license definition ordered by type name.
func All() []Definition {
	out := make([]Definition, 0, len(definitions))
	for _, def := range definitions {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

var (
	bulkRateSmallTeam = decimal.RequireFromString("0.10")
	bulkRateLargeTeam = decimal.RequireFromString("0.20")
)

// BulkDiscountRate returns the quantity discount rate. Breakpoints are fixed:
// no discount below 5 seats, 10% for 5-9, 20% for 10 and above.
func BulkDiscountRate(quantity int) decimal.Decimal {
	switch {
	case quantity >= 10:
		return bulkRateLargeTeam
	case quantity >= 5:
		return bulkRateSmallTeam
	default:
		return decimal.Zero
	}
}

var educationalRates = map[string]decimal.Decimal{
	"student":     decimal.RequireFromString("0.30"),
	"teacher":     decimal.RequireFromString("0.25"),
	"institution": decimal.RequireFromString("0.40"),
}

// EducationalRate returns the discount rate for an educational tier.
// Unknown or empty tiers get no discount rather than an error; a malformed
// tier silently prices at full rate.
func EducationalRate(tier string) decimal.Decimal {
	if rate, ok := educationalRates[tier]; ok {
		return rate
	}
	return decimal.Zero
}

// DefaultTaxRegion is the fallback entry applied to unknown regions.
const DefaultTaxRegion = "Default"

var taxRates = map[string]decimal.Decimal{
	"US":             decimal.Zero,
	"CA":             decimal.RequireFromString("0.13"),
	"GB":             decimal.RequireFromString("0.20"),
	"EU":             decimal.RequireFromString("0.21"),
	"AU":             decimal.RequireFromString("0.10"),
	DefaultTaxRegion: decimal.Zero,
}

// TaxRate returns the tax rate for a region, falling back to the Default entry.
func TaxRate(region string) decimal.Decimal {
	if rate, ok := taxRates[region]; ok {
		return rate
	}
	return taxRates[DefaultTaxRegion]
}
