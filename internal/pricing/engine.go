// Package pricing implements the server-side price reconciliation engine.
// Given submitted cart lines and an authoritative variant snapshot it
// recomputes every line from trusted data and reports discrepancies against
// the client-submitted prices instead of gating on the first mismatch.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/afilo-dev/pricing-api/internal/license"
)

// Line is one submitted cart line. ClientPrice is the line total the client
// claims to have computed; it is never trusted, only compared.
type Line struct {
	ProductID       string
	VariantID       string
	Quantity        int
	LicenseType     license.Type
	EducationalTier string
	ClientPrice     decimal.Decimal
}

// Key identifies a product/variant pair in the authoritative snapshot.
type Key struct {
	ProductID string
	VariantID string
}

// Variant is the authoritative price record for one product variant.
type Variant struct {
	ProductID string
	VariantID string
	BasePrice decimal.Decimal
}

// Totals aggregates the server-computed monetary components. Values stay
// unrounded through accumulation; rounding happens at serialization.
type Totals struct {
	Subtotal            decimal.Decimal
	EducationalDiscount decimal.Decimal
	Tax                 decimal.Decimal
	Total               decimal.Decimal
}

// Discrepancy records one client/server price mismatch beyond tolerance.
type Discrepancy struct {
	ItemID      string
	Field       string
	ClientValue decimal.Decimal
	ServerValue decimal.Decimal
}

// Result is the outcome of one validation run.
type Result struct {
	Valid         bool
	Totals        Totals
	Discrepancies []Discrepancy
}

// SeatLimitError indicates a quantity above the license seat cap. A breach
// fails the request rather than silently clamping.
type SeatLimitError struct {
	ProductID string
	Quantity  int
	MaxSeats  int
}

func (e *SeatLimitError) Error() string {
	return fmt.Sprintf("quantity %d exceeds seat limit %d for product %s", e.Quantity, e.MaxSeats, e.ProductID)
}

// MissingVariantError indicates a line whose product/variant pair is absent
// from the authoritative snapshot. One unverifiable line invalidates the
// whole cart, so this aborts the request.
type MissingVariantError struct {
	Key Key
}

func (e *MissingVariantError) Error() string {
	return fmt.Sprintf("product %s variant %s not found", e.Key.ProductID, e.Key.VariantID)
}

// DefaultTolerance is the absolute comparison tolerance in currency units.
var DefaultTolerance = decimal.RequireFromString("0.01")

// Engine computes authoritative totals and reconciles client prices.
// The zero value uses DefaultTolerance.
type Engine struct {
	Tolerance decimal.Decimal
}

func (e Engine) tolerance() decimal.Decimal {
	if e.Tolerance.IsPositive() {
		return e.Tolerance
	}
	return DefaultTolerance
}

// Validate recomputes every line from the authoritative snapshot and the
// static tables, accumulates totals, applies regional tax, and collects
// discrepancies. Structural failures (unknown license, seat cap, missing
// variant) abort with an error; price mismatches never do.
//
// Per-line computation order is fixed because it affects stacking semantics:
// multiplier, then bulk discount, then educational discount, then tax on the
// aggregate.
func (e Engine) Validate(lines []Line, variants map[Key]Variant, region string) (Result, error) {
	tolerance := e.tolerance()

	var (
		subtotal      decimal.Decimal
		eduDiscount   decimal.Decimal
		discrepancies []Discrepancy
	)

	for _, line := range lines {
		def, err := license.Resolve(line.LicenseType)
		if err != nil {
			return Result{}, err
		}
		if line.Quantity > def.MaxSeats {
			return Result{}, &SeatLimitError{ProductID: line.ProductID, Quantity: line.Quantity, MaxSeats: def.MaxSeats}
		}

		key := Key{ProductID: line.ProductID, VariantID: line.VariantID}
		variant, ok := variants[key]
		if !ok {
			return Result{}, &MissingVariantError{Key: key}
		}

		unitPrice := variant.BasePrice.Mul(def.PriceMultiplier)

		lineSubtotal := unitPrice
		if line.Quantity > 1 {
			bulkRate := license.BulkDiscountRate(line.Quantity)
			qty := decimal.NewFromInt(int64(line.Quantity))
			lineSubtotal = unitPrice.Mul(qty).Mul(decimal.NewFromInt(1).Sub(bulkRate))
		}

		lineEduDiscount := lineSubtotal.Mul(license.EducationalRate(line.EducationalTier))
		lineFinal := lineSubtotal.Sub(lineEduDiscount)

		subtotal = subtotal.Add(lineFinal)
		eduDiscount = eduDiscount.Add(lineEduDiscount)

		if line.ClientPrice.Sub(lineFinal).Abs().GreaterThan(tolerance) {
			discrepancies = append(discrepancies, Discrepancy{
				ItemID:      line.ProductID,
				Field:       "price",
				ClientValue: line.ClientPrice,
				ServerValue: lineFinal,
			})
		}
	}

	tax := subtotal.Mul(license.TaxRate(region))

	return Result{
		Valid: len(discrepancies) == 0,
		Totals: Totals{
			Subtotal:            subtotal,
			EducationalDiscount: eduDiscount,
			Tax:                 tax,
			Total:               subtotal.Add(tax),
		},
		Discrepancies: discrepancies,
	}, nil
}
