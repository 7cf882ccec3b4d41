package license

import (
	"net/http"

	"github.com/afilo-dev/pricing-api/internal/common"
)

// Handler serves the read-only license catalog.
type Handler struct{}

type listItem struct {
	LicenseType     string  `json:"licenseType"`
	MaxSeats        int     `json:"maxSeats"`
	PriceMultiplier float64 `json:"priceMultiplier"`
}

// List returns every license definition so storefront clients render tiers
// from the server table instead of shipping their own copy.
func (Handler) List(w http.ResponseWriter, _ *http.Request) {
	defs := All()
	items := make([]listItem, 0, len(defs))
	for _, def := range defs {
		multiplier, _ := def.PriceMultiplier.Float64()
		items = append(items, listItem{
			LicenseType:     string(def.Type),
			MaxSeats:        def.MaxSeats,
			PriceMultiplier: multiplier,
		})
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": items})
}
