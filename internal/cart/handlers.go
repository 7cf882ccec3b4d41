// Package cart exposes the cart price validation endpoint. The handler is
// the single boundary where pipeline errors become HTTP statuses; every
// failure renders the same envelope so clients need one response parser.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/afilo-dev/pricing-api/internal/common"
	"github.com/afilo-dev/pricing-api/internal/license"
	"github.com/afilo-dev/pricing-api/internal/obs"
	"github.com/afilo-dev/pricing-api/internal/pricing"
	"github.com/afilo-dev/pricing-api/internal/secevent"
)

// Resolver fetches the authoritative variant snapshot for a cart.
type Resolver interface {
	Resolve(ctx context.Context, keys []pricing.Key) (map[pricing.Key]pricing.Variant, error)
}

// Handler wires the validation pipeline to HTTP.
type Handler struct {
	Resolver  Resolver
	Engine    pricing.Engine
	Validator *validator.Validate
	Events    secevent.Recorder
}

type lineRequest struct {
	ProductID       string      `json:"productId" validate:"required"`
	VariantID       string      `json:"variantId" validate:"required"`
	Quantity        int         `json:"quantity" validate:"required,gt=0"`
	LicenseType     string      `json:"licenseType" validate:"required"`
	EducationalTier string      `json:"educationalTier"`
	ClientPrice     json.Number `json:"clientPrice"`
}

type validateRequest struct {
	Items      []lineRequest `json:"items" validate:"required,min=1,dive"`
	UserRegion string        `json:"userRegion"`
}

type totalsPayload struct {
	Subtotal            float64 `json:"subtotal"`
	EducationalDiscount float64 `json:"educationalDiscount"`
	Tax                 float64 `json:"tax"`
	Total               float64 `json:"total"`
}

type discrepancyPayload struct {
	ItemID      string  `json:"itemId"`
	Field       string  `json:"field"`
	ClientValue float64 `json:"clientValue"`
	ServerValue float64 `json:"serverValue"`
}

type validateResponse struct {
	Valid         bool                 `json:"valid"`
	ServerTotals  totalsPayload        `json:"serverTotals"`
	Discrepancies []discrepancyPayload `json:"discrepancies,omitempty"`
	Error         string               `json:"error,omitempty"`
}

// Failure writes the canonical failure envelope with zeroed totals. It is
// shared with the gate middlewares so 401 and 429 responses have the same
// shape as every other outcome.
func Failure(w http.ResponseWriter, status int, message string) {
	common.JSON(w, status, validateResponse{Valid: false, Error: message})
}

// Validate recomputes cart pricing from server-trusted data and reconciles
// it against the client-submitted prices.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserID(r.Context())
	if !ok || userID == "" {
		Failure(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var payload validateRequest
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	if err := decoder.Decode(&payload); err != nil {
		obs.ObserveValidation("malformed")
		Failure(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := h.validatePayload(payload); err != nil {
		obs.ObserveValidation("malformed")
		Failure(w, http.StatusBadRequest, err.Error())
		return
	}

	lines, appErr := buildLines(payload.Items)
	if appErr != nil {
		obs.ObserveValidation("malformed")
		Failure(w, appErr.HTTPStatus, appErr.Message)
		return
	}

	keys := make([]pricing.Key, len(lines))
	for i, line := range lines {
		keys[i] = pricing.Key{ProductID: line.ProductID, VariantID: line.VariantID}
	}
	snapshot, err := h.Resolver.Resolve(r.Context(), keys)
	if err != nil {
		obs.ObserveValidation("upstream_error")
		Failure(w, http.StatusInternalServerError, "product catalog unavailable")
		return
	}

	result, err := h.Engine.Validate(lines, snapshot, payload.UserRegion)
	if err != nil {
		h.writeEngineError(w, r, userID, err)
		return
	}

	resp := validateResponse{
		Valid: result.Valid,
		ServerTotals: totalsPayload{
			Subtotal:            round2(result.Totals.Subtotal),
			EducationalDiscount: round2(result.Totals.EducationalDiscount),
			Tax:                 round2(result.Totals.Tax),
			Total:               round2(result.Totals.Total),
		},
	}
	for _, d := range result.Discrepancies {
		resp.Discrepancies = append(resp.Discrepancies, discrepancyPayload{
			ItemID:      d.ItemID,
			Field:       d.Field,
			ClientValue: round2(d.ClientValue),
			ServerValue: round2(d.ServerValue),
		})
	}

	if result.Valid {
		obs.ObserveValidation("valid")
	} else {
		obs.ObserveValidation("discrepancy")
		obs.ObserveDiscrepancies(len(result.Discrepancies))
		h.record(r, secevent.KindPriceDiscrepancy, userID, map[string]any{
			"discrepancies": resp.Discrepancies,
			"serverTotal":   resp.ServerTotals.Total,
		})
	}

	common.JSON(w, http.StatusOK, resp)
}

func (h *Handler) validatePayload(payload validateRequest) error {
	if h.Validator != nil {
		if err := h.Validator.Struct(payload); err != nil {
			var fieldErrs validator.ValidationErrors
			if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
				return errors.New("invalid field " + namespaceOf(fieldErrs[0]))
			}
			return errors.New("invalid request")
		}
	}
	return nil
}

func namespaceOf(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		ns = ns[idx+1:]
	}
	return ns
}

func buildLines(items []lineRequest) ([]pricing.Line, *common.AppError) {
	lines := make([]pricing.Line, len(items))
	for i, item := range items {
		price, err := decimal.NewFromString(item.ClientPrice.String())
		if err != nil {
			return nil, common.ValidationError("invalid field clientPrice")
		}
		if price.IsNegative() {
			return nil, common.ValidationError("invalid field clientPrice")
		}
		lines[i] = pricing.Line{
			ProductID:       item.ProductID,
			VariantID:       item.VariantID,
			Quantity:        item.Quantity,
			LicenseType:     license.Type(item.LicenseType),
			EducationalTier: item.EducationalTier,
			ClientPrice:     price,
		}
	}
	return lines, nil
}

func (h *Handler) writeEngineError(w http.ResponseWriter, r *http.Request, userID string, err error) {
	var (
		unknownType *license.UnknownTypeError
		seatLimit   *pricing.SeatLimitError
		missing     *pricing.MissingVariantError
	)
	switch {
	case errors.As(err, &unknownType):
		obs.ObserveValidation("rejected")
		h.record(r, secevent.KindValidationRejected, userID, map[string]any{"reason": unknownType.Error()})
		Failure(w, http.StatusBadRequest, unknownType.Error())
	case errors.As(err, &seatLimit):
		obs.ObserveValidation("rejected")
		h.record(r, secevent.KindValidationRejected, userID, map[string]any{"reason": seatLimit.Error()})
		Failure(w, http.StatusBadRequest, seatLimit.Error())
	case errors.As(err, &missing):
		obs.ObserveValidation("not_found")
		Failure(w, http.StatusNotFound, missing.Error())
	default:
		obs.ObserveValidation("internal_error")
		Failure(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) record(r *http.Request, kind secevent.Kind, userID string, detail map[string]any) {
	if h.Events == nil {
		return
	}
	ev := secevent.New(kind, userID, common.ClientIP(r), detail)
	h.Events.Record(context.WithoutCancel(r.Context()), ev)
}

func round2(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
