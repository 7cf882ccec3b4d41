// Package secevent records security-relevant validation outcomes for fraud
// analytics. Recording is fire-and-forget: the API enqueues events onto a
// Redis-backed task queue and a worker persists them, so a slow or broken
// sink can never block or fail a validation response.
package secevent

import (
	"time"

	"github.com/google/uuid"
)

// Kind classifies a security event.
type Kind string

const (
	// KindPriceDiscrepancy is emitted when a cart line price mismatched
	// beyond tolerance.
	KindPriceDiscrepancy Kind = "price_discrepancy"
	// KindValidationRejected is emitted for structural rejections such as
	// unknown license types or seat cap breaches.
	KindValidationRejected Kind = "validation_rejected"
	// KindRateLimited is emitted when an identity exceeds its quota.
	KindRateLimited Kind = "rate_limited"
)

// Event is one recorded security observation.
type Event struct {
	ID         string         `json:"id"`
	Kind       Kind           `json:"kind"`
	UserID     string         `json:"userId,omitempty"`
	ClientIP   string         `json:"clientIp,omitempty"`
	Detail     map[string]any `json:"detail,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
}

// New builds an event with a fresh ID and timestamp.
func New(kind Kind, userID, clientIP string, detail map[string]any) Event {
	return Event{
		ID:         uuid.NewString(),
		Kind:       kind,
		UserID:     userID,
		ClientIP:   clientIP,
		Detail:     detail,
		OccurredAt: time.Now().UTC(),
	}
}
