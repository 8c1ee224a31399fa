// Package events carries material order change notifications from the API
// to the worker over SQS.
package events

import (
	"time"

	"github.com/imrishuroy/go-material-orders/internal/materialorders"
)

// Event types
const (
	TypeCreated = "material_order.created"
	TypeUpdated = "material_order.updated"
	TypeDeleted = "material_order.deleted"
)

// Event is the payload sent from API -> SQS -> Worker.
type Event struct {
	Type       string    `json:"type"`
	OrderID    string    `json:"order_id"`
	MaterialID string    `json:"material_id,omitempty"`
	Status     string    `json:"status,omitempty"`
	TotalPrice float64   `json:"total_price"`
	OccurredAt time.Time `json:"occurred_at"`
	RequestID  string    `json:"request_id,omitempty"`
}

// New describes a change to o.
func New(eventType string, o *materialorders.MaterialOrder, now time.Time) Event {
	return Event{
		Type:       eventType,
		OrderID:    o.ID,
		MaterialID: o.MaterialID,
		Status:     o.Status,
		TotalPrice: o.TotalPrice,
		OccurredAt: now.UTC(),
	}
}
