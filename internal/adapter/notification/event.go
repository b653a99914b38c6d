// Package notification publishes order lifecycle events for downstream mailers.
package notification

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/currency"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// EventType names an order lifecycle event.
type EventType string

const (
	EventOrderCreated       EventType = "order.created"
	EventOrderStatusChanged EventType = "order.status_changed"
)

// Event is the JSON payload written to the notification topic.
type Event struct {
	ID          string                `json:"id"`
	Type        EventType             `json:"type"`
	OrderID     int64                 `json:"order_id"`
	UserID      int64                 `json:"user_id"`
	Email       string                `json:"email,omitempty"`
	Name        string                `json:"name,omitempty"`
	Status      model.OrderStatus     `json:"status"`
	Fulfillment model.FulfillmentMode `json:"fulfillment"`
	Paid        bool                  `json:"paid"`
	Total       int64                 `json:"total"`
	Currency    string                `json:"currency"`
	OccurredAt  time.Time             `json:"occurred_at"`
}

// NewEvent snapshots order and user. A nil user yields an event without contact data.
func NewEvent(kind EventType, order *model.Order, user *model.User, unit currency.Unit, at time.Time) Event {
	ev := Event{
		ID:          uuid.NewString(),
		Type:        kind,
		OrderID:     order.ID,
		UserID:      order.UserID,
		Status:      order.Status,
		Fulfillment: order.Fulfillment,
		Paid:        order.IsPaid(),
		Total:       order.Total,
		Currency:    unit.String(),
		OccurredAt:  at.UTC(),
	}
	if user != nil {
		ev.Email = user.Email
		ev.Name = user.Name
	}
	return ev
}
