package model

import "fmt"

// OrderStatus describes the order lifecycle.
type OrderStatus string

// Order statuses. Each non-terminal status appears in deliveryPath or pickupPath.
const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusProcessing     OrderStatus = "processing"
	OrderStatusShipped        OrderStatus = "shipped"
	OrderStatusReadyForPickup OrderStatus = "ready_for_pickup"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

var (
	deliveryPath = []OrderStatus{OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered}
	pickupPath   = []OrderStatus{OrderStatusPending, OrderStatusProcessing, OrderStatusReadyForPickup, OrderStatusDelivered}
)

// ParseOrderStatus validates a raw status value.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch status := OrderStatus(s); status {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusReadyForPickup, OrderStatusDelivered, OrderStatusCancelled:
		return status, nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// IsTerminal reports whether no transition may leave the status.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// Cancellable reports whether cancel may be applied from the status.
func (s OrderStatus) Cancellable() bool {
	return s == OrderStatusPending || s == OrderStatusProcessing
}

// MarksDelivered reports whether entering the status sets the delivered timestamp.
func (s OrderStatus) MarksDelivered() bool {
	return s == OrderStatusDelivered || s == OrderStatusReadyForPickup
}

// CanTransition reports whether an operator may move an order from s to next.
// Moves go forward along the path of the fulfillment mode; skipping steps is allowed.
func (s OrderStatus) CanTransition(next OrderStatus, mode FulfillmentMode) bool {
	if s.IsTerminal() {
		return false
	}
	if next == OrderStatusCancelled {
		return s.Cancellable()
	}
	path := deliveryPath
	if mode == FulfillmentPickup {
		path = pickupPath
	}
	from, to := indexOf(path, s), indexOf(path, next)
	return from >= 0 && to > from
}

func indexOf(path []OrderStatus, s OrderStatus) int {
	for i, candidate := range path {
		if candidate == s {
			return i
		}
	}
	return -1
}
