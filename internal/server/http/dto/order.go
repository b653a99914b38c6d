package dto

import (
	"time"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// CheckoutItemRequest is a cart line. UnitPrice is accepted but ignored for charging.
type CheckoutItemRequest struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice *int64 `json:"unit_price,omitempty"`
}

// CheckoutRequest describes the order creation payload.
type CheckoutRequest struct {
	Items           []CheckoutItemRequest  `json:"items"`
	Fulfillment     string                 `json:"fulfillment"`
	ShippingAddress *model.ShippingAddress `json:"shipping_address,omitempty"`
	PickupLocation  *model.PickupLocation  `json:"pickup_location,omitempty"`
	PaymentMethod   string                 `json:"payment_method"`
	ItemsSubtotal   *int64                 `json:"items_subtotal,omitempty"`
	Tax             *int64                 `json:"tax,omitempty"`
	Shipping        *int64                 `json:"shipping,omitempty"`
	Total           *int64                 `json:"total,omitempty"`
}

// OrderItemResponse is a purchased line with its frozen unit price.
type OrderItemResponse struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// OrderResponse represents an order document.
type OrderResponse struct {
	ID              int64                  `json:"id"`
	UserID          int64                  `json:"user_id"`
	Items           []OrderItemResponse    `json:"items"`
	Fulfillment     string                 `json:"fulfillment"`
	ShippingAddress *model.ShippingAddress `json:"shipping_address,omitempty"`
	PickupLocation  *model.PickupLocation  `json:"pickup_location,omitempty"`
	PaymentMethod   string                 `json:"payment_method"`
	OrderType       string                 `json:"order_type"`
	TaxRate         float64                `json:"tax_rate"`
	ItemsSubtotal   int64                  `json:"items_subtotal"`
	Tax             int64                  `json:"tax"`
	Shipping        int64                  `json:"shipping"`
	Total           int64                  `json:"total"`
	Status          string                 `json:"status"`
	IsPaid          bool                   `json:"is_paid"`
	PaidAt          *time.Time             `json:"paid_at,omitempty"`
	IsDelivered     bool                   `json:"is_delivered"`
	DeliveredAt     *time.Time             `json:"delivered_at,omitempty"`
	PaymentResult   *model.PaymentResult   `json:"payment_result,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// StatusChangeRequest is an operator transition request.
type StatusChangeRequest struct {
	Status string `json:"status"`
	IsPaid *bool  `json:"is_paid,omitempty"`
}

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error     string `json:"error"`
	ProductID int64  `json:"product_id,omitempty"`
	Available *int   `json:"available,omitempty"`
}
