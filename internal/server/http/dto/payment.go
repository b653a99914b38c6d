package dto

import (
	"time"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// TransactionResponse carries what the browser needs to reach the gateway form.
type TransactionResponse struct {
	OrderID     int64  `json:"order_id"`
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
	BuyOrder    string `json:"buy_order"`
	SessionID   string `json:"session_id"`
	Amount      int64  `json:"amount"`
}

// GatewayStatusResponse is the live gateway view of a pending transaction.
type GatewayStatusResponse struct {
	Status            string `json:"status"`
	ResponseCode      int    `json:"response_code"`
	AuthorizationCode string `json:"authorization_code,omitempty"`
	Amount            int64  `json:"amount"`
	BuyOrder          string `json:"buy_order,omitempty"`
}

// PaymentStatusResponse describes the payment state of an order.
type PaymentStatusResponse struct {
	OrderID       int64                  `json:"order_id"`
	OrderStatus   string                 `json:"order_status"`
	IsPaid        bool                   `json:"is_paid"`
	PaidAt        *time.Time             `json:"paid_at,omitempty"`
	Total         int64                  `json:"total"`
	PaymentMethod string                 `json:"payment_method"`
	PaymentResult model.PaymentResult    `json:"payment_result"`
	Gateway       *GatewayStatusResponse `json:"gateway,omitempty"`
}

// RefundRequest optionally narrows a refund to a partial amount.
type RefundRequest struct {
	Amount *int64 `json:"amount,omitempty"`
}

// RefundResponse describes a completed refund.
type RefundResponse struct {
	OrderID  int64  `json:"order_id"`
	Success  bool   `json:"success"`
	RefundID string `json:"refund_id"`
	Amount   int64  `json:"amount"`
}
