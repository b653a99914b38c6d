package model

import (
	"net/url"
	"time"
)

// PaymentStatus is the gateway outcome recorded on an order.
type PaymentStatus string

const (
	PaymentStatusNone     PaymentStatus = ""
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusApproved PaymentStatus = "approved"
	PaymentStatusRejected PaymentStatus = "rejected"
)

// PaymentResult is the gateway correlation record embedded in an order.
// At most one live transaction is kept; retries overwrite it.
type PaymentResult struct {
	Token              string        `json:"id,omitempty"`
	BuyOrder           string        `json:"buy_order,omitempty"`
	SessionID          string        `json:"session_id,omitempty"`
	Status             PaymentStatus `json:"status,omitempty"`
	AuthorizationCode  string        `json:"authorization_code,omitempty"`
	Amount             int64         `json:"amount,omitempty"`
	ResponseCode       *int          `json:"response_code,omitempty"`
	CardNumber         string        `json:"card_number,omitempty"`
	PaymentTypeCode    string        `json:"payment_type_code,omitempty"`
	InstallmentsNumber int           `json:"installments_number,omitempty"`
	InstallmentsAmount int64         `json:"installments_amount,omitempty"`
	TransactionDate    *time.Time    `json:"transaction_date,omitempty"`
	Refund             *Refund       `json:"refund,omitempty"`
}

// Live reports whether a transaction was created and awaits confirmation.
func (p PaymentResult) Live() bool {
	return p.Token != "" && p.Status == PaymentStatusPending
}

// Refund records a completed refund or annulment.
type Refund struct {
	ID                string    `json:"id"`
	Type              string    `json:"type"`
	Amount            int64     `json:"amount"`
	AuthorizationCode string    `json:"authorization_code,omitempty"`
	ResponseCode      *int      `json:"response_code,omitempty"`
	Balance           int64     `json:"balance,omitempty"`
	RefundedAt        time.Time `json:"refunded_at"`
}

// TransactionRequest is sent to the gateway to open a transaction.
type TransactionRequest struct {
	BuyOrder  string
	SessionID string
	Amount    int64
	ReturnURL string
}

// Transaction is the gateway response to a creation request.
type Transaction struct {
	Token string
	URL   string
}

// RedirectURL is the address the browser must visit with the token attached.
func (t Transaction) RedirectURL() string {
	u, err := url.Parse(t.URL)
	if err != nil {
		return t.URL + "?token_ws=" + url.QueryEscape(t.Token)
	}
	q := u.Query()
	q.Set("token_ws", t.Token)
	u.RawQuery = q.Encode()
	return u.String()
}

// TransactionInit is returned to the client to start the browser redirect.
type TransactionInit struct {
	OrderID     int64
	Token       string
	RedirectURL string
	BuyOrder    string
	SessionID   string
	Amount      int64
}

// Confirmation is the normalized gateway outcome for a token.
type Confirmation struct {
	BuyOrder           string
	SessionID          string
	Amount             int64
	Status             string
	AuthorizationCode  string
	ResponseCode       int
	IsApproved         bool
	CardNumber         string
	PaymentTypeCode    string
	InstallmentsNumber int
	InstallmentsAmount int64
	TransactionDate    *time.Time
}

// RefundOutcome is the normalized gateway refund response.
type RefundOutcome struct {
	Success           bool
	Type              string
	AuthorizationCode string
	ResponseCode      *int
	NullifiedAmount   int64
	Balance           int64
}

// RefundResult is returned to the operator requesting a refund.
type RefundResult struct {
	OrderID  int64
	Success  bool
	RefundID string
	Amount   int64
}

// PaymentView is the payment state of an order as shown to its owner.
type PaymentView struct {
	OrderID     int64
	OrderStatus OrderStatus
	IsPaid      bool
	PaidAt      *time.Time
	Total       int64
	Method      PaymentMethod
	Result      PaymentResult
	Gateway     *Confirmation
}

// GatewayCallback is the canonical payload of a gateway return request,
// independent of the HTTP verb it arrived with.
type GatewayCallback struct {
	Token        string
	AbortedToken string
	BuyOrder     string
	SessionID    string
}

// Aborted reports whether the customer cancelled or the gateway timed out the form.
func (c GatewayCallback) Aborted() bool {
	return c.Token == "" && (c.AbortedToken != "" || c.BuyOrder != "")
}

// CallbackOutcome classifies how a callback was resolved.
type CallbackOutcome string

const (
	CallbackApproved CallbackOutcome = "approved"
	CallbackRejected CallbackOutcome = "rejected"
	CallbackPending  CallbackOutcome = "pending"
	CallbackFailed   CallbackOutcome = "failed"
)

// Diagnostic codes carried to the failure page.
const (
	CodeOrderNotFound   = "ORDER_NOT_FOUND"
	CodeMissingToken    = "MISSING_TOKEN"
	CodePaymentAborted  = "PAYMENT_ABORTED"
	CodeGatewayError    = "GATEWAY_ERROR"
	CodePaymentRejected = "PAYMENT_REJECTED"
	CodeOrderCancelled  = "ORDER_CANCELLED"
	CodeOrderNotPending = "ORDER_NOT_PENDING"
)

// CallbackResult tells the HTTP layer where to send the browser.
type CallbackResult struct {
	Outcome      CallbackOutcome
	OrderID      int64
	Code         string
	ResponseCode *int
}

// CorrelationStrategy names the step of the correlator that resolved a callback.
type CorrelationStrategy string

const (
	StrategyCorrelationStore CorrelationStrategy = "correlation_store"
	StrategyStructuralParse  CorrelationStrategy = "structural_parse"
	StrategyBuyOrderLookup   CorrelationStrategy = "buy_order_lookup"
	StrategyTokenLookup      CorrelationStrategy = "token_lookup"
	StrategyHeuristic        CorrelationStrategy = "heuristic"
)

// Resolution is the order a callback was attributed to.
type Resolution struct {
	OrderID  int64
	Strategy CorrelationStrategy
}
