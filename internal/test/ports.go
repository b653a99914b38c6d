package test

import (
	"context"
	"fmt"
	"sync"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// RefundCall records a gateway refund request.
type RefundCall struct {
	Token  string
	Amount int64
}

// GatewayStub simulates the payment gateway with overridable behaviour.
type GatewayStub struct {
	mu        sync.Mutex
	CreateFn  func(context.Context, model.TransactionRequest) (*model.Transaction, error)
	ConfirmFn func(context.Context, string) (*model.Confirmation, error)
	StatusFn  func(context.Context, string) (*model.Confirmation, error)
	RefundFn  func(context.Context, string, int64) (*model.RefundOutcome, error)

	Created   []model.TransactionRequest
	Confirmed []string
	Refunds   []RefundCall
}

// CreateTransaction returns a sequential token unless overridden.
func (g *GatewayStub) CreateTransaction(ctx context.Context, req model.TransactionRequest) (*model.Transaction, error) {
	g.mu.Lock()
	g.Created = append(g.Created, req)
	n := len(g.Created)
	g.mu.Unlock()
	if g.CreateFn != nil {
		return g.CreateFn(ctx, req)
	}
	return &model.Transaction{Token: fmt.Sprintf("tok-%d", n), URL: "https://gateway.test/init"}, nil
}

// ConfirmTransaction delegates to ConfirmFn or approves a zero amount.
func (g *GatewayStub) ConfirmTransaction(ctx context.Context, token string) (*model.Confirmation, error) {
	g.mu.Lock()
	g.Confirmed = append(g.Confirmed, token)
	g.mu.Unlock()
	if g.ConfirmFn != nil {
		return g.ConfirmFn(ctx, token)
	}
	return &model.Confirmation{Status: "AUTHORIZED", IsApproved: true, AuthorizationCode: "1213"}, nil
}

// TransactionStatus delegates to StatusFn or reports an initialized transaction.
func (g *GatewayStub) TransactionStatus(ctx context.Context, token string) (*model.Confirmation, error) {
	if g.StatusFn != nil {
		return g.StatusFn(ctx, token)
	}
	return &model.Confirmation{Status: "INITIALIZED", ResponseCode: -1}, nil
}

// Refund delegates to RefundFn or reports a reversal.
func (g *GatewayStub) Refund(ctx context.Context, token string, amount int64) (*model.RefundOutcome, error) {
	g.mu.Lock()
	g.Refunds = append(g.Refunds, RefundCall{Token: token, Amount: amount})
	g.mu.Unlock()
	if g.RefundFn != nil {
		return g.RefundFn(ctx, token, amount)
	}
	return &model.RefundOutcome{Success: true, Type: "REVERSED"}, nil
}

// ConfirmCalls returns how many confirmations were requested.
func (g *GatewayStub) ConfirmCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.Confirmed)
}

// CreateCalls returns how many transactions were created.
func (g *GatewayStub) CreateCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.Created)
}

// RefundCalls returns how many refunds were requested.
func (g *GatewayStub) RefundCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.Refunds)
}

// NotificationRecord captures a notification request.
type NotificationRecord struct {
	Kind    string
	OrderID int64
	Status  model.OrderStatus
	UserID  int64
}

// NotifierStub records notifications.
type NotifierStub struct {
	mu      sync.Mutex
	Records []NotificationRecord
}

// OrderCreated records an order creation notification.
func (n *NotifierStub) OrderCreated(ctx context.Context, order *model.Order, user *model.User) {
	n.record("created", order, user)
}

// OrderStatusChanged records a status notification.
func (n *NotifierStub) OrderStatusChanged(ctx context.Context, order *model.Order, user *model.User) {
	n.record("status_changed", order, user)
}

func (n *NotifierStub) record(kind string, order *model.Order, user *model.User) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Records = append(n.Records, NotificationRecord{Kind: kind, OrderID: order.ID, Status: order.Status, UserID: user.ID})
}

// Snapshot returns recorded notifications.
func (n *NotifierStub) Snapshot() []NotificationRecord {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]NotificationRecord(nil), n.Records...)
}

// CorrelationObserverStub counts correlation outcomes per strategy.
type CorrelationObserverStub struct {
	mu       sync.Mutex
	Resolved map[model.CorrelationStrategy]int
	Failed   int
}

// CorrelationResolved records a hit.
func (o *CorrelationObserverStub) CorrelationResolved(strategy model.CorrelationStrategy) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.Resolved == nil {
		o.Resolved = make(map[model.CorrelationStrategy]int)
	}
	o.Resolved[strategy]++
}

// CorrelationFailed records a miss.
func (o *CorrelationObserverStub) CorrelationFailed() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Failed++
}
