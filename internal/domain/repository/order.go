package repository

import (
	"context"
	"time"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
//
// Every mutating method is a compare-and-set on the stored row so that
// concurrent callers never apply the same transition twice.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) (*model.Order, error)
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Order, error)

	// UpdateStatus applies update only while the stored status equals from.
	UpdateStatus(ctx context.Context, id int64, from model.OrderStatus, update model.StatusUpdate) (bool, error)
	// AttachTransaction overwrites the payment result of a pending unpaid order.
	AttachTransaction(ctx context.Context, id int64, result model.PaymentResult) error
	// ApplyPaymentOutcome records a confirmation on a pending unpaid order.
	// A non-nil paidAt marks the order paid and moves it to processing.
	ApplyPaymentOutcome(ctx context.Context, id int64, result model.PaymentResult, paidAt *time.Time) (bool, error)
	// RecordRefund stores the refund sub-record unless one already exists.
	RecordRefund(ctx context.Context, id int64, refund model.Refund) (bool, error)

	FindByBuyOrder(ctx context.Context, buyOrder string) (int64, error)
	FindByPaymentToken(ctx context.Context, token string) (int64, error)
	FindLatestPendingGateway(ctx context.Context, since time.Time) (int64, error)
}
