package usecase

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// Notifier is the outbound notification port. Calls are fire-and-forget:
// implementations log their own failures and never block the caller.
type Notifier interface {
	OrderCreated(ctx context.Context, order *model.Order, user *model.User)
	OrderStatusChanged(ctx context.Context, order *model.Order, user *model.User)
}
