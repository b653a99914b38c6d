package handlers

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// AuthFacade resolves bearer tokens into caller identities.
type AuthFacade interface {
	ParseToken(token string) (model.Identity, error)
}

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	CreateOrder(ctx context.Context, id model.Identity, req model.CheckoutRequest) (*model.Order, error)
	Orders(ctx context.Context, id model.Identity) ([]model.Order, error)
	Order(ctx context.Context, id model.Identity, orderID int64) (*model.Order, error)
	UpdateOrderStatus(ctx context.Context, id model.Identity, orderID int64, change model.StatusChange) (*model.Order, error)
	CancelOrder(ctx context.Context, id model.Identity, orderID int64) (*model.Order, error)
}

// PaymentFacade provides gateway payment operations.
type PaymentFacade interface {
	CreateTransaction(ctx context.Context, id model.Identity, orderID int64) (*model.TransactionInit, error)
	HandleCallback(ctx context.Context, cb model.GatewayCallback) model.CallbackResult
	PaymentStatus(ctx context.Context, id model.Identity, orderID int64) (*model.PaymentView, error)
	Refund(ctx context.Context, id model.Identity, orderID int64, amount *int64) (*model.RefundResult, error)
}

// ConfigFacade exposes system settings to operators.
type ConfigFacade interface {
	Settings(ctx context.Context, id model.Identity) ([]model.Setting, error)
	UpdateSetting(ctx context.Context, id model.Identity, key, value string) (*model.Setting, error)
}

// HealthFacade reports dependency health.
type HealthFacade interface {
	HealthCheck(ctx context.Context) error
}

// StorefrontFacade aggregates the full set of operations used across handlers.
type StorefrontFacade interface {
	AuthFacade
	OrderFacade
	PaymentFacade
	ConfigFacade
	HealthFacade
}
