package app

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
	pkgAuth "github.com/polkiloo/storefront/internal/pkg/auth"
	"github.com/polkiloo/storefront/internal/usecase"
)

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// StorefrontFacade is the single entry point the HTTP layer talks to.
type StorefrontFacade struct {
	orders   *usecase.OrderUseCase
	payments *usecase.PaymentUseCase
	settings *usecase.ConfigProvider
	tokens   pkgAuth.Strategy
	health   HealthChecker
}

// NewStorefrontFacade constructs StorefrontFacade.
func NewStorefrontFacade(
	orders *usecase.OrderUseCase,
	payments *usecase.PaymentUseCase,
	settings *usecase.ConfigProvider,
	tokens pkgAuth.Strategy,
	health HealthChecker,
) *StorefrontFacade {
	return &StorefrontFacade{orders: orders, payments: payments, settings: settings, tokens: tokens, health: health}
}

func (f *StorefrontFacade) ParseToken(token string) (model.Identity, error) {
	return f.tokens.ParseToken(token)
}

func (f *StorefrontFacade) CreateOrder(ctx context.Context, id model.Identity, req model.CheckoutRequest) (*model.Order, error) {
	return f.orders.Create(ctx, id, req)
}

func (f *StorefrontFacade) Orders(ctx context.Context, id model.Identity) ([]model.Order, error) {
	return f.orders.List(ctx, id)
}

func (f *StorefrontFacade) Order(ctx context.Context, id model.Identity, orderID int64) (*model.Order, error) {
	return f.orders.Get(ctx, id, orderID)
}

func (f *StorefrontFacade) UpdateOrderStatus(ctx context.Context, id model.Identity, orderID int64, change model.StatusChange) (*model.Order, error) {
	return f.orders.UpdateStatus(ctx, id, orderID, change)
}

func (f *StorefrontFacade) CancelOrder(ctx context.Context, id model.Identity, orderID int64) (*model.Order, error) {
	return f.orders.Cancel(ctx, id, orderID)
}

func (f *StorefrontFacade) CreateTransaction(ctx context.Context, id model.Identity, orderID int64) (*model.TransactionInit, error) {
	return f.payments.CreateTransaction(ctx, id, orderID)
}

func (f *StorefrontFacade) HandleCallback(ctx context.Context, cb model.GatewayCallback) model.CallbackResult {
	return f.payments.HandleCallback(ctx, cb)
}

func (f *StorefrontFacade) PaymentStatus(ctx context.Context, id model.Identity, orderID int64) (*model.PaymentView, error) {
	return f.payments.Status(ctx, id, orderID)
}

func (f *StorefrontFacade) Refund(ctx context.Context, id model.Identity, orderID int64, amount *int64) (*model.RefundResult, error) {
	return f.payments.Refund(ctx, id, orderID, amount)
}

func (f *StorefrontFacade) Settings(ctx context.Context, id model.Identity) ([]model.Setting, error) {
	return f.settings.Settings(ctx, id)
}

func (f *StorefrontFacade) UpdateSetting(ctx context.Context, id model.Identity, key, value string) (*model.Setting, error) {
	return f.settings.UpdateSetting(ctx, id, key, value)
}

func (f *StorefrontFacade) HealthCheck(ctx context.Context) error {
	return f.health.HealthCheck(ctx)
}
