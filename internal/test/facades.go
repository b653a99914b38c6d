package test

import (
	"context"
	"sync"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// StorefrontFacadeStub provides controllable behaviour for every HTTP facing operation.
// Unset functions return a zero value result without error.
type StorefrontFacadeStub struct {
	TokenParserStub

	CreateOrderFn       func(context.Context, model.Identity, model.CheckoutRequest) (*model.Order, error)
	OrdersFn            func(context.Context, model.Identity) ([]model.Order, error)
	OrderFn             func(context.Context, model.Identity, int64) (*model.Order, error)
	UpdateOrderStatusFn func(context.Context, model.Identity, int64, model.StatusChange) (*model.Order, error)
	CancelOrderFn       func(context.Context, model.Identity, int64) (*model.Order, error)
	CreateTransactionFn func(context.Context, model.Identity, int64) (*model.TransactionInit, error)
	HandleCallbackFn    func(context.Context, model.GatewayCallback) model.CallbackResult
	PaymentStatusFn     func(context.Context, model.Identity, int64) (*model.PaymentView, error)
	RefundFn            func(context.Context, model.Identity, int64, *int64) (*model.RefundResult, error)
	SettingsFn          func(context.Context, model.Identity) ([]model.Setting, error)
	UpdateSettingFn     func(context.Context, model.Identity, string, string) (*model.Setting, error)
	HealthErr           error

	mu        sync.Mutex
	callbacks []model.GatewayCallback
}

func (s *StorefrontFacadeStub) CreateOrder(ctx context.Context, id model.Identity, req model.CheckoutRequest) (*model.Order, error) {
	if s.CreateOrderFn != nil {
		return s.CreateOrderFn(ctx, id, req)
	}
	return &model.Order{ID: 1, UserID: id.UserID, Status: model.OrderStatusPending}, nil
}

func (s *StorefrontFacadeStub) Orders(ctx context.Context, id model.Identity) ([]model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, id)
	}
	return nil, nil
}

func (s *StorefrontFacadeStub) Order(ctx context.Context, id model.Identity, orderID int64) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, id, orderID)
	}
	return &model.Order{ID: orderID, UserID: id.UserID}, nil
}

func (s *StorefrontFacadeStub) UpdateOrderStatus(ctx context.Context, id model.Identity, orderID int64, change model.StatusChange) (*model.Order, error) {
	if s.UpdateOrderStatusFn != nil {
		return s.UpdateOrderStatusFn(ctx, id, orderID, change)
	}
	return &model.Order{ID: orderID, Status: change.Status}, nil
}

func (s *StorefrontFacadeStub) CancelOrder(ctx context.Context, id model.Identity, orderID int64) (*model.Order, error) {
	if s.CancelOrderFn != nil {
		return s.CancelOrderFn(ctx, id, orderID)
	}
	return &model.Order{ID: orderID, Status: model.OrderStatusCancelled}, nil
}

func (s *StorefrontFacadeStub) CreateTransaction(ctx context.Context, id model.Identity, orderID int64) (*model.TransactionInit, error) {
	if s.CreateTransactionFn != nil {
		return s.CreateTransactionFn(ctx, id, orderID)
	}
	return &model.TransactionInit{OrderID: orderID}, nil
}

// HandleCallback records every normalized callback it receives.
func (s *StorefrontFacadeStub) HandleCallback(ctx context.Context, cb model.GatewayCallback) model.CallbackResult {
	s.mu.Lock()
	s.callbacks = append(s.callbacks, cb)
	s.mu.Unlock()
	if s.HandleCallbackFn != nil {
		return s.HandleCallbackFn(ctx, cb)
	}
	return model.CallbackResult{Outcome: model.CallbackFailed, Code: model.CodeOrderNotFound}
}

// Callbacks returns a copy of the recorded callbacks.
func (s *StorefrontFacadeStub) Callbacks() []model.GatewayCallback {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.GatewayCallback(nil), s.callbacks...)
}

func (s *StorefrontFacadeStub) PaymentStatus(ctx context.Context, id model.Identity, orderID int64) (*model.PaymentView, error) {
	if s.PaymentStatusFn != nil {
		return s.PaymentStatusFn(ctx, id, orderID)
	}
	return &model.PaymentView{OrderID: orderID}, nil
}

func (s *StorefrontFacadeStub) Refund(ctx context.Context, id model.Identity, orderID int64, amount *int64) (*model.RefundResult, error) {
	if s.RefundFn != nil {
		return s.RefundFn(ctx, id, orderID, amount)
	}
	return &model.RefundResult{OrderID: orderID, Success: true}, nil
}

func (s *StorefrontFacadeStub) Settings(ctx context.Context, id model.Identity) ([]model.Setting, error) {
	if s.SettingsFn != nil {
		return s.SettingsFn(ctx, id)
	}
	return nil, nil
}

func (s *StorefrontFacadeStub) UpdateSetting(ctx context.Context, id model.Identity, key, value string) (*model.Setting, error) {
	if s.UpdateSettingFn != nil {
		return s.UpdateSettingFn(ctx, id, key, value)
	}
	return &model.Setting{Key: key, Value: value}, nil
}

func (s *StorefrontFacadeStub) HealthCheck(context.Context) error {
	return s.HealthErr
}
