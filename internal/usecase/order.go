package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// OrderUseCase owns the order lifecycle: creation, operator transitions and cancellation.
type OrderUseCase struct {
	orders   repository.OrderRepository
	users    repository.UserRepository
	pricing  *PriceEngine
	stock    *StockLedger
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(
	orders repository.OrderRepository,
	users repository.UserRepository,
	pricing *PriceEngine,
	stock *StockLedger,
	notifier Notifier,
	logger *slog.Logger,
) *OrderUseCase {
	return &OrderUseCase{
		orders:   orders,
		users:    users,
		pricing:  pricing,
		stock:    stock,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Create prices the cart, reserves stock and stores a pending order.
// Client submitted money fields are overridden by the computed ones.
func (u *OrderUseCase) Create(ctx context.Context, id model.Identity, req model.CheckoutRequest) (*model.Order, error) {
	if err := normalizeCheckout(&req); err != nil {
		return nil, err
	}

	user, err := u.users.GetByID(ctx, id.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, domainErrors.ErrUnauthorized
		}
		return nil, err
	}

	tier := user.PriceTier()
	pricing, err := u.pricing.Price(ctx, req.Items, tier, req.Fulfillment)
	if err != nil {
		return nil, err
	}
	u.logOverriddenPricing(id, req, pricing)

	items := pricing.Items()
	if err := u.stock.ReserveAll(ctx, items); err != nil {
		return nil, err
	}

	order := &model.Order{
		UserID:          user.ID,
		Items:           items,
		Fulfillment:     req.Fulfillment,
		ShippingAddress: req.ShippingAddress,
		PickupLocation:  req.PickupLocation,
		PaymentMethod:   req.PaymentMethod,
		OrderType:       tier.OrderType(),
		TaxRate:         pricing.TaxRate.InexactFloat64(),
		Status:          model.OrderStatusPending,
	}
	order.ApplyPricing(pricing)

	created, err := u.orders.Create(ctx, order)
	if err != nil {
		if rbErr := u.stock.ReleaseAll(context.WithoutCancel(ctx), items); rbErr != nil {
			u.logger.Error("stock rollback after failed order write", slog.String("error", rbErr.Error()))
		}
		return nil, err
	}

	u.logger.Info("order created",
		slog.Int64("order_id", created.ID),
		slog.Int64("user_id", created.UserID),
		slog.Int64("total", created.Total),
		slog.String("payment_method", string(created.PaymentMethod)))
	u.notifier.OrderCreated(ctx, created, user)
	return created, nil
}

// Get returns an order visible to the caller.
func (u *OrderUseCase) Get(ctx context.Context, id model.Identity, orderID int64) (*model.Order, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !id.CanAccess(order) {
		return nil, domainErrors.ErrForbidden
	}
	return order, nil
}

// List returns the caller's orders, newest first.
func (u *OrderUseCase) List(ctx context.Context, id model.Identity) ([]model.Order, error) {
	return u.orders.ListByUser(ctx, id.UserID)
}

// UpdateStatus applies an operator transition. Paid and delivered timestamps are
// derived from the change rather than set independently.
func (u *OrderUseCase) UpdateStatus(ctx context.Context, id model.Identity, orderID int64, change model.StatusChange) (*model.Order, error) {
	if !id.IsAdmin() {
		return nil, domainErrors.ErrForbidden
	}
	if change.Status == model.OrderStatusCancelled {
		return u.Cancel(ctx, id, orderID)
	}

	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	samePaidOnly := change.Status == order.Status && change.IsPaid != nil && !order.Status.IsTerminal()
	if !samePaidOnly && !order.Status.CanTransition(change.Status, order.Fulfillment) {
		return nil, domainErrors.ErrInvalidTransition
	}

	now := u.now()
	update := model.StatusUpdate{Status: change.Status, PaidAt: order.PaidAt, DeliveredAt: order.DeliveredAt}
	if change.IsPaid != nil && *change.IsPaid && update.PaidAt == nil {
		update.PaidAt = &now
	}
	if change.Status.MarksDelivered() && update.DeliveredAt == nil {
		update.DeliveredAt = &now
	}

	updated, err := u.transition(ctx, order, update)
	if err != nil {
		return nil, err
	}
	u.notifyStatusChanged(ctx, updated)
	return updated, nil
}

// Cancel moves a pending or processing order to cancelled and releases its stock once.
// Cancelling an already cancelled order succeeds without side effects.
func (u *OrderUseCase) Cancel(ctx context.Context, id model.Identity, orderID int64) (*model.Order, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !id.CanAccess(order) {
		return nil, domainErrors.ErrForbidden
	}
	if order.Status == model.OrderStatusCancelled {
		return order, nil
	}
	if !order.Status.Cancellable() {
		return nil, domainErrors.ErrInvalidTransition
	}

	update := model.StatusUpdate{Status: model.OrderStatusCancelled, PaidAt: order.PaidAt, DeliveredAt: order.DeliveredAt}
	applied, err := u.orders.UpdateStatus(ctx, order.ID, order.Status, update)
	if err != nil {
		return nil, err
	}
	if !applied {
		current, err := u.orders.GetByID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if current.Status == model.OrderStatusCancelled {
			return current, nil
		}
		return nil, domainErrors.ErrInvalidTransition
	}

	if err := u.stock.ReleaseAll(context.WithoutCancel(ctx), order.Items); err != nil {
		u.logger.Error("stock release after cancellation incomplete",
			slog.Int64("order_id", order.ID),
			slog.String("error", err.Error()))
	}

	order.Status = model.OrderStatusCancelled
	order.UpdatedAt = u.now()
	u.logger.Info("order cancelled", slog.Int64("order_id", order.ID), slog.Int64("by_user", id.UserID))
	u.notifyStatusChanged(ctx, order)
	return order, nil
}

func (u *OrderUseCase) transition(ctx context.Context, order *model.Order, update model.StatusUpdate) (*model.Order, error) {
	applied, err := u.orders.UpdateStatus(ctx, order.ID, order.Status, update)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, domainErrors.ErrInvalidTransition
	}

	u.logger.Info("order status changed",
		slog.Int64("order_id", order.ID),
		slog.String("from", string(order.Status)),
		slog.String("to", string(update.Status)))

	order.Status = update.Status
	order.PaidAt = update.PaidAt
	order.DeliveredAt = update.DeliveredAt
	order.UpdatedAt = u.now()
	return order, nil
}

func (u *OrderUseCase) notifyStatusChanged(ctx context.Context, order *model.Order) {
	user, err := u.users.GetByID(ctx, order.UserID)
	if err != nil {
		u.logger.Warn("notification skipped: owner lookup failed",
			slog.Int64("order_id", order.ID),
			slog.String("error", err.Error()))
		return
	}
	u.notifier.OrderStatusChanged(ctx, order, user)
}

func (u *OrderUseCase) logOverriddenPricing(id model.Identity, req model.CheckoutRequest, p model.Pricing) {
	submitted := []struct {
		field string
		value *int64
		want  int64
	}{
		{"items_subtotal", req.ItemsSubtotal, p.ItemsSubtotal},
		{"tax", req.Tax, p.Tax},
		{"shipping", req.Shipping, p.Shipping},
		{"total", req.Total, p.Total},
	}
	for _, s := range submitted {
		if s.value != nil && *s.value != s.want {
			u.logger.Debug("client pricing overridden",
				slog.Int64("user_id", id.UserID),
				slog.String("field", s.field),
				slog.Int64("submitted", *s.value),
				slog.Int64("computed", s.want))
		}
	}
}

func normalizeCheckout(req *model.CheckoutRequest) error {
	if len(req.Items) == 0 {
		return domainErrors.Validation("items must not be empty")
	}
	for i, item := range req.Items {
		if item.ProductID <= 0 {
			return domainErrors.Validation("items[%d]: product id is required", i)
		}
		if item.Quantity < 1 {
			return domainErrors.Validation("items[%d]: quantity must be at least 1", i)
		}
	}
	if !req.PaymentMethod.Valid() {
		return domainErrors.Validation("payment method %q is not supported", req.PaymentMethod)
	}
	if req.Fulfillment == "" {
		req.Fulfillment = model.FulfillmentDelivery
	}

	switch req.Fulfillment {
	case model.FulfillmentDelivery:
		addr := req.ShippingAddress
		if addr == nil || strings.TrimSpace(addr.Street) == "" || strings.TrimSpace(addr.City) == "" {
			return domainErrors.Validation("shipping address with street and city is required for delivery")
		}
		req.PickupLocation = nil
	case model.FulfillmentPickup:
		if req.PickupLocation == nil || strings.TrimSpace(req.PickupLocation.LocationID) == "" {
			return domainErrors.Validation("pickup location is required for pickup")
		}
		req.ShippingAddress = nil
	default:
		return domainErrors.Validation("fulfillment mode %q is not supported", req.Fulfillment)
	}
	return nil
}
