package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// Gateway is the wire level client of the external card payment gateway.
type Gateway interface {
	CreateTransaction(ctx context.Context, req model.TransactionRequest) (*model.Transaction, error)
	ConfirmTransaction(ctx context.Context, token string) (*model.Confirmation, error)
	TransactionStatus(ctx context.Context, token string) (*model.Confirmation, error)
	Refund(ctx context.Context, token string, amount int64) (*model.RefundOutcome, error)
}

// PaymentUseCase creates, confirms and refunds gateway transactions for orders.
type PaymentUseCase struct {
	orders     repository.OrderRepository
	users      repository.UserRepository
	gateway    Gateway
	correlator *Correlator
	notifier   Notifier
	returnURL  string
	logger     *slog.Logger
	now        func() time.Time
}

// PaymentParams groups PaymentUseCase collaborators.
type PaymentParams struct {
	Orders     repository.OrderRepository
	Users      repository.UserRepository
	Gateway    Gateway
	Correlator *Correlator
	Notifier   Notifier
	ReturnURL  string
	Logger     *slog.Logger
}

// NewPaymentUseCase constructs PaymentUseCase.
func NewPaymentUseCase(p PaymentParams) *PaymentUseCase {
	return &PaymentUseCase{
		orders:     p.Orders,
		users:      p.Users,
		gateway:    p.Gateway,
		correlator: p.Correlator,
		notifier:   p.Notifier,
		returnURL:  p.ReturnURL,
		logger:     p.Logger,
		now:        time.Now,
	}
}

// CreateTransaction opens a gateway transaction for an unpaid order of the caller.
// A repeated call overwrites the pending payment result instead of adding one.
func (u *PaymentUseCase) CreateTransaction(ctx context.Context, id model.Identity, orderID int64) (*model.TransactionInit, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	switch {
	case !order.OwnedBy(id):
		return nil, domainErrors.ErrUnauthorized
	case order.IsPaid():
		return nil, domainErrors.ErrAlreadyPaid
	case !order.UsesGateway():
		return nil, domainErrors.ErrWrongPaymentMethod
	case order.Status != model.OrderStatusPending:
		return nil, domainErrors.ErrInvalidTransition
	}

	now := u.now()
	req := model.TransactionRequest{
		BuyOrder:  BuyOrder(strconv.FormatInt(order.ID, 10), now),
		SessionID: SessionID(strconv.FormatInt(order.UserID, 10), now),
		Amount:    order.Total,
		ReturnURL: u.returnURL,
	}

	tx, err := u.gateway.CreateTransaction(ctx, req)
	if err != nil {
		u.logger.Error("gateway transaction creation failed",
			slog.Int64("order_id", order.ID),
			slog.String("buy_order", req.BuyOrder),
			slog.String("error", err.Error()))
		return nil, err
	}

	result := model.PaymentResult{
		Token:     tx.Token,
		BuyOrder:  req.BuyOrder,
		SessionID: req.SessionID,
		Status:    model.PaymentStatusPending,
		Amount:    req.Amount,
	}
	if err := u.orders.AttachTransaction(ctx, order.ID, result); err != nil {
		return nil, fmt.Errorf("persist payment result: %w", err)
	}
	if err := u.correlator.Register(ctx, req.BuyOrder, order.ID); err != nil {
		return nil, fmt.Errorf("register correlation: %w", err)
	}

	u.logger.Info("gateway transaction created",
		slog.Int64("order_id", order.ID),
		slog.String("buy_order", req.BuyOrder),
		slog.Int64("amount", req.Amount))

	return &model.TransactionInit{
		OrderID:     order.ID,
		Token:       tx.Token,
		RedirectURL: tx.RedirectURL(),
		BuyOrder:    req.BuyOrder,
		SessionID:   req.SessionID,
		Amount:      req.Amount,
	}, nil
}

// HandleCallback resolves, confirms and applies a gateway callback. It never
// returns an error: every failure is encoded in the result for the browser redirect.
// Callbacks for a paid order, or one no longer pending, never reach the gateway.
func (u *PaymentUseCase) HandleCallback(ctx context.Context, cb model.GatewayCallback) model.CallbackResult {
	if cb.Token == "" {
		if cb.Aborted() {
			u.logger.Info("payment aborted by customer or gateway",
				slog.String("aborted_token", cb.AbortedToken),
				slog.String("buy_order", cb.BuyOrder),
				slog.String("session_id", cb.SessionID))
			return model.CallbackResult{Outcome: model.CallbackFailed, Code: model.CodePaymentAborted}
		}
		u.logger.Warn("payment callback without token")
		return model.CallbackResult{Outcome: model.CallbackFailed, Code: model.CodeMissingToken}
	}

	resolution, err := u.correlator.Resolve(ctx, cb)
	if err != nil {
		return model.CallbackResult{Outcome: model.CallbackFailed, Code: model.CodeOrderNotFound}
	}

	order, err := u.orders.GetByID(ctx, resolution.OrderID)
	if err != nil {
		u.logger.Error("correlated order could not be loaded",
			slog.Int64("order_id", resolution.OrderID),
			slog.String("error", err.Error()))
		return model.CallbackResult{Outcome: model.CallbackFailed, Code: model.CodeOrderNotFound}
	}
	if order.IsPaid() {
		u.logger.Info("duplicate payment callback ignored", slog.Int64("order_id", order.ID))
		return model.CallbackResult{Outcome: model.CallbackApproved, OrderID: order.ID}
	}
	if order.Status == model.OrderStatusCancelled {
		u.logger.Warn("payment callback for cancelled order not confirmed", slog.Int64("order_id", order.ID))
		return model.CallbackResult{Outcome: model.CallbackFailed, OrderID: order.ID, Code: model.CodeOrderCancelled}
	}
	if order.Status != model.OrderStatusPending {
		u.logger.Warn("payment callback for order past pending not confirmed",
			slog.Int64("order_id", order.ID),
			slog.String("status", string(order.Status)))
		return model.CallbackResult{Outcome: model.CallbackFailed, OrderID: order.ID, Code: model.CodeOrderNotPending}
	}

	conf, err := u.gateway.ConfirmTransaction(ctx, cb.Token)
	if err != nil {
		if errors.Is(err, domainErrors.ErrGatewayTimeout) {
			u.logger.Warn("gateway confirmation timed out, payment unconfirmed",
				slog.Int64("order_id", order.ID),
				slog.String("error", err.Error()))
			return model.CallbackResult{Outcome: model.CallbackPending, OrderID: order.ID}
		}
		u.logger.Error("gateway confirmation failed",
			slog.Int64("order_id", order.ID),
			slog.String("error", err.Error()))
		return model.CallbackResult{Outcome: model.CallbackFailed, OrderID: order.ID, Code: model.CodeGatewayError}
	}

	return u.applyConfirmation(ctx, order, cb.Token, conf)
}

func (u *PaymentUseCase) applyConfirmation(ctx context.Context, order *model.Order, token string, conf *model.Confirmation) model.CallbackResult {
	if conf.Amount != order.Total {
		u.logger.Error("confirmed amount differs from order total",
			slog.Int64("order_id", order.ID),
			slog.Int64("confirmed", conf.Amount),
			slog.Int64("total", order.Total))
	}

	responseCode := conf.ResponseCode
	result := model.PaymentResult{
		Token:              token,
		BuyOrder:           firstNonEmpty(conf.BuyOrder, order.PaymentResult.BuyOrder),
		SessionID:          firstNonEmpty(conf.SessionID, order.PaymentResult.SessionID),
		Status:             model.PaymentStatusRejected,
		AuthorizationCode:  conf.AuthorizationCode,
		Amount:             conf.Amount,
		ResponseCode:       &responseCode,
		CardNumber:         conf.CardNumber,
		PaymentTypeCode:    conf.PaymentTypeCode,
		InstallmentsNumber: conf.InstallmentsNumber,
		InstallmentsAmount: conf.InstallmentsAmount,
		TransactionDate:    conf.TransactionDate,
	}

	var paidAt *time.Time
	if conf.IsApproved {
		now := u.now()
		paidAt = &now
		result.Status = model.PaymentStatusApproved
	}

	applied, err := u.orders.ApplyPaymentOutcome(ctx, order.ID, result, paidAt)
	if err != nil {
		u.logger.Error("payment outcome could not be stored",
			slog.Int64("order_id", order.ID),
			slog.String("status", string(result.Status)),
			slog.String("error", err.Error()))
		return model.CallbackResult{Outcome: model.CallbackFailed, OrderID: order.ID, Code: model.CodeGatewayError}
	}
	if !applied {
		current, err := u.orders.GetByID(ctx, order.ID)
		if err == nil && current.IsPaid() {
			u.logger.Info("concurrent callback already settled order", slog.Int64("order_id", order.ID))
			return model.CallbackResult{Outcome: model.CallbackApproved, OrderID: order.ID}
		}
		u.logger.Warn("payment outcome not applied, order left pending state", slog.Int64("order_id", order.ID))
	}

	if !conf.IsApproved {
		u.logger.Info("payment rejected",
			slog.Int64("order_id", order.ID),
			slog.Int("response_code", conf.ResponseCode))
		return model.CallbackResult{
			Outcome:      model.CallbackRejected,
			OrderID:      order.ID,
			Code:         model.CodePaymentRejected,
			ResponseCode: &responseCode,
		}
	}
	if !applied {
		return model.CallbackResult{Outcome: model.CallbackFailed, OrderID: order.ID, Code: model.CodeGatewayError}
	}

	u.logger.Info("payment approved",
		slog.Int64("order_id", order.ID),
		slog.String("authorization_code", conf.AuthorizationCode))

	order.Status = model.OrderStatusProcessing
	order.PaidAt = paidAt
	order.PaymentResult = result
	if user, err := u.users.GetByID(ctx, order.UserID); err == nil {
		u.notifier.OrderStatusChanged(ctx, order, user)
	} else {
		u.logger.Warn("notification skipped: owner lookup failed",
			slog.Int64("order_id", order.ID),
			slog.String("error", err.Error()))
	}
	return model.CallbackResult{Outcome: model.CallbackApproved, OrderID: order.ID}
}

// Status returns the payment state of an order to its owner or an operator.
// A live transaction is additionally queried at the gateway on a best effort basis.
func (u *PaymentUseCase) Status(ctx context.Context, id model.Identity, orderID int64) (*model.PaymentView, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !id.CanAccess(order) {
		return nil, domainErrors.ErrForbidden
	}

	view := &model.PaymentView{
		OrderID:     order.ID,
		OrderStatus: order.Status,
		IsPaid:      order.IsPaid(),
		PaidAt:      order.PaidAt,
		Total:       order.Total,
		Method:      order.PaymentMethod,
		Result:      order.PaymentResult,
	}
	if order.UsesGateway() && order.PaymentResult.Live() {
		conf, err := u.gateway.TransactionStatus(ctx, order.PaymentResult.Token)
		if err != nil {
			u.logger.Warn("gateway status lookup failed",
				slog.Int64("order_id", order.ID),
				slog.String("error", err.Error()))
		} else {
			view.Gateway = conf
		}
	}
	return view, nil
}

// Refund reverses a paid gateway transaction. The operation is idempotent per
// order: an existing refund record is returned without calling the gateway.
// A nil amount refunds the full total.
func (u *PaymentUseCase) Refund(ctx context.Context, id model.Identity, orderID int64, amount *int64) (*model.RefundResult, error) {
	if !id.IsAdmin() {
		return nil, domainErrors.ErrForbidden
	}

	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.UsesGateway() {
		return nil, domainErrors.ErrWrongPaymentMethod
	}
	if !order.IsPaid() || order.PaymentResult.Token == "" {
		return nil, domainErrors.ErrNotPaid
	}
	if existing := order.PaymentResult.Refund; existing != nil {
		return refundResult(order.ID, existing), nil
	}

	value := order.Total
	if amount != nil {
		if *amount <= 0 || *amount > order.Total {
			return nil, domainErrors.Validation("refund amount must be between 1 and %d", order.Total)
		}
		value = *amount
	}

	outcome, err := u.gateway.Refund(ctx, order.PaymentResult.Token, value)
	if err != nil {
		u.logger.Error("gateway refund failed",
			slog.Int64("order_id", order.ID),
			slog.String("error", err.Error()))
		return nil, err
	}
	if !outcome.Success {
		detail := fmt.Sprintf("refund declined (type %s)", outcome.Type)
		if outcome.ResponseCode != nil {
			detail += fmt.Sprintf(", response code %d", *outcome.ResponseCode)
		}
		u.logger.Error("gateway refund declined", slog.Int64("order_id", order.ID), slog.String("detail", detail))
		return nil, &domainErrors.GatewayError{Op: "refund", Detail: detail}
	}

	refundID := outcome.AuthorizationCode
	if refundID == "" {
		refundID = uuid.NewString()
	}
	refunded := value
	if outcome.NullifiedAmount > 0 {
		refunded = outcome.NullifiedAmount
	}
	record := model.Refund{
		ID:                refundID,
		Type:              outcome.Type,
		Amount:            refunded,
		AuthorizationCode: outcome.AuthorizationCode,
		ResponseCode:      outcome.ResponseCode,
		Balance:           outcome.Balance,
		RefundedAt:        u.now(),
	}

	recorded, err := u.orders.RecordRefund(ctx, order.ID, record)
	if err != nil {
		return nil, fmt.Errorf("persist refund: %w", err)
	}
	if !recorded {
		current, err := u.orders.GetByID(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		if current.PaymentResult.Refund != nil {
			return refundResult(order.ID, current.PaymentResult.Refund), nil
		}
	}

	u.logger.Info("payment refunded",
		slog.Int64("order_id", order.ID),
		slog.String("refund_id", refundID),
		slog.Int64("amount", refunded))
	return refundResult(order.ID, &record), nil
}

func refundResult(orderID int64, r *model.Refund) *model.RefundResult {
	return &model.RefundResult{OrderID: orderID, Success: true, RefundID: r.ID, Amount: r.Amount}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
