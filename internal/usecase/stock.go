package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// StockLedger reserves and releases product stock. Each mutation is a per product
// compare-and-set in the repository, so concurrent reservations never oversell.
type StockLedger struct {
	products repository.ProductRepository
	logger   *slog.Logger
}

// NewStockLedger constructs StockLedger.
func NewStockLedger(products repository.ProductRepository, logger *slog.Logger) *StockLedger {
	return &StockLedger{products: products, logger: logger}
}

// Reserve decrements available stock iff at least qty units remain.
func (l *StockLedger) Reserve(ctx context.Context, productID int64, qty int) error {
	if qty < 1 {
		return domainErrors.Validation("quantity must be at least 1")
	}
	return l.products.DecrementStock(ctx, productID, qty)
}

// Release returns qty units of a prior reservation.
func (l *StockLedger) Release(ctx context.Context, productID int64, qty int) error {
	if qty < 1 {
		return domainErrors.Validation("quantity must be at least 1")
	}
	return l.products.IncrementStock(ctx, productID, qty)
}

// ReserveAll reserves every line in order. When a line fails, the lines reserved
// before it are released before the error is returned.
func (l *StockLedger) ReserveAll(ctx context.Context, items []model.OrderItem) error {
	for k, item := range items {
		if err := l.Reserve(ctx, item.ProductID, item.Quantity); err != nil {
			if rbErr := l.ReleaseAll(context.WithoutCancel(ctx), items[:k]); rbErr != nil {
				return errors.Join(err, fmt.Errorf("rollback reservation: %w", rbErr))
			}
			return err
		}
	}
	return nil
}

// ReleaseAll releases every line, attempting all of them even when some fail.
func (l *StockLedger) ReleaseAll(ctx context.Context, items []model.OrderItem) error {
	var errs []error
	for _, item := range items {
		if err := l.Release(ctx, item.ProductID, item.Quantity); err != nil {
			l.logger.Error("stock release failed",
				slog.Int64("product_id", item.ProductID),
				slog.Int("quantity", item.Quantity),
				slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
