package repository

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// ProductRepository reads catalog snapshots and mutates available stock.
type ProductRepository interface {
	GetByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error)
	// DecrementStock subtracts qty iff at least qty units are available.
	DecrementStock(ctx context.Context, productID int64, qty int) error
	IncrementStock(ctx context.Context, productID int64, qty int) error
}
