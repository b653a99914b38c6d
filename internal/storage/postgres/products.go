package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

type productRepository struct {
	storage *Storage
}

func (r *productRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error) {
	result := make(map[int64]model.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	const query = `SELECT id, name, price, wholesale_price, on_sale, discount_percentage, stock
                   FROM products WHERE id = ANY($1)`
	rows, err := r.storage.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.WholesalePrice, &p.OnSale, &p.DiscountPercentage, &p.Stock); err != nil {
			return nil, err
		}
		result[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DecrementStock is a single conditional update so two buyers of the last unit
// cannot both succeed.
func (r *productRepository) DecrementStock(ctx context.Context, productID int64, qty int) error {
	const decrement = `UPDATE products SET stock = stock - $2 WHERE id=$1 AND stock >= $2 RETURNING stock`
	var remaining int
	err := r.storage.pool.QueryRow(ctx, decrement, productID, qty).Scan(&remaining)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	const available = `SELECT stock FROM products WHERE id=$1`
	var stock int
	if err := r.storage.pool.QueryRow(ctx, available, productID).Scan(&stock); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainErrors.ErrNotFound
		}
		return err
	}
	return &domainErrors.InsufficientStockError{ProductID: productID, Requested: qty, Available: stock}
}

func (r *productRepository) IncrementStock(ctx context.Context, productID int64, qty int) error {
	const query = `UPDATE products SET stock = stock + $2 WHERE id=$1`
	tag, err := r.storage.pool.Exec(ctx, query, productID, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}
