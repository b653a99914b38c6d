package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
)

// correlationStore is the durable buy order to order id map.
type correlationStore struct {
	storage *Storage
}

// Save upserts the mapping and drops expired entries in the same statement.
func (c *correlationStore) Save(ctx context.Context, buyOrder string, orderID int64, ttl time.Duration) error {
	const query = `WITH purged AS (
                       DELETE FROM payment_correlations WHERE expires_at <= NOW()
                   )
                   INSERT INTO payment_correlations (buy_order, order_id, expires_at)
                   VALUES ($1, $2, NOW() + make_interval(secs => $3))
                   ON CONFLICT (buy_order) DO UPDATE
                   SET order_id = EXCLUDED.order_id, expires_at = EXCLUDED.expires_at`
	_, err := c.storage.pool.Exec(ctx, query, buyOrder, orderID, ttl.Seconds())
	return err
}

// Take consumes a live mapping.
func (c *correlationStore) Take(ctx context.Context, buyOrder string) (int64, error) {
	const query = `DELETE FROM payment_correlations WHERE buy_order=$1 AND expires_at > NOW() RETURNING order_id`
	var orderID int64
	if err := c.storage.pool.QueryRow(ctx, query, buyOrder).Scan(&orderID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domainErrors.ErrNotFound
		}
		return 0, err
	}
	return orderID, nil
}
