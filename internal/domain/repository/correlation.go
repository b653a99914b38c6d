package repository

import (
	"context"
	"time"
)

// CorrelationStore maps a gateway buy order to the internal order id.
// Take is single use: a successful lookup removes the entry.
type CorrelationStore interface {
	Save(ctx context.Context, buyOrder string, orderID int64, ttl time.Duration) error
	Take(ctx context.Context, buyOrder string) (int64, error)
}
