// Package redis keeps a short lived copy of payment correlations in Redis.
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	radix "github.com/mediocregopher/radix/v3"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
)

const keyPrefix = "storefront:correlation:"

// CorrelationCache is a CorrelationStore backed by Redis string keys.
type CorrelationCache struct {
	client radix.Client
	logger *slog.Logger
}

// NewCorrelationCache wraps an existing radix client.
func NewCorrelationCache(client radix.Client, logger *slog.Logger) *CorrelationCache {
	return &CorrelationCache{client: client, logger: logger}
}

// Dial opens a connection pool to addr.
func Dial(addr string, size int, logger *slog.Logger) (*CorrelationCache, error) {
	pool, err := radix.NewPool("tcp", addr, size)
	if err != nil {
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	return NewCorrelationCache(pool, logger), nil
}

func cacheKey(buyOrder string) string {
	return keyPrefix + buyOrder
}

// Save stores the mapping with the given expiry, rounded up to a whole second.
func (c *CorrelationCache) Save(_ context.Context, buyOrder string, orderID int64, ttl time.Duration) error {
	seconds := int64((ttl + time.Second - 1) / time.Second)
	if seconds <= 0 {
		return nil
	}
	return c.client.Do(radix.FlatCmd(nil, "SETEX", cacheKey(buyOrder), seconds, orderID))
}

// Take reads and deletes the mapping atomically.
func (c *CorrelationCache) Take(_ context.Context, buyOrder string) (int64, error) {
	var orderID int64
	mn := radix.MaybeNil{Rcv: &orderID}
	if err := c.client.Do(radix.Cmd(&mn, "GETDEL", cacheKey(buyOrder))); err != nil {
		return 0, err
	}
	if mn.Nil {
		return 0, domainErrors.ErrNotFound
	}
	return orderID, nil
}

// Close releases the underlying connections.
func (c *CorrelationCache) Close() error {
	return c.client.Close()
}
