package repository

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// UserRepository exposes the customer accounts the order subsystem reads.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}
