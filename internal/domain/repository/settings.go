package repository

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// SettingsRepository persists typed system configuration entries.
type SettingsRepository interface {
	List(ctx context.Context) ([]model.Setting, error)
	Get(ctx context.Context, key string) (*model.Setting, error)
	Update(ctx context.Context, key, value string, updatedBy int64) (*model.Setting, error)
}
