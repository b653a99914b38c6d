package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

const settingColumns = `key, value, type, category, min_value, max_value, updated_at, updated_by`

type settingsRepository struct {
	storage *Storage
}

func scanSetting(row pgx.Row) (*model.Setting, error) {
	var s model.Setting
	if err := row.Scan(&s.Key, &s.Value, &s.Type, &s.Category, &s.Min, &s.Max, &s.UpdatedAt, &s.UpdatedBy); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *settingsRepository) List(ctx context.Context) ([]model.Setting, error) {
	rows, err := r.storage.pool.Query(ctx, `SELECT `+settingColumns+` FROM system_config ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Setting
	for rows.Next() {
		s, err := scanSetting(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *settingsRepository) Get(ctx context.Context, key string) (*model.Setting, error) {
	s, err := scanSetting(r.storage.pool.QueryRow(ctx, `SELECT `+settingColumns+` FROM system_config WHERE key=$1`, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *settingsRepository) Update(ctx context.Context, key, value string, updatedBy int64) (*model.Setting, error) {
	const query = `UPDATE system_config SET value=$2, updated_by=$3, updated_at=NOW() WHERE key=$1 RETURNING ` + settingColumns
	s, err := scanSetting(r.storage.pool.QueryRow(ctx, query, key, value, updatedBy))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}
