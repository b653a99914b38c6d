package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

var defaultPricingConfig = model.PricingConfig{
	TaxRate:               decimal.NewFromInt(19),
	FreeShippingThreshold: 100000,
	DefaultShippingCost:   3990,
}

// ConfigProvider serves the values money math depends on from a short lived cache.
type ConfigProvider struct {
	settings repository.SettingsRepository
	ttl      time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	cached  model.PricingConfig
	expires time.Time
}

// NewConfigProvider constructs ConfigProvider.
func NewConfigProvider(settings repository.SettingsRepository, ttl time.Duration, logger *slog.Logger) *ConfigProvider {
	return &ConfigProvider{settings: settings, ttl: ttl, logger: logger, now: time.Now}
}

// PricingConfig returns the cached configuration, reloading it once the TTL elapsed.
func (p *ConfigProvider) PricingConfig(ctx context.Context) (model.PricingConfig, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.expires.IsZero() && p.now().Before(p.expires) {
		return p.cached, nil
	}

	cfg, err := p.load(ctx)
	if err != nil {
		return model.PricingConfig{}, err
	}
	p.cached = cfg
	p.expires = p.now().Add(p.ttl)
	return cfg, nil
}

// TaxRate returns the current tax rate in percent.
func (p *ConfigProvider) TaxRate(ctx context.Context) (decimal.Decimal, error) {
	cfg, err := p.PricingConfig(ctx)
	return cfg.TaxRate, err
}

// ShippingConfig returns the free shipping threshold and the default shipping cost.
func (p *ConfigProvider) ShippingConfig(ctx context.Context) (int64, int64, error) {
	cfg, err := p.PricingConfig(ctx)
	return cfg.FreeShippingThreshold, cfg.DefaultShippingCost, err
}

// Invalidate drops the cached configuration.
func (p *ConfigProvider) Invalidate() {
	p.mu.Lock()
	p.expires = time.Time{}
	p.mu.Unlock()
}

// Settings lists every configuration entry for operators.
func (p *ConfigProvider) Settings(ctx context.Context, id model.Identity) ([]model.Setting, error) {
	if !id.IsAdmin() {
		return nil, domainErrors.ErrForbidden
	}
	return p.settings.List(ctx)
}

// UpdateSetting validates and stores a new value, then invalidates the cache.
func (p *ConfigProvider) UpdateSetting(ctx context.Context, id model.Identity, key, value string) (*model.Setting, error) {
	if !id.IsAdmin() {
		return nil, domainErrors.ErrForbidden
	}

	current, err := p.settings.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := current.Validate(value); err != nil {
		return nil, domainErrors.Validation("%s", err)
	}

	updated, err := p.settings.Update(ctx, key, value, id.UserID)
	if err != nil {
		return nil, err
	}
	p.Invalidate()
	p.logger.Info("system setting updated",
		slog.String("key", key),
		slog.String("value", value),
		slog.Int64("user_id", id.UserID))
	return updated, nil
}

func (p *ConfigProvider) load(ctx context.Context) (model.PricingConfig, error) {
	entries, err := p.settings.List(ctx)
	if err != nil {
		return model.PricingConfig{}, err
	}
	byKey := lo.SliceToMap(entries, func(s model.Setting) (string, string) { return s.Key, s.Value })

	cfg := defaultPricingConfig
	if v, ok := p.number(byKey, model.SettingTaxRate); ok {
		cfg.TaxRate = v
	}
	if v, ok := p.number(byKey, model.SettingFreeShippingThreshold); ok {
		cfg.FreeShippingThreshold = v.Round(0).IntPart()
	}
	if v, ok := p.number(byKey, model.SettingDefaultShippingCost); ok {
		cfg.DefaultShippingCost = v.Round(0).IntPart()
	}
	return cfg, nil
}

func (p *ConfigProvider) number(values map[string]string, key string) (decimal.Decimal, bool) {
	raw, ok := values[key]
	if !ok {
		p.logger.Warn("pricing setting missing, using default", slog.String("key", key))
		return decimal.Decimal{}, false
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		p.logger.Error("pricing setting is not a number, using default",
			slog.String("key", key),
			slog.String("value", raw),
			slog.String("error", err.Error()))
		return decimal.Decimal{}, false
	}
	if v.IsNegative() {
		p.logger.Error("pricing setting is negative, using default", slog.String("key", key))
		return decimal.Decimal{}, false
	}
	return v, true
}

// isNotFound reports whether err means the looked up entity does not exist.
func isNotFound(err error) bool {
	return errors.Is(err, domainErrors.ErrNotFound) || errors.Is(err, domainErrors.ErrOrderNotFound)
}
