package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	testhelpers "github.com/polkiloo/storefront/internal/test"
)

var (
	operator = model.Identity{UserID: 99, Role: model.RoleAdmin}
	customer = model.Identity{UserID: 1, Role: model.RoleCustomer}
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestConfigProvider(repo *testhelpers.SettingsRepositoryStub, ttl time.Duration) (*ConfigProvider, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	p := NewConfigProvider(repo, ttl, discardLogger())
	p.now = clock.Now
	return p, clock
}

func TestConfigProviderCachesUntilTTL(t *testing.T) {
	repo := testhelpers.NewSettingsRepositoryStub("19", "100000", "3990")
	provider, clock := newTestConfigProvider(repo, time.Minute)
	ctx := context.Background()

	cfg, err := provider.PricingConfig(ctx)
	require.NoError(t, err)
	assert.True(t, cfg.TaxRate.Equal(decimal.NewFromInt(19)))
	assert.Equal(t, int64(100000), cfg.FreeShippingThreshold)
	assert.Equal(t, int64(3990), cfg.DefaultShippingCost)

	clock.Advance(30 * time.Second)
	_, err = provider.PricingConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.Calls())

	clock.Advance(31 * time.Second)
	_, err = provider.PricingConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.Calls())
}

func TestConfigProviderFallsBackToDefaults(t *testing.T) {
	repo := testhelpers.NewSettingsRepositoryStub("abc", "-5", "3990")
	delete(repo.Items, model.SettingDefaultShippingCost)
	provider, _ := newTestConfigProvider(repo, time.Minute)

	cfg, err := provider.PricingConfig(context.Background())
	require.NoError(t, err)
	assert.True(t, cfg.TaxRate.Equal(decimal.NewFromInt(19)))
	assert.Equal(t, int64(100000), cfg.FreeShippingThreshold)
	assert.Equal(t, int64(3990), cfg.DefaultShippingCost)
}

func TestConfigProviderAcceptsFractionalTaxRate(t *testing.T) {
	repo := testhelpers.NewSettingsRepositoryStub("10.5", "50000", "1500")
	provider, _ := newTestConfigProvider(repo, time.Minute)

	rate, err := provider.TaxRate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "10.5", rate.String())

	threshold, cost, err := provider.ShippingConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(50000), threshold)
	assert.Equal(t, int64(1500), cost)
}

func TestConfigProviderPropagatesStorageError(t *testing.T) {
	repo := testhelpers.NewSettingsRepositoryStub("19", "100000", "3990")
	repo.ListErr = errors.New("db down")
	provider, _ := newTestConfigProvider(repo, time.Minute)

	_, err := provider.PricingConfig(context.Background())
	assert.ErrorIs(t, err, repo.ListErr)

	repo.ListErr = nil
	_, err = provider.PricingConfig(context.Background())
	assert.NoError(t, err)
}

func TestUpdateSettingInvalidatesCache(t *testing.T) {
	repo := testhelpers.NewSettingsRepositoryStub("19", "100000", "3990")
	provider, _ := newTestConfigProvider(repo, time.Hour)
	ctx := context.Background()

	_, err := provider.PricingConfig(ctx)
	require.NoError(t, err)

	updated, err := provider.UpdateSetting(ctx, operator, model.SettingTaxRate, "21")
	require.NoError(t, err)
	assert.Equal(t, "21", updated.Value)
	require.NotNil(t, updated.UpdatedBy)
	assert.Equal(t, operator.UserID, *updated.UpdatedBy)

	rate, err := provider.TaxRate(ctx)
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.NewFromInt(21)))
	assert.Equal(t, 2, repo.Calls())
}

func TestUpdateSettingRejections(t *testing.T) {
	repo := testhelpers.NewSettingsRepositoryStub("19", "100000", "3990")
	provider, _ := newTestConfigProvider(repo, time.Hour)
	ctx := context.Background()

	_, err := provider.UpdateSetting(ctx, customer, model.SettingTaxRate, "10")
	assert.ErrorIs(t, err, domainErrors.ErrForbidden)

	_, err = provider.UpdateSetting(ctx, operator, model.SettingTaxRate, "150")
	assert.ErrorIs(t, err, domainErrors.ErrValidation)

	_, err = provider.UpdateSetting(ctx, operator, model.SettingDefaultShippingCost, "cheap")
	assert.ErrorIs(t, err, domainErrors.ErrValidation)

	_, err = provider.UpdateSetting(ctx, operator, "unknown_key", "1")
	assert.ErrorIs(t, err, domainErrors.ErrNotFound)

	assert.Equal(t, "19", repo.Items[model.SettingTaxRate].Value)
}

func TestSettingsRequiresOperator(t *testing.T) {
	repo := testhelpers.NewSettingsRepositoryStub("19", "100000", "3990")
	provider, _ := newTestConfigProvider(repo, time.Hour)

	_, err := provider.Settings(context.Background(), customer)
	assert.ErrorIs(t, err, domainErrors.ErrForbidden)

	entries, err := provider.Settings(context.Background(), operator)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}
