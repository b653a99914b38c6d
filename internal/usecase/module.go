package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// CallbackPath is the public route the gateway returns the browser to.
const CallbackPath = "/api/payment/callback"

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	newConfigProvider,
	newPriceEngine,
	NewStockLedger,
	NewOrderUseCase,
	newCorrelator,
	newPaymentUseCase,
)

func newConfigProvider(settings repository.SettingsRepository, cfg *config.Config, logger *slog.Logger) *ConfigProvider {
	return NewConfigProvider(settings, cfg.ConfigCacheTTL, logger)
}

func newPriceEngine(provider *ConfigProvider, products repository.ProductRepository) *PriceEngine {
	return NewPriceEngine(provider, products)
}

type correlatorParams struct {
	fx.In

	Orders   repository.OrderRepository
	Store    repository.CorrelationStore
	Cache    repository.CorrelationStore `name:"correlation_cache" optional:"true"`
	Observer CorrelationObserver         `optional:"true"`
	Config   *config.Config
	Logger   *slog.Logger
}

func newCorrelator(p correlatorParams) *Correlator {
	return NewCorrelator(CorrelatorParams{
		Orders:          p.Orders,
		Store:           p.Store,
		Cache:           p.Cache,
		Observer:        p.Observer,
		TTL:             p.Config.CorrelationTTL,
		HeuristicWindow: p.Config.HeuristicWindow,
		Logger:          p.Logger,
	})
}

type paymentParams struct {
	fx.In

	Orders     repository.OrderRepository
	Users      repository.UserRepository
	Gateway    Gateway
	Correlator *Correlator
	Notifier   Notifier
	Config     *config.Config
	Logger     *slog.Logger
}

func newPaymentUseCase(p paymentParams) *PaymentUseCase {
	return NewPaymentUseCase(PaymentParams{
		Orders:     p.Orders,
		Users:      p.Users,
		Gateway:    p.Gateway,
		Correlator: p.Correlator,
		Notifier:   p.Notifier,
		ReturnURL:  p.Config.PublicBaseURL + CallbackPath,
		Logger:     p.Logger,
	})
}
