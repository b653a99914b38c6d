package gateway

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/usecase"
)

// Module exposes the gateway client to the fx graph.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (usecase.Gateway, error) {
	return NewHTTPClient(Options{
		BaseURL:      p.Config.GatewayBaseURL,
		CommerceCode: p.Config.GatewayCommerceCode,
		APIKey:       p.Config.GatewayAPIKey,
		Timeout:      p.Config.GatewayTimeout,
		RPS:          p.Config.GatewayRPS,
	}, p.Logger)
}
