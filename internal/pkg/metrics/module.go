package metrics

import (
	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/usecase"
)

// Module provides the registry and binds it as the correlation observer.
var Module = fx.Provide(
	New,
	func(r *Registry) usecase.CorrelationObserver { return r },
)
