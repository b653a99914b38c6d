package worker

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/adapter/notification"
	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/usecase"
)

// Module provides the notification dispatcher and binds it as the usecase notifier.
var Module = fx.Provide(
	newNotificationDispatcher,
	func(d *NotificationDispatcher) usecase.Notifier { return d },
)

type dispatcherParams struct {
	fx.In

	Publisher notification.Publisher
	Config    *config.Config
	Logger    *slog.Logger
}

func newNotificationDispatcher(p dispatcherParams) *NotificationDispatcher {
	return NewNotificationDispatcher(p.Publisher, p.Config.Currency, p.Config.NotificationWorkers, p.Config.NotificationQueue, p.Logger)
}
