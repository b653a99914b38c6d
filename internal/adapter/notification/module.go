package notification

import (
	"context"
	"log/slog"
	"strings"

	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
)

// Module provides the notification publisher.
var Module = fx.Provide(newPublisher)

type publisherParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

func newPublisher(p publisherParams) Publisher {
	var pub Publisher
	if len(p.Config.KafkaBrokers) == 0 {
		p.Logger.Info("kafka brokers not configured, notifications are logged")
		pub = NewLogPublisher(p.Logger)
	} else {
		p.Logger.Info("publishing notifications to kafka",
			slog.String("brokers", strings.Join(p.Config.KafkaBrokers, ",")),
			slog.String("topic", p.Config.NotificationTopic))
		pub = NewKafkaPublisher(p.Config.KafkaBrokers, p.Config.NotificationTopic)
	}
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return pub.Close()
		},
	})
	return pub
}
