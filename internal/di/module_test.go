package di

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"golang.org/x/text/currency"

	"github.com/polkiloo/storefront/internal/app"
	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
	"github.com/polkiloo/storefront/internal/storage/postgres"
	"github.com/polkiloo/storefront/internal/test"
	"github.com/polkiloo/storefront/internal/usecase"
	"github.com/polkiloo/storefront/internal/worker"
)

func TestModuleComposesGraphWithReplacements(t *testing.T) {
	cfg := &config.Config{
		RunAddress:          ":0",
		DatabaseURI:         "postgres://stub",
		GatewayBaseURL:      "https://gateway.test",
		GatewayCommerceCode: "597055555532",
		GatewayAPIKey:       "secret",
		GatewayTimeout:      time.Second,
		GatewayRPS:          5,
		PublicBaseURL:       "https://shop.test",
		FrontendURL:         "https://shop.test",
		JWTSecret:           "secret",
		ConfigCacheTTL:      time.Minute,
		CorrelationTTL:      time.Hour,
		HeuristicWindow:     time.Hour,
		NotificationTopic:   "orders",
		NotificationWorkers: 1,
		NotificationQueue:   4,
		Currency:            currency.MustParseISO("CLP"),
		ShutdownTimeout:     time.Millisecond,
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	var (
		facade     *app.StorefrontFacade
		engine     *gin.Engine
		dispatcher *worker.NotificationDispatcher
		notifier   usecase.Notifier
	)
	fxApp := fx.New(
		fx.NopLogger,
		fx.Supply(context.Background()),
		Module(
			fx.Replace(cfg),
			fx.Replace(logger),
			fx.Replace(&postgres.Storage{}),
			fx.Replace(repository.UserRepository(test.NewUserRepositoryStub(&model.User{ID: 1}))),
			fx.Replace(repository.OrderRepository(test.NewOrderRepositoryStub())),
			fx.Replace(repository.ProductRepository(test.NewProductRepositoryStub())),
			fx.Replace(repository.SettingsRepository(test.NewSettingsRepositoryStub("19", "100000", "3990"))),
			fx.Replace(repository.CorrelationStore(test.NewCorrelationStoreStub())),
			fx.Replace(usecase.Gateway(&test.GatewayStub{})),
		),
		fx.Populate(&facade, &engine, &dispatcher, &notifier),
	)

	if err := fxApp.Err(); err != nil {
		t.Fatalf("fx app returned error: %v", err)
	}
	t.Cleanup(func() { _ = fxApp.Stop(context.Background()) })
	if facade == nil || engine == nil {
		t.Fatal("expected storefront facade and router instances")
	}
	if notifier != usecase.Notifier(dispatcher) {
		t.Fatal("expected the dispatcher to be bound as the usecase notifier")
	}
}
