package router

import (
	"log/slog"
	"strings"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/pkg/metrics"
	"github.com/polkiloo/storefront/internal/server/http/handlers"
	"github.com/polkiloo/storefront/internal/server/http/middleware"
	"github.com/polkiloo/storefront/internal/usecase"
)

const (
	apiPrefix      = "/api"
	maxDecodedBody = 1 << 20
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.StorefrontFacade, cfg *config.Config, registry *metrics.Registry, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.Metrics(registry))
	engine.Use(middleware.DecompressRequest(maxDecodedBody))
	engine.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	orderHandler := handlers.NewOrderHandler(facade)
	paymentHandler := handlers.NewPaymentHandler(facade, cfg.FrontendURL)
	configHandler := handlers.NewConfigHandler(facade)
	healthHandler := handlers.NewHealthHandler(facade)

	engine.GET("/healthz", healthHandler.Check)
	engine.GET("/metrics", gin.WrapH(registry.Handler()))

	api := engine.Group(apiPrefix)
	callback := strings.TrimPrefix(usecase.CallbackPath, apiPrefix)
	api.GET(callback, paymentHandler.Callback)
	api.POST(callback, paymentHandler.Callback)

	authed := api.Group("")
	authed.Use(middleware.AuthRequired(facade))
	authed.POST("/orders", orderHandler.Create)
	authed.GET("/orders", orderHandler.List)
	authed.GET("/orders/:id", orderHandler.Get)
	authed.PUT("/orders/:id/cancel", orderHandler.Cancel)
	authed.POST("/payment/transactions/:orderId", paymentHandler.CreateTransaction)
	authed.GET("/payment/status/:orderId", paymentHandler.Status)

	admin := authed.Group("")
	admin.Use(middleware.AdminRequired())
	admin.PUT("/orders/:id/status", orderHandler.UpdateStatus)
	admin.POST("/payment/refund/:orderId", paymentHandler.Refund)
	admin.GET("/admin/config", configHandler.List)
	admin.PUT("/admin/config/:key", configHandler.Update)

	return engine
}
