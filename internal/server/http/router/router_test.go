package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/domain/model"
	pkgAuth "github.com/polkiloo/storefront/internal/pkg/auth"
	"github.com/polkiloo/storefront/internal/pkg/metrics"
	"github.com/polkiloo/storefront/internal/server/http/handlers"
	testhelpers "github.com/polkiloo/storefront/internal/test"
)

func newEngine(facade *testhelpers.StorefrontFacadeStub) *gin.Engine {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	cfg := &config.Config{FrontendURL: "https://shop.test"}
	engine := Setup(facade, cfg, metrics.New(), logger)
	gin.SetMode(gin.TestMode)
	return engine
}

func newFacade() *testhelpers.StorefrontFacadeStub {
	return &testhelpers.StorefrontFacadeStub{
		TokenParserStub: testhelpers.TokenParserStub{
			Identities: map[string]model.Identity{
				"customer": {UserID: 7, Role: model.RoleCustomer},
				"admin":    {UserID: 1, Role: model.RoleAdmin},
			},
			Err: pkgAuth.ErrInvalidToken,
		},
		OrdersFn: func(context.Context, model.Identity) ([]model.Order, error) {
			return []model.Order{{ID: 1, Status: model.OrderStatusPending}}, nil
		},
	}
}

func serve(engine *gin.Engine, method, target, token string, body []byte) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	return resp
}

func TestSetupRoutes(t *testing.T) {
	engine := newEngine(newFacade())
	checkout, _ := json.Marshal(map[string]any{
		"items":            []map[string]any{{"product_id": 1, "quantity": 1}},
		"shipping_address": map[string]string{"street": "Main 1", "city": "Santiago"},
		"payment_method":   "webpay",
	})

	tests := []struct {
		name   string
		method string
		target string
		token  string
		body   []byte
		status int
	}{
		{name: "health", method: http.MethodGet, target: "/healthz", status: http.StatusOK},
		{name: "metrics", method: http.MethodGet, target: "/metrics", status: http.StatusOK},
		{name: "orders anonymous", method: http.MethodGet, target: "/api/orders", status: http.StatusUnauthorized},
		{name: "orders bad token", method: http.MethodGet, target: "/api/orders", token: "forged", status: http.StatusUnauthorized},
		{name: "orders", method: http.MethodGet, target: "/api/orders", token: "customer", status: http.StatusOK},
		{name: "create order", method: http.MethodPost, target: "/api/orders", token: "customer", body: checkout, status: http.StatusCreated},
		{name: "get order", method: http.MethodGet, target: "/api/orders/1", token: "customer", status: http.StatusOK},
		{name: "cancel order", method: http.MethodPut, target: "/api/orders/1/cancel", token: "customer", status: http.StatusOK},
		{name: "status as customer", method: http.MethodPut, target: "/api/orders/1/status", token: "customer", body: []byte(`{"status":"processing"}`), status: http.StatusForbidden},
		{name: "status as admin", method: http.MethodPut, target: "/api/orders/1/status", token: "admin", body: []byte(`{"status":"processing"}`), status: http.StatusOK},
		{name: "transaction", method: http.MethodPost, target: "/api/payment/transactions/1", token: "customer", status: http.StatusCreated},
		{name: "payment status", method: http.MethodGet, target: "/api/payment/status/1", token: "customer", status: http.StatusOK},
		{name: "refund as customer", method: http.MethodPost, target: "/api/payment/refund/1", token: "customer", status: http.StatusForbidden},
		{name: "refund as admin", method: http.MethodPost, target: "/api/payment/refund/1", token: "admin", status: http.StatusOK},
		{name: "config as customer", method: http.MethodGet, target: "/api/admin/config", token: "customer", status: http.StatusForbidden},
		{name: "config as admin", method: http.MethodGet, target: "/api/admin/config", token: "admin", status: http.StatusOK},
		{name: "update config", method: http.MethodPut, target: "/api/admin/config/tax_rate", token: "admin", body: []byte(`{"value":"19"}`), status: http.StatusOK},
		{name: "callback get", method: http.MethodGet, target: "/api/payment/callback?token_ws=abc", status: http.StatusSeeOther},
		{name: "callback post", method: http.MethodPost, target: "/api/payment/callback", status: http.StatusSeeOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := serve(engine, tt.method, tt.target, tt.token, tt.body)
			if resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d: %s", tt.status, resp.Code, resp.Body.String())
			}
		})
	}
}

func TestCallbackIsPublicAndRedirects(t *testing.T) {
	facade := newFacade()
	facade.HandleCallbackFn = func(_ context.Context, cb model.GatewayCallback) model.CallbackResult {
		return model.CallbackResult{Outcome: model.CallbackApproved, OrderID: 42}
	}
	engine := newEngine(facade)

	resp := serve(engine, http.MethodGet, "/api/payment/callback?token_ws=tok-42", "", nil)
	if resp.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.Code)
	}
	if loc := resp.Header().Get("Location"); loc != "https://shop.test/payment/success?order=42" {
		t.Fatalf("unexpected redirect %q", loc)
	}
	if cbs := facade.Callbacks(); len(cbs) != 1 || cbs[0].Token != "tok-42" {
		t.Fatalf("unexpected callbacks %+v", cbs)
	}
}

func TestMetricsRecordRouteTemplates(t *testing.T) {
	engine := newEngine(newFacade())
	serve(engine, http.MethodGet, "/api/orders/1", "customer", nil)
	serve(engine, http.MethodGet, "/api/orders/2", "customer", nil)

	resp := serve(engine, http.MethodGet, "/metrics", "", nil)
	body := resp.Body.String()
	if !strings.Contains(body, `handler="/api/orders/:id"`) {
		t.Fatalf("expected route template label in metrics output")
	}
	if strings.Contains(body, `handler="/api/orders/1"`) {
		t.Fatalf("raw path leaked into metrics labels")
	}
}

var _ handlers.StorefrontFacade = (*testhelpers.StorefrontFacadeStub)(nil)
