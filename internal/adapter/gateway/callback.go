package gateway

import (
	"net/url"
	"strings"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// Field names the gateway uses when returning the browser.
const (
	FieldToken        = "token_ws"
	FieldTokenAlt     = "token"
	FieldAbortedToken = "TBK_TOKEN"
	FieldBuyOrder     = "TBK_ORDEN_COMPRA"
	FieldBuyOrderAlt  = "buy_order"
	FieldSessionID    = "TBK_ID_SESION"
)

// ParseCallback normalizes the query or form values of a gateway return
// request. GET and POST produce the same payload.
func ParseCallback(values url.Values) model.GatewayCallback {
	return model.GatewayCallback{
		Token:        first(values, FieldToken, FieldTokenAlt),
		AbortedToken: first(values, FieldAbortedToken),
		BuyOrder:     first(values, FieldBuyOrder, FieldBuyOrderAlt),
		SessionID:    first(values, FieldSessionID),
	}
}

func first(values url.Values, keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(values.Get(key)); v != "" {
			return v
		}
	}
	return ""
}
