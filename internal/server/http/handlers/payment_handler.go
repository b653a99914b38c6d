package handlers

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/adapter/gateway"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/dto"
)

// PaymentHandler manages gateway transaction endpoints.
type PaymentHandler struct {
	facade      PaymentFacade
	frontendURL string
}

// NewPaymentHandler constructs PaymentHandler. frontendURL is the base of
// the browser redirects issued after a gateway callback.
func NewPaymentHandler(facade PaymentFacade, frontendURL string) *PaymentHandler {
	return &PaymentHandler{facade: facade, frontendURL: strings.TrimRight(frontendURL, "/")}
}

// CreateTransaction handles POST /api/payment/transactions/:orderId.
func (h *PaymentHandler) CreateTransaction(c *gin.Context) {
	orderID, ok := pathID(c, "orderId")
	if !ok {
		return
	}
	tx, err := h.facade.CreateTransaction(c.Request.Context(), CurrentIdentity(c), orderID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.TransactionResponse{
		OrderID:     tx.OrderID,
		Token:       tx.Token,
		RedirectURL: tx.RedirectURL,
		BuyOrder:    tx.BuyOrder,
		SessionID:   tx.SessionID,
		Amount:      tx.Amount,
	})
}

// Callback handles GET and POST /api/payment/callback. Query and form
// fields are merged so both verbs are processed identically.
func (h *PaymentHandler) Callback(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		_ = c.Error(err)
	}
	result := h.facade.HandleCallback(c.Request.Context(), gateway.ParseCallback(c.Request.Form))
	c.Redirect(http.StatusSeeOther, h.redirectURL(result))
}

// Status handles GET /api/payment/status/:orderId.
func (h *PaymentHandler) Status(c *gin.Context) {
	orderID, ok := pathID(c, "orderId")
	if !ok {
		return
	}
	view, err := h.facade.PaymentStatus(c.Request.Context(), CurrentIdentity(c), orderID)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := dto.PaymentStatusResponse{
		OrderID:       view.OrderID,
		OrderStatus:   string(view.OrderStatus),
		IsPaid:        view.IsPaid,
		PaidAt:        view.PaidAt,
		Total:         view.Total,
		PaymentMethod: string(view.Method),
		PaymentResult: view.Result,
	}
	if g := view.Gateway; g != nil {
		resp.Gateway = &dto.GatewayStatusResponse{
			Status:            g.Status,
			ResponseCode:      g.ResponseCode,
			AuthorizationCode: g.AuthorizationCode,
			Amount:            g.Amount,
			BuyOrder:          g.BuyOrder,
		}
	}
	c.JSON(http.StatusOK, resp)
}

// Refund handles POST /api/payment/refund/:orderId. An empty body refunds the full total.
func (h *PaymentHandler) Refund(c *gin.Context) {
	orderID, ok := pathID(c, "orderId")
	if !ok {
		return
	}
	var req dto.RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "malformed refund payload")
		return
	}

	result, err := h.facade.Refund(c.Request.Context(), CurrentIdentity(c), orderID, req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.RefundResponse{
		OrderID:  result.OrderID,
		Success:  result.Success,
		RefundID: result.RefundID,
		Amount:   result.Amount,
	})
}

func (h *PaymentHandler) redirectURL(result model.CallbackResult) string {
	q := url.Values{}
	if result.OrderID > 0 {
		q.Set("order", strconv.FormatInt(result.OrderID, 10))
	}

	var path string
	switch result.Outcome {
	case model.CallbackApproved:
		path = "/payment/success"
	case model.CallbackPending:
		path = "/payment/pending"
	case model.CallbackRejected:
		path = "/payment/failure"
		q.Set("code", model.CodePaymentRejected)
		if result.ResponseCode != nil {
			q.Set("response_code", strconv.Itoa(*result.ResponseCode))
		}
	default:
		path = "/payment/failure"
		code := result.Code
		if code == "" {
			code = model.CodeGatewayError
		}
		q.Set("code", code)
	}
	return h.frontendURL + path + "?" + q.Encode()
}
