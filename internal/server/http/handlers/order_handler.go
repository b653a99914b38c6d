package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/dto"
)

// OrderHandler manages order-related endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed checkout payload")
		return
	}

	order, err := h.facade.CreateOrder(c.Request.Context(), CurrentIdentity(c), toCheckout(req))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(*order))
}

// List handles GET /api/orders.
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.facade.Orders(c.Request.Context(), CurrentIdentity(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if len(orders) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	response := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		response = append(response, toOrderResponse(o))
	}
	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.facade.Order(c.Request.Context(), CurrentIdentity(c), orderID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// UpdateStatus handles PUT /api/orders/:id/status.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.StatusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed status payload")
		return
	}
	status, err := model.ParseOrderStatus(req.Status)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	order, err := h.facade.UpdateOrderStatus(c.Request.Context(), CurrentIdentity(c), orderID, model.StatusChange{Status: status, IsPaid: req.IsPaid})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// Cancel handles PUT /api/orders/:id/cancel.
func (h *OrderHandler) Cancel(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.facade.CancelOrder(c.Request.Context(), CurrentIdentity(c), orderID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

func toCheckout(req dto.CheckoutRequest) model.CheckoutRequest {
	items := make([]model.CheckoutItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, model.CheckoutItem{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	return model.CheckoutRequest{
		Items:           items,
		Fulfillment:     model.FulfillmentMode(req.Fulfillment),
		ShippingAddress: req.ShippingAddress,
		PickupLocation:  req.PickupLocation,
		PaymentMethod:   model.PaymentMethod(req.PaymentMethod),
		ItemsSubtotal:   req.ItemsSubtotal,
		Tax:             req.Tax,
		Shipping:        req.Shipping,
		Total:           req.Total,
	}
}

func toOrderResponse(order model.Order) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, dto.OrderItemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}

	resp := dto.OrderResponse{
		ID:              order.ID,
		UserID:          order.UserID,
		Items:           items,
		Fulfillment:     string(order.Fulfillment),
		ShippingAddress: order.ShippingAddress,
		PickupLocation:  order.PickupLocation,
		PaymentMethod:   string(order.PaymentMethod),
		OrderType:       string(order.OrderType),
		TaxRate:         order.TaxRate,
		ItemsSubtotal:   order.ItemsSubtotal,
		Tax:             order.Tax,
		Shipping:        order.Shipping,
		Total:           order.Total,
		Status:          string(order.Status),
		IsPaid:          order.IsPaid(),
		PaidAt:          order.PaidAt,
		IsDelivered:     order.IsDelivered(),
		DeliveredAt:     order.DeliveredAt,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
	if order.PaymentResult != (model.PaymentResult{}) {
		result := order.PaymentResult
		resp.PaymentResult = &result
	}
	return resp
}
