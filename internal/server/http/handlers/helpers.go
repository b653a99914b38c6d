package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/dto"
	"github.com/polkiloo/storefront/internal/server/http/middleware"
)

// CurrentIdentity extracts the authenticated caller from context.
func CurrentIdentity(c *gin.Context) model.Identity {
	val, ok := c.Get(middleware.IdentityContextKey)
	if !ok {
		return model.Identity{}
	}
	id, _ := val.(model.Identity)
	return id
}

// pathID parses a positive int64 path parameter and answers 400 otherwise.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: name + " must be a positive integer"})
		return 0, false
	}
	return id, true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: msg})
}

// writeError maps domain errors onto HTTP statuses. Gateway and internal
// failures are redacted; the cause is attached to the context for logging.
func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	resp := dto.ErrorResponse{Error: err.Error()}

	var stockErr *domainErrors.InsufficientStockError
	if errors.As(err, &stockErr) {
		available := stockErr.Available
		resp.ProductID = stockErr.ProductID
		resp.Available = &available
	}

	switch status {
	case http.StatusBadGateway:
		resp = dto.ErrorResponse{Error: "payment gateway unavailable"}
		_ = c.Error(err)
	case http.StatusInternalServerError:
		resp = dto.ErrorResponse{Error: "internal server error"}
		_ = c.Error(err)
	}
	c.JSON(status, resp)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domainErrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domainErrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domainErrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domainErrors.ErrOrderNotFound), errors.Is(err, domainErrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domainErrors.ErrInsufficientStock),
		errors.Is(err, domainErrors.ErrInvalidTransition),
		errors.Is(err, domainErrors.ErrAlreadyPaid):
		return http.StatusConflict
	case errors.Is(err, domainErrors.ErrWrongPaymentMethod), errors.Is(err, domainErrors.ErrNotPaid):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domainErrors.ErrGateway), errors.Is(err, domainErrors.ErrGatewayTimeout):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
