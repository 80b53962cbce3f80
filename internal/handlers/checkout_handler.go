package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopuz/payments-service/internal/services"
	"github.com/shopuz/payments-service/pkg"
	"github.com/shopuz/payments-service/pkg/utils"
	"github.com/shopuz/payments-service/pkg/views"
	"go.uber.org/zap"
)

type CheckoutHandler struct {
	logger  *zap.Logger
	service services.CheckoutService
	limiter *pkg.DistributedLimiter
}

func NewCheckoutHandler(logger *zap.Logger, svc services.CheckoutService, limiter *pkg.DistributedLimiter) *CheckoutHandler {
	return &CheckoutHandler{logger: logger, service: svc, limiter: limiter}
}

func (h *CheckoutHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/checkout", h.CreateCheckout)
}

func (h *CheckoutHandler) CreateCheckout(c *gin.Context) {
	traceID, err := utils.GetTraceID(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, pkg.ErrorResponse{
			Code:    pkg.ErrServerCode.Code,
			Message: err.Error(),
		})
		return
	}

	if h.limiter != nil && !h.limiter.Allow(c.Request.Context()) {
		c.JSON(http.StatusTooManyRequests, pkg.ErrorResponse{
			Code:    pkg.ErrBusinessRuleCode.Code,
			Message: pkg.ErrRateLimitExceeded.Error(),
		})
		return
	}

	var req views.CheckoutRequest
	if err = c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, pkg.ErrorResponse{
			Code:    pkg.ErrInvalidInputCode.Code,
			Message: "invalid request body",
			Details: err.Error(),
		})
		return
	}

	// Binding validated the uuid format already.
	userID := uuid.MustParse(req.UserID)
	productID := uuid.MustParse(req.ProductID)

	url, err := h.service.BuildCheckoutURL(c.Request.Context(), traceID, userID, productID)
	if err != nil {
		resp := pkg.ToErrorResponse(h.logger, traceID, err)
		c.JSON(resp.Status, resp)
		return
	}

	c.JSON(http.StatusCreated, views.CheckoutResponse{URL: url})
}
