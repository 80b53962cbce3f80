package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopuz/payments-service/internal/services"
	"github.com/shopuz/payments-service/pkg"
	"github.com/shopuz/payments-service/pkg/utils"
	"go.uber.org/zap"
)

// maxWebhookBody caps the inbound event payload.
const maxWebhookBody = 1 << 20

type WebhookHandler struct {
	logger     *zap.Logger
	dispatcher services.WebhookDispatcher
}

func NewWebhookHandler(logger *zap.Logger, dispatcher services.WebhookDispatcher) *WebhookHandler {
	return &WebhookHandler{logger: logger, dispatcher: dispatcher}
}

// RegisterRoutes registers the webhook endpoint. It must stay off any route
// group with body-parsing middleware: signature verification needs the raw
// bytes exactly as the provider sent them.
func (h *WebhookHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/webhook/payments", h.HandleWebhook)
}

func (h *WebhookHandler) HandleWebhook(c *gin.Context) {
	traceID, err := utils.GetTraceID(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, pkg.ErrorResponse{
			Code:    pkg.ErrServerCode.Code,
			Message: err.Error(),
		})
		return
	}

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		h.logger.Error("failed to read webhook body", zap.String(pkg.TraceId, traceID), zap.Error(err))
		c.JSON(http.StatusBadRequest, pkg.ErrorResponse{
			Code:    pkg.ErrInvalidInputCode.Code,
			Message: "unreadable request body",
		})
		return
	}

	err = h.dispatcher.Dispatch(c.Request.Context(), traceID, payload, c.GetHeader(pkg.HeaderSignature))
	if err != nil {
		// Non-2xx tells the provider to redeliver; idempotent
		// reconciliation makes the redelivery safe.
		resp := pkg.ToErrorResponse(h.logger, traceID, err)
		c.JSON(resp.Status, resp)
		return
	}

	// Empty 200 for reconciled and ignored events alike.
	c.Status(http.StatusOK)
}
