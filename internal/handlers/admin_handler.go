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

type AdminHandler struct {
	logger  *zap.Logger
	service services.AdminService
	users   services.UserService
}

func NewAdminHandler(logger *zap.Logger, svc services.AdminService, users services.UserService) *AdminHandler {
	return &AdminHandler{logger: logger, service: svc, users: users}
}

func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup) {
	admin := r.Group("/admin", h.requireAdmin)
	admin.GET("/products", h.ListProducts)
	admin.POST("/products", h.CreateProduct)
	admin.PUT("/products/:id", h.UpdateProduct)
	admin.DELETE("/products/:id", h.DeleteProduct)
	admin.PUT("/orders/:id/status", h.UpdateOrderStatus)
	admin.GET("/customers", h.ListCustomers)
	admin.GET("/orders", h.ListOrders)
	admin.GET("/transactions", h.ListTransactions)
}

const ctxAdminID = "adminId"

// requireAdmin loads the caller's profile and rejects anyone without the
// admin role before the back-office handlers run.
func (h *AdminHandler) requireAdmin(c *gin.Context) {
	traceID, err := utils.GetTraceID(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, pkg.ErrorResponse{Code: pkg.ErrServerCode.Code, Message: err.Error()})
		return
	}
	adminID, err := callerID(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, pkg.ErrorResponse{Code: pkg.ErrInvalidInputCode.Code, Message: err.Error()})
		return
	}
	user, err := h.users.GetProfile(c.Request.Context(), traceID, adminID)
	if err != nil {
		resp := pkg.ToErrorResponse(h.logger, traceID, err)
		c.AbortWithStatusJSON(resp.Status, resp)
		return
	}
	if user.Role != pkg.RoleAdmin {
		c.AbortWithStatusJSON(http.StatusForbidden, pkg.ErrorResponse{
			Code:    pkg.ErrBusinessRuleCode.Code,
			Message: "admin role required",
		})
		return
	}
	c.Set(ctxAdminID, adminID)
	c.Next()
}

func (h *AdminHandler) scope(c *gin.Context) (string, uuid.UUID, bool) {
	traceID, err := utils.GetTraceID(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, pkg.ErrorResponse{Code: pkg.ErrServerCode.Code, Message: err.Error()})
		return "", uuid.Nil, false
	}
	adminID, _ := c.MustGet(ctxAdminID).(uuid.UUID)
	return traceID, adminID, true
}

func (h *AdminHandler) CreateProduct(c *gin.Context) {
	traceID, adminID, ok := h.scope(c)
	if !ok {
		return
	}
	var req views.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, pkg.ErrorResponse{
			Code:    pkg.ErrInvalidInputCode.Code,
			Message: "invalid request body",
			Details: err.Error(),
		})
		return
	}
	productID, err := h.service.CreateProduct(c.Request.Context(), traceID, adminID, req)
	if err != nil {
		resp := pkg.ToErrorResponse(h.logger, traceID, err)
		c.JSON(resp.Status, resp)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": productID})
}

func (h *AdminHandler) UpdateProduct(c *gin.Context) {
	traceID, adminID, ok := h.scope(c)
	if !ok {
		return
	}
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, pkg.ErrorResponse{Code: pkg.ErrInvalidInputCode.Code, Message: "invalid product id"})
		return
	}
	var req views.ProductRequest
	if err = c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, pkg.ErrorResponse{
			Code:    pkg.ErrInvalidInputCode.Code,
			Message: "invalid request body",
			Details: err.Error(),
		})
		return
	}
	if err = h.service.UpdateProduct(c.Request.Context(), traceID, adminID, productID, req); err != nil {
		resp := pkg.ToErrorResponse(h.logger, traceID, err)
		c.JSON(resp.Status, resp)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) DeleteProduct(c *gin.Context) {
	traceID, _, ok := h.scope(c)
	if !ok {
		return
	}
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, pkg.ErrorResponse{Code: pkg.ErrInvalidInputCode.Code, Message: "invalid product id"})
		return
	}
	if err = h.service.DeleteProduct(c.Request.Context(), traceID, productID); err != nil {
		resp := pkg.ToErrorResponse(h.logger, traceID, err)
		c.JSON(resp.Status, resp)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) UpdateOrderStatus(c *gin.Context) {
	traceID, _, ok := h.scope(c)
	if !ok {
		return
	}
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, pkg.ErrorResponse{Code: pkg.ErrInvalidInputCode.Code, Message: "invalid order id"})
		return
	}
	var req views.OrderStatusRequest
	if err = c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, pkg.ErrorResponse{
			Code:    pkg.ErrInvalidInputCode.Code,
			Message: "invalid request body",
			Details: err.Error(),
		})
		return
	}
	if err = h.service.UpdateOrderStatus(c.Request.Context(), traceID, orderID, pkg.OrderStatus(req.Status)); err != nil {
		resp := pkg.ToErrorResponse(h.logger, traceID, err)
		c.JSON(resp.Status, resp)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) ListProducts(c *gin.Context) {
	traceID, _, ok := h.scope(c)
	if !ok {
		return
	}
	q, ok := bindListQuery(c)
	if !ok {
		return
	}
	page, err := h.service.ListProducts(c.Request.Context(), traceID, q)
	if err != nil {
		resp := pkg.ToErrorResponse(h.logger, traceID, err)
		c.JSON(resp.Status, resp)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *AdminHandler) ListCustomers(c *gin.Context) {
	traceID, _, ok := h.scope(c)
	if !ok {
		return
	}
	q, ok := bindListQuery(c)
	if !ok {
		return
	}
	page, err := h.service.ListCustomers(c.Request.Context(), traceID, q)
	if err != nil {
		resp := pkg.ToErrorResponse(h.logger, traceID, err)
		c.JSON(resp.Status, resp)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *AdminHandler) ListOrders(c *gin.Context) {
	traceID, _, ok := h.scope(c)
	if !ok {
		return
	}
	q, ok := bindListQuery(c)
	if !ok {
		return
	}
	page, err := h.service.ListOrders(c.Request.Context(), traceID, q)
	if err != nil {
		resp := pkg.ToErrorResponse(h.logger, traceID, err)
		c.JSON(resp.Status, resp)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *AdminHandler) ListTransactions(c *gin.Context) {
	traceID, _, ok := h.scope(c)
	if !ok {
		return
	}
	q, ok := bindListQuery(c)
	if !ok {
		return
	}
	page, err := h.service.ListTransactions(c.Request.Context(), traceID, q)
	if err != nil {
		resp := pkg.ToErrorResponse(h.logger, traceID, err)
		c.JSON(resp.Status, resp)
		return
	}
	c.JSON(http.StatusOK, page)
}
