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

type UserHandler struct {
	logger  *zap.Logger
	service services.UserService
}

func NewUserHandler(logger *zap.Logger, svc services.UserService) *UserHandler {
	return &UserHandler{logger: logger, service: svc}
}

func (h *UserHandler) RegisterRoutes(r *gin.RouterGroup) {
	me := r.Group("/me")
	me.GET("/profile", h.GetProfile)
	me.GET("/orders", h.GetOrders)
	me.GET("/transactions", h.GetTransactions)
	me.GET("/favorites", h.GetFavorites)
	me.POST("/favorites", h.AddFavorite)
	me.DELETE("/favorites/:productId", h.RemoveFavorite)
	me.GET("/statistics", h.GetStatistics)
}

// requestScope pulls the trace id and caller identity shared by every
// profile endpoint, writing the error response itself on failure.
func (h *UserHandler) requestScope(c *gin.Context) (string, uuid.UUID, bool) {
	traceID, err := utils.GetTraceID(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, pkg.ErrorResponse{Code: pkg.ErrServerCode.Code, Message: err.Error()})
		return "", uuid.Nil, false
	}
	userID, err := callerID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, pkg.ErrorResponse{Code: pkg.ErrInvalidInputCode.Code, Message: err.Error()})
		return "", uuid.Nil, false
	}
	return traceID, userID, true
}

func bindListQuery(c *gin.Context) (views.ListQuery, bool) {
	var q views.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, pkg.ErrorResponse{
			Code:    pkg.ErrInvalidInputCode.Code,
			Message: "invalid query parameters",
			Details: err.Error(),
		})
		return views.ListQuery{}, false
	}
	return q, true
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	traceID, userID, ok := h.requestScope(c)
	if !ok {
		return
	}
	user, err := h.service.GetProfile(c.Request.Context(), traceID, userID)
	if err != nil {
		resp := pkg.ToErrorResponse(h.logger, traceID, err)
		c.JSON(resp.Status, resp)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":       user.ID,
		"email":    user.Email,
		"fullName": user.FullName,
		"role":     user.Role,
	})
}

func (h *UserHandler) GetOrders(c *gin.Context) {
	traceID, userID, ok := h.requestScope(c)
	if !ok {
		return
	}
	q, ok := bindListQuery(c)
	if !ok {
		return
	}
	page, err := h.service.GetOrders(c.Request.Context(), traceID, userID, q)
	if err != nil {
		resp := pkg.ToErrorResponse(h.logger, traceID, err)
		c.JSON(resp.Status, resp)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *UserHandler) GetTransactions(c *gin.Context) {
	traceID, userID, ok := h.requestScope(c)
	if !ok {
		return
	}
	q, ok := bindListQuery(c)
	if !ok {
		return
	}
	page, err := h.service.GetTransactions(c.Request.Context(), traceID, userID, q)
	if err != nil {
		resp := pkg.ToErrorResponse(h.logger, traceID, err)
		c.JSON(resp.Status, resp)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *UserHandler) GetFavorites(c *gin.Context) {
	traceID, userID, ok := h.requestScope(c)
	if !ok {
		return
	}
	q, ok := bindListQuery(c)
	if !ok {
		return
	}
	page, err := h.service.GetFavorites(c.Request.Context(), traceID, userID, q)
	if err != nil {
		resp := pkg.ToErrorResponse(h.logger, traceID, err)
		c.JSON(resp.Status, resp)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *UserHandler) AddFavorite(c *gin.Context) {
	traceID, userID, ok := h.requestScope(c)
	if !ok {
		return
	}
	var req views.FavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, pkg.ErrorResponse{
			Code:    pkg.ErrInvalidInputCode.Code,
			Message: "invalid request body",
			Details: err.Error(),
		})
		return
	}
	if err := h.service.AddFavorite(c.Request.Context(), traceID, userID, uuid.MustParse(req.ProductID)); err != nil {
		resp := pkg.ToErrorResponse(h.logger, traceID, err)
		c.JSON(resp.Status, resp)
		return
	}
	c.Status(http.StatusCreated)
}

func (h *UserHandler) RemoveFavorite(c *gin.Context) {
	traceID, userID, ok := h.requestScope(c)
	if !ok {
		return
	}
	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, pkg.ErrorResponse{Code: pkg.ErrInvalidInputCode.Code, Message: "invalid product id"})
		return
	}
	if err = h.service.RemoveFavorite(c.Request.Context(), traceID, userID, productID); err != nil {
		resp := pkg.ToErrorResponse(h.logger, traceID, err)
		c.JSON(resp.Status, resp)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) GetStatistics(c *gin.Context) {
	traceID, userID, ok := h.requestScope(c)
	if !ok {
		return
	}
	stats, err := h.service.GetStatistics(c.Request.Context(), traceID, userID)
	if err != nil {
		resp := pkg.ToErrorResponse(h.logger, traceID, err)
		c.JSON(resp.Status, resp)
		return
	}
	c.JSON(http.StatusOK, stats)
}
