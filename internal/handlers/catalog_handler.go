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

type CatalogHandler struct {
	logger  *zap.Logger
	service services.CatalogService
}

func NewCatalogHandler(logger *zap.Logger, svc services.CatalogService) *CatalogHandler {
	return &CatalogHandler{logger: logger, service: svc}
}

func (h *CatalogHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/products", h.GetProducts)
	r.GET("/products/:id", h.GetProduct)
}

func (h *CatalogHandler) GetProducts(c *gin.Context) {
	traceID, err := utils.GetTraceID(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, pkg.ErrorResponse{Code: pkg.ErrServerCode.Code, Message: err.Error()})
		return
	}

	var q views.ListQuery
	if err = c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, pkg.ErrorResponse{
			Code:    pkg.ErrInvalidInputCode.Code,
			Message: "invalid query parameters",
			Details: err.Error(),
		})
		return
	}

	page, err := h.service.GetProducts(c.Request.Context(), traceID, q)
	if err != nil {
		resp := pkg.ToErrorResponse(h.logger, traceID, err)
		c.JSON(resp.Status, resp)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *CatalogHandler) GetProduct(c *gin.Context) {
	traceID, err := utils.GetTraceID(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, pkg.ErrorResponse{Code: pkg.ErrServerCode.Code, Message: err.Error()})
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, pkg.ErrorResponse{
			Code:    pkg.ErrInvalidInputCode.Code,
			Message: "invalid product id",
		})
		return
	}

	product, err := h.service.GetProduct(c.Request.Context(), traceID, productID)
	if err != nil {
		resp := pkg.ToErrorResponse(h.logger, traceID, err)
		c.JSON(resp.Status, resp)
		return
	}
	c.JSON(http.StatusOK, product)
}
