package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mertmzzx/carparts-order-service/internal/domain"
	"github.com/mertmzzx/carparts-order-service/internal/service"
	"github.com/mertmzzx/carparts-order-service/pkg/middleware"
)

type OrderHandler struct {
	orderService *service.OrderService
	logger       *zap.Logger
}

func NewOrderHandler(orderService *service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// RegisterRoutes wires the order endpoints onto the v1 group.
func (h *OrderHandler) RegisterRoutes(v1 *gin.RouterGroup) {
	orders := v1.Group("/orders")
	orders.POST("", h.CreateOrder)
	orders.GET("/my", h.GetMyOrders)
	orders.GET("/recent", h.GetRecentOrders)
	orders.GET("/:id", h.GetOrder)
	orders.DELETE("/:id", h.CancelOrder)
	orders.PATCH("/:id/status", h.UpdateOrderStatus)

	v1.GET("/customers/:id/orders", h.GetOrdersForCustomer)
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	var req domain.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	requestID := c.GetString("request_id")

	view, err := h.orderService.CreateOrder(c.Request.Context(), identity, req)
	if err != nil {
		h.writeError(c, requestID, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	includeHistory := c.Query("include_history") == "true"

	view, err := h.orderService.GetOrder(c.Request.Context(), identity, c.Param("id"), includeHistory)
	if err != nil {
		h.writeError(c, c.GetString("request_id"), err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *OrderHandler) GetMyOrders(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	views, err := h.orderService.MyOrders(c.Request.Context(), identity)
	if err != nil {
		h.writeError(c, c.GetString("request_id"), err)
		return
	}

	c.JSON(http.StatusOK, views)
}

func (h *OrderHandler) GetRecentOrders(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	views, err := h.orderService.RecentOrders(c.Request.Context(), identity, limit)
	if err != nil {
		h.writeError(c, c.GetString("request_id"), err)
		return
	}

	c.JSON(http.StatusOK, views)
}

func (h *OrderHandler) GetOrdersForCustomer(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	views, err := h.orderService.OrdersForCustomer(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		h.writeError(c, c.GetString("request_id"), err)
		return
	}

	c.JSON(http.StatusOK, views)
}

func (h *OrderHandler) CancelOrder(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	if err := h.orderService.CancelOrder(c.Request.Context(), identity, c.Param("id")); err != nil {
		h.writeError(c, c.GetString("request_id"), err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	var req domain.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	if err := h.orderService.UpdateStatus(c.Request.Context(), identity, c.Param("id"), req.Status); err != nil {
		h.writeError(c, c.GetString("request_id"), err)
		return
	}

	c.Status(http.StatusNoContent)
}

// writeError maps domain errors onto HTTP statuses. Validation and lifecycle
// rejections carry their message through; storage failures stay generic with
// the detail only in the log.
func (h *OrderHandler) writeError(c *gin.Context, requestID string, err error) {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrPartNotFound),
		errors.Is(err, domain.ErrCustomerNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})

	case errors.Is(err, domain.ErrEmptyOrder),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrUnsupportedPaymentMethod),
		errors.Is(err, domain.ErrNoSavedAddress),
		errors.Is(err, domain.ErrMissingOverride),
		errors.Is(err, domain.ErrIncompleteAddress),
		errors.Is(err, domain.ErrAlreadyFulfilled),
		errors.Is(err, domain.ErrOrderCancelled),
		errors.Is(err, domain.ErrOrderDelivered),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	default:
		h.logger.Error("Request failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "internal server error",
			"request_id": requestID,
		})
	}
}
