package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/service"
)

// SettingsService is the settings behaviour the admin handlers depend on
type SettingsService interface {
	Get(ctx context.Context) (*domain.Settings, error)
	UpdateShipping(ctx context.Context, req service.UpdateShippingSettingsRequest) (*domain.Settings, error)
}

// UpdateOrderStatusRequest represents the status change payload
type UpdateOrderStatusRequest struct {
	Status domain.OrderStatus `json:"status" binding:"required"`
}

// HandleUpdateOrderStatus handles POST /v1/admin/orders/:id/status
func HandleUpdateOrderStatus(orders OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
			return
		}

		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			validationFailed(c, err)
			return
		}
		if !req.Status.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}

		order, err := orders.UpdateStatus(c.Request.Context(), orderID, req.Status)
		if err != nil {
			respondError(c, logger, err, "Failed to update order status")
			return
		}

		c.JSON(http.StatusOK, toOrderResponse(order))
	}
}

// HandleAdminListOrders handles GET /v1/admin/orders
func HandleAdminListOrders(orders OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := parsePagination(c)

		var status *domain.OrderStatus
		if raw := c.Query("status"); raw != "" {
			s := domain.OrderStatus(raw)
			if !s.IsValid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
				return
			}
			status = &s
		}

		list, err := orders.ListOrders(c.Request.Context(), status, limit, offset)
		if err != nil {
			respondError(c, logger, err, "Failed to list orders")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"orders": toOrderResponses(list),
			"limit":  limit,
			"offset": offset,
		})
	}
}

// HandleGetShippingSettings handles GET /v1/admin/settings/shipping
func HandleGetShippingSettings(settings SettingsService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		current, err := settings.Get(c.Request.Context())
		if err != nil {
			respondError(c, logger, err, "Failed to load settings")
			return
		}

		c.JSON(http.StatusOK, toSettingsResponse(current))
	}
}

// HandleUpdateShippingSettings handles PUT /v1/admin/settings/shipping
func HandleUpdateShippingSettings(settings SettingsService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.UpdateShippingSettingsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			validationFailed(c, err)
			return
		}

		updated, err := settings.UpdateShipping(c.Request.Context(), req)
		if err != nil {
			respondError(c, logger, err, "Failed to update settings")
			return
		}

		c.JSON(http.StatusOK, toSettingsResponse(updated))
	}
}
