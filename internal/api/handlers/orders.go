package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/api/middleware"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/service"
)

// OrderService is the order behaviour the handlers depend on
type OrderService interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, req service.CreateOrderRequest) (*domain.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetOrderForUser(ctx context.Context, user *domain.User, id uuid.UUID) (*domain.Order, error)
	ListUserOrders(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Order, error)
	ListOrders(ctx context.Context, status *domain.OrderStatus, limit, offset int) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error)
}

// HandleCreateOrder handles POST /v1/orders
func HandleCreateOrder(orders OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		// Check if this is an idempotent replay
		_, _, existingOrderID, isExisting := middleware.GetIdempotencyInfo(c)
		if isExisting {
			orderID, err := uuid.Parse(existingOrderID)
			if err != nil {
				logger.Error("Invalid existing order ID from idempotency", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
				return
			}

			order, err := orders.GetOrder(c.Request.Context(), orderID)
			if err != nil {
				respondError(c, logger, err, "Failed to get existing order")
				return
			}

			c.JSON(http.StatusOK, toOrderResponse(order))
			return
		}

		var req service.CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			validationFailed(c, err)
			return
		}

		order, err := orders.CreateOrder(c.Request.Context(), user.ID, req)
		if err != nil {
			respondError(c, logger, err, "Failed to create order")
			return
		}

		middleware.BindIdempotentOrder(c, order.ID)
		c.JSON(http.StatusCreated, toOrderResponse(order))
	}
}

// HandleGetOrder handles GET /v1/orders/:id
func HandleGetOrder(orders OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
			return
		}

		order, err := orders.GetOrderForUser(c.Request.Context(), user, orderID)
		if err != nil {
			respondError(c, logger, err, "Failed to get order")
			return
		}

		c.JSON(http.StatusOK, toOrderResponse(order))
	}
}

// HandleListMyOrders handles GET /v1/orders
func HandleListMyOrders(orders OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		limit, offset := parsePagination(c)

		list, err := orders.ListUserOrders(c.Request.Context(), user.ID, limit, offset)
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

// HandleMe handles GET /v1/me
func HandleMe() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.JSON(http.StatusOK, toUserResponse(user))
	}
}

func parsePagination(c *gin.Context) (limit, offset int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 50
	}

	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	return limit, offset
}
