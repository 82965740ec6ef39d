package handlers

import (
	stderrors "errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/pricing"
	"github.com/jafarshop/storefront/pkg/errors"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

// OrderResponse represents the order response
type OrderResponse struct {
	ID              string                 `json:"id"`
	User            string                 `json:"user"`
	OrderItems      []OrderItemResponse    `json:"orderItems"`
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   domain.PaymentMethod   `json:"paymentMethod"`
	TotalPrice      decimal.Decimal        `json:"totalPrice"`
	ShippingPrice   decimal.Decimal        `json:"shippingPrice"`
	TaxPrice        decimal.Decimal        `json:"taxPrice"`
	GSTBreakdown    pricing.GSTBreakdown   `json:"gstBreakdown"`
	Status          domain.OrderStatus     `json:"status"`
	DeliveredAt     *string                `json:"deliveredAt,omitempty"`
	CreatedAt       string                 `json:"createdAt"`
	UpdatedAt       string                 `json:"updatedAt"`
}

type OrderItemResponse struct {
	Product      string           `json:"product"`
	Name         string           `json:"name"`
	Image        *string          `json:"image,omitempty"`
	Price        decimal.Decimal  `json:"price"`
	VariantPrice *decimal.Decimal `json:"variantPrice,omitempty"`
	Quantity     int              `json:"quantity"`
	Size         *string          `json:"size,omitempty"`
	Color        *string          `json:"color,omitempty"`
}

func toOrderResponse(order *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemResponse{
			Product:      item.ProductID,
			Name:         item.Name,
			Image:        item.Image,
			Price:        item.Price,
			VariantPrice: item.VariantPrice,
			Quantity:     item.Quantity,
			Size:         item.Size,
			Color:        item.Color,
		}
	}

	response := OrderResponse{
		ID:              order.ID.String(),
		User:            order.UserID.String(),
		OrderItems:      items,
		ShippingAddress: order.ShippingAddress,
		PaymentMethod:   order.PaymentMethod,
		TotalPrice:      order.TotalPrice,
		ShippingPrice:   order.ShippingPrice,
		TaxPrice:        order.TaxPrice,
		GSTBreakdown:    order.GSTBreakdown,
		Status:          order.Status,
		CreatedAt:       order.CreatedAt.Format(timeLayout),
		UpdatedAt:       order.UpdatedAt.Format(timeLayout),
	}
	if order.DeliveredAt != nil {
		deliveredAt := order.DeliveredAt.Format(timeLayout)
		response.DeliveredAt = &deliveredAt
	}

	return response
}

func toOrderResponses(orders []*domain.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i, order := range orders {
		out[i] = toOrderResponse(order)
	}
	return out
}

// UserResponse is the caller's profile with purchase analytics
type UserResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	IsAdmin       bool            `json:"isAdmin"`
	TotalOrders   int             `json:"totalOrders"`
	TotalSpent    decimal.Decimal `json:"totalSpent"`
	LastOrderDate *string         `json:"lastOrderDate,omitempty"`
}

func toUserResponse(user *domain.User) UserResponse {
	response := UserResponse{
		ID:          user.ID.String(),
		Name:        user.Name,
		Email:       user.Email,
		IsAdmin:     user.IsAdmin,
		TotalOrders: user.TotalOrders,
		TotalSpent:  user.TotalSpent,
	}
	if user.LastOrderDate != nil {
		last := user.LastOrderDate.Format(timeLayout)
		response.LastOrderDate = &last
	}
	return response
}

// SettingsResponse is the shipping settings record
type SettingsResponse struct {
	Shipping  pricing.ShippingSettings `json:"shipping"`
	UpdatedAt string                   `json:"updatedAt"`
}

func toSettingsResponse(settings *domain.Settings) SettingsResponse {
	return SettingsResponse{
		Shipping:  settings.Shipping,
		UpdatedAt: settings.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// respondError maps typed errors to HTTP statuses and hides everything else behind a 500
func respondError(c *gin.Context, logger *zap.Logger, err error, message string) {
	var notFound *errors.ErrNotFound
	var forbidden *errors.ErrForbidden
	var unauthorized *errors.ErrUnauthorized
	var transition *errors.ErrInvalidStateTransition
	var validation *errors.ErrValidation

	switch {
	case stderrors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Resource + " not found"})
	case stderrors.As(err, &forbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
	case stderrors.As(err, &unauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case stderrors.As(err, &transition):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case stderrors.As(err, &validation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "validation failed",
			"details": err.Error(),
		})
	default:
		logger.Error(message, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func validationFailed(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"error":   "validation failed",
		"details": err.Error(),
	})
}
