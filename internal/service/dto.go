package service

import (
	"github.com/shopspring/decimal"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/pricing"
	"github.com/jafarshop/storefront/pkg/errors"
)

// CreateOrderRequest represents the checkout payload
type CreateOrderRequest struct {
	OrderItems      []OrderItemInput     `json:"orderItems" binding:"required,min=1,dive"`
	ShippingAddress ShippingAddressInput `json:"shippingAddress" binding:"required"`
	PaymentMethod   string               `json:"paymentMethod" binding:"required,oneof=COD Online"`
	TotalPrice      *decimal.Decimal     `json:"totalPrice"`
}

type OrderItemInput struct {
	ProductID    string           `json:"product" binding:"required"`
	Name         string           `json:"name" binding:"required"`
	Image        *string          `json:"image,omitempty"`
	Price        decimal.Decimal  `json:"price"`
	VariantPrice *decimal.Decimal `json:"variantPrice,omitempty"`
	Quantity     int              `json:"quantity" binding:"required,min=1"`
	Size         *string          `json:"size,omitempty"`
	Color        *string          `json:"color,omitempty"`
}

type ShippingAddressInput struct {
	FullName   string  `json:"fullName" binding:"required"`
	Phone      string  `json:"phone" binding:"required"`
	Street     string  `json:"street" binding:"required"`
	City       string  `json:"city" binding:"required"`
	State      *string `json:"state,omitempty"`
	PostalCode string  `json:"postalCode" binding:"required"`
	Country    string  `json:"country" binding:"required"`
}

// Validate checks the monetary fields gin binding cannot express
func (r CreateOrderRequest) Validate() error {
	if r.TotalPrice == nil {
		return &errors.ErrValidation{Field: "totalPrice", Message: "is required"}
	}
	if r.TotalPrice.IsNegative() {
		return &errors.ErrValidation{Field: "totalPrice", Message: "must not be negative"}
	}
	for _, item := range r.OrderItems {
		if item.Price.IsNegative() {
			return &errors.ErrValidation{Field: "orderItems.price", Message: "must not be negative"}
		}
		if item.VariantPrice != nil && item.VariantPrice.IsNegative() {
			return &errors.ErrValidation{Field: "orderItems.variantPrice", Message: "must not be negative"}
		}
	}
	return nil
}

func (i OrderItemInput) toDomain() domain.OrderItem {
	return domain.OrderItem{
		ProductID:    i.ProductID,
		Name:         i.Name,
		Image:        i.Image,
		Price:        i.Price,
		VariantPrice: i.VariantPrice,
		Quantity:     i.Quantity,
		Size:         i.Size,
		Color:        i.Color,
	}
}

func (a ShippingAddressInput) toDomain() domain.ShippingAddress {
	return domain.ShippingAddress{
		FullName:   a.FullName,
		Phone:      a.Phone,
		Street:     a.Street,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

// QuoteRequest prices a cart without placing an order
type QuoteRequest struct {
	Items []pricing.LineItem `json:"items"`
}

// QuoteResult is the priced cart
type QuoteResult struct {
	Subtotal     decimal.Decimal          `json:"subtotal"`
	GSTBreakdown pricing.GSTBreakdown     `json:"gstBreakdown"`
	Shipping     pricing.ShippingDecision `json:"shipping"`
	GrandTotal   decimal.Decimal          `json:"grandTotal"`
}

// UpdateShippingSettingsRequest replaces the shipping policy. Both amounts must be sent;
// an omitted forcePaidShipping means false.
type UpdateShippingSettingsRequest struct {
	FreeShippingThreshold *decimal.Decimal `json:"freeShippingThreshold" binding:"required"`
	ForcePaidShipping     bool             `json:"forcePaidShipping"`
	DefaultShippingCost   *decimal.Decimal `json:"defaultShippingCost" binding:"required"`
}
