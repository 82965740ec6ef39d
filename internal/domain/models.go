package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jafarshop/storefront/internal/pricing"
)

func init() {
	// The storefront frontend reads money as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// User represents a storefront customer or admin
type User struct {
	ID            uuid.UUID
	Name          string
	Email         string
	APIKeyLookup  string
	APIKeyHash    string
	IsAdmin       bool
	TotalOrders   int
	TotalSpent    decimal.Decimal
	LastOrderDate *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Order is the system of record for a purchase
type Order struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	Items           []OrderItem
	ShippingAddress ShippingAddress
	PaymentMethod   PaymentMethod
	TotalPrice      decimal.Decimal
	ShippingPrice   decimal.Decimal
	TaxPrice        decimal.Decimal
	GSTBreakdown    pricing.GSTBreakdown
	Status          OrderStatus
	DeliveredAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderItem is a line of an order. Variant fields are nil for products without variants.
type OrderItem struct {
	ID           uuid.UUID
	OrderID      uuid.UUID
	ProductID    string
	Name         string
	Image        *string
	Price        decimal.Decimal
	VariantPrice *decimal.Decimal
	Quantity     int
	Size         *string
	Color        *string
	CreatedAt    time.Time
}

// UnitPrice returns the price used for monetary aggregation
func (i OrderItem) UnitPrice() decimal.Decimal {
	return i.LineItem().UnitPrice()
}

// LineItem converts the order item to a pricing line item
func (i OrderItem) LineItem() pricing.LineItem {
	return pricing.LineItem{
		Price:        i.Price,
		VariantPrice: i.VariantPrice,
		Quantity:     i.Quantity,
	}
}

// ShippingAddress is stored as JSONB on the order
type ShippingAddress struct {
	FullName   string  `json:"fullName"`
	Phone      string  `json:"phone"`
	Street     string  `json:"street"`
	City       string  `json:"city"`
	State      *string `json:"state,omitempty"`
	PostalCode string  `json:"postalCode"`
	Country    string  `json:"country"`
}

// Settings is the persisted singleton configuration record
type Settings struct {
	Shipping  pricing.ShippingSettings
	UpdatedAt time.Time
}

// IdempotencyKey binds a client supplied key to the order it created.
// OrderID is nil while the first request holding the key is still running.
type IdempotencyKey struct {
	Key         string
	UserID      uuid.UUID
	OrderID     uuid.UUID
	RequestHash string
	CreatedAt   time.Time
}

// IsPending reports whether the key is reserved but not yet bound to an order
func (k *IdempotencyKey) IsPending() bool {
	return k.OrderID == uuid.Nil
}

// OrderLineItems returns the pricing view of the order's items
func OrderLineItems(items []OrderItem) []pricing.LineItem {
	lines := make([]pricing.LineItem, 0, len(items))
	for _, item := range items {
		lines = append(lines, item.LineItem())
	}
	return lines
}
