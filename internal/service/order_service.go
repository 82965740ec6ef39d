package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/events"
	"github.com/jafarshop/storefront/internal/metrics"
	"github.com/jafarshop/storefront/internal/pricing"
	"github.com/jafarshop/storefront/internal/repository"
	"github.com/jafarshop/storefront/pkg/errors"
)

// EventDispatcher runs post-commit side effects
type EventDispatcher interface {
	Dispatch(ctx context.Context, event events.OrderEvent)
}

type OrderService struct {
	orders   repository.OrderRepository
	settings *SettingsService
	gst      pricing.GSTPolicy
	events   EventDispatcher
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

type OrderServiceDeps struct {
	Orders   repository.OrderRepository
	Settings *SettingsService
	GST      pricing.GSTPolicy
	Events   EventDispatcher
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
	Now      func() time.Time
}

// NewOrderService creates a new order service
func NewOrderService(deps OrderServiceDeps) *OrderService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &OrderService{
		orders:   deps.Orders,
		settings: deps.Settings,
		gst:      deps.GST,
		events:   deps.Events,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
		now:      now,
	}
}

// CreateOrder prices the cart and persists the order.
// Shipping settings are loaded first, then shipping and GST are resolved from the same line items.
// The user analytics update runs after commit and cannot fail the order.
func (s *OrderService) CreateOrder(ctx context.Context, userID uuid.UUID, req CreateOrderRequest) (*domain.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	items := make([]domain.OrderItem, 0, len(req.OrderItems))
	for _, input := range req.OrderItems {
		items = append(items, input.toDomain())
	}
	lines := domain.OrderLineItems(items)

	settings := s.settings.ForCheckout(ctx)
	shipping := pricing.ComputeCartShipping(lines, &settings)
	gst := s.gst.CartBreakdown(lines)

	order := &domain.Order{
		UserID:          userID,
		Items:           items,
		ShippingAddress: req.ShippingAddress.toDomain(),
		PaymentMethod:   domain.PaymentMethod(req.PaymentMethod),
		TotalPrice:      req.TotalPrice.Round(pricing.CurrencyPlaces),
		ShippingPrice:   shipping.ShippingCost,
		TaxPrice:        gst.GSTAmount,
		GSTBreakdown:    gst,
		Status:          domain.OrderStatusPending,
		CreatedAt:       s.now(),
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("Order created",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("total_price", order.TotalPrice.String()),
		zap.String("tax_price", order.TaxPrice.String()),
		zap.Int("gst_percentage", gst.GSTPercentage),
		zap.String("shipping_price", order.ShippingPrice.String()),
		zap.String("shipping_reason", shipping.Reason),
	)
	s.metrics.ObserveOrder(order.TotalPrice, gst, shipping)

	s.events.Dispatch(ctx, events.OrderEvent{
		Type:       events.EventTypeOrderPlaced,
		Order:      order,
		OccurredAt: order.CreatedAt,
	})

	return order, nil
}

// GetOrder returns any order
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.orders.GetByID(ctx, id)
}

// GetOrderForUser returns the order if the user owns it or is an admin
func (s *OrderService) GetOrderForUser(ctx context.Context, user *domain.User, id uuid.UUID) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if order.UserID != user.ID && !user.IsAdmin {
		return nil, &errors.ErrForbidden{}
	}

	return order, nil
}

// ListUserOrders returns the user's orders, newest first
func (s *OrderService) ListUserOrders(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Order, error) {
	return s.orders.ListByUserID(ctx, userID, limit, offset)
}

// ListOrders returns all orders, optionally filtered by status
func (s *OrderService) ListOrders(ctx context.Context, status *domain.OrderStatus, limit, offset int) ([]*domain.Order, error) {
	return s.orders.List(ctx, status, limit, offset)
}

// UpdateStatus moves an order along its lifecycle. Monetary fields are never touched.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	if !status.IsValid() {
		return nil, &errors.ErrValidation{Field: "status", Message: "unknown status " + string(status)}
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	// Validate state transition
	if !order.Status.CanTransitionTo(status) {
		return nil, &errors.ErrInvalidStateTransition{
			From: order.Status,
			To:   status,
		}
	}

	now := s.now()
	if err := s.orders.UpdateStatus(ctx, orderID, order.Status, status, now); err != nil {
		return nil, err
	}

	previous := order.Status
	order.Status = status
	order.UpdatedAt = now
	if status == domain.OrderStatusDelivered {
		order.DeliveredAt = &now
	}

	s.logger.Info("Order status changed",
		zap.String("order_id", orderID.String()),
		zap.String("from", string(previous)),
		zap.String("to", string(status)),
	)

	s.events.Dispatch(ctx, events.OrderEvent{
		Type:           events.EventTypeOrderStatusChanged,
		Order:          order,
		PreviousStatus: previous,
		OccurredAt:     now,
	})

	return order, nil
}
