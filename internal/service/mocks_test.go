package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/events"
	"github.com/jafarshop/storefront/internal/pricing"
	"github.com/jafarshop/storefront/pkg/errors"
)

// MockOrderRepository implements repository.OrderRepository in memory
type MockOrderRepository struct {
	Orders      map[uuid.UUID]*domain.Order
	CreateErr   error
	UpdateErr   error
	StatusCalls []domain.OrderStatus
}

func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{Orders: make(map[uuid.UUID]*domain.Order)}
}

func (m *MockOrderRepository) Create(_ context.Context, order *domain.Order) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	stored := *order
	m.Orders[order.ID] = &stored
	return nil
}

func (m *MockOrderRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	order, ok := m.Orders[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	copied := *order
	return &copied, nil
}

func (m *MockOrderRepository) ListByUserID(_ context.Context, userID uuid.UUID, _, _ int) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, order := range m.Orders {
		if order.UserID == userID {
			out = append(out, order)
		}
	}
	return out, nil
}

func (m *MockOrderRepository) List(_ context.Context, status *domain.OrderStatus, _, _ int) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, order := range m.Orders {
		if status == nil || order.Status == *status {
			out = append(out, order)
		}
	}
	return out, nil
}

func (m *MockOrderRepository) UpdateStatus(_ context.Context, id uuid.UUID, from, status domain.OrderStatus, _ time.Time) error {
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	order, ok := m.Orders[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	if order.Status != from {
		return &errors.ErrInvalidStateTransition{From: order.Status, To: status}
	}
	order.Status = status
	m.StatusCalls = append(m.StatusCalls, status)
	return nil
}

// MockSettingsRepository returns fixed settings or an error
type MockSettingsRepository struct {
	Settings *domain.Settings
	GetErr   error
	Updated  *pricing.ShippingSettings
}

func (m *MockSettingsRepository) GetOrCreate(_ context.Context, defaults pricing.ShippingSettings) (*domain.Settings, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	if m.Settings == nil {
		m.Settings = &domain.Settings{Shipping: defaults}
	}
	return m.Settings, nil
}

func (m *MockSettingsRepository) UpdateShipping(_ context.Context, shipping pricing.ShippingSettings) (*domain.Settings, error) {
	m.Updated = &shipping
	m.Settings = &domain.Settings{Shipping: shipping}
	return m.Settings, nil
}

// MockDispatcher captures dispatched events
type MockDispatcher struct {
	mu     sync.Mutex
	Events []events.OrderEvent
}

func (m *MockDispatcher) Dispatch(_ context.Context, event events.OrderEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
}
