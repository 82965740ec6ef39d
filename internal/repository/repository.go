package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/pricing"
)

// Repositories groups every store the service depends on
type Repositories struct {
	User           UserRepository
	Order          OrderRepository
	Settings       SettingsRepository
	IdempotencyKey IdempotencyKeyRepository
}

type UserRepository interface {
	GetByAPIKey(ctx context.Context, apiKey string) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	// RecordOrder atomically bumps the user's order analytics counters
	RecordOrder(ctx context.Context, id uuid.UUID, amount decimal.Decimal, at time.Time) error
}

type OrderRepository interface {
	// Create inserts the order and its items in a single transaction
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Order, error)
	List(ctx context.Context, status *domain.OrderStatus, limit, offset int) ([]*domain.Order, error)
	// UpdateStatus moves the order from one status to another. It fails with
	// *errors.ErrInvalidStateTransition when the stored status is no longer from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus, at time.Time) error
}

type SettingsRepository interface {
	// GetOrCreate returns the singleton settings, inserting defaults when absent
	GetOrCreate(ctx context.Context, defaults pricing.ShippingSettings) (*domain.Settings, error)
	UpdateShipping(ctx context.Context, shipping pricing.ShippingSettings) (*domain.Settings, error)
}

type IdempotencyKeyRepository interface {
	// Reserve claims key for a request. When the key is already held, reserved is false and
	// existing is the stored binding, which stays pending until Complete runs.
	Reserve(ctx context.Context, userID uuid.UUID, key, requestHash string) (existing *domain.IdempotencyKey, reserved bool, err error)
	// Complete binds a reserved key to the order its request created
	Complete(ctx context.Context, key *domain.IdempotencyKey) error
	// Release drops a reservation whose request did not create an order
	Release(ctx context.Context, userID uuid.UUID, key, requestHash string) error
}
