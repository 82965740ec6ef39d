package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderRecorder is the subset of the user store the analytics handler needs
type OrderRecorder interface {
	RecordOrder(ctx context.Context, id uuid.UUID, amount decimal.Decimal, at time.Time) error
}

// AnalyticsRecorder bumps the purchasing user's order counters when an order is placed
type AnalyticsRecorder struct {
	users OrderRecorder
	now   func() time.Time
}

func NewAnalyticsRecorder(users OrderRecorder) *AnalyticsRecorder {
	return &AnalyticsRecorder{users: users, now: time.Now}
}

func (a *AnalyticsRecorder) Name() string { return "user_analytics" }

func (a *AnalyticsRecorder) Handle(ctx context.Context, event OrderEvent) error {
	if event.Type != EventTypeOrderPlaced {
		return nil
	}
	return a.users.RecordOrder(ctx, event.Order.UserID, event.Order.TotalPrice, a.now())
}
