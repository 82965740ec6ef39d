package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/pricing"
)

type recordedOrder struct {
	UserID uuid.UUID
	Amount decimal.Decimal
}

type fakeRecorder struct {
	mu    sync.Mutex
	calls []recordedOrder
	err   error
}

func (f *fakeRecorder) RecordOrder(_ context.Context, id uuid.UUID, amount decimal.Decimal, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, recordedOrder{UserID: id, Amount: amount})
	return f.err
}

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

type panicHandler struct{}

func (panicHandler) Name() string { return "panics" }
func (panicHandler) Handle(context.Context, OrderEvent) error {
	panic("boom")
}

func placedOrder() *domain.Order {
	return &domain.Order{
		ID:           uuid.New(),
		UserID:       uuid.New(),
		TotalPrice:   decimal.NewFromInt(1200),
		TaxPrice:     decimal.RequireFromString("128.57"),
		GSTBreakdown: pricing.ComputeGSTBreakdown(decimal.NewFromInt(1200)),
		Status:       domain.OrderStatusPending,
		Items:        []domain.OrderItem{{ProductID: "p-1", Quantity: 1, Price: decimal.NewFromInt(1200)}},
	}
}

func TestDispatcher_RunsAnalyticsAfterDispatch(t *testing.T) {
	recorder := &fakeRecorder{}
	d := NewDispatcher(zap.NewNop(), time.Second, NewAnalyticsRecorder(recorder))
	order := placedOrder()

	d.Dispatch(context.Background(), OrderEvent{Type: EventTypeOrderPlaced, Order: order})
	d.Close()

	require.Len(t, recorder.calls, 1)
	assert.Equal(t, order.UserID, recorder.calls[0].UserID)
	assert.True(t, recorder.calls[0].Amount.Equal(order.TotalPrice))
}

func TestDispatcher_HandlerFailuresAreIsolated(t *testing.T) {
	recorder := &fakeRecorder{err: errors.New("db down")}
	writer := &fakeWriter{}
	d := NewDispatcher(zap.NewNop(), time.Second,
		panicHandler{},
		NewAnalyticsRecorder(recorder),
		NewKafkaPublisherWithWriter(writer, "orders", zap.NewNop()),
	)

	d.Dispatch(context.Background(), OrderEvent{Type: EventTypeOrderPlaced, Order: placedOrder()})
	d.Close()

	assert.Len(t, recorder.calls, 1)
	assert.Len(t, writer.messages, 1)
}

func TestDispatcher_SurvivesCancelledRequestContext(t *testing.T) {
	recorder := &fakeRecorder{}
	d := NewDispatcher(zap.NewNop(), time.Second, NewAnalyticsRecorder(recorder))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d.Dispatch(ctx, OrderEvent{Type: EventTypeOrderPlaced, Order: placedOrder()})
	d.Close()

	assert.Len(t, recorder.calls, 1)
}

func TestAnalyticsRecorder_IgnoresStatusChanges(t *testing.T) {
	recorder := &fakeRecorder{}
	a := NewAnalyticsRecorder(recorder)

	err := a.Handle(context.Background(), OrderEvent{Type: EventTypeOrderStatusChanged, Order: placedOrder()})

	require.NoError(t, err)
	assert.Empty(t, recorder.calls)
}

func TestKafkaPublisher_MessageShape(t *testing.T) {
	writer := &fakeWriter{}
	p := NewKafkaPublisherWithWriter(writer, "orders", zap.NewNop())
	order := placedOrder()
	order.Status = domain.OrderStatusProcessing

	err := p.Handle(context.Background(), OrderEvent{
		Type:           EventTypeOrderStatusChanged,
		Order:          order,
		PreviousStatus: domain.OrderStatusPending,
		OccurredAt:     time.Now(),
	})
	require.NoError(t, err)
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	assert.Equal(t, order.ID.String(), string(msg.Key))

	var body map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, "order.status_changed", body["type"])
	assert.Equal(t, "Pending", body["previousStatus"])
	assert.Equal(t, "Processing", body["status"])
	assert.EqualValues(t, 1, body["itemCount"])
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	writer := &fakeWriter{err: errors.New("broker unavailable")}
	p := NewKafkaPublisherWithWriter(writer, "orders", zap.NewNop())

	err := p.Handle(context.Background(), OrderEvent{Type: EventTypeOrderPlaced, Order: placedOrder()})

	assert.Error(t, err)
}
