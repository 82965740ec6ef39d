package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/pricing"
)

// MessageWriter is satisfied by *kafka.Writer
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// orderMessage is the wire format of events on the orders topic
type orderMessage struct {
	ID             string               `json:"id"`
	Type           EventType            `json:"type"`
	OrderID        string               `json:"orderId"`
	UserID         string               `json:"userId"`
	Status         domain.OrderStatus   `json:"status"`
	PreviousStatus domain.OrderStatus   `json:"previousStatus,omitempty"`
	TotalPrice     decimal.Decimal      `json:"totalPrice"`
	ShippingPrice  decimal.Decimal      `json:"shippingPrice"`
	TaxPrice       decimal.Decimal      `json:"taxPrice"`
	GSTBreakdown   pricing.GSTBreakdown `json:"gstBreakdown"`
	ItemCount      int                  `json:"itemCount"`
	Timestamp      time.Time            `json:"timestamp"`
}

// KafkaPublisher publishes order events to Kafka
type KafkaPublisher struct {
	writer MessageWriter
	topic  string
	logger *zap.Logger
}

// NewKafkaPublisher creates a new Kafka-based event publisher
func NewKafkaPublisher(cfg config.KafkaConfig, logger *zap.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.OrdersTopic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}
	return NewKafkaPublisherWithWriter(writer, cfg.OrdersTopic, logger)
}

// NewKafkaPublisherWithWriter creates a publisher over an existing writer
func NewKafkaPublisherWithWriter(writer MessageWriter, topic string, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: writer,
		topic:  topic,
		logger: logger,
	}
}

func (p *KafkaPublisher) Name() string { return "kafka_publisher" }

// Handle publishes the event keyed by order ID so events for one order stay ordered
func (p *KafkaPublisher) Handle(ctx context.Context, event OrderEvent) error {
	order := event.Order
	msg := orderMessage{
		ID:             uuid.NewString(),
		Type:           event.Type,
		OrderID:        order.ID.String(),
		UserID:         order.UserID.String(),
		Status:         order.Status,
		PreviousStatus: event.PreviousStatus,
		TotalPrice:     order.TotalPrice,
		ShippingPrice:  order.ShippingPrice,
		TaxPrice:       order.TaxPrice,
		GSTBreakdown:   order.GSTBreakdown,
		ItemCount:      len(order.Items),
		Timestamp:      event.OccurredAt,
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.OrderID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	})
	if err != nil {
		return err
	}

	p.logger.Debug("Order event published",
		zap.String("topic", p.topic),
		zap.String("event", string(event.Type)),
		zap.String("order_id", msg.OrderID),
	)
	return nil
}

// Close flushes and closes the underlying writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
