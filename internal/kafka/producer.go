package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Gunvolt24/cartsync/internal/domain"
	"github.com/Gunvolt24/cartsync/internal/ports"
	"github.com/Gunvolt24/cartsync/pkg/metrics"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

// Проверка, что OrderPublisher и NoopPublisher удовлетворяют интерфейсу OrderPublisher.
var (
	_ ports.OrderPublisher = (*OrderPublisher)(nil)
	_ ports.OrderPublisher = NoopPublisher{}
)

// EventOrderPlaced — тип события в заголовке event-type.
const EventOrderPlaced = "order.placed"

// writer — минимальный контракт над kafka.Writer для подмены в тестах.
type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ProducerConfig — параметры записи в топик заказов.
type ProducerConfig struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

// OrderPlacedEvent — сообщение в топик заказов.
type OrderPlacedEvent struct {
	OrderID     uuid.UUID          `json:"order_id"`
	OrderNumber string             `json:"order_number"`
	UserID      string             `json:"user_id"`
	Status      string             `json:"status"`
	PlacedAt    time.Time          `json:"placed_at"`
	TotalAmount decimal.Decimal    `json:"total_amount"`
	Items       []domain.OrderItem `json:"items"`
}

// OrderPublisher — публикует оформленные заказы; ключ сообщения — user_id,
// поэтому заказы одного пользователя попадают в одну партицию по порядку.
type OrderPublisher struct {
	writer    writer
	topic     string
	log       ports.Logger
	closeOnce sync.Once
}

// NewOrderPublisher — конструктор поверх kafka.Writer (hash-балансировка, acks=all).
func NewOrderPublisher(cfg *ProducerConfig, log ports.Logger) *OrderPublisher {
	wt := cfg.WriteTimeout
	if wt <= 0 {
		wt = 5 * time.Second
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		WriteTimeout:           wt,
	}
	return &OrderPublisher{writer: w, topic: cfg.Topic, log: log}
}

// PublishOrderPlaced — синхронная запись события; ошибка возвращается вызывающему.
func (p *OrderPublisher) PublishOrderPlaced(ctx context.Context, order *domain.Order) error {
	payload, err := json.Marshal(OrderPlacedEvent{
		OrderID:     order.ID,
		OrderNumber: order.Number,
		UserID:      order.UserID,
		Status:      order.Status,
		PlacedAt:    order.PlacedAt,
		TotalAmount: order.TotalAmount,
		Items:       order.Items,
	})
	if err != nil {
		metrics.OrdersPublished.WithLabelValues("error").Inc()
		return fmt.Errorf("marshal order event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(order.UserID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(EventOrderPlaced)},
		},
		Time: order.PlacedAt,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		metrics.OrdersPublished.WithLabelValues("error").Inc()
		return fmt.Errorf("write order event topic=%s: %w", p.topic, err)
	}

	metrics.OrdersPublished.WithLabelValues("ok").Inc()
	p.log.Infof(ctx, "order event published topic=%s order=%s", p.topic, order.Number)
	return nil
}

// Close — дожидается отправки буфера и закрывает writer.
func (p *OrderPublisher) Close() (retErr error) {
	p.closeOnce.Do(func() {
		retErr = p.writer.Close()
	})
	return retErr
}

// NoopPublisher — используется, когда Kafka выключена.
type NoopPublisher struct{}

func (NoopPublisher) PublishOrderPlaced(context.Context, *domain.Order) error { return nil }
func (NoopPublisher) Close() error                                           { return nil }
