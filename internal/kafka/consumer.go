package kafka

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/Gunvolt24/cartsync/internal/ports"
	"github.com/Gunvolt24/cartsync/pkg/metrics"
	"github.com/segmentio/kafka-go"
)

// Проверка, что Consumer удовлетворяет интерфейсу верхнего уровня (порт приложения).
var _ ports.MessageConsumer = (*Consumer)(nil)

// reader — минимальный контракт над источником (kafka.Reader),
// чтобы легко подменять его моками в тестах.
type reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Config() kafka.ReaderConfig
	Close() error
}

// catalogApplier — зависимость на бизнес-логику,
// которая парсит/валидирует/применяет событие каталога.
type catalogApplier interface {
	ApplyProductEvent(ctx context.Context, raw []byte) error
}

// Consumer — читатель топика каталога: kafka.Reader + usecase + logger.
type Consumer struct {
	reader         reader
	service        catalogApplier
	log            ports.Logger
	processTimeout time.Duration
	retryInitial   time.Duration
	retryMax       time.Duration
	rnd            *rand.Rand // джиттер backoff; читается только из цикла Run
	closeOnce      sync.Once
}

// NewConsumer — конструктор; незаданные таймауты берутся по умолчанию.
func NewConsumer(cfg *ConsumerConfig, service catalogApplier, log ports.Logger) *Consumer {
	d := cfg.withDefaults()
	return &Consumer{
		reader:         kafka.NewReader(d.ReaderConfig()),
		service:        service,
		log:            log,
		processTimeout: d.ProcessTimeout,
		retryInitial:   d.RetryInitial,
		retryMax:       d.RetryMax,
		rnd:            rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run — цикл чтения без автокоммита:
//   - применено или невалидно: CommitMessages;
//   - временная ошибка: то же сообщение повторяется с backoff, пока не применится
//     или не отменят контекст (события одного товара применяются по порядку).
func (c *Consumer) Run(ctx context.Context) error {
	rc := c.reader.Config()
	c.log.Infof(ctx, "catalog consumer started topic=%s group_id=%s brokers=%v", rc.Topic, rc.GroupID, rc.Brokers)

	fetchBackoff := c.newBackoff()
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			pause := fetchBackoff.next()
			c.log.Warnf(ctx, "fetch failed: %v (will retry in %s)", err, pause)
			if !sleepCtx(ctx, pause) {
				return ctx.Err()
			}
			continue
		}

		fetchBackoff.reset()
		metrics.KafkaMessagesConsumed.WithLabelValues(rc.Topic).Inc()

		if !c.processWithRetry(ctx, rc.Topic, &msg) {
			return ctx.Err()
		}
		c.commitSafely(ctx, &msg)
	}
}

// processWithRetry — обработка до применения или признания невалидным.
// false — контекст отменён раньше, оффсет не коммитим.
func (c *Consumer) processWithRetry(ctx context.Context, topic string, msg *kafka.Message) bool {
	b := c.newBackoff()
	for !c.handleMessage(ctx, topic, msg) {
		if !sleepCtx(ctx, b.next()) {
			return false
		}
	}
	return true
}

// Close — закрыть reader (один раз).
func (c *Consumer) Close() (retErr error) {
	c.closeOnce.Do(func() {
		retErr = c.reader.Close()
	})
	return retErr
}
