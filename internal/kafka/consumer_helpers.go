package kafka

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Gunvolt24/cartsync/pkg/metrics"
	"github.com/Gunvolt24/cartsync/pkg/validate"
)

// verdict — что делать с оффсетом после обработки.
type verdict int

const (
	verdictApplied verdict = iota // применено, коммит
	verdictSkipped                // невалидное событие, коммит без применения
	verdictRetry                  // временная ошибка, без коммита
)

// classify — исход ApplyProductEvent.
func classify(err error) verdict {
	switch {
	case err == nil:
		return verdictApplied
	case errors.Is(err, validate.ErrInvalidProductEvent):
		return verdictSkipped
	default:
		return verdictRetry
	}
}

// handleMessage — одна попытка применить событие; true — оффсет можно коммитить.
func (c *Consumer) handleMessage(ctx context.Context, topic string, msg *kafka.Message) bool {
	pctx, cancel := context.WithTimeout(ctx, c.processTimeout)
	err := c.service.ApplyProductEvent(pctx, msg.Value)
	cancel()

	switch classify(err) {
	case verdictApplied:
		metrics.KafkaMessagesProcessed.WithLabelValues(topic).Inc()
		return true
	case verdictSkipped:
		metrics.KafkaMessagesFailed.WithLabelValues(topic).Inc()
		c.log.Warnf(ctx, "invalid product event partition=%d offset=%d key=%s: %v (skipped)",
			msg.Partition, msg.Offset, msg.Key, err)
		return true
	default:
		metrics.KafkaMessagesFailed.WithLabelValues(topic).Inc()
		c.log.Warnf(ctx, "apply product event failed partition=%d offset=%d: %v (will retry without commit)",
			msg.Partition, msg.Offset, err)
		return false
	}
}

// commitSafely — коммит оффсета; ошибка только логируется (сообщение придёт повторно).
func (c *Consumer) commitSafely(ctx context.Context, msg *kafka.Message) {
	if err := c.reader.CommitMessages(ctx, *msg); err != nil {
		c.log.Warnf(ctx, "commit failed offset=%d: %v", msg.Offset, err)
	}
}

// backoff — экспоненциальная пауза с equal jitter: половина интервала фиксирована,
// вторая половина случайна. Не потокобезопасен: у каждого цикла свой экземпляр.
type backoff struct {
	initial time.Duration
	max     time.Duration
	cur     time.Duration
	rnd     *rand.Rand
}

func (c *Consumer) newBackoff() *backoff {
	return &backoff{initial: c.retryInitial, max: c.retryMax, cur: c.retryInitial, rnd: c.rnd}
}

// next — пауза перед очередной попыткой; следующий интервал удваивается до max.
func (b *backoff) next() time.Duration {
	d := b.cur
	b.cur = min(b.cur*2, b.max)
	if d <= 0 {
		return 0
	}
	half := d / 2
	return half + time.Duration(b.rnd.Int63n(int64(d-half)+1))
}

func (b *backoff) reset() { b.cur = b.initial }

// sleepCtx — ждать d; false, если контекст отменили раньше.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
