//go:build integration

package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Gunvolt24/cartsync/internal/domain"
	ikafka "github.com/Gunvolt24/cartsync/internal/kafka"
	"github.com/Gunvolt24/cartsync/internal/ports"
	pgrepo "github.com/Gunvolt24/cartsync/internal/repo/postgres"
	"github.com/Gunvolt24/cartsync/internal/testutil"
	"github.com/Gunvolt24/cartsync/internal/usecase"
	"github.com/Gunvolt24/cartsync/pkg/logger"
)

// 1) Событие каталога сохраняет цену товара
func TestKafka_ProductEvent_Saved_TC(t *testing.T) {
	ctx, cancel, products, logg, cleanup, kf := newStack(t)
	defer cancel()
	defer cleanup()

	ts := testutil.NewTopicSet(kf.BaseTopic, t.Name())
	topic, group := ts.Topic, ts.Group
	require.NoError(t, testutil.EnsureTopics(ctx, kf.Brokers, topic))

	startConsumer(t, ctx, kf.Brokers, topic, group, "first", usecase.NewCatalogService(products, logg), logg)
	time.Sleep(1500 * time.Millisecond)

	id := testutil.ProductID()
	writeMsg(t, ctx, kf.Brokers, topic, productEvent(t, id, "3.99"))

	waitPrice(t, ctx, products, id, "3.99")
}

// 2) Не-JSON и невалидное событие пропускаются, следующее валидное — сохраняется
func TestKafka_Skip_Invalid_Then_SaveValid_TC(t *testing.T) {
	ctx, cancel, products, logg, cleanup, kf := newStack(t)
	defer cancel()
	defer cleanup()

	ts := testutil.NewTopicSet(kf.BaseTopic + "-invalid", t.Name())
	topic, group := ts.Topic, ts.Group
	require.NoError(t, testutil.EnsureTopics(ctx, kf.Brokers, topic))

	startConsumer(t, ctx, kf.Brokers, topic, group, "first", usecase.NewCatalogService(products, logg), logg)
	time.Sleep(1500 * time.Millisecond)

	// 1) мусор
	writeMsg(t, ctx, kf.Brokers, topic, []byte("not-a-json"))
	// 2) отрицательная цена — валидатор отклонит
	bad := testutil.ProductID()
	writeMsg(t, ctx, kf.Brokers, topic, productEvent(t, bad, "-1.00"))
	// 3) валидное событие
	ok := testutil.ProductID()
	writeMsg(t, ctx, kf.Brokers, topic, productEvent(t, ok, "10.00"))

	waitPrice(t, ctx, products, ok, "10.00")

	got, err := products.Prices(ctx, []string{bad})
	require.NoError(t, err)
	require.Empty(t, got)
}

// 3) Удаление товара из каталога
func TestKafka_ProductDeleted_TC(t *testing.T) {
	ctx, cancel, products, logg, cleanup, kf := newStack(t)
	defer cancel()
	defer cleanup()

	ts := testutil.NewTopicSet(kf.BaseTopic + "-delete", t.Name())
	topic, group := ts.Topic, ts.Group
	require.NoError(t, testutil.EnsureTopics(ctx, kf.Brokers, topic))

	startConsumer(t, ctx, kf.Brokers, topic, group, "first", usecase.NewCatalogService(products, logg), logg)
	time.Sleep(1500 * time.Millisecond)

	id := testutil.ProductID()
	writeMsg(t, ctx, kf.Brokers, topic, productEvent(t, id, "5.00"))
	waitPrice(t, ctx, products, id, "5.00")

	raw, err := json.Marshal(domain.ProductEvent{ProductID: id, Deleted: true})
	require.NoError(t, err)
	writeMsg(t, ctx, kf.Brokers, topic, raw)

	deadline := time.Now().Add(20 * time.Second)
	for {
		got, err := products.Prices(ctx, []string{id})
		require.NoError(t, err)
		if len(got) == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("product %s not deleted in time", id)
		}
		time.Sleep(200 * time.Millisecond)
	}
}

// 4) At-least-once через рестарт: временная ошибка без коммита => передоставка новому консьюмеру группы
func TestKafka_Redelivery_AfterRestart_NoCommit_TC(t *testing.T) {
	ctx, cancel, products, logg, cleanup, kf := newStack(t)
	defer cancel()
	defer cleanup()

	ts := testutil.NewTopicSet(kf.BaseTopic + "-redelivery", t.Name())
	topic, group := ts.Topic, ts.Group
	require.NoError(t, testutil.EnsureTopics(ctx, kf.Brokers, topic))

	id := testutil.ProductID()
	writeMsg(t, ctx, kf.Brokers, topic, productEvent(t, id, "7.50"))

	// Фаза 1: всегда временная ошибка => оффсет НЕ коммитится
	runCtx1, cancelRun1 := context.WithCancel(ctx)
	consumerFail := ikafka.NewConsumer(&ikafka.ConsumerConfig{
		Brokers:        kf.Brokers,
		Topic:          topic,
		GroupID:        group,
		StartOffset:    "first",
		ProcessTimeout: 300 * time.Millisecond,
		RetryInitial:   100 * time.Millisecond,
		RetryMax:       300 * time.Millisecond,
	}, alwaysTempFail{}, logg)
	done := make(chan struct{})
	go func() { _ = consumerFail.Run(runCtx1); close(done) }()

	time.Sleep(3 * time.Second)
	cancelRun1()
	<-done
	_ = consumerFail.Close()

	// Фаза 2: та же группа, рабочий сервис
	startConsumer(t, ctx, kf.Brokers, topic, group, "first", usecase.NewCatalogService(products, logg), logg)

	waitPrice(t, ctx, products, id, "7.50")
}

// 5) Публикация заказа: ключ — user_id, заголовок event-type, тело — JSON заказа
func TestKafka_OrderPublisher_RoundTrip_TC(t *testing.T) {
	ctxStart, cancelStart := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancelStart()

	kf, stopKF, err := testutil.StartKafkaTC(ctxStart, "orders-itc")
	require.NoError(t, err)
	t.Cleanup(func() { _ = stopKF(context.Background()) })

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	logg, closer, err := logger.NewZapLogger(false)
	require.NoError(t, err)
	defer func() { _ = closer() }()

	topic := testutil.NewTopicSet(kf.BaseTopic, t.Name()).Topic
	require.NoError(t, testutil.EnsureTopics(ctx, kf.Brokers, topic))

	pub := ikafka.NewOrderPublisher(&ikafka.ProducerConfig{Brokers: kf.Brokers, Topic: topic}, logg)
	defer func() { _ = pub.Close() }()

	order := testutil.MakeOrder(testutil.UserID())
	require.NoError(t, pub.PublishOrderPlaced(ctx, &order))

	msg, err := testutil.ReadOne(ctx, kf.Brokers, topic)
	require.NoError(t, err)
	require.Equal(t, order.UserID, string(msg.Key))
	require.Len(t, msg.Headers, 1)
	require.Equal(t, ikafka.EventOrderPlaced, string(msg.Headers[0].Value))

	var ev ikafka.OrderPlacedEvent
	require.NoError(t, json.Unmarshal(msg.Value, &ev))
	require.Equal(t, order.ID, ev.OrderID)
	require.Equal(t, order.Number, ev.OrderNumber)
	require.True(t, order.TotalAmount.Equal(ev.TotalAmount))
	require.Len(t, ev.Items, len(order.Items))
}

// -----------------функции-помощники-----------------

func newStack(t *testing.T) (
	ctx context.Context,
	cancel func(),
	products *pgrepo.ProductRepository,
	logg ports.Logger,
	cleanup func(),
	kf *testutil.KafkaEnv,
) {
	t.Helper()

	// Длинный контекст — на контейнеры
	ctxStart, cancelStart := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(cancelStart)

	pg, stopPG, err := testutil.StartPostgresTC(ctxStart)
	require.NoError(t, err)
	t.Cleanup(func() { _ = stopPG(context.Background()) })
	require.NoError(t, testutil.ApplyMigrationsGoose(pg.DSN))

	kf, stopKF, err := testutil.StartKafkaTC(ctxStart, "catalog-itc")
	require.NoError(t, err)
	t.Cleanup(func() { _ = stopKF(context.Background()) })

	// Короткий контекст — сам тест
	ctx, cancel = context.WithTimeout(context.Background(), 90*time.Second)

	var pool *pgxpool.Pool
	pool, err = pgxpool.New(ctx, pg.DSN)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	var closer func() error
	logg, closer, err = logger.NewZapLogger(false)
	require.NoError(t, err)
	cleanup = func() { _ = closer() }

	products = pgrepo.NewProductRepository(pool)
	return ctx, cancel, products, logg, cleanup, kf
}

func startConsumer(t *testing.T, ctx context.Context, brokers []string, topic, group, offset string, svc *usecase.CatalogService, logg ports.Logger) {
	t.Helper()
	consumer := ikafka.NewConsumer(&ikafka.ConsumerConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        group,
		StartOffset:    offset,
		ProcessTimeout: 3 * time.Second,
		RetryInitial:   200 * time.Millisecond,
		RetryMax:       2 * time.Second,
	}, svc, logg)

	runCtx, cancelRun := context.WithCancel(ctx)
	t.Cleanup(func() {
		cancelRun()
		_ = consumer.Close()
	})
	go func() { _ = consumer.Run(runCtx) }()
}

func productEvent(t *testing.T, id, price string) []byte {
	t.Helper()
	p := decimal.RequireFromString(price)
	raw, err := json.Marshal(domain.ProductEvent{ProductID: id, Name: "item " + id, Price: &p})
	require.NoError(t, err)
	return raw
}

func waitPrice(t *testing.T, ctx context.Context, products *pgrepo.ProductRepository, id, want string) {
	t.Helper()
	deadline := time.Now().Add(20 * time.Second)
	for {
		got, err := products.Prices(ctx, []string{id})
		require.NoError(t, err)
		if price, ok := got[id]; ok {
			require.True(t, decimal.RequireFromString(want).Equal(price), "price %s", price)
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("product %s not saved in time", id)
		}
		time.Sleep(200 * time.Millisecond)
	}
}

func writeMsg(t *testing.T, ctx context.Context, brokers []string, topic string, payload []byte) {
	t.Helper()
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		RequiredAcks: kafka.RequireAll,
		Balancer:     &kafka.LeastBytes{},
	}
	defer w.Close()
	require.NoError(t, w.WriteMessages(ctx, kafka.Message{Value: payload}))
}

// сервис-заглушка, который всегда возвращает временную ошибку (оффсет не коммитится)
type alwaysTempFail struct{}

func (alwaysTempFail) ApplyProductEvent(context.Context, []byte) error {
	return errors.New("temporary failure")
}
