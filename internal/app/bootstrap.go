package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Gunvolt24/cartsync/config"
	"github.com/Gunvolt24/cartsync/internal/cache/memory"
	"github.com/Gunvolt24/cartsync/internal/cache/rediscache"
	"github.com/Gunvolt24/cartsync/internal/domain"
	"github.com/Gunvolt24/cartsync/internal/kafka"
	"github.com/Gunvolt24/cartsync/internal/ports"
	"github.com/Gunvolt24/cartsync/internal/repo/postgres"
	"github.com/Gunvolt24/cartsync/internal/scheduler"
	rest "github.com/Gunvolt24/cartsync/internal/transport/http"
	"github.com/Gunvolt24/cartsync/internal/usecase"
	"github.com/Gunvolt24/cartsync/migrations"
	"github.com/Gunvolt24/cartsync/pkg/logger"
	"github.com/Gunvolt24/cartsync/pkg/metrics"
	"github.com/Gunvolt24/cartsync/pkg/telemetry"
)

// App — собранное приложение и его внешние интерфейсы (HTTP, consumer, фоновые задачи).
type App struct {
	Logger          ports.Logger          // логгер
	HTTPServer      *http.Server          // HTTP-сервер
	KafkaConsumer   ports.MessageConsumer // консьюмер каталога; nil, если Kafka выключена
	Jobs            []ports.BackgroundJob // фоновые задачи (синхронизация корзин)
	gracefulTimeout time.Duration         // время ожидания завершения HTTP-сервера
}

// Cleanup — функция освобождения ресурсов.
type Cleanup func()

// applyGinMode — устанавливает режим Gin по строке;
// неизвестное значение → debug и предупреждение в лог.
func applyGinMode(ctx context.Context, mode string, log ports.Logger) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	case "", "debug":
		gin.SetMode(gin.DebugMode)
	default:
		gin.SetMode(gin.DebugMode)
		log.Warnf(ctx, "unknown GIN_MODE=%q, fallback to debug", mode)
	}
}

// ReconcileJob — адаптер Reconciler → scheduler.JobFunc.
// Частичный прогон считается ошибкой, чтобы он попал в лог планировщика.
func ReconcileJob(r *usecase.Reconciler) scheduler.JobFunc {
	return func(ctx context.Context) error {
		summary, err := r.RunOnce(ctx)
		if err != nil {
			return err
		}
		if !summary.OK() {
			return fmt.Errorf("%w: %d of %d users", domain.ErrReconcileFailed, len(summary.Failed), summary.Total)
		}
		return nil
	}
}

// Bootstrap — собирает зависимости и возвращает приложение, функцию очистки и ошибку.
func Bootstrap(ctx context.Context, cfg *config.Config) (*App, Cleanup, error) {
	// Логгер (dev/prod режим задаётся конфигурацией).
	logg, cleanupLogger, err := logger.NewZapLogger(cfg.Logger.IsProd)
	if err != nil {
		return nil, func() {}, err
	}

	// Регистрация метрик (Prometheus).
	metrics.MustRegister()

	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if cErr := closers[i](); cErr != nil {
				logg.Warnf(ctx, "cleanup: %v", cErr)
			}
		}
		if cErr := cleanupLogger(); cErr != nil {
			logg.Warnf(ctx, "cleanup logger: %v", cErr)
		}
	}
	fail := func(err error) (*App, Cleanup, error) {
		cleanup()
		return nil, func() {}, err
	}

	// Миграции до открытия пула: схема должна быть актуальной к первому запросу.
	if cfg.Postgres.AutoMigrate {
		n, mErr := migrations.Up(ctx, cfg.Postgres.DSN)
		if mErr != nil {
			return fail(fmt.Errorf("apply migrations: %w", mErr))
		}
		logg.Infof(ctx, "migrations applied count=%d", n)
	}

	// Пул подключений Postgres
	pool, err := postgres.NewPool(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, func() error { pool.Close(); return nil })

	// Трейсинг OTEL (при включённой конфигурации); по умолчанию — no-op.
	if cfg.Tracing.Enabled {
		shutdownTrace, tErr := telemetry.SetupTracing(ctx, telemetry.Options{
			ServiceName: cfg.Tracing.ServiceName,
			Endpoint:    cfg.Tracing.Endpoint,
			SampleRatio: cfg.Tracing.SampleRatio,
		})
		if tErr != nil {
			logg.Warnf(ctx, "failed to setup tracing: %v", tErr)
		} else {
			logg.Infof(ctx, "otel tracing enabled service=%s endpoint=%s sample=%.2f",
				cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
			closers = append(closers, func() error { return shutdownTrace(context.Background()) })
		}
	}

	// Быстрый слой корзин.
	cache, closeCache, err := newCartCache(ctx, cfg, logg)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, closeCache.Close)

	// Сборка зависимостей доменного слоя.
	cartRepo := postgres.NewCartRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)

	var publisher ports.OrderPublisher = kafka.NoopPublisher{}
	var consumer ports.MessageConsumer
	if cfg.Kafka.Enabled {
		publisher = kafka.NewOrderPublisher(&kafka.ProducerConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.OrdersTopic,
		}, logg)

		consumer = kafka.NewConsumer(&kafka.ConsumerConfig{
			Brokers:        cfg.Kafka.Brokers,
			GroupID:        cfg.Kafka.GroupID,
			Topic:          cfg.Kafka.CatalogTopic,
			StartOffset:    cfg.Kafka.StartOffset,
			ProcessTimeout: cfg.Kafka.ProcessTimeout,
			RetryInitial:   cfg.Kafka.RetryInitial,
			RetryMax:       cfg.Kafka.RetryMax,
		}, usecase.NewCatalogService(productRepo, logg), logg)
	}
	// Publisher закрывается в cleanup, уже после остановки HTTP.
	closers = append(closers, publisher.Close)

	cartService := usecase.NewCartService(cache, cartRepo, logg)
	checkoutService := usecase.NewCheckoutService(cache, cartRepo, productRepo, publisher, logg)
	orderService := usecase.NewOrderService(orderRepo, logg)

	reconciler := usecase.NewReconciler(cache, cartRepo, logg, usecase.ReconcilerConfig{
		Concurrency: cfg.Sync.Concurrency,
		RunTimeout:  cfg.Sync.RunTimeout,
	})
	syncJob := scheduler.NewPeriodic(ReconcileJob(reconciler), scheduler.Config{
		Name:            "cart-sync",
		Interval:        cfg.Sync.Interval,
		FlushOnShutdown: cfg.Sync.FlushOnShutdown,
	}, logg)

	// Режим Gin.
	applyGinMode(ctx, cfg.HTTP.GinMode, logg)

	// Имя сервиса для otelgin (только при включённом трейсинге).
	otelServiceName := ""
	if cfg.Tracing.Enabled {
		otelServiceName = cfg.Tracing.ServiceName
	}

	// Роутер и HTTP-сервер.
	httpHandler := rest.NewHandler(cartService, checkoutService, orderService, logg, cfg.HTTP.HandlerTimeout)
	router := rest.NewRouter(httpHandler, otelServiceName)

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}

	app := &App{
		Logger:          logg,
		HTTPServer:      httpSrv,
		KafkaConsumer:   consumer,
		Jobs:            []ports.BackgroundJob{syncJob},
		gracefulTimeout: cfg.HTTP.GracefulTimeout,
	}

	return app, cleanup, nil
}

// NewReconciler — только то, что нужно для разового прогона синхронизации (cmd/cart-sync).
func NewReconciler(ctx context.Context, cfg *config.Config, log ports.Logger) (*usecase.Reconciler, Cleanup, error) {
	pool, err := postgres.NewPool(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
	if err != nil {
		return nil, func() {}, err
	}
	if cfg.Cart.Driver == "memory" {
		log.Warnf(ctx, "cart cache driver=memory in a separate process has no dirty carts to flush")
	}
	cache, closeCache, err := newCartCache(ctx, cfg, log)
	if err != nil {
		pool.Close()
		return nil, func() {}, err
	}

	r := usecase.NewReconciler(cache, postgres.NewCartRepository(pool), log, usecase.ReconcilerConfig{
		Concurrency: cfg.Sync.Concurrency,
		RunTimeout:  cfg.Sync.RunTimeout,
	})
	cleanup := func() {
		if cErr := closeCache.Close(); cErr != nil {
			log.Warnf(ctx, "close cache: %v", cErr)
		}
		pool.Close()
	}
	return r, cleanup, nil
}

// closerFunc — функция как io.Closer.
type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// newCartCache — кэш корзин по драйверу: redis (прод) или memory (локальный запуск).
func newCartCache(ctx context.Context, cfg *config.Config, log ports.Logger) (ports.CartCache, io.Closer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Cart.Driver)) {
	case "memory":
		log.Warnf(ctx, "cart cache driver=memory: dirty carts are lost on restart")
		return memory.NewCartStore(cfg.Cart.MemoryCapacity, cfg.Cart.TTL), closerFunc(func() error { return nil }), nil
	case "", "redis":
		client, err := rediscache.NewClient(ctx, rediscache.Options{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
			PoolSize:     cfg.Redis.PoolSize,
		})
		if err != nil {
			return nil, nil, err
		}
		log.Infof(ctx, "cart cache driver=redis addr=%s prefix=%s ttl=%s", cfg.Redis.Addr, cfg.Cart.KeyPrefix, cfg.Cart.TTL)
		return rediscache.NewCartStore(client, cfg.Cart.KeyPrefix, cfg.Cart.TTL), client, nil
	default:
		return nil, nil, fmt.Errorf("unknown cart driver %q", cfg.Cart.Driver)
	}
}

// Run — запускает HTTP-сервер, консьюмера и фоновые задачи; ждёт отмены контекста
// или ошибки и останавливает их.
func (a *App) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)

	// Запуск консьюмера.
	if a.KafkaConsumer != nil {
		go func() {
			a.Logger.Infof(ctx, "kafka consumer starting")
			if err := a.KafkaConsumer.Run(runCtx); err != nil {
				errCh <- err
			}
		}()
	}

	// Фоновые задачи дорабатывают после отмены (финальная синхронизация), поэтому ждём их отдельно.
	var jobs sync.WaitGroup
	for _, job := range a.Jobs {
		jobs.Add(1)
		go func(job ports.BackgroundJob) {
			defer jobs.Done()
			if err := job.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				a.Logger.Warnf(ctx, "background job stopped: %v", err)
			}
		}(job)
	}

	// Запуск HTTP-сервера.
	go func() {
		a.Logger.Infof(ctx, "http server starting (addr=%s)", a.HTTPServer.Addr)
		if err := a.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Ожидание сигнала остановки или фоновой ошибки.
	select {
	case <-ctx.Done():
		a.Logger.Infof(ctx, "shutdown requested, starting graceful shutdown")
	case err := <-errCh:
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			a.Logger.Infof(ctx, "background component stopped: %v", err)
		} else {
			a.Logger.Warnf(ctx, "background error: %v", err)
		}
	}

	gt := a.gracefulTimeout
	if gt <= 0 {
		gt = 5 * time.Second
	}

	// Корректная остановка HTTP-сервера: новые изменения корзин больше не приходят.
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), gt)
	defer cancelShutdown()

	if err := a.HTTPServer.Shutdown(shutdownCtx); err != nil {
		a.Logger.Warnf(ctx, "http server shutdown failed: %v", err)
	} else {
		a.Logger.Infof(ctx, "http server stopped gracefully")
	}

	// Остановка Kafka-консьюмера
	if a.KafkaConsumer != nil {
		if err := a.KafkaConsumer.Close(); err != nil {
			a.Logger.Warnf(ctx, "kafka consumer close error: %v", err)
		}
	}

	// Остановка фоновых задач и финальная синхронизация.
	cancel()
	jobs.Wait()

	a.Logger.Infof(ctx, "service stopped")
	return nil
}
