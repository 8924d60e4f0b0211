package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/Gunvolt24/cartsync/internal/domain"
	"github.com/Gunvolt24/cartsync/internal/ports"
	"github.com/Gunvolt24/cartsync/pkg/metrics"
)

// ErrRunInProgress — предыдущий прогон ещё не завершён; новый не запускается и не ставится в очередь.
var ErrRunInProgress = errors.New("reconcile run already in progress")

// UserFailure — пользователь, которого не удалось синхронизировать. Err оборачивает ErrReconcileFailed.
type UserFailure struct {
	UserID string
	Err    error
}

// RunSummary — итог одного прогона синхронизации.
type RunSummary struct {
	StartedAt time.Time
	Duration  time.Duration
	Total     int
	Synced    []string
	Failed    []UserFailure
}

// OK — все пользователи прогона синхронизированы.
func (s RunSummary) OK() bool { return len(s.Failed) == 0 }

// ReconcilerConfig — параметры прогона.
type ReconcilerConfig struct {
	Concurrency int           // одновременных транзакций; <= 0 → 1
	RunTimeout  time.Duration // дедлайн прогона; 0 — без дедлайна
}

// Reconciler — переносит грязные корзины из кэша в БД.
// Прогоны не пересекаются; ошибка одного пользователя не прерывает остальных.
type Reconciler struct {
	cache ports.CartCache
	repo  ports.CartRepository
	log   ports.Logger
	cfg   ReconcilerConfig
	now   func() time.Time

	running atomic.Bool
}

// NewReconciler — DI-конструктор.
func NewReconciler(cache ports.CartCache, repo ports.CartRepository, log ports.Logger, cfg ReconcilerConfig) *Reconciler {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Reconciler{
		cache: cache,
		repo:  repo,
		log:   log,
		cfg:   cfg,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// RunOnce — один прогон:
//  1. снимок множества грязных пользователей (добавленные позже попадут в следующий прогон);
//  2. для каждого пользователя отдельная транзакция под его блокировкой;
//  3. итог по каждому пользователю собирается в RunSummary.
//
// Ошибка возвращается, только если прогон не начался (занят или недоступен кэш).
func (r *Reconciler) RunOnce(ctx context.Context) (RunSummary, error) {
	if !r.running.CompareAndSwap(false, true) {
		metrics.ReconcileRuns.WithLabelValues("skipped").Inc()
		return RunSummary{}, ErrRunInProgress
	}
	defer r.running.Store(false)

	if r.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.RunTimeout)
		defer cancel()
	}

	ctx, span := tracer.Start(ctx, "Reconciler.RunOnce")
	defer span.End()

	summary := RunSummary{StartedAt: r.now()}
	start := time.Now()

	users, err := r.cache.DirtyUsers(ctx)
	if err != nil {
		r.log.Errorf(ctx, "reconcile: dirty set read failed err=%v", err)
		metrics.ReconcileRuns.WithLabelValues("failed").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return summary, unavailable("read dirty set", err)
	}
	summary.Total = len(users)
	metrics.DirtyUsers.Set(float64(len(users)))
	span.SetAttributes(attribute.Int("reconcile.users", len(users)))

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(r.cfg.Concurrency)
	for _, userID := range users {
		g.Go(func() error {
			err := r.flushUser(ctx, userID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				summary.Failed = append(summary.Failed, UserFailure{
					UserID: userID,
					Err:    fmt.Errorf("%w: user=%s: %w", domain.ErrReconcileFailed, userID, err),
				})
				return nil
			}
			summary.Synced = append(summary.Synced, userID)
			return nil
		})
	}
	_ = g.Wait()

	sort.Strings(summary.Synced)
	sort.Slice(summary.Failed, func(i, j int) bool { return summary.Failed[i].UserID < summary.Failed[j].UserID })
	summary.Duration = time.Since(start)

	r.report(ctx, summary)
	if !summary.OK() {
		span.SetStatus(codes.Error, fmt.Sprintf("%d users failed", len(summary.Failed)))
	}
	return summary, nil
}

// flushUser — перенос корзины одного пользователя.
// Пометка снимается только после commit и только если её версия не изменилась:
// изменение, пришедшее во время переноса, оставит пользователя в следующем прогоне.
// При ошибке переноса пометка не трогается.
func (r *Reconciler) flushUser(ctx context.Context, userID string) error {
	version, err := r.cache.DirtyVersion(ctx, userID)
	if err != nil {
		return fmt.Errorf("read dirty mark: %w", err)
	}

	err = r.repo.InUserTx(ctx, userID, func(ctx context.Context, tx ports.CartTx) error {
		items, err := r.cache.Items(ctx, userID)
		if err != nil {
			return fmt.Errorf("read cart: %w", err)
		}
		if items.Empty() {
			// Корзины нет в кэше (очищена, оформлена или истекла) — в БД её тоже не должно быть.
			return tx.DeleteCart(ctx, userID)
		}
		return tx.ReplaceItems(ctx, userID, items, r.now())
	})
	if err != nil {
		return err
	}

	if version == 0 {
		return nil
	}
	// БД уже актуальна; если пометку снять не удалось, следующий прогон повторит перенос.
	unmarked, err := r.cache.UnmarkDirty(ctx, userID, version)
	if err != nil {
		return fmt.Errorf("unmark dirty: %w", err)
	}
	if !unmarked {
		r.log.Infof(ctx, "reconcile: user=%s changed during flush, stays dirty", userID)
	}
	return nil
}

// report — логи и метрики как побочный эффект итога прогона.
func (r *Reconciler) report(ctx context.Context, s RunSummary) {
	metrics.ReconcileDuration.Observe(s.Duration.Seconds())
	metrics.ReconcileUsers.WithLabelValues("synced").Add(float64(len(s.Synced)))
	metrics.ReconcileUsers.WithLabelValues("failed").Add(float64(len(s.Failed)))

	for _, f := range s.Failed {
		r.log.Warnf(ctx, "reconcile: user=%s left dirty err=%v", f.UserID, f.Err)
	}

	if s.OK() {
		metrics.ReconcileRuns.WithLabelValues("completed").Inc()
		r.log.Infof(ctx, "reconcile run done users=%d synced=%d took=%s", s.Total, len(s.Synced), s.Duration)
		return
	}
	metrics.ReconcileRuns.WithLabelValues("failed").Inc()
	r.log.Errorf(ctx, "reconcile run done users=%d synced=%d failed=%d took=%s",
		s.Total, len(s.Synced), len(s.Failed), s.Duration)
}
