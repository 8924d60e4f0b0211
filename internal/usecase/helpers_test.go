package usecase_test

import (
	"context"
	"maps"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/Gunvolt24/cartsync/internal/cache/rediscache"
	"github.com/Gunvolt24/cartsync/internal/domain"
	"github.com/Gunvolt24/cartsync/internal/ports"
)

type noopLogger struct{}

func (noopLogger) Infof(context.Context, string, ...any)  {}
func (noopLogger) Warnf(context.Context, string, ...any)  {}
func (noopLogger) Errorf(context.Context, string, ...any) {}

type txFunc = func(ctx context.Context, tx ports.CartTx) error

// runTx — поведение InUserTx для моков: выполнить fn на tx, затем «commit» с commitErr.
func runTx(tx ports.CartTx, commitErr error) func(context.Context, string, txFunc) error {
	return func(ctx context.Context, _ string, fn txFunc) error {
		if err := fn(ctx, tx); err != nil {
			return err
		}
		return commitErr
	}
}

// newRedisCache — CartStore поверх miniredis.
func newRedisCache(t *testing.T) *rediscache.CartStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return rediscache.NewCartStore(client, "cart", time.Hour)
}

var (
	_ ports.CartRepository = (*lockedRepo)(nil)
	_ ports.CartTx         = (*stagedTx)(nil)
)

// lockedRepo — CartRepository в памяти с видимостью как в Postgres READ COMMITTED:
// InUserTx держит блокировку пользователя до commit, изменения транзакции
// видны остальным только после commit.
type lockedRepo struct {
	userLock sync.Mutex

	mu        sync.Mutex
	committed map[string]domain.CartItems
	orders    []*domain.Order

	// contended — сигнал, что InUserTx ждёт занятую блокировку.
	// В тестах один пользователь, поэтому блокировка одна на весь репозиторий.
	contended chan struct{}
	// beforeCommit — однократный хук между fn и commit, вызывается под блокировкой.
	beforeCommit func()
}

func newLockedRepo(committed map[string]domain.CartItems) *lockedRepo {
	if committed == nil {
		committed = make(map[string]domain.CartItems)
	}
	return &lockedRepo{committed: committed, contended: make(chan struct{}, 1)}
}

func (r *lockedRepo) ItemsByUser(_ context.Context, userID string) (domain.CartItems, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot(userID), nil
}

func (r *lockedRepo) InUserTx(ctx context.Context, _ string, fn txFunc) error {
	if !r.userLock.TryLock() {
		select {
		case r.contended <- struct{}{}:
		default:
		}
		r.userLock.Lock()
	}
	defer r.userLock.Unlock()

	tx := &stagedTx{repo: r, staged: make(map[string]domain.CartItems), deleted: make(map[string]bool)}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	if hook := r.beforeCommit; hook != nil {
		r.beforeCommit = nil
		hook()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for id := range tx.deleted {
		delete(r.committed, id)
	}
	for id, items := range tx.staged {
		r.committed[id] = items
	}
	r.orders = append(r.orders, tx.orders...)
	return nil
}

func (r *lockedRepo) Orders() []*domain.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*domain.Order(nil), r.orders...)
}

func (r *lockedRepo) snapshot(userID string) domain.CartItems {
	items := maps.Clone(r.committed[userID])
	if items == nil {
		items = domain.CartItems{}
	}
	return items
}

// stagedTx — незакоммиченные изменения одной транзакции lockedRepo.
type stagedTx struct {
	repo    *lockedRepo
	staged  map[string]domain.CartItems
	deleted map[string]bool
	orders  []*domain.Order
}

func (t *stagedTx) Items(_ context.Context, userID string) (domain.CartItems, error) {
	if items, ok := t.staged[userID]; ok {
		return maps.Clone(items), nil
	}
	if t.deleted[userID] {
		return domain.CartItems{}, nil
	}
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()
	return t.repo.snapshot(userID), nil
}

func (t *stagedTx) ReplaceItems(_ context.Context, userID string, items domain.CartItems, _ time.Time) error {
	delete(t.deleted, userID)
	t.staged[userID] = maps.Clone(items)
	return nil
}

func (t *stagedTx) DeleteCart(_ context.Context, userID string) error {
	delete(t.staged, userID)
	t.deleted[userID] = true
	return nil
}

func (t *stagedTx) InsertOrder(_ context.Context, order *domain.Order) error {
	t.orders = append(t.orders, order)
	return nil
}

// awaitContention — дождаться, пока конкурирующий InUserTx упрётся в блокировку.
func awaitContention(t *testing.T, r *lockedRepo) {
	t.Helper()
	select {
	case <-r.contended:
	case <-time.After(2 * time.Second):
		t.Error("concurrent call never waited for the user lock")
	}
}
