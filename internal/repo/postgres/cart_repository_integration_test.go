//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Gunvolt24/cartsync/internal/domain"
	"github.com/Gunvolt24/cartsync/internal/ports"
	pgrepo "github.com/Gunvolt24/cartsync/internal/repo/postgres"
	"github.com/Gunvolt24/cartsync/internal/testutil"
)

// 1) ReplaceItems + ItemsByUser: полная замена позиций
func TestCartRepo_ReplaceItems_TC(t *testing.T) {
	t.Parallel()
	pool := startDB(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo := pgrepo.NewCartRepository(pool)
	user := testutil.UserID()

	first := domain.CartItems{"A": 2, "B": 1}
	require.NoError(t, repo.InUserTx(ctx, user, func(ctx context.Context, tx ports.CartTx) error {
		return tx.ReplaceItems(ctx, user, first, time.Now())
	}))

	got, err := repo.ItemsByUser(ctx, user)
	require.NoError(t, err)
	require.Equal(t, first, got)

	// вторая синхронизация: B удалён, A изменён, C добавлен
	second := domain.CartItems{"A": 5, "C": 3}
	require.NoError(t, repo.InUserTx(ctx, user, func(ctx context.Context, tx ports.CartTx) error {
		return tx.ReplaceItems(ctx, user, second, time.Now())
	}))

	got, err = repo.ItemsByUser(ctx, user)
	require.NoError(t, err)
	require.Equal(t, second, got)

	var lastSynced *time.Time
	require.NoError(t, pool.QueryRow(ctx, `SELECT last_synced_at FROM carts WHERE user_id = $1`, user).Scan(&lastSynced))
	require.NotNil(t, lastSynced)
}

// 2) Ошибка внутри fn откатывает всё
func TestCartRepo_InUserTx_RollbackOnError_TC(t *testing.T) {
	t.Parallel()
	pool := startDB(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo := pgrepo.NewCartRepository(pool)
	user := testutil.UserID()
	boom := errors.New("boom")

	err := repo.InUserTx(ctx, user, func(ctx context.Context, tx ports.CartTx) error {
		if err := tx.ReplaceItems(ctx, user, domain.CartItems{"A": 1}, time.Now()); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := repo.ItemsByUser(ctx, user)
	require.NoError(t, err)
	require.Empty(t, got)
}

// 3) DeleteCart каскадно удаляет позиции; повторное удаление не ошибка
func TestCartRepo_DeleteCart_TC(t *testing.T) {
	t.Parallel()
	pool := startDB(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo := pgrepo.NewCartRepository(pool)
	user := testutil.UserID()

	require.NoError(t, repo.InUserTx(ctx, user, func(ctx context.Context, tx ports.CartTx) error {
		return tx.ReplaceItems(ctx, user, testutil.MakeItems(3), time.Now())
	}))
	for i := 0; i < 2; i++ {
		require.NoError(t, repo.InUserTx(ctx, user, func(ctx context.Context, tx ports.CartTx) error {
			return tx.DeleteCart(ctx, user)
		}))
	}

	got, err := repo.ItemsByUser(ctx, user)
	require.NoError(t, err)
	require.Empty(t, got)

	var orphans int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT count(*) FROM cart_items ci LEFT JOIN carts c ON c.id = ci.cart_id WHERE c.id IS NULL`,
	).Scan(&orphans))
	require.Zero(t, orphans)
}

// 4) Блокировка пользователя сериализует транзакции одного пользователя
func TestCartRepo_InUserTx_SerializesSameUser_TC(t *testing.T) {
	t.Parallel()
	pool := startDB(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo := pgrepo.NewCartRepository(pool)
	user := testutil.UserID()

	entered := make(chan struct{})
	release := make(chan struct{})
	var (
		mu    sync.Mutex
		order []string
		wg    sync.WaitGroup
	)
	record := func(s string) {
		mu.Lock()
		order = append(order, s)
		mu.Unlock()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = repo.InUserTx(ctx, user, func(ctx context.Context, tx ports.CartTx) error {
			record("first")
			close(entered)
			<-release
			return tx.ReplaceItems(ctx, user, domain.CartItems{"A": 1}, time.Now())
		})
	}()

	<-entered
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = repo.InUserTx(ctx, user, func(ctx context.Context, tx ports.CartTx) error {
			record("second")
			return tx.DeleteCart(ctx, user)
		})
	}()

	// вторая транзакция не должна войти в fn, пока первая держит блокировку
	time.Sleep(300 * time.Millisecond)
	mu.Lock()
	require.Equal(t, []string{"first"}, order)
	mu.Unlock()

	close(release)
	wg.Wait()
	require.Equal(t, []string{"first", "second"}, order)

	got, err := repo.ItemsByUser(ctx, user)
	require.NoError(t, err)
	require.Empty(t, got)
}

// 5) InsertOrder + DeleteCart в одной транзакции
func TestCartRepo_InsertOrderAndDeleteCart_TC(t *testing.T) {
	t.Parallel()
	pool := startDB(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo := pgrepo.NewCartRepository(pool)
	orders := pgrepo.NewOrderRepository(pool)
	user := testutil.UserID()

	require.NoError(t, repo.InUserTx(ctx, user, func(ctx context.Context, tx ports.CartTx) error {
		return tx.ReplaceItems(ctx, user, domain.CartItems{"A": 3}, time.Now())
	}))

	ord := testutil.MakeOrder(user)
	require.NoError(t, repo.InUserTx(ctx, user, func(ctx context.Context, tx ports.CartTx) error {
		if err := tx.InsertOrder(ctx, &ord); err != nil {
			return err
		}
		return tx.DeleteCart(ctx, user)
	}))

	got, err := orders.GetByID(ctx, ord.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, ord.Number, got.Number)
	require.True(t, ord.TotalAmount.Equal(got.TotalAmount), "total %s != %s", ord.TotalAmount, got.TotalAmount)
	require.Len(t, got.Items, 2)

	items, err := repo.ItemsByUser(ctx, user)
	require.NoError(t, err)
	require.Empty(t, items)
}

// 6) tx.Items: свои изменения видны, после ожидания блокировки видно закоммиченное удаление
func TestCartRepo_TxItems_SeesCommittedDeleteAfterLock_TC(t *testing.T) {
	t.Parallel()
	pool := startDB(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo := pgrepo.NewCartRepository(pool)
	user := testutil.UserID()

	require.NoError(t, repo.InUserTx(ctx, user, func(ctx context.Context, tx ports.CartTx) error {
		if err := tx.ReplaceItems(ctx, user, domain.CartItems{"A": 3}, time.Now()); err != nil {
			return err
		}
		items, err := tx.Items(ctx, user)
		require.NoError(t, err)
		require.Equal(t, domain.CartItems{"A": 3}, items)
		return nil
	}))

	deleted := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- repo.InUserTx(ctx, user, func(ctx context.Context, tx ports.CartTx) error {
			if err := tx.DeleteCart(ctx, user); err != nil {
				return err
			}
			close(deleted)
			<-release
			return nil
		})
	}()
	<-deleted

	// удаление ещё не закоммичено: снаружи корзина видна
	outside, err := repo.ItemsByUser(ctx, user)
	require.NoError(t, err)
	require.Equal(t, domain.CartItems{"A": 3}, outside)

	var underLock domain.CartItems
	second := make(chan error, 1)
	go func() {
		second <- repo.InUserTx(ctx, user, func(ctx context.Context, tx ports.CartTx) error {
			var err error
			underLock, err = tx.Items(ctx, user)
			return err
		})
	}()

	time.Sleep(100 * time.Millisecond)
	close(release)
	require.NoError(t, <-done)
	require.NoError(t, <-second)
	require.Empty(t, underLock)
}
