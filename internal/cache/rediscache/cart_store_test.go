package rediscache_test

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/Gunvolt24/cartsync/internal/cache/rediscache"
	"github.com/Gunvolt24/cartsync/internal/domain"
	"github.com/Gunvolt24/cartsync/pkg/validate"
)

const ttl = 24 * time.Hour

func newStore(t *testing.T) (*rediscache.CartStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return rediscache.NewCartStore(client, "cart", ttl), mr
}

func TestAddItem_IncrementsRefreshesTTLAndMarksDirty(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	qty, err := store.AddItem(ctx, "u1", "A", 2)
	require.NoError(t, err)
	require.EqualValues(t, 2, qty)

	mr.FastForward(time.Hour)

	qty, err = store.AddItem(ctx, "u1", "A", 3)
	require.NoError(t, err)
	require.EqualValues(t, 5, qty)

	// TTL скользящий: после второго изменения снова полные сутки.
	require.Equal(t, ttl, mr.TTL("cart:user:u1"))

	// две мутации — версия пометки 2
	require.Equal(t, "2", mr.HGet("cart:dirty", "u1"))
}

func TestSetItems_ZeroRemovesField_EmptyCartIsAbsent(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetItems(ctx, "u1", []domain.ItemUpdate{
		{ProductID: "A", Quantity: 2},
		{ProductID: "B", Quantity: 1},
	}))

	items, err := store.Items(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, domain.CartItems{"A": 2, "B": 1}, items)

	// Удаляем обе позиции — ключ корзины должен исчезнуть целиком.
	require.NoError(t, store.SetItems(ctx, "u1", []domain.ItemUpdate{
		{ProductID: "A", Quantity: 0},
		{ProductID: "B", Quantity: -1},
	}))
	require.False(t, mr.Exists("cart:user:u1"))

	items, err = store.Items(ctx, "u1")
	require.NoError(t, err)
	require.True(t, items.Empty())
}

func TestSetItems_Twice_IsIdempotent(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetItems(ctx, "u1", []domain.ItemUpdate{{ProductID: "A", Quantity: 1}}))
	for i := 0; i < 2; i++ {
		require.NoError(t, store.SetItems(ctx, "u1", []domain.ItemUpdate{{ProductID: "A", Quantity: 0}}))
	}

	items, err := store.Items(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestRestore_DoesNotMarkDirty(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Restore(ctx, "u1", domain.CartItems{"A": 2, "B": 1}))

	items, err := store.Items(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, domain.CartItems{"A": 2, "B": 1}, items)
	require.Equal(t, ttl, mr.TTL("cart:user:u1"))

	dirty, err := store.DirtyUsers(ctx)
	require.NoError(t, err)
	require.Empty(t, dirty)
}

func TestItems_DropsGarbageFields(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	mr.HSet("cart:user:u1", "A", "3")
	mr.HSet("cart:user:u1", "B", "zero")
	mr.HSet("cart:user:u1", "C", "0")

	items, err := store.Items(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, domain.CartItems{"A": 3}, items)
}

func TestTTL_ExpiredCartIsAbsent(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	_, err := store.AddItem(ctx, "u1", "A", 1)
	require.NoError(t, err)

	mr.FastForward(ttl + time.Second)

	items, err := store.Items(ctx, "u1")
	require.NoError(t, err)
	require.True(t, items.Empty())
}

func TestDirtySet_MarkUnmarkMembers(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.MarkDirty(ctx, "u1"))
	require.NoError(t, store.MarkDirty(ctx, "u1")) // повторная пометка только поднимает версию
	require.NoError(t, store.MarkDirty(ctx, "u2"))

	users, err := store.DirtyUsers(ctx)
	require.NoError(t, err)
	sort.Strings(users)
	require.Equal(t, []string{"u1", "u2"}, users)

	v, err := store.DirtyVersion(ctx, "u1")
	require.NoError(t, err)
	require.EqualValues(t, 2, v)

	ok, err := store.UnmarkDirty(ctx, "u1", v)
	require.NoError(t, err)
	require.True(t, ok)

	users, err = store.DirtyUsers(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"u2"}, users)

	v, err = store.DirtyVersion(ctx, "u1")
	require.NoError(t, err)
	require.Zero(t, v)
}

func TestDirtySet_UnmarkStaleVersionKeepsMark(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	_, err := store.AddItem(ctx, "u1", "A", 1)
	require.NoError(t, err)
	v, err := store.DirtyVersion(ctx, "u1")
	require.NoError(t, err)

	// изменение корзины после чтения версии
	require.NoError(t, store.SetItems(ctx, "u1", []domain.ItemUpdate{{ProductID: "A", Quantity: 4}}))

	ok, err := store.UnmarkDirty(ctx, "u1", v)
	require.NoError(t, err)
	require.False(t, ok)

	users, err := store.DirtyUsers(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"u1"}, users)
}

func TestAddItem_TotalOverLimitRejected(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	qty, err := store.AddItem(ctx, "u1", "A", validate.MaxQuantity-1)
	require.NoError(t, err)
	require.EqualValues(t, validate.MaxQuantity-1, qty)

	qty, err = store.AddItem(ctx, "u1", "A", 1)
	require.NoError(t, err)
	require.EqualValues(t, validate.MaxQuantity, qty)

	_, err = store.AddItem(ctx, "u1", "A", 1)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	items, err := store.Items(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, domain.CartItems{"A": validate.MaxQuantity}, items)
	require.Equal(t, "2", mr.HGet("cart:dirty", "u1"), "rejected add must not mark dirty")

	_, err = store.AddItem(ctx, "u2", "B", validate.MaxQuantity+1)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	require.False(t, mr.Exists("cart:user:u2"))
}

func TestDelete_RemovesCart(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	_, err := store.AddItem(ctx, "u1", "A", 1)
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, "u1"))
	require.False(t, mr.Exists("cart:user:u1"))
}

func TestStoreError_IsReturned(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	mr.SetError("LOADING server is loading")
	t.Cleanup(func() { mr.SetError("") })

	_, err := store.AddItem(ctx, "u1", "A", 1)
	require.Error(t, err)

	_, err = store.Items(ctx, "u1")
	require.Error(t, err)

	mr.SetError("")
	items, err := store.Items(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, items)
}
