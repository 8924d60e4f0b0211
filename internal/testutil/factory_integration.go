//go:build integration

package testutil

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Gunvolt24/cartsync/internal/domain"
)

func randHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func UniqSuffix() string { return randHex(6) }

// UserID — уникальный id пользователя для теста.
func UserID() string { return "user-" + UniqSuffix() }

// ProductID — уникальный id товара для теста.
func ProductID() string { return "sku-" + UniqSuffix() }

// SeedProduct — кладёт товар с ценой в каталог напрямую через пул.
func SeedProduct(ctx context.Context, pool *pgxpool.Pool, id, price string) error {
	_, err := pool.Exec(ctx, `
		INSERT INTO products (id, name, price, updated_at)
		VALUES ($1, $1, $2::numeric, now())
		ON CONFLICT (id) DO UPDATE SET price = EXCLUDED.price
	`, id, price)
	return err
}

// MakeItems — корзина из n уникальных товаров по 1..n штук.
func MakeItems(n int) domain.CartItems {
	items := make(domain.CartItems, n)
	for i := 1; i <= n; i++ {
		items[ProductID()] = int64(i)
	}
	return items
}

// WithPlacedAt — опция MakeOrder: момент оформления.
func WithPlacedAt(t time.Time) func(*domain.Order) {
	return func(o *domain.Order) { o.PlacedAt = t }
}

// Мини-генератор валидного заказа: две позиции, total совпадает с суммой позиций.
func MakeOrder(userID string, opts ...func(*domain.Order)) domain.Order {
	now := time.Now().UTC().Truncate(time.Second)
	id := uuid.New()

	o := domain.Order{
		ID:       id,
		Number:   "ORD-" + now.Format("20060102") + "-" + UniqSuffix(),
		UserID:   userID,
		Status:   domain.OrderStatusPending,
		PlacedAt: now,
		Items: []domain.OrderItem{
			{ProductID: ProductID(), Quantity: 3, Price: decimal.RequireFromString("3.99")},
			{ProductID: ProductID(), Quantity: 1, Price: decimal.RequireFromString("10.00")},
		},
	}
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Subtotal())
	}
	o.TotalAmount = total

	for _, opt := range opts {
		opt(&o)
	}
	return o
}
