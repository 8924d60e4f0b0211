package ports

import (
	"context"

	"github.com/Gunvolt24/cartsync/internal/domain"
	"github.com/google/uuid"
)

// CartService — операции корзины для обработчиков запросов.
// Ни одна из них не ждёт фоновую синхронизацию.
type CartService interface {
	AddItem(ctx context.Context, userID, productID string, qty int64) (int64, error)
	UpdateItem(ctx context.Context, userID, productID string, qty int64) error
	BulkUpdate(ctx context.Context, userID string, updates []domain.ItemUpdate) error
	GetCart(ctx context.Context, userID string) (domain.CartItems, error)
	ClearCart(ctx context.Context, userID string) error
}

// CheckoutService — оформление заказа из корзины.
type CheckoutService interface {
	Checkout(ctx context.Context, userID string) (*domain.Order, error)
}

// OrderReadService — чтение заказов.
type OrderReadService interface {
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	OrdersByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Order, error)
}
