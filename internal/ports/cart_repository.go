package ports

import (
	"context"
	"time"

	"github.com/Gunvolt24/cartsync/internal/domain"
)

// CartRepository — долговременное хранилище корзин (зеркало кэша) и заказов.
type CartRepository interface {
	// ItemsByUser — позиции сохранённой корзины; пустая карта, если корзины нет.
	ItemsByUser(ctx context.Context, userID string) (domain.CartItems, error)

	// InUserTx — выполнить fn в одной транзакции под эксклюзивной блокировкой пользователя.
	// Ошибка fn или commit откатывает всю транзакцию.
	InUserTx(ctx context.Context, userID string, fn func(ctx context.Context, tx CartTx) error) error
}

// CartTx — операции, доступные внутри InUserTx.
type CartTx interface {
	// Items — позиции корзины, прочитанные под блокировкой пользователя.
	Items(ctx context.Context, userID string) (domain.CartItems, error)
	// ReplaceItems — upsert строки корзины и полная замена её позиций.
	ReplaceItems(ctx context.Context, userID string, items domain.CartItems, now time.Time) error
	// DeleteCart — удалить корзину (позиции удаляются каскадно).
	DeleteCart(ctx context.Context, userID string) error
	// InsertOrder — сохранить заказ вместе с позициями.
	InsertOrder(ctx context.Context, order *domain.Order) error
}
