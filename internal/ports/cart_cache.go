package ports

import (
	"context"

	"github.com/Gunvolt24/cartsync/internal/domain"
)

// CartCache — быстрый (эфемерный) слой корзин + общее множество «грязных» пользователей.
// Требования к реализации: потокобезопасность; изменения одной корзины атомарны
// (позиции + TTL + пометка dirty применяются вместе или не применяются вовсе).
type CartCache interface {
	// AddItem — увеличить количество товара на delta, продлить TTL, пометить пользователя dirty.
	// Возвращает новое количество. Итог больше validate.MaxQuantity — ErrInvalidInput, корзина не меняется.
	AddItem(ctx context.Context, userID, productID string, delta int64) (int64, error)

	// SetItems — выставить абсолютные количества (<= 0 удаляет позицию), продлить TTL,
	// пометить пользователя dirty один раз на весь пакет.
	SetItems(ctx context.Context, userID string, updates []domain.ItemUpdate) error

	// Items — текущее содержимое корзины; пустая карта, если корзины нет.
	Items(ctx context.Context, userID string) (domain.CartItems, error)

	// Restore — заполнить корзину из БД (fallback-restore) и выставить TTL; dirty не ставится.
	Restore(ctx context.Context, userID string, items domain.CartItems) error

	// Delete — удалить корзину пользователя.
	Delete(ctx context.Context, userID string) error

	// MarkDirty — пометить пользователя dirty. Каждая пометка (в том числе из AddItem/SetItems)
	// увеличивает версию пометки пользователя.
	MarkDirty(ctx context.Context, userID string) error

	// DirtyVersion — текущая версия пометки; 0 — пользователь не dirty.
	DirtyVersion(ctx context.Context, userID string) (int64, error)

	// UnmarkDirty — снять пометку, только если её версия всё ещё равна version.
	// false — после чтения версии корзину успели изменить, пометка остаётся.
	UnmarkDirty(ctx context.Context, userID string, version int64) (bool, error)

	// DirtyUsers — снимок множества dirty.
	DirtyUsers(ctx context.Context) ([]string, error)
}
