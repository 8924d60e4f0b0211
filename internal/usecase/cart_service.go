package usecase

import (
	"context"
	"errors"

	"github.com/Gunvolt24/cartsync/internal/domain"
	"github.com/Gunvolt24/cartsync/internal/ports"
	"github.com/Gunvolt24/cartsync/pkg/metrics"
	"github.com/Gunvolt24/cartsync/pkg/validate"
)

// Проверка, что CartService удовлетворяет интерфейсу CartService.
var _ ports.CartService = (*CartService)(nil)

// CartService — операции корзины поверх кэша. Запись идёт только в кэш и помечает
// пользователя грязным; в БД корзину переносит Reconciler.
type CartService struct {
	cache ports.CartCache
	repo  ports.CartRepository
	log   ports.Logger
}

// NewCartService — DI-конструктор.
func NewCartService(cache ports.CartCache, repo ports.CartRepository, log ports.Logger) *CartService {
	return &CartService{cache: cache, repo: repo, log: log}
}

// AddItem — увеличивает количество товара на qty; возвращает новое количество.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, qty int64) (int64, error) {
	if err := firstErr(validate.UserID(userID), validate.ProductID(productID), validate.AddQuantity(qty)); err != nil {
		observe("add", err)
		return 0, err
	}

	total, err := s.cache.AddItem(ctx, userID, productID, qty)
	if errors.Is(err, domain.ErrInvalidInput) {
		observe("add", err)
		return 0, err
	}
	if err != nil {
		s.log.Errorf(ctx, "cache.AddItem failed user=%s product=%s err=%v", userID, productID, err)
		err = unavailable("add item", err)
		observe("add", err)
		return 0, err
	}

	observe("add", nil)
	return total, nil
}

// UpdateItem — абсолютное количество; qty <= 0 удаляет позицию.
func (s *CartService) UpdateItem(ctx context.Context, userID, productID string, qty int64) error {
	if err := firstErr(validate.UserID(userID), validate.ProductID(productID), validate.SetQuantity(qty)); err != nil {
		observe("update", err)
		return err
	}

	err := s.cache.SetItems(ctx, userID, []domain.ItemUpdate{{ProductID: productID, Quantity: qty}})
	if err != nil {
		s.log.Errorf(ctx, "cache.SetItems failed user=%s product=%s err=%v", userID, productID, err)
		err = unavailable("update item", err)
	}
	observe("update", err)
	return err
}

// BulkUpdate — пакет абсолютных обновлений одной транзакцией кэша:
// один сдвиг TTL и одна пометка грязным на весь пакет.
func (s *CartService) BulkUpdate(ctx context.Context, userID string, updates []domain.ItemUpdate) error {
	if err := firstErr(validate.UserID(userID), validate.Updates(updates)); err != nil {
		observe("bulk", err)
		return err
	}

	err := s.cache.SetItems(ctx, userID, updates)
	if err != nil {
		s.log.Errorf(ctx, "cache.SetItems failed user=%s items=%d err=%v", userID, len(updates), err)
		err = unavailable("bulk update", err)
	}
	observe("bulk", err)
	return err
}

// GetCart — корзина из кэша; при промахе — восстановление из БД (fallback-restore).
// Восстановленная корзина совпадает с БД, поэтому грязной не помечается.
func (s *CartService) GetCart(ctx context.Context, userID string) (domain.CartItems, error) {
	if err := validate.UserID(userID); err != nil {
		observe("get", err)
		return nil, err
	}

	items, err := s.cache.Items(ctx, userID)
	if err != nil {
		s.log.Errorf(ctx, "cache.Items failed user=%s err=%v", userID, err)
		err = unavailable("get cart", err)
		observe("get", err)
		return nil, err
	}
	if !items.Empty() {
		observe("get", nil)
		return items, nil
	}

	// Пустая корзина в БД — частый случай; отвечаем без транзакции.
	durable, err := s.repo.ItemsByUser(ctx, userID)
	if err != nil {
		s.log.Errorf(ctx, "repo.ItemsByUser failed user=%s err=%v", userID, err)
		metrics.CartRestores.WithLabelValues("error").Inc()
		err = unavailable("restore cart", err)
		observe("get", err)
		return nil, err
	}
	if durable.Empty() {
		metrics.CartRestores.WithLabelValues("empty").Inc()
		observe("get", nil)
		return domain.CartItems{}, nil
	}

	items, err = s.restore(ctx, userID)
	if err != nil {
		s.log.Errorf(ctx, "restore cart failed user=%s err=%v", userID, err)
		metrics.CartRestores.WithLabelValues("error").Inc()
		err = unavailable("restore cart", err)
		observe("get", err)
		return nil, err
	}

	observe("get", nil)
	return items, nil
}

// restore — перечитать корзину под блокировкой пользователя и вернуть её в кэш.
// Checkout и ClearCart держат ту же блокировку до commit, поэтому удалённая ими
// корзина здесь уже не видна и в кэш не возвращается.
func (s *CartService) restore(ctx context.Context, userID string) (domain.CartItems, error) {
	var (
		items              domain.CartItems
		restored, writeErr bool
	)
	err := s.repo.InUserTx(ctx, userID, func(ctx context.Context, tx ports.CartTx) error {
		cached, err := s.cache.Items(ctx, userID)
		if err != nil {
			return err
		}
		if !cached.Empty() {
			items = cached
			return nil
		}

		durable, err := tx.Items(ctx, userID)
		if err != nil {
			return err
		}
		items = durable
		if durable.Empty() {
			return nil
		}

		// Ошибка записи в кэш не мешает ответу: данные из БД корректны, следующий GetCart повторит restore.
		if err := s.cache.Restore(ctx, userID, durable); err != nil {
			s.log.Warnf(ctx, "cache.Restore failed user=%s err=%v", userID, err)
			writeErr = true
			return nil
		}
		restored = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	switch {
	case restored:
		s.log.Infof(ctx, "cart restored from db user=%s items=%d", userID, len(items))
		metrics.CartRestores.WithLabelValues("restored").Inc()
	case writeErr:
		metrics.CartRestores.WithLabelValues("error").Inc()
	case items.Empty():
		metrics.CartRestores.WithLabelValues("empty").Inc()
		items = domain.CartItems{}
	}
	return items, nil
}

// ClearCart — удаляет корзину в БД и в кэше под блокировкой пользователя и помечает его грязным,
// чтобы идущая параллельно синхронизация не оставила устаревшие строки.
func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	if err := validate.UserID(userID); err != nil {
		observe("clear", err)
		return err
	}

	err := s.repo.InUserTx(ctx, userID, func(ctx context.Context, tx ports.CartTx) error {
		if err := tx.DeleteCart(ctx, userID); err != nil {
			return err
		}
		return s.cache.Delete(ctx, userID)
	})
	if err != nil {
		s.log.Errorf(ctx, "clear cart failed user=%s err=%v", userID, err)
		err = unavailable("clear cart", err)
		observe("clear", err)
		return err
	}

	if err := s.cache.MarkDirty(ctx, userID); err != nil {
		// Обе копии уже удалены; без пометки синхронизация просто не тронет пользователя.
		s.log.Warnf(ctx, "cache.MarkDirty failed user=%s err=%v", userID, err)
	}

	observe("clear", nil)
	return nil
}

// ------вспомогательные функции------

// observe — метрика операции корзины по классу результата.
func observe(op string, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrInvalidInput):
		result = "invalid"
	default:
		result = "unavailable"
	}
	metrics.CartOps.WithLabelValues(op, result).Inc()
}

// firstErr — первая ненулевая ошибка валидации.
func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
