package domain

import "errors"

// Ошибки ядра корзины. Сравнивать только через errors.Is.
var (
	// ErrInvalidInput — некорректный id товара/пользователя или количество; хранилища не трогаются.
	ErrInvalidInput = errors.New("invalid input")
	// ErrStoreUnavailable — кэш или БД недоступны; запрос можно повторить.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrEmptyCart — checkout пустой корзины.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrProductNotFound — товар из корзины больше не имеет цены в каталоге.
	ErrProductNotFound = errors.New("product not found")
	// ErrCheckoutFailed — транзакция заказа откатилась после успешной валидации.
	ErrCheckoutFailed = errors.New("checkout failed")
	// ErrReconcileFailed — не удалось синхронизировать корзину пользователя (внутренняя ошибка синка).
	ErrReconcileFailed = errors.New("reconcile failed")
)
