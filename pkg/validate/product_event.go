package validate

import (
	"errors"
	"fmt"

	"github.com/Gunvolt24/cartsync/internal/domain"
)

// ErrInvalidProductEvent — базовая (sentinel error) ошибка валидации события каталога.
var ErrInvalidProductEvent = errors.New("product event validation failed")

// ProductEvent — проверяет событие из топика каталога.
// Для удаления достаточно product_id, для upsert обязательна неотрицательная цена.
func ProductEvent(ev *domain.ProductEvent) error {
	if ev == nil {
		return fmt.Errorf("%w: событие не может быть nil", ErrInvalidProductEvent)
	}
	if err := ProductID(ev.ProductID); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProductEvent, err)
	}
	if ev.Deleted {
		return nil
	}
	if ev.Price == nil {
		return fmt.Errorf("%w: price обязателен", ErrInvalidProductEvent)
	}
	if ev.Price.IsNegative() {
		return fmt.Errorf("%w: price должен быть неотрицательным", ErrInvalidProductEvent)
	}
	return nil
}
