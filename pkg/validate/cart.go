package validate

import (
	"fmt"
	"unicode"

	"github.com/Gunvolt24/cartsync/internal/domain"
)

const (
	// MaxIDLength — максимальная длина user_id / product_id.
	MaxIDLength = 64
	// MaxQuantity — верхняя граница количества одной позиции.
	MaxQuantity = 10_000
	// MaxBulkItems — максимум позиций в одном BulkUpdate.
	MaxBulkItems = 100
)

// UserID — проверяет идентификатор пользователя.
func UserID(id string) error {
	return checkID("user_id", id)
}

// ProductID — проверяет идентификатор товара.
func ProductID(id string) error {
	return checkID("product_id", id)
}

// AddQuantity — приращение для AddItem: строго положительное.
func AddQuantity(qty int64) error {
	if qty <= 0 {
		return fmt.Errorf("%w: quantity должен быть больше нуля", domain.ErrInvalidInput)
	}
	if qty > MaxQuantity {
		return fmt.Errorf("%w: quantity больше %d", domain.ErrInvalidInput, MaxQuantity)
	}
	return nil
}

// SetQuantity — абсолютное количество: <= 0 допустимо (удаление позиции).
func SetQuantity(qty int64) error {
	if qty > MaxQuantity {
		return fmt.Errorf("%w: quantity больше %d", domain.ErrInvalidInput, MaxQuantity)
	}
	return nil
}

// Updates — пакет абсолютных обновлений: непустой, ограниченный, без повторов товара.
func Updates(updates []domain.ItemUpdate) error {
	if len(updates) == 0 {
		return fmt.Errorf("%w: items не должен быть пустым", domain.ErrInvalidInput)
	}
	if len(updates) > MaxBulkItems {
		return fmt.Errorf("%w: items больше %d", domain.ErrInvalidInput, MaxBulkItems)
	}

	seen := make(map[string]struct{}, len(updates))
	for i := range updates {
		u := &updates[i]
		if err := ProductID(u.ProductID); err != nil {
			return fmt.Errorf("items[%d]: %w", i, err)
		}
		if err := SetQuantity(u.Quantity); err != nil {
			return fmt.Errorf("items[%d]: %w", i, err)
		}
		if _, dup := seen[u.ProductID]; dup {
			return fmt.Errorf("%w: items[%d].product_id повторяется", domain.ErrInvalidInput, i)
		}
		seen[u.ProductID] = struct{}{}
	}
	return nil
}

// Total — количество позиции после приращения AddItem.
func Total(qty int64) error {
	if qty > MaxQuantity {
		return fmt.Errorf("%w: итоговое quantity больше %d", domain.ErrInvalidInput, MaxQuantity)
	}
	return nil
}

// checkID — непустой, не длиннее MaxIDLength, без пробелов и ':' (разделитель ключей кэша).
func checkID(field, id string) error {
	if id == "" {
		return fmt.Errorf("%w: %s обязателен", domain.ErrInvalidInput, field)
	}
	if len(id) > MaxIDLength {
		return fmt.Errorf("%w: %s длиннее %d символов", domain.ErrInvalidInput, field, MaxIDLength)
	}
	for _, r := range id {
		if r == ':' || unicode.IsSpace(r) || unicode.IsControl(r) {
			return fmt.Errorf("%w: %s содержит недопустимый символ %q", domain.ErrInvalidInput, field, r)
		}
	}
	return nil
}
