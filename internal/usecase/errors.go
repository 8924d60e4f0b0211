package usecase

import (
	"fmt"

	"github.com/Gunvolt24/cartsync/internal/domain"
)

// unavailable — ошибка хранилища для вызывающего: ErrStoreUnavailable + исходная причина.
func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrStoreUnavailable, op, err)
}
