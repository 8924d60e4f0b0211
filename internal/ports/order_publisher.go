package ports

import (
	"context"

	"github.com/Gunvolt24/cartsync/internal/domain"
)

// OrderPublisher — отправка оформленного заказа в конвейер заказов.
type OrderPublisher interface {
	PublishOrderPlaced(ctx context.Context, order *domain.Order) error
	Close() error
}
