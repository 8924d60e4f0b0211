package ports

import (
	"context"

	"github.com/Gunvolt24/cartsync/internal/domain"
	"github.com/google/uuid"
)

type OrderRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Order, error)
}
