package usecase

import (
	"context"
	"time"

	"github.com/Gunvolt24/cartsync/internal/domain"
	"github.com/Gunvolt24/cartsync/internal/ports"
	"github.com/google/uuid"
)

// Проверка, что OrderService удовлетворяет интерфейсу OrderReadService.
var _ ports.OrderReadService = (*OrderService)(nil)

// OrderService — чтение оформленных заказов (без знаний о транспорте).
type OrderService struct {
	repo ports.OrderRepository
	log  ports.Logger
}

// NewOrderService — DI-конструктор.
func NewOrderService(repo ports.OrderRepository, log ports.Logger) *OrderService {
	return &OrderService{repo: repo, log: log}
}

// GetOrder — заказ по id. Возвращает (*Order, nil) или (nil, nil), если записи нет.
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	start := time.Now()
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.log.Errorf(ctx, "repo.GetByID failed order=%s err=%v", id, err)
		return nil, unavailable("get order", err)
	}
	s.log.Infof(ctx, "db fetch order=%s found=%t took=%s", id, order != nil, time.Since(start))
	return order, nil
}

// OrdersByUser — проксирование в репозиторий (пагинация уже валидирована на верхнем уровне).
func (s *OrderService) OrdersByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Order, error) {
	orders, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		s.log.Errorf(ctx, "repo.ListByUser failed user=%s err=%v", userID, err)
		return nil, unavailable("list orders", err)
	}
	return orders, nil
}
