package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Gunvolt24/cartsync/internal/domain"
	"github.com/Gunvolt24/cartsync/internal/ports"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Проверка, что OrderRepository удовлетворяет интерфейсу OrderRepository.
var _ ports.OrderRepository = (*OrderRepository)(nil)

// OrderRepository — чтение оформленных заказов (запись идёт через CartTx.InsertOrder).
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository - конструктор OrderRepository.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository { return &OrderRepository{pool: pool} }

// GetByID — получить заказ по id. Если не нашли, возвращает (nil, nil).
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	var (
		order domain.Order
		total string
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, order_number, user_id, status, placed_at, total_amount::text
		FROM orders WHERE id = $1
	`, id).Scan(&order.ID, &order.Number, &order.UserID, &order.Status, &order.PlacedAt, &total)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select order: %w", err)
	}
	if order.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}

	items, err := r.itemsByOrders(ctx, []uuid.UUID{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]
	return &order, nil
}

// ListByUser — постраничный список заказов пользователя, новые первыми.
// Два запроса на страницу: базовые заказы + позиции всех заказов страницы.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Order, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, order_number, user_id, status, placed_at, total_amount::text
		FROM orders
		WHERE user_id = $1
		ORDER BY placed_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("select user orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*domain.Order, 0, limit)
	ids := make([]uuid.UUID, 0, limit)
	for rows.Next() {
		var (
			order = &domain.Order{}
			total string
		)
		if err := rows.Scan(&order.ID, &order.Number, &order.UserID, &order.Status, &order.PlacedAt, &total); err != nil {
			return nil, fmt.Errorf("scan order base: %w", err)
		}
		if order.TotalAmount, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("parse total: %w", err)
		}
		orders = append(orders, order)
		ids = append(ids, order.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("orders rows: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil // пустая страница
	}

	items, err := r.itemsByOrders(ctx, ids)
	if err != nil {
		return nil, err
	}
	// Склейка: порядок базового SELECT сохраняется.
	for _, order := range orders {
		order.Items = items[order.ID]
	}
	return orders, nil
}

// itemsByOrders — позиции для набора заказов, сгруппированные по order_id.
func (r *OrderRepository) itemsByOrders(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]domain.OrderItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT order_id, product_id, quantity, price::text
		FROM order_items
		WHERE order_id = ANY($1::uuid[])
		ORDER BY order_id, product_id
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("select order items: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]domain.OrderItem, len(ids))
	for rows.Next() {
		var (
			orderID uuid.UUID
			item    domain.OrderItem
			price   string
		)
		if err := rows.Scan(&orderID, &item.ProductID, &item.Quantity, &price); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		if item.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parse price: %w", err)
		}
		out[orderID] = append(out[orderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("order items rows: %w", err)
	}
	return out, nil
}
