package postgres

import (
	"context"
	"fmt"

	"github.com/Gunvolt24/cartsync/internal/domain"
	"github.com/Gunvolt24/cartsync/internal/ports"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Проверка, что ProductRepository удовлетворяет интерфейсу ProductRepository.
var _ ports.ProductRepository = (*ProductRepository)(nil)

// ProductRepository — проекция каталога: product_id → цена.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository — конструктор ProductRepository.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// Prices — текущие цены; товаров, которых нет в каталоге, в ответе нет.
func (r *ProductRepository) Prices(ctx context.Context, productIDs []string) (map[string]decimal.Decimal, error) {
	prices := make(map[string]decimal.Decimal, len(productIDs))
	if len(productIDs) == 0 {
		return prices, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, price::text FROM products WHERE id = ANY($1::text[])
	`, productIDs)
	if err != nil {
		return nil, fmt.Errorf("select prices: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("parse price %q: %w", id, err)
		}
		prices[id] = price
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("prices rows: %w", err)
	}
	return prices, nil
}

// Upsert — идемпотентная запись товара по id.
func (r *ProductRepository) Upsert(ctx context.Context, product *domain.Product) error {
	if _, err := r.pool.Exec(ctx, `
		INSERT INTO products (id, name, price, updated_at)
		VALUES ($1, $2, $3::numeric, $4)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			price = EXCLUDED.price,
			updated_at = EXCLUDED.updated_at
	`, product.ID, product.Name, product.Price.String(), product.UpdatedAt); err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}
	return nil
}

// Delete — убирает товар из каталога; повторное удаление — no-op.
func (r *ProductRepository) Delete(ctx context.Context, productID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, productID); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}
