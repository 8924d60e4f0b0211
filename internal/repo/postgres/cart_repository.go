package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Gunvolt24/cartsync/internal/domain"
	"github.com/Gunvolt24/cartsync/internal/ports"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Проверка, что CartRepository удовлетворяет интерфейсам портов.
var (
	_ ports.CartRepository = (*CartRepository)(nil)
	_ ports.CartTx         = (*cartTx)(nil)
)

// CartRepository — долговременное зеркало корзин и запись заказов на Postgres (pgxpool).
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository — конструктор CartRepository.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository { return &CartRepository{pool: pool} }

// ItemsByUser — позиции сохранённой корзины пользователя (вне транзакции).
func (r *CartRepository) ItemsByUser(ctx context.Context, userID string) (domain.CartItems, error) {
	return selectItems(ctx, r.pool, userID)
}

// querier — общее у pgxpool.Pool и pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func selectItems(ctx context.Context, q querier, userID string) (domain.CartItems, error) {
	rows, err := q.Query(ctx, `
		SELECT ci.product_id, ci.quantity
		FROM cart_items ci
		JOIN carts c ON c.id = ci.cart_id
		WHERE c.user_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("select cart items: %w", err)
	}
	defer rows.Close()

	items := make(domain.CartItems)
	for rows.Next() {
		var (
			productID string
			qty       int64
		)
		if err := rows.Scan(&productID, &qty); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		if qty > 0 {
			items[productID] = qty
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cart items rows: %w", err)
	}
	return items, nil
}

// InUserTx — транзакция READ COMMITTED под advisory-блокировкой пользователя.
// Блокировка транзакционная: снимается на commit/rollback.
func (r *CartRepository) InUserTx(ctx context.Context, userID string, fn func(ctx context.Context, tx ports.CartTx) error) error {
	transaction, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		// При уже завершённой транзакции Rollback вернёт ErrTxClosed — игнорируем.
		if rbErr := transaction.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			_ = rbErr
		}
	}()

	if _, err := transaction.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended('cart:' || $1, 0))`, userID,
	); err != nil {
		return fmt.Errorf("lock user cart: %w", err)
	}

	if err := fn(ctx, &cartTx{tx: transaction}); err != nil {
		return err
	}

	if err := transaction.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// cartTx — операции над корзиной и заказом внутри открытой транзакции.
type cartTx struct {
	tx pgx.Tx
}

// Items — позиции корзины, видимые транзакции после взятия блокировки.
func (t *cartTx) Items(ctx context.Context, userID string) (domain.CartItems, error) {
	return selectItems(ctx, t.tx, userID)
}

// ReplaceItems — upsert корзины и полная замена её позиций одним набором.
func (t *cartTx) ReplaceItems(ctx context.Context, userID string, items domain.CartItems, now time.Time) error {
	var cartID int64
	if err := t.tx.QueryRow(ctx, `
		INSERT INTO carts (user_id, updated_at, last_synced_at)
		VALUES ($1, $2, $2)
		ON CONFLICT (user_id) DO UPDATE SET
			updated_at = EXCLUDED.updated_at,
			last_synced_at = EXCLUDED.last_synced_at
		RETURNING id
	`, userID, now).Scan(&cartID); err != nil {
		return fmt.Errorf("upsert cart: %w", err)
	}

	if _, err := t.tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("delete cart items: %w", err)
	}
	if items.Empty() {
		return nil
	}

	productIDs := items.ProductIDs()
	quantities := make([]int64, 0, len(productIDs))
	for _, id := range productIDs {
		quantities = append(quantities, items[id])
	}

	if _, err := t.tx.Exec(ctx, `
		INSERT INTO cart_items (cart_id, product_id, quantity, updated_at)
		SELECT $1, p.product_id, p.quantity, $4
		FROM unnest($2::text[], $3::bigint[]) AS p(product_id, quantity)
		ON CONFLICT (cart_id, product_id) DO UPDATE SET
			quantity = EXCLUDED.quantity,
			updated_at = EXCLUDED.updated_at
	`, cartID, productIDs, quantities, now); err != nil {
		return fmt.Errorf("insert cart items: %w", err)
	}
	return nil
}

// DeleteCart — удаляет корзину; позиции уходят каскадом. Отсутствие корзины — не ошибка.
func (t *cartTx) DeleteCart(ctx context.Context, userID string) error {
	if _, err := t.tx.Exec(ctx, `DELETE FROM carts WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}

// InsertOrder — вставка заказа и его позиций (COPY).
func (t *cartTx) InsertOrder(ctx context.Context, order *domain.Order) error {
	if order == nil || len(order.Items) == 0 {
		return errors.New("order is empty")
	}

	if _, err := t.tx.Exec(ctx, `
		INSERT INTO orders (id, order_number, user_id, status, placed_at, total_amount)
		VALUES ($1, $2, $3, $4, $5, $6::numeric)
	`, order.ID, order.Number, order.UserID, order.Status, order.PlacedAt, order.TotalAmount.String()); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	return copyOrderItems(ctx, t.tx, order)
}

// copyOrderItems — вставка позиций через COPY (CopyFromRows); быстрее, чем INSERT в цикле.
func copyOrderItems(ctx context.Context, tx pgx.Tx, order *domain.Order) error {
	rows := make([][]any, 0, len(order.Items))
	for _, item := range order.Items {
		price := pgtype.Numeric{Int: item.Price.Coefficient(), Exp: item.Price.Exponent(), Valid: true}
		rows = append(rows, []any{order.ID, item.ProductID, item.Quantity, price})
	}

	_, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"order_items"},
		[]string{"order_id", "product_id", "quantity", "price"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("copy order items: %w", err)
	}
	return nil
}
