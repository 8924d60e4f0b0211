package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatusPending — статус только что оформленного заказа.
const OrderStatusPending = "pending"

// Order — заказ, созданный при checkout. После создания меняется только статус.
type Order struct {
	ID          uuid.UUID       `json:"id"`
	Number      string          `json:"order_number"`
	UserID      string          `json:"user_id"`
	Status      string          `json:"status"`
	PlacedAt    time.Time       `json:"placed_at"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Items       []OrderItem     `json:"items"`
}

// OrderItem — снимок позиции: количество и цена на момент покупки.
type OrderItem struct {
	ProductID string          `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Subtotal — quantity × price.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(i.Quantity))
}
