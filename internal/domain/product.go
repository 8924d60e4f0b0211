package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product — минимальная проекция каталога: цена по product_id.
type Product struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ProductEvent — сообщение из топика каталога.
// Deleted=true удаляет товар, иначе — upsert цены.
type ProductEvent struct {
	ProductID string           `json:"product_id"`
	Name      string           `json:"name"`
	Price     *decimal.Decimal `json:"price,omitempty"`
	Deleted   bool             `json:"deleted"`
}
