package ports

import (
	"context"

	"github.com/Gunvolt24/cartsync/internal/domain"
	"github.com/shopspring/decimal"
)

// PriceLookup — актуальные цены товаров. Отсутствующий в ответе id означает,
// что товара в каталоге больше нет.
type PriceLookup interface {
	Prices(ctx context.Context, productIDs []string) (map[string]decimal.Decimal, error)
}

// ProductRepository — запись проекции каталога (из топика каталога).
type ProductRepository interface {
	PriceLookup
	Upsert(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, productID string) error
}
