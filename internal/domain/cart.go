package domain

import "sort"

// CartItems — содержимое корзины: product_id → количество (всегда > 0).
// Пустая карта означает отсутствующую корзину.
type CartItems map[string]int64

// ItemUpdate — абсолютное значение количества для одного товара.
// Quantity <= 0 удаляет позицию.
type ItemUpdate struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

// Clone — копия карты, чтобы вызывающий код не менял внутреннее состояние.
func (c CartItems) Clone() CartItems {
	if c == nil {
		return CartItems{}
	}
	out := make(CartItems, len(c))
	for id, qty := range c {
		out[id] = qty
	}
	return out
}

// ProductIDs — отсортированный список товаров корзины.
func (c CartItems) ProductIDs() []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Empty — корзина без позиций.
func (c CartItems) Empty() bool { return len(c) == 0 }
