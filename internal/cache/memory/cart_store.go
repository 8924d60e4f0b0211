package memory

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/Gunvolt24/cartsync/internal/domain"
	"github.com/Gunvolt24/cartsync/internal/ports"
	"github.com/Gunvolt24/cartsync/pkg/metrics"
	"github.com/Gunvolt24/cartsync/pkg/validate"
)

// Проверка, что CartStore удовлетворяет интерфейсу CartCache.
var _ ports.CartCache = (*CartStore)(nil)

type entry struct {
	userID    string
	items     domain.CartItems
	expiresAt time.Time
}

// CartStore — корзины в памяти процесса: LRU по пользователям + скользящий TTL.
// Вытеснение по capacity моделирует потерю кэша. Множество грязных пользователей
// хранится отдельно (пользователь → версия пометки) и при вытеснении корзины не очищается.
type CartStore struct {
	capacity int
	ttl      time.Duration
	now      func() time.Time

	ll    *list.List
	index map[string]*list.Element
	dirty map[string]int64

	mu sync.Mutex
}

// NewCartStore — конструктор; capacity <= 0 трактуется как 1, ttl <= 0 — без истечения.
func NewCartStore(capacity int, ttl time.Duration) *CartStore {
	if capacity <= 0 {
		capacity = 1
	}
	return &CartStore{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		ll:       list.New(),
		index:    make(map[string]*list.Element),
		dirty:    make(map[string]int64),
	}
}

func (c *CartStore) AddItem(_ context.Context, userID, productID string, delta int64) (int64, error) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	ent := c.upsert(userID, now)
	qty := ent.items[productID] + delta
	if err := validate.Total(qty); err != nil {
		c.dropIfEmpty(userID)
		return 0, err
	}
	if qty <= 0 {
		delete(ent.items, productID)
		qty = 0
	} else {
		ent.items[productID] = qty
	}
	c.dropIfEmpty(userID)
	c.dirty[userID]++
	return qty, nil
}

func (c *CartStore) SetItems(_ context.Context, userID string, updates []domain.ItemUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	ent := c.upsert(userID, now)
	for _, u := range updates {
		if u.Quantity <= 0 {
			delete(ent.items, u.ProductID)
			continue
		}
		ent.items[u.ProductID] = u.Quantity
	}
	c.dropIfEmpty(userID)
	c.dirty[userID]++
	return nil
}

func (c *CartStore) Items(_ context.Context, userID string) (domain.CartItems, error) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.index[userID]
	if !ok {
		metrics.CacheOps.WithLabelValues("miss").Inc()
		return domain.CartItems{}, nil
	}
	ent := elem.Value.(*entry)
	if c.isExpired(ent, now) {
		metrics.CacheOps.WithLabelValues("expired").Inc()
		c.removeElement(elem)
		metrics.CacheSize.Set(float64(len(c.index)))
		return domain.CartItems{}, nil
	}
	// Чтение не продлевает TTL, как и HGETALL в Redis; только позиция в LRU.
	c.ll.MoveToFront(elem)

	metrics.CacheOps.WithLabelValues("hit").Inc()
	return ent.items.Clone(), nil
}

func (c *CartStore) Restore(_ context.Context, userID string, items domain.CartItems) error {
	if items.Empty() {
		return nil
	}
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	ent := c.upsert(userID, now)
	for productID, qty := range items {
		if qty > 0 {
			ent.items[productID] = qty
		}
	}
	c.dropIfEmpty(userID)
	return nil
}

func (c *CartStore) Delete(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.index[userID]; ok {
		c.removeElement(elem)
		metrics.CacheSize.Set(float64(len(c.index)))
	}
	return nil
}

func (c *CartStore) MarkDirty(_ context.Context, userID string) error {
	c.mu.Lock()
	c.dirty[userID]++
	c.mu.Unlock()
	return nil
}

func (c *CartStore) DirtyVersion(_ context.Context, userID string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty[userID], nil
}

func (c *CartStore) UnmarkDirty(_ context.Context, userID string, version int64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cur, ok := c.dirty[userID]; !ok || cur != version {
		return false, nil
	}
	delete(c.dirty, userID)
	return true, nil
}

func (c *CartStore) DirtyUsers(_ context.Context) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	users := make([]string, 0, len(c.dirty))
	for userID := range c.dirty {
		users = append(users, userID)
	}
	return users, nil
}

// Len — число корзин в кэше, включая ещё не вычищенные просроченные.
func (c *CartStore) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// ------вспомогательные функции------

// upsert — возвращает живую запись пользователя (создаёт при отсутствии), продлевает TTL
// и поднимает её в голову LRU. Вызывается под мьютексом.
func (c *CartStore) upsert(userID string, now time.Time) *entry {
	if elem, ok := c.index[userID]; ok {
		ent := elem.Value.(*entry)
		if c.isExpired(ent, now) {
			metrics.CacheOps.WithLabelValues("expired").Inc()
			ent.items = make(domain.CartItems)
		}
		ent.expiresAt = c.expiryFrom(now)
		c.ll.MoveToFront(elem)
		return ent
	}

	c.pruneExpiredFromBack(now)

	ent := &entry{
		userID:    userID,
		items:     make(domain.CartItems),
		expiresAt: c.expiryFrom(now),
	}
	c.index[userID] = c.ll.PushFront(ent)

	if c.ll.Len() > c.capacity {
		c.evictLRU()
	}
	metrics.CacheSize.Set(float64(len(c.index)))
	return ent
}

// dropIfEmpty — корзина без позиций не хранится.
func (c *CartStore) dropIfEmpty(userID string) {
	elem, ok := c.index[userID]
	if !ok {
		return
	}
	if elem.Value.(*entry).items.Empty() {
		c.removeElement(elem)
		metrics.CacheSize.Set(float64(len(c.index)))
	}
}

// evictLRU — удаляет наименее используемую корзину.
func (c *CartStore) evictLRU() {
	if back := c.ll.Back(); back != nil {
		c.removeElement(back)
		metrics.CacheOps.WithLabelValues("evicted").Inc()
	}
}

// removeElement — удаляет элемент из списка и индекса.
func (c *CartStore) removeElement(elem *list.Element) {
	ent := elem.Value.(*entry)
	delete(c.index, ent.userID)
	c.ll.Remove(elem)
}

// isExpired — проверяет истечение TTL.
func (c *CartStore) isExpired(ent *entry, now time.Time) bool {
	if c.ttl <= 0 {
		return false
	}
	return now.After(ent.expiresAt)
}

// expiryFrom — вычисляет момент истечения для текущего времени.
func (c *CartStore) expiryFrom(now time.Time) time.Time {
	if c.ttl <= 0 {
		return time.Time{}
	}
	return now.Add(c.ttl)
}

// pruneExpiredFromBack — удаляет просроченные корзины из хвоста до первой актуальной.
func (c *CartStore) pruneExpiredFromBack(now time.Time) {
	if c.ttl <= 0 {
		return
	}
	for {
		back := c.ll.Back()
		if back == nil {
			return
		}
		if !c.isExpired(back.Value.(*entry), now) {
			return
		}
		c.removeElement(back)
		metrics.CacheOps.WithLabelValues("expired").Inc()
	}
}
