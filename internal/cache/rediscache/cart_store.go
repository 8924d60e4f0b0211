package rediscache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Gunvolt24/cartsync/internal/domain"
	"github.com/Gunvolt24/cartsync/internal/ports"
	"github.com/Gunvolt24/cartsync/pkg/validate"
	"github.com/redis/go-redis/v9"
)

// Проверка, что CartStore удовлетворяет интерфейсу CartCache.
var _ ports.CartCache = (*CartStore)(nil)

// CartStore — корзины в Redis.
// Корзина: HASH <prefix>:user:<user_id> (product_id → quantity) с TTL.
// Грязные пользователи: HASH <prefix>:dirty (user_id → версия пометки).
// Каждая мутация корзины атомарна (MULTI/EXEC или Lua): поля, EXPIRE и HINCRBY пометки применяются вместе.
type CartStore struct {
	client   redis.UniversalClient
	ttl      time.Duration
	prefix   string
	dirtyKey string
}

// NewCartStore — конструктор; prefix по умолчанию "cart".
func NewCartStore(client redis.UniversalClient, prefix string, ttl time.Duration) *CartStore {
	if prefix == "" {
		prefix = "cart"
	}
	return &CartStore{
		client:   client,
		ttl:      ttl,
		prefix:   prefix,
		dirtyKey: prefix + ":dirty",
	}
}

// addItem — приращение позиции с проверкой итога, TTL и пометка dirty одним скриптом.
// KEYS: корзина, dirty. ARGV: product_id, delta, предел, ttl (мс), user_id.
// Ответ {итог, применено}; применено = 0 — итог превысил бы предел, корзина не изменена.
var addItem = redis.NewScript(`
local qty = (tonumber(redis.call('HGET', KEYS[1], ARGV[1])) or 0) + tonumber(ARGV[2])
if qty > tonumber(ARGV[3]) then
	return {qty, 0}
end
if qty <= 0 then
	redis.call('HDEL', KEYS[1], ARGV[1])
	qty = 0
else
	redis.call('HSET', KEYS[1], ARGV[1], qty)
end
if tonumber(ARGV[4]) > 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[4])
end
redis.call('HINCRBY', KEYS[2], ARGV[5], 1)
return {qty, 1}
`)

func (s *CartStore) AddItem(ctx context.Context, userID, productID string, delta int64) (int64, error) {
	res, err := addItem.Run(ctx, s.client,
		[]string{s.cartKey(userID), s.dirtyKey},
		productID, delta, validate.MaxQuantity, s.ttl.Milliseconds(), userID,
	).Int64Slice()
	if err != nil {
		return 0, fmt.Errorf("redis add item: %w", err)
	}
	if len(res) != 2 {
		return 0, fmt.Errorf("redis add item: unexpected reply %v", res)
	}
	if res[1] == 0 {
		return 0, validate.Total(res[0])
	}
	return res[0], nil
}

func (s *CartStore) SetItems(ctx context.Context, userID string, updates []domain.ItemUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	key := s.cartKey(userID)

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, u := range updates {
			if u.Quantity <= 0 {
				pipe.HDel(ctx, key, u.ProductID)
				continue
			}
			pipe.HSet(ctx, key, u.ProductID, u.Quantity)
		}
		s.touch(ctx, pipe, key)
		pipe.HIncrBy(ctx, s.dirtyKey, userID, 1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set items: %w", err)
	}
	return nil
}

func (s *CartStore) Items(ctx context.Context, userID string) (domain.CartItems, error) {
	raw, err := s.client.HGetAll(ctx, s.cartKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis get cart: %w", err)
	}
	return parseItems(raw), nil
}

func (s *CartStore) Restore(ctx context.Context, userID string, items domain.CartItems) error {
	if items.Empty() {
		return nil
	}
	key := s.cartKey(userID)

	fields := make(map[string]any, len(items))
	for productID, qty := range items {
		if qty > 0 {
			fields[productID] = qty
		}
	}
	if len(fields) == 0 {
		return nil
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, fields)
		s.touch(ctx, pipe, key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis restore cart: %w", err)
	}
	return nil
}

func (s *CartStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, s.cartKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete cart: %w", err)
	}
	return nil
}

func (s *CartStore) MarkDirty(ctx context.Context, userID string) error {
	if err := s.client.HIncrBy(ctx, s.dirtyKey, userID, 1).Err(); err != nil {
		return fmt.Errorf("redis mark dirty: %w", err)
	}
	return nil
}

func (s *CartStore) DirtyVersion(ctx context.Context, userID string) (int64, error) {
	v, err := s.client.HGet(ctx, s.dirtyKey, userID).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis dirty version: %w", err)
	}
	return v, nil
}

// unmarkIfVersion — HDEL пометки, только если версия не изменилась с момента чтения.
var unmarkIfVersion = redis.NewScript(`
if redis.call('HGET', KEYS[1], ARGV[1]) == ARGV[2] then
	return redis.call('HDEL', KEYS[1], ARGV[1])
end
return 0
`)

func (s *CartStore) UnmarkDirty(ctx context.Context, userID string, version int64) (bool, error) {
	n, err := unmarkIfVersion.Run(ctx, s.client, []string{s.dirtyKey}, userID, version).Int()
	if err != nil {
		return false, fmt.Errorf("redis unmark dirty: %w", err)
	}
	return n == 1, nil
}

// DirtyUsers — снимок пометок (HKEYS атомарен); добавленные позже попадут в следующий прогон.
func (s *CartStore) DirtyUsers(ctx context.Context) ([]string, error) {
	users, err := s.client.HKeys(ctx, s.dirtyKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis dirty users: %w", err)
	}
	return users, nil
}

// ------вспомогательные функции------

func (s *CartStore) cartKey(userID string) string {
	return s.prefix + ":user:" + userID
}

// touch — скользящий TTL корзины; ttl <= 0 — без истечения.
func (s *CartStore) touch(ctx context.Context, pipe redis.Pipeliner, key string) {
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
}

// parseItems — HGETALL → CartItems; мусорные и неположительные значения отбрасываются.
func parseItems(raw map[string]string) domain.CartItems {
	items := make(domain.CartItems, len(raw))
	for productID, v := range raw {
		qty, err := strconv.ParseInt(v, 10, 64)
		if err != nil || qty <= 0 {
			continue
		}
		items[productID] = qty
	}
	return items
}
