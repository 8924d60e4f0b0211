package usecase

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Gunvolt24/cartsync/internal/domain"
	"github.com/Gunvolt24/cartsync/internal/ports"
	"github.com/Gunvolt24/cartsync/pkg/metrics"
	"github.com/Gunvolt24/cartsync/pkg/validate"
)

// Проверка, что CheckoutService удовлетворяет интерфейсу CheckoutService.
var _ ports.CheckoutService = (*CheckoutService)(nil)

var tracer = otel.Tracer("github.com/Gunvolt24/cartsync/internal/usecase")

// errCartChanged — корзина изменилась между чтением и блокировкой пользователя.
var errCartChanged = errors.New("cart changed during checkout")

// CheckoutService — оформление заказа из корзины в кэше по актуальным ценам.
type CheckoutService struct {
	cache     ports.CartCache
	repo      ports.CartRepository
	prices    ports.PriceLookup
	publisher ports.OrderPublisher
	log       ports.Logger
	now       func() time.Time
}

// NewCheckoutService — DI-конструктор. publisher может быть nil — события не отправляются.
func NewCheckoutService(
	cache ports.CartCache,
	repo ports.CartRepository,
	prices ports.PriceLookup,
	publisher ports.OrderPublisher,
	log ports.Logger,
) *CheckoutService {
	return &CheckoutService{
		cache:     cache,
		repo:      repo,
		prices:    prices,
		publisher: publisher,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Checkout — шаги:
//  1. снимок корзины из кэша (пусто → ErrEmptyCart);
//  2. свежие цены всех товаров (нет цены → ErrProductNotFound, ничего не меняем);
//  3. total = Σ quantity × price;
//  4. под блокировкой пользователя: заказ + позиции, удаление корзины в БД и в кэше, commit;
//  5. событие order.placed в Kafka после commit.
func (s *CheckoutService) Checkout(ctx context.Context, userID string) (order *domain.Order, err error) {
	ctx, span := tracer.Start(ctx, "CheckoutService.Checkout")
	span.SetAttributes(attribute.String("cart.user_id", userID))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		metrics.Checkouts.WithLabelValues(checkoutResult(err)).Inc()
	}()

	if err := validate.UserID(userID); err != nil {
		return nil, err
	}

	snapshot, err := s.cache.Items(ctx, userID)
	if err != nil {
		s.log.Errorf(ctx, "cache.Items failed user=%s err=%v", userID, err)
		return nil, unavailable("read cart", err)
	}
	if snapshot.Empty() {
		return nil, domain.ErrEmptyCart
	}

	order, err = s.buildOrder(ctx, userID, snapshot)
	if err != nil {
		return nil, err
	}

	cacheCleared := false
	err = s.repo.InUserTx(ctx, userID, func(ctx context.Context, tx ports.CartTx) error {
		current, err := s.cache.Items(ctx, userID)
		if err != nil {
			return fmt.Errorf("re-read cart: %w", err)
		}
		if !maps.Equal(current, snapshot) {
			return errCartChanged
		}
		if err := tx.InsertOrder(ctx, order); err != nil {
			return err
		}
		if err := tx.DeleteCart(ctx, userID); err != nil {
			return err
		}
		if err := s.cache.Delete(ctx, userID); err != nil {
			return fmt.Errorf("delete cached cart: %w", err)
		}
		cacheCleared = true
		return nil
	})
	if err != nil {
		s.log.Errorf(ctx, "checkout tx failed user=%s order=%s err=%v", userID, order.Number, err)
		if cacheCleared {
			// Commit не прошёл после удаления корзины из кэша — возвращаем снимок.
			// ctx запроса к этому моменту может быть уже отменён (таймаут, обрыв клиента).
			if rErr := s.cache.Restore(context.WithoutCancel(ctx), userID, snapshot); rErr != nil {
				s.log.Errorf(ctx, "cache.Restore after failed checkout user=%s err=%v", userID, rErr)
			}
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrCheckoutFailed, err)
	}

	s.log.Infof(ctx, "order placed user=%s order=%s total=%s items=%d",
		userID, order.Number, order.TotalAmount.StringFixed(2), len(order.Items))

	s.publish(ctx, order)
	return order, nil
}

// buildOrder — заказ по свежим ценам каталога.
func (s *CheckoutService) buildOrder(ctx context.Context, userID string, items domain.CartItems) (*domain.Order, error) {
	ids := items.ProductIDs()

	prices, err := s.prices.Prices(ctx, ids)
	if err != nil {
		s.log.Errorf(ctx, "prices lookup failed user=%s err=%v", userID, err)
		return nil, unavailable("lookup prices", err)
	}

	var missing []string
	for _, id := range ids {
		if _, ok := prices[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		s.log.Warnf(ctx, "checkout rejected user=%s missing=%v", userID, missing)
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, strings.Join(missing, ","))
	}

	now := s.now()
	id := uuid.New()
	order := &domain.Order{
		ID:          id,
		Number:      orderNumber(now, id),
		UserID:      userID,
		Status:      domain.OrderStatusPending,
		PlacedAt:    now,
		TotalAmount: decimal.Zero,
		Items:       make([]domain.OrderItem, 0, len(ids)),
	}
	for _, productID := range ids {
		item := domain.OrderItem{ProductID: productID, Quantity: items[productID], Price: prices[productID]}
		order.Items = append(order.Items, item)
		order.TotalAmount = order.TotalAmount.Add(item.Subtotal())
	}
	return order, nil
}

// publish — best effort: заказ уже зафиксирован в БД.
func (s *CheckoutService) publish(ctx context.Context, order *domain.Order) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishOrderPlaced(ctx, order); err != nil {
		s.log.Warnf(ctx, "publish order.placed failed order=%s err=%v", order.Number, err)
	}
}

// orderNumber — ORD-<yyyymmdd>-<32 hex id>; уникален настолько же, насколько id.
func orderNumber(now time.Time, id uuid.UUID) string {
	hex := strings.ReplaceAll(id.String(), "-", "")
	return "ORD-" + now.Format("20060102") + "-" + strings.ToUpper(hex)
}

func checkoutResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrEmptyCart):
		return "empty"
	case errors.Is(err, domain.ErrProductNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return "unavailable"
	default:
		return "failed"
	}
}
