package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/Gunvolt24/cartsync/internal/domain"
	"github.com/Gunvolt24/cartsync/internal/ports"
	"github.com/Gunvolt24/cartsync/pkg/validate"
)

// CatalogService — применяет события каталога к проекции цен, которой пользуется checkout.
type CatalogService struct {
	products ports.ProductRepository
	log      ports.Logger
	now      func() time.Time
}

// NewCatalogService — DI-конструктор.
func NewCatalogService(products ports.ProductRepository, log ports.Logger) *CatalogService {
	return &CatalogService{
		products: products,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ApplyProductEvent — событие каталога из Kafka (raw JSON).
// Шаги:
//  1. строгий парсинг JSON (DisallowUnknownFields);
//  2. валидация события (ошибки оборачивают validate.ErrInvalidProductEvent — такие сообщения пропускаются);
//  3. upsert цены или удаление товара.
func (s *CatalogService) ApplyProductEvent(ctx context.Context, raw []byte) error {
	var ev domain.ProductEvent
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ev); err != nil {
		s.log.Warnf(ctx, "invalid json err=%v", err)
		return fmt.Errorf("%w: invalid json: %v", validate.ErrInvalidProductEvent, err)
	}

	// Убеждаемся, что после объекта нет лишних данных.
	if err := dec.Decode(new(struct{})); err != io.EOF {
		s.log.Warnf(ctx, "invalid json: trailing data")
		return fmt.Errorf("%w: invalid json: trailing data", validate.ErrInvalidProductEvent)
	}

	if err := validate.ProductEvent(&ev); err != nil {
		s.log.Warnf(ctx, "validation failed product=%s err=%v", ev.ProductID, err)
		return err
	}

	if ev.Deleted {
		if err := s.products.Delete(ctx, ev.ProductID); err != nil {
			s.log.Errorf(ctx, "products.Delete failed product=%s err=%v", ev.ProductID, err)
			return fmt.Errorf("failed to delete product: %w", err)
		}
		s.log.Infof(ctx, "product removed from catalog id=%s", ev.ProductID)
		return nil
	}

	product := &domain.Product{
		ID:        ev.ProductID,
		Name:      ev.Name,
		Price:     *ev.Price,
		UpdatedAt: s.now(),
	}
	if err := s.products.Upsert(ctx, product); err != nil {
		s.log.Errorf(ctx, "products.Upsert failed product=%s err=%v", ev.ProductID, err)
		return fmt.Errorf("failed to save product: %w", err)
	}
	s.log.Infof(ctx, "product price saved id=%s price=%s", product.ID, product.Price.String())
	return nil
}
