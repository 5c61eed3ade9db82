package service

import (
	"context"
	"errors"
	"fmt"

	"go-inventory-catalog/internal/cache"
	"go-inventory-catalog/internal/model"
	"go-inventory-catalog/internal/repository"
	"go-inventory-catalog/internal/ws"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	msgNameExists      = "A product with this name already exists."
	msgNameNotUnique   = "Product name must be unique."
	msgProductNotFound = "Product not found."
	msgNoHistory       = "No history found for this product."
)

// EventPublisher receives product events after a successful commit.
type EventPublisher interface {
	Publish(ev ws.Event)
}

type InventoryService interface {
	ListProducts(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error)
	GetProduct(ctx context.Context, id uint) (*model.Product, error)
	CreateProduct(ctx context.Context, in *model.ProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uint, in *model.ProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uint) (int64, error)
	GetHistory(ctx context.Context, productID uint) ([]model.InventoryLog, error)
}

type inventoryService struct {
	productRepo repository.ProductRepository
	logRepo     repository.InventoryLogRepository
	audit       AuditService
	db          *gorm.DB
	events      EventPublisher
	cache       cache.ProductCache
}

func NewInventoryService(
	pRepo repository.ProductRepository,
	lRepo repository.InventoryLogRepository,
	audit AuditService,
	db *gorm.DB,
	events EventPublisher,
	productCache cache.ProductCache,
) InventoryService {
	if productCache == nil {
		productCache = cache.Noop{}
	}
	return &inventoryService{
		productRepo: pRepo,
		logRepo:     lRepo,
		audit:       audit,
		db:          db,
		events:      events,
		cache:       productCache,
	}
}

func (s *inventoryService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error) {
	products, gen, ok := s.cache.GetList(ctx, filter)
	if ok {
		return products, nil
	}
	// A cached unfiltered listing for the same search can serve a category filter.
	if filter.Category != "" {
		if all, _, ok := s.cache.GetList(ctx, repository.ProductFilter{Name: filter.Name}); ok {
			return FilterByCategory(all, filter.Category), nil
		}
	}

	// gen was read before the query, so a concurrent Invalidate makes this entry unreachable.
	products, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, storageErr("list products", err)
	}
	s.cache.SetList(ctx, gen, filter, products)
	return products, nil
}

func (s *inventoryService) GetProduct(ctx context.Context, id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, &NotFoundError{Message: msgProductNotFound}
		}
		return nil, storageErr("get product", err)
	}
	return product, nil
}

func (s *inventoryService) CreateProduct(ctx context.Context, in *model.ProductInput) (*model.Product, error) {
	in.Normalize()
	if err := validateInput(in); err != nil {
		return nil, err
	}

	existing, err := s.productRepo.FindByName(ctx, in.Name)
	if err == nil && existing != nil {
		return nil, &ConflictError{Message: msgNameExists}
	}
	if err != nil && !repository.IsNotFound(err) {
		return nil, storageErr("check product name", err)
	}

	product := &model.Product{}
	in.Apply(product)
	if err := s.productRepo.Create(ctx, product); err != nil {
		// Lost a race against a concurrent insert of the same name
		if errors.Is(err, repository.ErrDuplicateName) {
			return nil, &ConflictError{Message: msgNameExists}
		}
		return nil, storageErr("create product", err)
	}

	s.cache.Invalidate(ctx)
	s.publish(ws.Event{
		Action:  ws.ActionProductCreated,
		Product: productPayload(product),
		Message: fmt.Sprintf("Product '%s' created", product.Name),
	})
	return product, nil
}

// UpdateProduct replaces every mutable field. The row is locked for the duration of
// the transaction; the audit record is written after commit and never fails the update.
func (s *inventoryService) UpdateProduct(ctx context.Context, id uint, in *model.ProductInput) (*model.Product, error) {
	in.Normalize()
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var (
		updated  *model.Product
		oldStock int
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.productRepo.WithTx(tx)

		existing, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			if repository.IsNotFound(err) {
				return &NotFoundError{Message: msgProductNotFound}
			}
			return storageErr("load product", err)
		}

		taken, err := repo.ExistsByNameExcludingID(ctx, in.Name, id)
		if err != nil {
			return storageErr("check product name", err)
		}
		if taken {
			return &ConflictError{Message: msgNameNotUnique}
		}

		oldStock = existing.Stock
		in.Apply(existing)
		if err := repo.Update(ctx, existing); err != nil {
			if errors.Is(err, repository.ErrDuplicateName) {
				return &ConflictError{Message: msgNameNotUnique}
			}
			return storageErr("update product", err)
		}

		updated = existing
		return nil
	})
	if err != nil {
		var (
			nf *NotFoundError
			cf *ConflictError
			se *StorageError
		)
		if errors.As(err, &nf) || errors.As(err, &cf) || errors.As(err, &se) {
			return nil, err
		}
		return nil, storageErr("update product", err)
	}

	if updated.Stock != oldStock {
		// Best-effort: the failure is already logged by the audit service.
		_ = s.audit.Record(ctx, updated.ID, oldStock, updated.Stock)
	}

	s.cache.Invalidate(ctx)
	payload := productPayload(updated)
	payload["old_stock"] = oldStock
	payload["new_stock"] = updated.Stock
	s.publish(ws.Event{
		Action:  ws.ActionProductUpdated,
		Product: payload,
		Message: fmt.Sprintf("Product '%s' updated", updated.Name),
	})
	return updated, nil
}

func (s *inventoryService) DeleteProduct(ctx context.Context, id uint) (int64, error) {
	changes, err := s.productRepo.Delete(ctx, id)
	if err != nil {
		return 0, storageErr("delete product", err)
	}
	if changes == 0 {
		return 0, &NotFoundError{Message: msgProductNotFound}
	}

	s.cache.Invalidate(ctx)
	s.publish(ws.Event{
		Action:  ws.ActionProductDeleted,
		Product: map[string]interface{}{"id": id},
		Message: fmt.Sprintf("Product %d deleted", id),
	})
	return changes, nil
}

// GetHistory treats "never changed" and "no such product" alike.
func (s *inventoryService) GetHistory(ctx context.Context, productID uint) ([]model.InventoryLog, error) {
	logs, err := s.logRepo.FindByProductID(ctx, productID)
	if err != nil {
		return nil, storageErr("load history", err)
	}
	if len(logs) == 0 {
		return nil, &NotFoundError{Message: msgNoHistory}
	}
	return logs, nil
}

func (s *inventoryService) publish(ev ws.Event) {
	if s.events == nil {
		return
	}
	s.events.Publish(ev)
	log.Debug().Str("action", ev.Action).Msg("event published")
}

func productPayload(p *model.Product) map[string]interface{} {
	return map[string]interface{}{
		"id":       p.ID,
		"name":     p.Name,
		"category": p.Category,
		"stock":    p.Stock,
	}
}
