package repository

import (
	"context"
	"time"

	"go-inventory-catalog/internal/model"

	"gorm.io/gorm"
)

type InventoryLogRepository interface {
	Create(ctx context.Context, entry *model.InventoryLog) error
	FindByProductID(ctx context.Context, productID uint) ([]model.InventoryLog, error)
	FindBetween(ctx context.Context, start, end time.Time) ([]model.InventoryLog, error)
}

type inventoryLogRepo struct {
	db *gorm.DB
}

func NewInventoryLogRepo(db *gorm.DB) InventoryLogRepository {
	return &inventoryLogRepo{db}
}

func (r *inventoryLogRepo) Create(ctx context.Context, entry *model.InventoryLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindByProductID returns newest first; id breaks ties within the same timestamp.
func (r *inventoryLogRepo) FindByProductID(ctx context.Context, productID uint) ([]model.InventoryLog, error) {
	logs := []model.InventoryLog{}
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("timestamp DESC").Order("id DESC").
		Find(&logs).Error
	return logs, err
}

// FindBetween returns entries in [start, end] oldest first, for chart aggregation.
func (r *inventoryLogRepo) FindBetween(ctx context.Context, start, end time.Time) ([]model.InventoryLog, error) {
	logs := []model.InventoryLog{}
	err := r.db.WithContext(ctx).
		Where("timestamp BETWEEN ? AND ?", start, end).
		Order("timestamp ASC").Order("id ASC").
		Find(&logs).Error
	return logs, err
}
