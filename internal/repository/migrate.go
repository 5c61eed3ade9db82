package repository

import (
	"fmt"

	"go-inventory-catalog/internal/model"

	"gorm.io/gorm"
)

// Migrate creates the tables and the indexes AutoMigrate cannot express.
// Every statement is idempotent.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.Product{}, &model.InventoryLog{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	patches := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_products_name_lower ON products (LOWER(name))`,
	}
	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql, err)
		}
	}
	return nil
}
