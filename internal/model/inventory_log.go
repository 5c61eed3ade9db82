package model

import "time"

// DefaultChangedBy is recorded until requests carry a real actor.
const DefaultChangedBy = "admin"

// InventoryLog records one stock transition of a product. Rows are append-only and
// intentionally carry no foreign key, so deleting a product keeps its history.
type InventoryLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	OldStock  int       `gorm:"not null" json:"old_stock"`
	NewStock  int       `gorm:"not null" json:"new_stock"`
	ChangedBy string    `gorm:"type:varchar(100);not null" json:"changed_by"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
}

// Delta is positive for inbound stock and negative for outbound.
func (l InventoryLog) Delta() int {
	return l.NewStock - l.OldStock
}
