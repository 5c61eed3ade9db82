package model

import "time"

// BaseModel carries the auto-increment ID and standard timestamps.
// GORM sets CreatedAt on insert and refreshes UpdatedAt on every save.
type BaseModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
