package model

import "strings"

type Product struct {
	BaseModel
	Name     string  `gorm:"type:varchar(255);not null" json:"name"`
	Unit     string  `gorm:"type:varchar(50);not null" json:"unit"`
	Category string  `gorm:"type:varchar(100);not null;index" json:"category"`
	Brand    string  `gorm:"type:varchar(100);not null" json:"brand"`
	Stock    int     `gorm:"not null;default:0;check:chk_products_stock,stock >= 0" json:"stock"`
	Status   string  `gorm:"type:varchar(50);not null" json:"status"`
	Image    *string `gorm:"type:text" json:"image"`
}

// ProductInput is the full set of mutable fields supplied on create, update and import.
type ProductInput struct {
	Name     string  `json:"name" validate:"notblank,max=255"`
	Unit     string  `json:"unit" validate:"notblank,max=50"`
	Category string  `json:"category" validate:"notblank,max=100"`
	Brand    string  `json:"brand" validate:"notblank,max=100"`
	Stock    *int    `json:"stock" validate:"required,min=0"`
	Status   string  `json:"status" validate:"notblank,max=50"`
	Image    *string `json:"image"`
}

// Normalize trims surrounding whitespace from the text fields.
func (in *ProductInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Unit = strings.TrimSpace(in.Unit)
	in.Category = strings.TrimSpace(in.Category)
	in.Brand = strings.TrimSpace(in.Brand)
	in.Status = strings.TrimSpace(in.Status)
	if in.Image != nil {
		img := strings.TrimSpace(*in.Image)
		if img == "" {
			in.Image = nil
		} else {
			in.Image = &img
		}
	}
}

// Apply copies the input onto p. Callers validate first, so Stock is non-nil.
func (in *ProductInput) Apply(p *Product) {
	p.Name = in.Name
	p.Unit = in.Unit
	p.Category = in.Category
	p.Brand = in.Brand
	p.Stock = *in.Stock
	p.Status = in.Status
	p.Image = in.Image
}
