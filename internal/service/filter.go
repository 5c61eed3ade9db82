package service

import "go-inventory-catalog/internal/model"

// FilterByCategory keeps products whose category equals category exactly, in order.
// An empty category keeps everything.
func FilterByCategory(products []model.Product, category string) []model.Product {
	if category == "" {
		return products
	}
	out := make([]model.Product, 0, len(products))
	for _, p := range products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}
