package service

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go-inventory-catalog/internal/model"
	"go-inventory-catalog/internal/repository"
	"go-inventory-catalog/pkg/tabular"
	"go-inventory-catalog/pkg/validator"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"

	msgNothingToExport = "No products to export"
)

// ExportColumns is the fixed header of every export. It doubles as a valid import header.
var ExportColumns = []string{"name", "unit", "category", "brand", "stock", "status", "image", "created_at", "updated_at"}

// ExportDocument is a rendered export ready to be sent as an attachment.
type ExportDocument struct {
	Filename    string
	ContentType string
	Body        []byte
	Rows        int
}

type ExportService interface {
	Export(ctx context.Context, format string) (*ExportDocument, error)
}

type exportService struct {
	productRepo repository.ProductRepository
	now         func() time.Time
}

func NewExportService(pRepo repository.ProductRepository) ExportService {
	return &exportService{productRepo: pRepo, now: time.Now}
}

func (s *exportService) Export(ctx context.Context, format string) (*ExportDocument, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatXLSX {
		return nil, &ValidationError{Fields: []*validator.FieldError{{
			Field:   "format",
			Tag:     "oneof",
			Value:   "csv xlsx",
			Message: "Format must be one of: csv, xlsx",
		}}}
	}

	products, err := s.productRepo.FindAll(ctx, repository.ProductFilter{})
	if err != nil {
		return nil, storageErr("load products", err)
	}
	if len(products) == 0 {
		return nil, &NotFoundError{Message: msgNothingToExport}
	}

	table := productTable(products)
	var buf bytes.Buffer
	doc := &ExportDocument{
		Filename: fmt.Sprintf("products-%s.%s", s.now().UTC().Format("20060102-150405"), format),
		Rows:     len(products),
	}
	switch format {
	case FormatXLSX:
		doc.ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		err = tabular.WriteXLSX(&buf, table)
	default:
		doc.ContentType = "text/csv; charset=utf-8"
		err = tabular.WriteCSV(&buf, table)
	}
	if err != nil {
		return nil, storageErr("render export", err)
	}
	doc.Body = buf.Bytes()
	return doc, nil
}

func productTable(products []model.Product) tabular.Table {
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		image := ""
		if p.Image != nil {
			image = *p.Image
		}
		rows = append(rows, []string{
			p.Name,
			p.Unit,
			p.Category,
			p.Brand,
			strconv.Itoa(p.Stock),
			p.Status,
			image,
			p.CreatedAt.UTC().Format(time.RFC3339),
			p.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	return tabular.Table{Header: ExportColumns, Rows: rows}
}
