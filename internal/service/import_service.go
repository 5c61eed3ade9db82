package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"go-inventory-catalog/internal/cache"
	"go-inventory-catalog/internal/model"
	"go-inventory-catalog/internal/repository"
	"go-inventory-catalog/internal/ws"
	"go-inventory-catalog/pkg/tabular"
	"go-inventory-catalog/pkg/validator"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Duplicate is a row skipped because the name already exists.
type Duplicate struct {
	Name       string `json:"name"`
	ExistingID uint   `json:"existing_id"`
}

// FailedRow is a row whose insert was rejected; the rest of the batch still commits.
type FailedRow struct {
	Row   int    `json:"row"`
	Name  string `json:"name"`
	Error string `json:"error"`
}

type ImportResult struct {
	Added      int         `json:"added"`
	Skipped    int         `json:"skipped"`
	Duplicates []Duplicate `json:"duplicates"`
	Failed     []FailedRow `json:"failed"`
}

type ImportService interface {
	// ImportFile parses a .csv or .xlsx file and imports it. The file is removed afterwards.
	ImportFile(ctx context.Context, path string) (*ImportResult, error)
	Import(ctx context.Context, rows []tabular.Row) (*ImportResult, error)
}

type importService struct {
	productRepo repository.ProductRepository
	db          *gorm.DB
	events      EventPublisher
	cache       cache.ProductCache

	// one batch at a time per process
	mu sync.Mutex
}

func NewImportService(pRepo repository.ProductRepository, db *gorm.DB, events EventPublisher, productCache cache.ProductCache) ImportService {
	if productCache == nil {
		productCache = cache.Noop{}
	}
	return &importService{
		productRepo: pRepo,
		db:          db,
		events:      events,
		cache:       productCache,
	}
}

func (s *importService) ImportFile(ctx context.Context, path string) (*ImportResult, error) {
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Str("path", path).Msg("import: failed to remove uploaded file")
		}
	}()

	rows, err := tabular.ParseFile(path)
	if err != nil {
		return nil, &ValidationError{Fields: []*validator.FieldError{{
			Field:   "file",
			Tag:     "format",
			Message: err.Error(),
		}}}
	}
	return s.Import(ctx, rows)
}

// Import inserts every row whose name is not yet taken, inside a single transaction.
// Each insert runs in its own savepoint so a rejected row leaves the batch usable.
// A name repeated within the batch is reported as a duplicate of the row inserted first.
func (s *importService) Import(ctx context.Context, rows []tabular.Row) (*ImportResult, error) {
	result := &ImportResult{Duplicates: []Duplicate{}, Failed: []FailedRow{}}
	if len(rows) == 0 {
		return result, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchID := uuid.NewString()
	logger := log.With().Str("batch_id", batchID).Int("rows", len(rows)).Logger()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.productRepo.WithTx(tx)

		for _, row := range rows {
			// Duplicates are decided on the name alone, before any other column is read.
			if name := strings.TrimSpace(row.Get("name")); name != "" {
				existing, lookupErr := repo.FindByName(ctx, name)
				if lookupErr == nil {
					result.Duplicates = append(result.Duplicates, Duplicate{Name: name, ExistingID: existing.ID})
					continue
				}
				if !repository.IsNotFound(lookupErr) {
					return fmt.Errorf("row %d: lookup %q: %w", row.Line, name, lookupErr)
				}
			}

			in, err := rowInput(row)
			if err == nil {
				err = validateInput(in)
			}
			if err == nil {
				product := &model.Product{}
				in.Apply(product)
				err = tx.Transaction(func(sp *gorm.DB) error {
					return s.productRepo.WithTx(sp).Create(ctx, product)
				})
			}

			if err != nil {
				logger.Warn().Err(err).Int("row", row.Line).Str("name", row.Get("name")).Msg("import: row rejected")
				result.Failed = append(result.Failed, FailedRow{Row: row.Line, Name: row.Get("name"), Error: err.Error()})
				continue
			}
			result.Added++
		}
		return nil
	})
	if err != nil {
		logger.Error().Err(err).Msg("import: batch rolled back")
		return nil, &TransactionError{Err: err}
	}

	result.Skipped = len(result.Duplicates)
	logger.Info().
		Int("added", result.Added).
		Int("skipped", result.Skipped).
		Int("failed", len(result.Failed)).
		Msg("import: batch committed")

	if result.Added > 0 {
		s.cache.Invalidate(ctx)
	}
	if s.events != nil {
		s.events.Publish(ws.Event{
			Action: ws.ActionProductsImported,
			Data: map[string]interface{}{
				"added":   result.Added,
				"skipped": result.Skipped,
				"failed":  len(result.Failed),
			},
			Message: fmt.Sprintf("Imported %d products, skipped %d duplicates", result.Added, result.Skipped),
		})
	}
	return result, nil
}

// rowInput maps a parsed row onto ProductInput. A blank stock becomes 0 and a blank
// image becomes null; an unparsable stock is a row error.
func rowInput(row tabular.Row) (*model.ProductInput, error) {
	stock := 0
	if raw := row.Get("stock"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, &ValidationError{Fields: []*validator.FieldError{{
				Field:   "stock",
				Tag:     "numeric",
				Message: "Stock must be a non-negative integer",
			}}}
		}
		stock = n
	}

	in := &model.ProductInput{
		Name:     row.Get("name"),
		Unit:     row.Get("unit"),
		Category: row.Get("category"),
		Brand:    row.Get("brand"),
		Stock:    &stock,
		Status:   row.Get("status"),
	}
	if img := row.Get("image"); img != "" {
		in.Image = &img
	}
	in.Normalize()
	return in, nil
}
