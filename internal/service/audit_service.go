package service

import (
	"context"
	"fmt"
	"time"

	"go-inventory-catalog/internal/model"
	"go-inventory-catalog/internal/repository"

	"github.com/rs/zerolog/log"
)

type AuditService interface {
	Record(ctx context.Context, productID uint, oldStock, newStock int) error
}

type auditService struct {
	logRepo repository.InventoryLogRepository
	now     func() time.Time
}

func NewAuditService(logRepo repository.InventoryLogRepository) AuditService {
	return &auditService{logRepo: logRepo, now: time.Now}
}

// Record appends one stock transition. Failures are logged here; callers on the
// update path ignore the returned error.
func (s *auditService) Record(ctx context.Context, productID uint, oldStock, newStock int) error {
	entry := &model.InventoryLog{
		ProductID: productID,
		OldStock:  oldStock,
		NewStock:  newStock,
		ChangedBy: model.DefaultChangedBy,
		Timestamp: s.now().UTC(),
	}
	if err := s.logRepo.Create(ctx, entry); err != nil {
		log.Error().Err(err).
			Uint("product_id", productID).
			Int("old_stock", oldStock).
			Int("new_stock", newStock).
			Msg("audit: failed to record stock change")
		return fmt.Errorf("record stock change: %w", err)
	}
	return nil
}
