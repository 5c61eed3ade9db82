package service

import (
	"context"
	"time"

	"go-inventory-catalog/internal/repository"
)

// StockMovementData is one day of the movement chart.
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

type DashboardService interface {
	GetStockMovement(ctx context.Context, days int) ([]StockMovementData, error)
	GetDashboardStats(ctx context.Context) (*repository.ProductStats, error)
}

type dashboardService struct {
	productRepo       repository.ProductRepository
	logRepo           repository.InventoryLogRepository
	lowStockThreshold int
	now               func() time.Time
}

func NewDashboardService(pRepo repository.ProductRepository, lRepo repository.InventoryLogRepository, lowStockThreshold int) DashboardService {
	return &dashboardService{
		productRepo:       pRepo,
		logRepo:           lRepo,
		lowStockThreshold: lowStockThreshold,
		now:               time.Now,
	}
}

// GetStockMovement returns one entry per UTC day, oldest first, ending today.
// Positive deltas count as inbound and negative deltas as outbound.
func (s *dashboardService) GetStockMovement(ctx context.Context, days int) ([]StockMovementData, error) {
	if days <= 0 {
		days = 7
	}
	end := s.now().UTC()
	today := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	start := today.AddDate(0, 0, -(days - 1))

	logs, err := s.logRepo.FindBetween(ctx, start, end)
	if err != nil {
		return nil, storageErr("load stock movement", err)
	}

	data := make([]StockMovementData, days)
	index := make(map[string]int, days)
	for i := range data {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		data[i].Date = date
		index[date] = i
	}

	for _, l := range logs {
		i, ok := index[l.Timestamp.UTC().Format("2006-01-02")]
		if !ok {
			continue
		}
		if d := l.Delta(); d > 0 {
			data[i].Inbound += d
		} else {
			data[i].Outbound -= d
		}
	}
	return data, nil
}

func (s *dashboardService) GetDashboardStats(ctx context.Context) (*repository.ProductStats, error) {
	stats, err := s.productRepo.Stats(ctx, s.lowStockThreshold)
	if err != nil {
		return nil, storageErr("load dashboard stats", err)
	}
	return stats, nil
}
