package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go-inventory-catalog/internal/cache"
	"go-inventory-catalog/internal/model"
	"go-inventory-catalog/internal/repository"
	"go-inventory-catalog/internal/testutil"
	"go-inventory-catalog/internal/ws"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []ws.Event
}

func (p *recordingPublisher) Publish(ev ws.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Action)
	}
	return out
}

type failingAudit struct{ calls int }

func (a *failingAudit) Record(context.Context, uint, int, int) error {
	a.calls++
	return errors.New("disk full")
}

// fixture wires every service against one private database.
type fixture struct {
	db          *gorm.DB
	productRepo repository.ProductRepository
	logRepo     repository.InventoryLogRepository
	events      *recordingPublisher
	inventory   InventoryService
	imports     ImportService
	exports     ExportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	pRepo := repository.NewProductRepo(db)
	lRepo := repository.NewInventoryLogRepo(db)
	events := &recordingPublisher{}

	return &fixture{
		db:          db,
		productRepo: pRepo,
		logRepo:     lRepo,
		events:      events,
		inventory:   NewInventoryService(pRepo, lRepo, NewAuditService(lRepo), db, events, cache.Noop{}),
		imports:     NewImportService(pRepo, db, events, nil),
		exports:     NewExportService(pRepo),
	}
}

func intPtr(n int) *int { return &n }

func widgetInput(name string, stock int) *model.ProductInput {
	return &model.ProductInput{
		Name:     name,
		Unit:     "pcs",
		Category: "Tools",
		Brand:    "Acme",
		Stock:    intPtr(stock),
		Status:   "Active",
	}
}

func mustCreate(t *testing.T, f *fixture, in *model.ProductInput) *model.Product {
	t.Helper()
	p, err := f.inventory.CreateProduct(context.Background(), in)
	require.NoError(t, err)
	return p
}
