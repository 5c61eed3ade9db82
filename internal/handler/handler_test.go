package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"go-inventory-catalog/internal/handler"
	"go-inventory-catalog/internal/middleware"
	"go-inventory-catalog/internal/model"
	"go-inventory-catalog/internal/repository"
	"go-inventory-catalog/internal/service"
	"go-inventory-catalog/internal/testutil"
	"go-inventory-catalog/internal/ws"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testServer struct {
	app       *fiber.App
	uploadDir string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.NewDB(t)
	hub := ws.NewHub()

	pRepo := repository.NewProductRepo(db)
	lRepo := repository.NewInventoryLogRepo(db)
	invService := service.NewInventoryService(pRepo, lRepo, service.NewAuditService(lRepo), db, hub, nil)
	importService := service.NewImportService(pRepo, db, hub, nil)
	exportService := service.NewExportService(pRepo)
	dashService := service.NewDashboardService(pRepo, lRepo, 10)

	uploadDir := t.TempDir()
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(zerolog.Nop())})
	handler.RegisterRoutes(app, handler.Handlers{
		Inventory: handler.NewInventoryHandler(invService),
		Transfer:  handler.NewTransferHandler(importService, exportService, uploadDir),
		Dashboard: handler.NewDashboardHandler(dashService),
		Health:    handler.NewHealthHandler(db),
	})
	return &testServer{app: app, uploadDir: uploadDir}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func (s *testServer) upload(t *testing.T, filename, content string) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/api/products/import", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func widget(name string, stock int) map[string]interface{} {
	return map[string]interface{}{
		"name": name, "unit": "pcs", "category": "Tools",
		"brand": "Acme", "stock": stock, "status": "Active",
	}
}

func decode(t *testing.T, raw []byte, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, v), string(raw))
}

func createWidget(t *testing.T, s *testServer, name string, stock int) uint {
	t.Helper()
	resp, body := s.do(t, "POST", "/api/products", widget(name, stock))
	require.Equal(t, 201, resp.StatusCode, string(body))
	var created struct {
		ProductID uint `json:"productId"`
	}
	decode(t, body, &created)
	return created.ProductID
}

func TestCreateProduct(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, "POST", "/api/products", widget("Widget", 10))
	require.Equal(t, 201, resp.StatusCode)

	var created struct {
		Message   string `json:"message"`
		ProductID uint   `json:"productId"`
		Data      struct {
			ID    uint    `json:"id"`
			Name  string  `json:"name"`
			Stock int     `json:"stock"`
			Image *string `json:"image"`
		} `json:"data"`
	}
	decode(t, body, &created)
	assert.Equal(t, "Product created successfully", created.Message)
	assert.NotZero(t, created.ProductID)
	assert.Equal(t, created.ProductID, created.Data.ID)
	assert.Equal(t, 10, created.Data.Stock)
	assert.Nil(t, created.Data.Image)

	resp, body = s.do(t, "GET", "/api/products?name=WID", nil)
	require.Equal(t, 200, resp.StatusCode)
	var list []map[string]interface{}
	decode(t, body, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Widget", list[0]["name"])
	assert.Contains(t, list[0], "created_at")
}

func TestCreateProduct_Validation(t *testing.T) {
	s := newTestServer(t)
	in := widget("", 0)
	delete(in, "stock")

	resp, body := s.do(t, "POST", "/api/products", in)
	require.Equal(t, 400, resp.StatusCode)

	var out struct {
		Errors []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	decode(t, body, &out)
	messages := map[string]string{}
	for _, e := range out.Errors {
		messages[e.Field] = e.Message
	}
	assert.Equal(t, "Name is required", messages["name"])
	assert.Equal(t, "Stock must be a non-negative integer", messages["stock"])
}

func TestCreateProduct_BadJSON(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest("POST", "/api/products", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestCreateProduct_Conflict(t *testing.T) {
	s := newTestServer(t)
	createWidget(t, s, "Widget", 1)

	resp, body := s.do(t, "POST", "/api/products", widget("widget", 2))
	assert.Equal(t, 409, resp.StatusCode)
	assert.JSONEq(t, `{"message":"A product with this name already exists."}`, string(body))
}

func TestUpdateProduct_AndHistory(t *testing.T) {
	s := newTestServer(t)
	id := createWidget(t, s, "Widget", 10)
	path := "/api/products/" + itoa(id)

	resp, body := s.do(t, "PUT", path, widget("Widget", 3))
	require.Equal(t, 200, resp.StatusCode, string(body))
	var updated map[string]interface{}
	decode(t, body, &updated)
	assert.Equal(t, "Product updated successfully.", updated["message"])
	assert.EqualValues(t, 3, updated["stock"])
	assert.EqualValues(t, id, updated["id"])

	resp, body = s.do(t, "GET", path+"/history", nil)
	require.Equal(t, 200, resp.StatusCode)
	var history []map[string]interface{}
	decode(t, body, &history)
	require.Len(t, history, 1)
	assert.EqualValues(t, 10, history[0]["old_stock"])
	assert.EqualValues(t, 3, history[0]["new_stock"])
	assert.Equal(t, "admin", history[0]["changed_by"])
}

func TestUpdateProduct_Errors(t *testing.T) {
	s := newTestServer(t)
	createWidget(t, s, "Widget", 1)
	gadget := createWidget(t, s, "Gadget", 1)

	resp, _ := s.do(t, "PUT", "/api/products/999", widget("Other", 1))
	assert.Equal(t, 404, resp.StatusCode)

	resp, _ = s.do(t, "PUT", "/api/products/"+itoa(gadget), widget("WIDGET", 1))
	assert.Equal(t, 409, resp.StatusCode)

	resp, _ = s.do(t, "PUT", "/api/products/abc", widget("Other", 1))
	assert.Equal(t, 400, resp.StatusCode)

	resp, _ = s.do(t, "PUT", "/api/products/"+itoa(gadget), widget("Gadget", -5))
	assert.Equal(t, 400, resp.StatusCode)
}

func TestHistory_NoneRecorded(t *testing.T) {
	s := newTestServer(t)
	id := createWidget(t, s, "Widget", 1)

	resp, _ := s.do(t, "GET", "/api/products/"+itoa(id)+"/history", nil)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestDeleteProduct(t *testing.T) {
	s := newTestServer(t)
	id := createWidget(t, s, "Widget", 1)

	resp, body := s.do(t, "DELETE", "/api/products/"+itoa(id), nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Product deleted successfully","changes":1}`, string(body))

	resp, _ = s.do(t, "DELETE", "/api/products/"+itoa(id), nil)
	assert.Equal(t, 404, resp.StatusCode)

	resp, _ = s.do(t, "GET", "/api/products/"+itoa(id), nil)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestImportProducts(t *testing.T) {
	s := newTestServer(t)
	existing := createWidget(t, s, "Widget", 1)

	resp, body := s.upload(t, "products.csv",
		"name,unit,category,brand,stock,status,image\n"+
			"WIDGET,pcs,Tools,Acme,5,Active,\n"+
			"Gadget,pcs,Tools,Acme,,Active,\n")
	require.Equal(t, 200, resp.StatusCode, string(body))

	var out struct {
		Message    string `json:"message"`
		Added      int    `json:"added"`
		Skipped    int    `json:"skipped"`
		Duplicates []struct {
			Name       string `json:"name"`
			ExistingID uint   `json:"existing_id"`
		} `json:"duplicates"`
		Failed []interface{} `json:"failed"`
	}
	decode(t, body, &out)
	assert.Equal(t, 1, out.Added)
	assert.Equal(t, 1, out.Skipped)
	require.Len(t, out.Duplicates, 1)
	assert.Equal(t, existing, out.Duplicates[0].ExistingID)
	assert.Empty(t, out.Failed)

	entries, err := os.ReadDir(s.uploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "upload is removed after processing")
}

func TestImportProducts_EmptyFile(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.upload(t, "empty.csv", "")
	require.Equal(t, 200, resp.StatusCode)

	var out map[string]interface{}
	decode(t, body, &out)
	assert.EqualValues(t, 0, out["added"])
	assert.EqualValues(t, 0, out["skipped"])
	assert.Equal(t, []interface{}{}, out["duplicates"])
}

func TestImportProducts_Rejected(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, "POST", "/api/products/import", nil)
	assert.Equal(t, 400, resp.StatusCode)
	assert.Contains(t, string(body), "No file uploaded")

	resp, _ = s.upload(t, "products.txt", "name\nWidget\n")
	assert.Equal(t, 400, resp.StatusCode)
}

func TestExportProducts(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, "GET", "/api/products/export", nil)
	require.Equal(t, 404, resp.StatusCode)
	assert.JSONEq(t, `{"message":"No products to export"}`, string(body))

	createWidget(t, s, "Widget", 10)
	createWidget(t, s, "Gadget", 0)

	resp, body = s.do(t, "GET", "/api/products/export", nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")

	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "name,unit,category,brand,stock,status,image,created_at,updated_at", lines[0])

	resp, _ = s.do(t, "GET", "/api/products/export?format=xlsx", nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "spreadsheetml")
}

func TestDashboard(t *testing.T) {
	s := newTestServer(t)
	id := createWidget(t, s, "Widget", 10)
	createWidget(t, s, "Gadget", 0)
	resp, _ := s.do(t, "PUT", "/api/products/"+itoa(id), widget("Widget", 4))
	require.Equal(t, 200, resp.StatusCode)

	resp, body := s.do(t, "GET", "/api/dashboard/stats", nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.JSONEq(t, `{"total_products":2,"total_stock":4,"low_stock_count":1,"out_of_stock_count":1}`, string(body))

	resp, body = s.do(t, "GET", "/api/dashboard/stock-movement?days=3", nil)
	require.Equal(t, 200, resp.StatusCode)
	var movement struct {
		Period int                      `json:"period"`
		Data   []map[string]interface{} `json:"data"`
	}
	decode(t, body, &movement)
	assert.Equal(t, 3, movement.Period)
	assert.Len(t, movement.Data, 3)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, "GET", "/api/health", nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, string(body), `"database":"up"`)
}

// lookupFailsRepo makes every name lookup fail, inside or outside a transaction.
type lookupFailsRepo struct {
	repository.ProductRepository
}

func (r lookupFailsRepo) FindByName(context.Context, string) (*model.Product, error) {
	return nil, errors.New("connection reset by peer")
}

func (r lookupFailsRepo) WithTx(tx *gorm.DB) repository.ProductRepository {
	return lookupFailsRepo{r.ProductRepository.WithTx(tx)}
}

func TestImportProducts_TransactionFailure(t *testing.T) {
	db := testutil.NewDB(t)
	pRepo := repository.NewProductRepo(db)
	uploadDir := t.TempDir()

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(zerolog.Nop())})
	handler.RegisterRoutes(app, handler.Handlers{
		Transfer: handler.NewTransferHandler(
			service.NewImportService(lookupFailsRepo{pRepo}, db, nil, nil),
			service.NewExportService(pRepo),
			uploadDir,
		),
	})
	s := &testServer{app: app, uploadDir: uploadDir}

	resp, body := s.upload(t, "products.csv", "name,unit,category,brand,stock,status\nWidget,pcs,Tools,Acme,1,Active\n")
	require.Equal(t, 500, resp.StatusCode)

	var out map[string]interface{}
	decode(t, body, &out)
	assert.Equal(t, "Import failed, no products were added", out["message"])
	assert.Contains(t, out["error"], "connection reset by peer")
	assert.NotContains(t, out, "added")

	entries, err := os.ReadDir(uploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
