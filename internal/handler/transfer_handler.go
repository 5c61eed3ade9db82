package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"go-inventory-catalog/internal/service"
	"go-inventory-catalog/pkg/tabular"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// TransferHandler serves bulk import and export of the catalogue.
type TransferHandler struct {
	imports   service.ImportService
	exports   service.ExportService
	uploadDir string
}

func NewTransferHandler(imports service.ImportService, exports service.ExportService, uploadDir string) *TransferHandler {
	return &TransferHandler{imports: imports, exports: exports, uploadDir: uploadDir}
}

type importResponse struct {
	Message string `json:"message"`
	*service.ImportResult
}

// ImportProducts accepts a multipart upload in field "file" (.csv or .xlsx).
func (h *TransferHandler) ImportProducts(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "No file uploaded")
	}
	if !tabular.Supported(file.Filename) {
		return badRequest(c, "Unsupported file type, upload a .csv or .xlsx file")
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(h.uploadDir, uuid.NewString()+strings.ToLower(filepath.Ext(file.Filename)))
	if err := storeUpload(file, path); err != nil {
		log.Error().Err(err).Str("path", path).Msg("import: failed to store upload")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to store uploaded file")
	}

	// ImportFile owns the stored file from here on and removes it.
	result, err := h.imports.ImportFile(c.UserContext(), path)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(importResponse{Message: "Import completed", ImportResult: result})
}

func storeUpload(file *multipart.FileHeader, path string) error {
	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()
	return writeUpload(src, path)
}

// writeUpload copies r to path and leaves nothing behind on failure.
func writeUpload(r io.Reader, path string) error {
	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create upload: %w", err)
	}
	_, err = io.Copy(dst, r)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		if rerr := os.Remove(path); rerr != nil {
			log.Warn().Err(rerr).Str("path", path).Msg("import: failed to remove partial upload")
		}
		return fmt.Errorf("write upload: %w", err)
	}
	return nil
}

// ExportProducts streams the catalogue as an attachment. Query params: format (csv, xlsx)
func (h *TransferHandler) ExportProducts(c *fiber.Ctx) error {
	doc, err := h.exports.Export(c.UserContext(), c.Query("format", service.FormatCSV))
	if err != nil {
		return respondError(c, err)
	}
	c.Attachment(doc.Filename)
	c.Set(fiber.HeaderContentType, doc.ContentType)
	return c.Send(doc.Body)
}
