// Package tabular reads and writes the row-oriented files used for catalogue import and export.
package tabular

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// ErrUnsupportedFormat is returned for file extensions other than .csv and .xlsx.
var ErrUnsupportedFormat = errors.New("unsupported file format, expected .csv or .xlsx")

// Row is one data row keyed by normalized header. Line is the 1-based line in the
// source file, so the first data row after the header is line 2.
type Row struct {
	Line   int
	Fields map[string]string
}

// Get returns the trimmed value for key, or "" when the column is absent.
func (r Row) Get(key string) string {
	return r.Fields[key]
}

// Has reports whether the column was present in the source file.
func (r Row) Has(key string) bool {
	_, ok := r.Fields[key]
	return ok
}

// Table is an ordered header plus rows of cells in header order.
type Table struct {
	Header []string
	Rows   [][]string
}

// Supported reports whether name has an extension ParseFile understands.
func Supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".xlsx":
		return true
	}
	return false
}

// ParseFile picks the parser by file extension.
func ParseFile(path string) ([]Row, error) {
	if !Supported(path) {
		return nil, ErrUnsupportedFormat
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return ParseXLSX(f)
	}
	return ParseCSV(f)
}

// NormalizeHeader trims, folds camelCase to snake_case and lower-cases a header cell,
// so "createdAt", "Created_At" and " created_at " all map to "created_at".
func NormalizeHeader(h string) string {
	h = strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")
	h = strings.TrimSuffix(h, " *")

	var b strings.Builder
	runes := []rune(h)
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 && unicode.IsLower(runes[i-1]) {
			b.WriteByte('_')
		}
		if r == ' ' || r == '-' {
			r = '_'
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

func buildRows(headers []string, records [][]string, firstLine int) []Row {
	keys := make([]string, len(headers))
	for i, h := range headers {
		keys[i] = NormalizeHeader(h)
	}

	rows := make([]Row, 0, len(records))
	for i, record := range records {
		if blank(record) {
			continue
		}
		fields := make(map[string]string, len(keys))
		for j, value := range record {
			if j < len(keys) && keys[j] != "" {
				fields[keys[j]] = strings.TrimSpace(value)
			}
		}
		rows = append(rows, Row{Line: firstLine + i, Fields: fields})
	}
	return rows
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
