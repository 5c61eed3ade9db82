package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// ParseCSV reads an RFC 4180 document whose first record is the header.
// An empty document yields no rows.
func ParseCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []Row{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	var records [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		records = append(records, record)
	}

	// csv skips empty lines, so numbering follows records rather than raw lines.
	return buildRows(headers, records, 2), nil
}

// WriteCSV renders t with RFC 4180 quoting: fields holding a comma, quote or newline
// are quoted and embedded quotes are doubled.
func WriteCSV(w io.Writer, t Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Header); err != nil {
		return err
	}
	if err := writer.WriteAll(t.Rows); err != nil {
		return err
	}
	return writer.Error()
}
