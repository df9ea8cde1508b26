package cli

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/simaogato/pemetrics-backend/internal/usecase/normalizer"
)

// ReadSheet reads a CSV table whose first row is the header.
// Missing trailing cells are left out of the row.
func ReadSheet(r io.Reader, name string) (normalizer.Sheet, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return normalizer.Sheet{}, fmt.Errorf("sheet %q is empty", name)
	}
	if err != nil {
		return normalizer.Sheet{}, fmt.Errorf("failed to read header of %q: %w", name, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	sheet := normalizer.Sheet{Name: name, Columns: header}
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return normalizer.Sheet{}, fmt.Errorf("failed to read %q: %w", name, err)
		}

		row := make(normalizer.Row, len(header))
		for i, value := range fields {
			if i < len(header) && header[i] != "" {
				row[header[i]] = value
			}
		}
		sheet.Rows = append(sheet.Rows, row)
	}

	return sheet, nil
}

// ReadSheetFile reads a CSV file into a sheet named after the file
func ReadSheetFile(path string) (normalizer.Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return normalizer.Sheet{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ReadSheet(f, name)
}
