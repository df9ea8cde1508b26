package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/simaogato/pemetrics-backend/internal/domain"
	"github.com/simaogato/pemetrics-backend/internal/usecase/metrics"
)

// ratioPrecision is the number of decimals written for derived ratios
const ratioPrecision = 6

// Header returns the column names of the flat per-record table
func Header() []string {
	return []string{
		domain.ColumnName,
		domain.ColumnFund,
		domain.ColumnDate,
		domain.ColumnStatus,
		domain.ColumnStage,
		domain.ColumnSector,
		domain.ColumnGeography,
		domain.ColumnNotes,
		domain.ColumnCost,
		domain.ColumnFairValue,
		domain.ColumnProceeds,
		"moic",
		"roi",
		"years_held",
		"annualized_roi",
	}
}

// Rows flattens record metrics into table rows aligned with Header.
// Undefined metrics are written as empty cells.
func Rows(records []metrics.RecordMetrics) [][]string {
	rows := make([][]string, 0, len(records))
	for _, m := range records {
		r := m.Record
		rows = append(rows, []string{
			r.Name,
			r.Fund,
			r.Date.Format(domain.DateLayout),
			string(r.Status),
			r.Stage,
			r.Sector,
			r.Geography,
			r.Notes,
			r.Cost.String(),
			r.FairValue.String(),
			r.Proceeds.String(),
			cell(m.MOIC),
			cell(m.ROI),
			strconv.FormatFloat(m.YearsHeld, 'f', 4, 64),
			cell(m.AnnualizedROI),
		})
	}
	return rows
}

func cell(m domain.Metric) string {
	if !m.Defined {
		return ""
	}
	return strconv.FormatFloat(m.Value, 'f', ratioPrecision, 64)
}

// WriteCSV writes the header and one row per record
func WriteCSV(w io.Writer, records []metrics.RecordMetrics) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Header()); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	if err := writer.WriteAll(Rows(records)); err != nil {
		return fmt.Errorf("failed to write csv rows: %w", err)
	}
	return nil
}
