package normalizer

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/simaogato/pemetrics-backend/internal/domain"
)

// Row is one raw source row keyed by column header.
// Cells may be strings, numbers, time.Time values or nil.
type Row = map[string]any

// Sheet is one raw tabular source
type Sheet struct {
	Name    string
	Columns []string // Header order; derived from the rows when empty
	Rows    []Row
}

// columns returns the header order, deriving it from the rows when needed
func (s Sheet) columns() []string {
	if len(s.Columns) > 0 {
		return s.Columns
	}
	seen := make(map[string]bool)
	var columns []string
	for _, row := range s.Rows {
		keys := make([]string, 0, len(row))
		for key := range row {
			if !seen[key] {
				keys = append(keys, key)
			}
		}
		sort.Strings(keys)
		for _, key := range keys {
			seen[key] = true
			columns = append(columns, key)
		}
	}
	return columns
}

// Result represents the outcome of normalizing one import
type Result struct {
	Records  []domain.InvestmentRecord
	Rejected []domain.RowRejection
	Profiles []string // Profile selected for each sheet, in sheet order
}

// Errors renders the rejected rows as human readable reasons
func (r *Result) Errors() []string {
	errs := make([]string, 0, len(r.Rejected))
	for _, rejection := range r.Rejected {
		errs = append(errs, rejection.String())
	}
	return errs
}

// dateTokens mark headers that are candidates for date discovery
var dateTokens = []string{"date", "day", "month", "year", "asof", "period"}

// Normalizer maps heterogeneous sheets onto the canonical investment record.
// Profiles are tried in order; the first whose required fields are all present wins.
type Normalizer struct {
	Profiles []Profile
}

// NewNormalizer creates a Normalizer with the given profiles, or the default ones
func NewNormalizer(profiles ...Profile) *Normalizer {
	if len(profiles) == 0 {
		profiles = DefaultProfiles()
	}
	return &Normalizer{Profiles: profiles}
}

// Normalize converts every sheet into canonical records.
// Logic:
//  1. Select a profile per sheet (SchemaError aborts the whole import)
//  2. Resolve the date column, discovering it when the profile declares none
//  3. Coerce each row; rows that fail are dropped and the reason recorded
//
// Source order is preserved across and within sheets.
func (n *Normalizer) Normalize(sheets ...Sheet) (*Result, error) {
	result := &Result{
		Records:  make([]domain.InvestmentRecord, 0),
		Rejected: make([]domain.RowRejection, 0),
	}

	for _, sheet := range sheets {
		profile, mapping, err := n.resolve(sheet)
		if err != nil {
			return nil, err
		}
		result.Profiles = append(result.Profiles, profile.Name)

		for i, row := range sheet.Rows {
			if blankRow(row) {
				continue
			}
			record, err := convertRow(profile, mapping, row)
			if err != nil {
				result.Rejected = append(result.Rejected, domain.RowRejection{
					Sheet:  sheet.Name,
					Row:    i + 1,
					Reason: err.Error(),
				})
				continue
			}
			result.Records = append(result.Records, record)
		}
	}

	return result, nil
}

// NormalizeRow converts one row in the canonical schema, as used for manual entry
func (n *Normalizer) NormalizeRow(row Row) (domain.InvestmentRecord, error) {
	profile := CanonicalProfile()
	columns := make([]string, 0, len(row))
	for key := range row {
		columns = append(columns, key)
	}

	mapping, missing := profile.Match(columns)
	if len(missing) > 0 {
		return domain.InvestmentRecord{}, fmt.Errorf("%w: missing required field(s) %s",
			domain.ErrInvalidManualEntry, strings.Join(missing, ", "))
	}

	record, err := convertRow(profile, mapping, row)
	if err != nil {
		return domain.InvestmentRecord{}, fmt.Errorf("%w: %v", domain.ErrInvalidManualEntry, err)
	}
	return record, nil
}

// resolve selects the profile for a sheet and completes its column mapping
func (n *Normalizer) resolve(sheet Sheet) (Profile, Mapping, error) {
	columns := sheet.columns()

	var closest *schemaMiss
	for _, profile := range n.Profiles {
		mapping, missing := profile.Match(columns)
		if len(missing) > 0 {
			if closest == nil || len(missing) < len(closest.Fields) {
				closest = &schemaMiss{Profile: profile.Name, Fields: missing}
			}
			continue
		}

		if !profile.declares(domain.ColumnDate) {
			header, ok := discoverDateColumn(columns, mapping, sheet.Rows)
			if !ok {
				return Profile{}, nil, &domain.SchemaError{
					Sheet:  sheet.Name,
					Fields: []string{domain.ColumnDate},
					Err:    domain.ErrNoDateColumn,
				}
			}
			mapping[domain.ColumnDate] = header
		}
		return profile, mapping, nil
	}

	schemaErr := &domain.SchemaError{Sheet: sheet.Name, Err: domain.ErrNoProfileMatched}
	if closest != nil {
		schemaErr.Profile = closest.Profile
		schemaErr.Fields = closest.Fields
	}
	return Profile{}, nil, schemaErr
}

// schemaMiss records how far a profile was from matching a header set
type schemaMiss struct {
	Profile string
	Fields  []string
}

// discoverDateColumn scans headers containing a date-like token and returns the
// first one that coerces to a date for at least one row. Headers naming a date
// are tried before the other tokens, each group in column order.
func discoverDateColumn(columns []string, mapping Mapping, rows []Row) (string, bool) {
	used := make(map[string]bool, len(mapping))
	for _, header := range mapping {
		used[header] = true
	}

	for _, column := range dateCandidates(columns, used) {
		for _, row := range rows {
			if discoverableDate(row[column]) {
				return column, true
			}
		}
	}
	return "", false
}

// dateCandidates orders the unused date-like headers for discovery
func dateCandidates(columns []string, used map[string]bool) []string {
	var named, others []string
	for _, column := range columns {
		if used[column] {
			continue
		}
		folded := foldHeader(column)
		switch {
		case strings.Contains(folded, "date"):
			named = append(named, column)
		case hasDateToken(folded):
			others = append(others, column)
		}
	}
	return append(named, others...)
}

// discoverableDate reports whether a cell reads as a date during discovery.
// Small numbers such as a holding period or a bare year are not taken as
// serial days.
func discoverableDate(v any) bool {
	if n, ok := numericCell(v); ok && n < minDiscoverySerial {
		return false
	}
	_, err := coerceDate(v)
	return err == nil
}

func hasDateToken(folded string) bool {
	for _, token := range dateTokens {
		if strings.Contains(folded, token) {
			return true
		}
	}
	return false
}

func blankRow(row Row) bool {
	for _, v := range row {
		if !isBlank(v) {
			return false
		}
	}
	return true
}

// convertRow builds and validates one record from a mapped row
func convertRow(profile Profile, mapping Mapping, row Row) (domain.InvestmentRecord, error) {
	cell := func(field string) any {
		header, ok := mapping[field]
		if !ok {
			return nil
		}
		return row[header]
	}

	record := domain.InvestmentRecord{
		Name:      coerceText(cell(domain.ColumnName)),
		Fund:      coerceText(cell(domain.ColumnFund)),
		Stage:     coerceText(cell(domain.ColumnStage)),
		Sector:    coerceText(cell(domain.ColumnSector)),
		Geography: coerceText(cell(domain.ColumnGeography)),
		Notes:     coerceText(cell(domain.ColumnNotes)),
	}

	if record.Name == "" {
		return record, errors.New("name: value is blank")
	}
	if record.Fund == "" {
		return record, errors.New("fund: value is blank")
	}

	date, err := coerceDate(cell(domain.ColumnDate))
	if err != nil {
		return record, fmt.Errorf("date: %w", err)
	}
	record.Date = date

	if record.Cost, err = coerceAmount(cell(domain.ColumnCost)); err != nil {
		return record, fmt.Errorf("cost: %w", err)
	}
	if record.FairValue, err = coerceAmount(cell(domain.ColumnFairValue)); err != nil {
		return record, fmt.Errorf("fair_value: %w", err)
	}

	// Proceeds default to zero when the column is absent or the cell is blank
	record.Proceeds = canonical(decimal.Zero)
	if raw := cell(domain.ColumnProceeds); !isBlank(raw) {
		if record.Proceeds, err = coerceAmount(raw); err != nil {
			return record, fmt.Errorf("proceeds: %w", err)
		}
	}

	record.Status = profile.DefaultStatus
	if raw := coerceText(cell(domain.ColumnStatus)); raw != "" {
		status, ok := profile.parseStatus(raw)
		if !ok {
			return record, fmt.Errorf("status: unknown value %q", raw)
		}
		record.Status = status
	}

	if err := record.Validate(); err != nil {
		return record, err
	}
	return record, nil
}
