package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of an investment
type Status string

const (
	StatusRealized   Status = "realized"
	StatusUnrealized Status = "unrealized"
)

// statusAliases maps case-folded source spellings onto a canonical Status
var statusAliases = map[string]Status{
	"realized":   StatusRealized,
	"realised":   StatusRealized,
	"unrealized": StatusUnrealized,
	"unrealised": StatusUnrealized,
}

// ParseStatus normalizes case and whitespace and resolves the known spellings
// Returns false when the value is not a recognized status
func ParseStatus(raw string) (Status, bool) {
	status, ok := statusAliases[strings.ToLower(strings.TrimSpace(raw))]
	return status, ok
}

// Valid reports whether s is one of the canonical statuses
func (s Status) Valid() bool {
	return s == StatusRealized || s == StatusUnrealized
}

// InvestmentRecord represents one investment in the domain layer, after normalization.
// Amounts are held as decimals; ratios derived from them are float64 Metrics.
type InvestmentRecord struct {
	Name      string
	Fund      string
	Date      time.Time       // Calendar date at UTC midnight
	Cost      decimal.Decimal // Capital deployed (basis)
	FairValue decimal.Decimal // Current estimated value
	Proceeds  decimal.Decimal // Realized distributions to date, zero when unknown
	Status    Status

	// Optional descriptive attributes
	Stage     string
	Sector    string
	Geography string
	Notes     string
}

// Validate ensures the record adheres to domain rules
// Returns an error if validation fails
func (r *InvestmentRecord) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("investment name cannot be empty")
	}
	if strings.TrimSpace(r.Fund) == "" {
		return errors.New("fund cannot be empty")
	}
	if r.Date.IsZero() {
		return errors.New("investment date is required")
	}
	if r.Cost.IsNegative() {
		return errors.New("cost must not be negative")
	}
	if r.FairValue.IsNegative() {
		return errors.New("fair value must not be negative")
	}
	if r.Proceeds.IsNegative() {
		return errors.New("proceeds must not be negative")
	}
	if !r.Status.Valid() {
		return errors.New("status must be realized or unrealized")
	}
	return nil
}

// MOIC returns fair value divided by cost
// Undefined when cost is zero
func (r InvestmentRecord) MOIC() Metric {
	return Ratio(r.FairValue, r.Cost)
}

// ROI returns (fair value - cost) / cost
// Undefined when cost is zero
func (r InvestmentRecord) ROI() Metric {
	return Ratio(r.FairValue.Sub(r.Cost), r.Cost)
}

// Canonical column names, shared by the canonical schema profile and Row
const (
	ColumnName      = "name"
	ColumnFund      = "fund"
	ColumnDate      = "date"
	ColumnCost      = "cost"
	ColumnFairValue = "fair_value"
	ColumnProceeds  = "proceeds"
	ColumnStatus    = "status"
	ColumnStage     = "stage"
	ColumnSector    = "sector"
	ColumnGeography = "geography"
	ColumnNotes     = "notes"
)

// CanonicalColumns lists the canonical columns in export order
var CanonicalColumns = []string{
	ColumnName, ColumnFund, ColumnDate, ColumnCost, ColumnFairValue, ColumnProceeds,
	ColumnStatus, ColumnStage, ColumnSector, ColumnGeography, ColumnNotes,
}

// DateLayout is the layout used to render calendar dates
const DateLayout = "2006-01-02"

// Row renders the record as a raw row keyed by the canonical column names.
// Normalizing the returned row yields a record equal to r.
func (r InvestmentRecord) Row() map[string]any {
	return map[string]any{
		ColumnName:      r.Name,
		ColumnFund:      r.Fund,
		ColumnDate:      r.Date.Format(DateLayout),
		ColumnCost:      r.Cost.String(),
		ColumnFairValue: r.FairValue.String(),
		ColumnProceeds:  r.Proceeds.String(),
		ColumnStatus:    string(r.Status),
		ColumnStage:     r.Stage,
		ColumnSector:    r.Sector,
		ColumnGeography: r.Geography,
		ColumnNotes:     r.Notes,
	}
}

// CalendarDate truncates t to its calendar date at UTC midnight
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
