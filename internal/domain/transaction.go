package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// CashFlowEvent represents a signed cash movement on one calendar date
// Negative amounts are capital outflows, positive amounts are inflows
type CashFlowEvent struct {
	Date   time.Time
	Amount decimal.Decimal
}

// IsOutflow reports whether the event moves capital out of the investor
func (e CashFlowEvent) IsOutflow() bool {
	return e.Amount.IsNegative()
}

// IsInflow reports whether the event returns capital to the investor
func (e CashFlowEvent) IsInflow() bool {
	return e.Amount.IsPositive()
}

// ValidateSeries ensures a series is ready for the IRR solver
// CRITICAL: dates must be strictly ascending, so no two events share a date
func ValidateSeries(events []CashFlowEvent) error {
	for i := 1; i < len(events); i++ {
		if !events[i].Date.After(events[i-1].Date) {
			if events[i].Date.Equal(events[i-1].Date) {
				return errors.New("cash flow series must not contain two events on the same date")
			}
			return errors.New("cash flow series must be sorted by date")
		}
	}
	return nil
}
