package cashflow

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/simaogato/pemetrics-backend/internal/domain"
)

// Build converts records into a dated cash-flow series for the IRR solver.
// Logic:
//   - Each record contributes -cost and +(proceeds + fair value) at its own date,
//     so unrealized value is treated as realized on the investment date
//   - Contributions sharing a date are netted into one event
//   - Events are sorted ascending by date
//
// A date whose contributions net to zero still yields an event.
func Build(records []domain.InvestmentRecord) []domain.CashFlowEvent {
	net := make(map[time.Time]decimal.Decimal)
	for _, r := range records {
		on := domain.CalendarDate(r.Date)
		inflow := r.Proceeds.Add(r.FairValue)
		current, ok := net[on]
		if !ok {
			current = decimal.Zero
		}
		net[on] = current.Sub(r.Cost).Add(inflow)
	}

	events := make([]domain.CashFlowEvent, 0, len(net))
	for on, amount := range net {
		events = append(events, domain.CashFlowEvent{Date: on, Amount: amount})
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})
	return events
}
