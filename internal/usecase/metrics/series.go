package metrics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/simaogato/pemetrics-backend/internal/domain"
)

// Period is the bucket size of a time series
type Period string

const (
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
)

// ParsePeriod resolves a period name, case-insensitively
func ParsePeriod(raw string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(raw))); p {
	case PeriodMonth, PeriodQuarter, PeriodYear:
		return p, nil
	}
	return "", fmt.Errorf("unknown period %q: expected month, quarter or year", raw)
}

// Start returns the first day of the period containing t
func (p Period) Start(t time.Time) time.Time {
	y, m, _ := t.Date()
	switch p {
	case PeriodYear:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
	case PeriodQuarter:
		first := time.Month((int(m)-1)/3*3 + 1)
		return time.Date(y, first, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	}
}

// PeriodPoint is one bucket of a cumulative time series
type PeriodPoint struct {
	Start               time.Time
	Count               int
	Cost                decimal.Decimal
	FairValue           decimal.Decimal
	CumulativeCost      decimal.Decimal
	CumulativeFairValue decimal.Decimal
	CumulativeMOIC      domain.Metric
}

// Series partitions records by period start, sorts the buckets ascending
// and accumulates cost and fair value across them
func Series(records []domain.InvestmentRecord, period Period) []PeriodPoint {
	buckets := make(map[time.Time]*PeriodPoint)
	for _, r := range records {
		start := period.Start(r.Date)
		point, ok := buckets[start]
		if !ok {
			point = &PeriodPoint{Start: start, Cost: decimal.Zero, FairValue: decimal.Zero}
			buckets[start] = point
		}
		point.Count++
		point.Cost = point.Cost.Add(r.Cost)
		point.FairValue = point.FairValue.Add(r.FairValue)
	}

	points := make([]PeriodPoint, 0, len(buckets))
	for _, point := range buckets {
		points = append(points, *point)
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Start.Before(points[j].Start)
	})

	cost, fairValue := decimal.Zero, decimal.Zero
	for i := range points {
		cost = cost.Add(points[i].Cost)
		fairValue = fairValue.Add(points[i].FairValue)
		points[i].CumulativeCost = cost
		points[i].CumulativeFairValue = fairValue
		points[i].CumulativeMOIC = domain.Ratio(fairValue, cost)
	}
	return points
}
