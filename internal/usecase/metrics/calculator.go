package metrics

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"github.com/simaogato/pemetrics-backend/internal/domain"
)

// DaysPerYear converts elapsed days into years
const DaysPerYear = 365.25

// RecordMetrics represents the derived metrics of a single investment
type RecordMetrics struct {
	Record        domain.InvestmentRecord
	MOIC          domain.Metric
	ROI           domain.Metric
	YearsHeld     float64
	AnnualizedROI domain.Metric
}

// PortfolioMetrics represents the aggregate metrics of a set of investments.
// Every ratio is undefined when TotalCost is zero.
type PortfolioMetrics struct {
	Count                 int
	TotalCost             decimal.Decimal
	TotalFairValue        decimal.Decimal
	TotalProceeds         decimal.Decimal
	MOIC                  domain.Metric
	ROI                   domain.Metric
	WeightedAnnualizedROI domain.Metric
	DPI                   domain.Metric
	TVPI                  domain.Metric

	// IRR is filled in by callers that solve the cash-flow series
	IRR       domain.Metric
	IRRStatus string
}

// FundMetrics represents the aggregate metrics of one fund
type FundMetrics struct {
	Fund string
	PortfolioMetrics
}

// Calculator computes record and portfolio metrics as of a reference date
type Calculator struct {
	AsOf time.Time // Zero means today (UTC)
}

// NewCalculator creates a Calculator evaluating holding periods at asOf
func NewCalculator(asOf time.Time) *Calculator {
	return &Calculator{AsOf: asOf}
}

// ReferenceDate returns the evaluation date as a calendar date
func (c *Calculator) ReferenceDate() time.Time {
	if c.AsOf.IsZero() {
		return domain.CalendarDate(time.Now().UTC())
	}
	return domain.CalendarDate(c.AsOf)
}

// Record computes the per-record metrics.
// AnnualizedROI = MOIC^(1/YearsHeld) - 1, undefined when YearsHeld <= 0 or MOIC <= 0.
func (c *Calculator) Record(r domain.InvestmentRecord) RecordMetrics {
	return c.record(r, c.ReferenceDate())
}

func (c *Calculator) record(r domain.InvestmentRecord, asOf time.Time) RecordMetrics {
	moic := r.MOIC()
	days := math.Round(asOf.Sub(domain.CalendarDate(r.Date)).Hours() / 24)
	years := days / DaysPerYear

	annualized := domain.Undefined()
	if years > 0 && moic.Defined && moic.Value > 0 {
		annualized = domain.Defined(math.Pow(moic.Value, 1/years) - 1)
	}

	return RecordMetrics{
		Record:        r,
		MOIC:          moic,
		ROI:           r.ROI(),
		YearsHeld:     years,
		AnnualizedROI: annualized,
	}
}

// Records computes the per-record metrics in input order
func (c *Calculator) Records(records []domain.InvestmentRecord) []RecordMetrics {
	asOf := c.ReferenceDate()
	out := make([]RecordMetrics, 0, len(records))
	for _, r := range records {
		out = append(out, c.record(r, asOf))
	}
	return out
}

// Portfolio aggregates the given records.
// Logic:
//  1. Sum cost, fair value and proceeds in decimal
//  2. MOIC, ROI, DPI and TVPI divide by the total cost
//  3. WeightedAnnualizedROI is the cost-weighted mean over records with a
//     defined annualized ROI; its denominator is their cost only
func (c *Calculator) Portfolio(records []domain.InvestmentRecord) PortfolioMetrics {
	asOf := c.ReferenceDate()

	totalCost := decimal.Zero
	totalFairValue := decimal.Zero
	totalProceeds := decimal.Zero
	realizedFairValue := decimal.Zero
	unrealizedFairValue := decimal.Zero

	weightedCost := decimal.Zero
	values := make([]float64, 0, len(records))
	weights := make([]float64, 0, len(records))

	for _, r := range records {
		totalCost = totalCost.Add(r.Cost)
		totalFairValue = totalFairValue.Add(r.FairValue)
		totalProceeds = totalProceeds.Add(r.Proceeds)

		if r.Status == domain.StatusRealized {
			realizedFairValue = realizedFairValue.Add(r.FairValue)
		} else {
			unrealizedFairValue = unrealizedFairValue.Add(r.FairValue)
		}

		if annualized := c.record(r, asOf).AnnualizedROI; annualized.Defined {
			values = append(values, annualized.Value)
			weights = append(weights, r.Cost.InexactFloat64())
			weightedCost = weightedCost.Add(r.Cost)
		}
	}

	weighted := domain.Undefined()
	if !weightedCost.IsZero() {
		weighted = domain.Defined(stat.Mean(values, weights))
	}

	return PortfolioMetrics{
		Count:                 len(records),
		TotalCost:             totalCost,
		TotalFairValue:        totalFairValue,
		TotalProceeds:         totalProceeds,
		MOIC:                  domain.Ratio(totalFairValue, totalCost),
		ROI:                   domain.Ratio(totalFairValue.Sub(totalCost), totalCost),
		WeightedAnnualizedROI: weighted,
		DPI:                   domain.Ratio(realizedFairValue, totalCost),
		TVPI:                  domain.Ratio(realizedFairValue.Add(unrealizedFairValue), totalCost),
	}
}

// ByFund partitions the records by fund and aggregates each group.
// Groups are sorted ascending by fund name.
func (c *Calculator) ByFund(records []domain.InvestmentRecord) []FundMetrics {
	groups := make(map[string][]domain.InvestmentRecord)
	funds := make([]string, 0)
	for _, r := range records {
		if _, ok := groups[r.Fund]; !ok {
			funds = append(funds, r.Fund)
		}
		groups[r.Fund] = append(groups[r.Fund], r)
	}
	sort.Strings(funds)

	out := make([]FundMetrics, 0, len(funds))
	for _, fund := range funds {
		out = append(out, FundMetrics{Fund: fund, PortfolioMetrics: c.Portfolio(groups[fund])})
	}
	return out
}

// RankByMOIC orders record metrics by MOIC, highest first, and keeps the top n.
// Undefined MOICs sort last; ties keep input order. n <= 0 keeps all.
func RankByMOIC(records []RecordMetrics, n int) []RecordMetrics {
	ranked := make([]RecordMetrics, len(records))
	copy(ranked, records)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i].MOIC, ranked[j].MOIC
		if a.Defined != b.Defined {
			return a.Defined
		}
		return a.Defined && a.Value > b.Value
	})
	if n > 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}
