package filter

import (
	"math"
	"sort"

	"github.com/simaogato/pemetrics-backend/internal/domain"
)

// RangeEpsilon widens a degenerate slider range so its single value stays selectable
const RangeEpsilon = 1e-6

// Apply returns the records matching every criteria, in their original order.
// It never fails; a criteria set matching nothing yields an empty, non-nil slice.
func Apply(records []domain.InvestmentRecord, criteria ...domain.FilterCriteria) []domain.InvestmentRecord {
	subset := make([]domain.InvestmentRecord, 0, len(records))
	for _, record := range records {
		if matchAll(record, criteria) {
			subset = append(subset, record)
		}
	}
	return subset
}

func matchAll(record domain.InvestmentRecord, criteria []domain.FilterCriteria) bool {
	for _, c := range criteria {
		if !c.Match(record) {
			return false
		}
	}
	return true
}

// MOICBounds returns the span of defined MOICs, widened when all values are equal.
// Returns false when no record has a defined MOIC.
func MOICBounds(records []domain.InvestmentRecord) (domain.Range, bool) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, record := range records {
		moic := record.MOIC()
		if !moic.Defined {
			continue
		}
		lo = math.Min(lo, moic.Value)
		hi = math.Max(hi, moic.Value)
	}
	if lo > hi {
		return domain.Range{}, false
	}
	return domain.Range{Lo: lo, Hi: hi}.Widen(RangeEpsilon), true
}

// YearBounds returns the span of record years.
// Returns false for an empty collection.
func YearBounds(records []domain.InvestmentRecord) (domain.YearRange, bool) {
	if len(records) == 0 {
		return domain.YearRange{}, false
	}
	bounds := domain.YearRange{Lo: records[0].Date.Year(), Hi: records[0].Date.Year()}
	for _, record := range records[1:] {
		year := record.Date.Year()
		if year < bounds.Lo {
			bounds.Lo = year
		}
		if year > bounds.Hi {
			bounds.Hi = year
		}
	}
	return bounds, true
}

// Funds lists the distinct fund names, sorted ascending
func Funds(records []domain.InvestmentRecord) []string {
	seen := make(map[string]bool)
	funds := make([]string, 0)
	for _, record := range records {
		if !seen[record.Fund] {
			seen[record.Fund] = true
			funds = append(funds, record.Fund)
		}
	}
	sort.Strings(funds)
	return funds
}
