package domain

import (
	"slices"
	"strings"
)

// YearRange is an inclusive range of calendar years
type YearRange struct {
	Lo, Hi int
}

// Contains reports whether year lies in [Lo, Hi]
func (r YearRange) Contains(year int) bool {
	return year >= r.Lo && year <= r.Hi
}

// Range is an inclusive range of floats
// Lo == Hi is a valid single-value range; Lo > Hi contains nothing
type Range struct {
	Lo, Hi float64
}

// Contains reports whether v lies in [Lo, Hi]
func (r Range) Contains(v float64) bool {
	return v >= r.Lo && v <= r.Hi
}

// Widen returns the range grown by eps on both sides when Lo == Hi
// Range widgets cannot represent an empty span, so a degenerate range is widened
func (r Range) Widen(eps float64) Range {
	if r.Lo == r.Hi {
		return Range{Lo: r.Lo - eps, Hi: r.Hi + eps}
	}
	return r
}

// FilterCriteria selects a working subset of investment records.
// It is a pure value object; matching never mutates a record.
type FilterCriteria struct {
	// Funds restricts records to these funds. nil places no restriction;
	// a non-nil empty slice matches no record.
	Funds []string
	// Status restricts records to one status when set
	Status *Status
	// Years restricts the calendar year of the record date when set
	Years *YearRange
	// MOIC restricts the record MOIC when set; undefined MOICs never match
	MOIC *Range
	// Text is a case-insensitive substring of the record name; blank matches all
	Text string
}

// Match reports whether the record satisfies every criterion
func (c FilterCriteria) Match(r InvestmentRecord) bool {
	if c.Funds != nil && !slices.Contains(c.Funds, r.Fund) {
		return false
	}

	if c.Status != nil && !strings.EqualFold(string(*c.Status), string(r.Status)) {
		return false
	}

	if c.Years != nil && !c.Years.Contains(r.Date.Year()) {
		return false
	}

	if c.MOIC != nil {
		moic := r.MOIC()
		if !moic.Defined || !c.MOIC.Contains(moic.Value) {
			return false
		}
	}

	if text := strings.TrimSpace(c.Text); text != "" {
		if !strings.Contains(strings.ToLower(r.Name), strings.ToLower(text)) {
			return false
		}
	}

	return true
}

// IsZero reports whether the criteria place no restriction at all
func (c FilterCriteria) IsZero() bool {
	return c.Funds == nil && c.Status == nil && c.Years == nil && c.MOIC == nil && strings.TrimSpace(c.Text) == ""
}
