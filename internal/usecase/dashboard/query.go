package dashboard

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/simaogato/pemetrics-backend/internal/domain"
	"github.com/simaogato/pemetrics-backend/internal/usecase/metrics"
)

// QueryParams is the transport-neutral form of a query, as received from a client.
// Pointer fields are optional; an open range bound is unbounded.
type QueryParams struct {
	Funds    []string // nil when the client sent no fund restriction
	Status   string
	YearFrom *int
	YearTo   *int
	MOICMin  *float64
	MOICMax  *float64
	Text     string
	Period   string
	TopN     int
}

// Query validates the params and builds a Query
func (p QueryParams) Query() (Query, error) {
	criteria := domain.FilterCriteria{
		Funds: p.Funds,
		Text:  strings.TrimSpace(p.Text),
	}

	if raw := strings.TrimSpace(p.Status); raw != "" {
		status, ok := domain.ParseStatus(raw)
		if !ok {
			return Query{}, fmt.Errorf("invalid status %q: expected realized or unrealized", raw)
		}
		criteria.Status = &status
	}

	if p.YearFrom != nil || p.YearTo != nil {
		years := domain.YearRange{Lo: math.MinInt32, Hi: math.MaxInt32}
		if p.YearFrom != nil {
			years.Lo = *p.YearFrom
		}
		if p.YearTo != nil {
			years.Hi = *p.YearTo
		}
		criteria.Years = &years
	}

	if p.MOICMin != nil || p.MOICMax != nil {
		moic := domain.Range{Lo: math.Inf(-1), Hi: math.Inf(1)}
		if p.MOICMin != nil {
			moic.Lo = *p.MOICMin
		}
		if p.MOICMax != nil {
			moic.Hi = *p.MOICMax
		}
		if math.IsNaN(moic.Lo) || math.IsNaN(moic.Hi) {
			return Query{}, errors.New("invalid moic range: bounds must be numbers")
		}
		criteria.MOIC = &moic
	}

	q := Query{TopN: p.TopN}
	if !criteria.IsZero() {
		q.Criteria = []domain.FilterCriteria{criteria}
	}

	if strings.TrimSpace(p.Period) != "" {
		period, err := metrics.ParsePeriod(p.Period)
		if err != nil {
			return Query{}, fmt.Errorf("invalid period: %w", err)
		}
		q.Period = period
	}

	if p.TopN < 0 {
		return Query{}, errors.New("invalid top_n: must not be negative")
	}

	return q, nil
}
