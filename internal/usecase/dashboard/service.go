package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/simaogato/pemetrics-backend/internal/domain"
	"github.com/simaogato/pemetrics-backend/internal/usecase/cashflow"
	"github.com/simaogato/pemetrics-backend/internal/usecase/filter"
	"github.com/simaogato/pemetrics-backend/internal/usecase/irr"
	"github.com/simaogato/pemetrics-backend/internal/usecase/metrics"
	"github.com/simaogato/pemetrics-backend/internal/usecase/normalizer"
)

// RecordSource supplies the merged record collection of a session
type RecordSource interface {
	Records(ctx context.Context) ([]domain.InvestmentRecord, error)
	Normalization() *normalizer.Result
}

// Query represents one recomputation request from the presentation layer
type Query struct {
	Criteria []domain.FilterCriteria // Conjunction; empty keeps every record
	Period   metrics.Period          // Series bucket, month when empty
	TopN     int                     // Ranked records to keep, all when <= 0
}

// Report represents everything the presentation layer renders for one query
type Report struct {
	AsOf          time.Time
	Portfolio     metrics.PortfolioMetrics
	Funds         []metrics.FundMetrics
	Series        []metrics.PeriodPoint
	Records       []metrics.RecordMetrics // Filtered records in source order
	TopByMOIC     []metrics.RecordMetrics
	CashFlows     []domain.CashFlowEvent
	Normalization *normalizer.Result

	// Widget bounds over the unfiltered collection
	AvailableFunds []string
	MOICBounds     *domain.Range
	YearBounds     *domain.YearRange
}

// DashboardService handles metric computation over the session records
type DashboardService struct {
	Source     RecordSource
	Calculator *metrics.Calculator
	Solver     *irr.Solver
	Logger     zerolog.Logger
}

// NewDashboardService creates a new DashboardService instance
func NewDashboardService(
	source RecordSource,
	calculator *metrics.Calculator,
	solver *irr.Solver,
	logger zerolog.Logger,
) *DashboardService {
	return &DashboardService{
		Source:     source,
		Calculator: calculator,
		Solver:     solver,
		Logger:     logger.With().Str("component", "dashboard").Logger(),
	}
}

// Compute recomputes the report for the current session records
func (s *DashboardService) Compute(ctx context.Context, q Query) (*Report, error) {
	start := time.Now()

	records, err := s.Source.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}

	report := s.Build(records, q)
	report.Normalization = s.Source.Normalization()

	s.Logger.Debug().
		Int("records", len(records)).
		Int("filtered", report.Portfolio.Count).
		Str("irr_status", report.Portfolio.IRRStatus).
		Dur("elapsed", time.Since(start)).
		Msg("report computed")

	return report, nil
}

// Build computes the report over a caller supplied record collection
// Logic:
//  1. Widget bounds come from the unfiltered records
//  2. Filter the records by the query criteria
//  3. Per-record, portfolio, per-fund and period metrics over the subset
//  4. Portfolio and per-fund IRR from the subset's cash-flow series
func (s *DashboardService) Build(records []domain.InvestmentRecord, q Query) *Report {
	report := &Report{
		AsOf:           s.Calculator.ReferenceDate(),
		AvailableFunds: filter.Funds(records),
	}
	if bounds, ok := filter.MOICBounds(records); ok {
		report.MOICBounds = &bounds
	}
	if bounds, ok := filter.YearBounds(records); ok {
		report.YearBounds = &bounds
	}

	subset := filter.Apply(records, q.Criteria...)

	period := q.Period
	if period == "" {
		period = metrics.PeriodMonth
	}

	report.Records = s.Calculator.Records(subset)
	report.TopByMOIC = metrics.RankByMOIC(report.Records, q.TopN)
	report.Series = metrics.Series(subset, period)
	report.CashFlows = cashflow.Build(subset)

	report.Portfolio = s.Calculator.Portfolio(subset)
	s.applyIRR(&report.Portfolio, report.CashFlows)

	report.Funds = s.Calculator.ByFund(subset)
	for i := range report.Funds {
		fund := filter.Apply(subset, domain.FilterCriteria{Funds: []string{report.Funds[i].Fund}})
		s.applyIRR(&report.Funds[i].PortfolioMetrics, cashflow.Build(fund))
	}

	return report
}

func (s *DashboardService) applyIRR(m *metrics.PortfolioMetrics, events []domain.CashFlowEvent) {
	result := s.Solver.SolveEvents(events)
	m.IRR = result.Metric()
	m.IRRStatus = string(result.Status)
}
