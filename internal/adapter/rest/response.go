package rest

import (
	"github.com/shopspring/decimal"

	"github.com/simaogato/pemetrics-backend/internal/domain"
	"github.com/simaogato/pemetrics-backend/internal/usecase/dashboard"
	"github.com/simaogato/pemetrics-backend/internal/usecase/metrics"
)

type portfolioResponse struct {
	Count                 int             `json:"count"`
	TotalCost             decimal.Decimal `json:"total_cost"`
	TotalFairValue        decimal.Decimal `json:"total_fair_value"`
	TotalProceeds         decimal.Decimal `json:"total_proceeds"`
	MOIC                  domain.Metric   `json:"moic"`
	ROI                   domain.Metric   `json:"roi"`
	WeightedAnnualizedROI domain.Metric   `json:"weighted_annualized_roi"`
	DPI                   domain.Metric   `json:"dpi"`
	TVPI                  domain.Metric   `json:"tvpi"`
	IRR                   domain.Metric   `json:"irr"`
	IRRStatus             string          `json:"irr_status"`
}

type fundResponse struct {
	Fund string `json:"fund"`
	portfolioResponse
}

type recordResponse struct {
	Name          string          `json:"name"`
	Fund          string          `json:"fund"`
	Date          string          `json:"date"`
	Status        domain.Status   `json:"status"`
	Cost          decimal.Decimal `json:"cost"`
	FairValue     decimal.Decimal `json:"fair_value"`
	Proceeds      decimal.Decimal `json:"proceeds"`
	MOIC          domain.Metric   `json:"moic"`
	ROI           domain.Metric   `json:"roi"`
	YearsHeld     float64         `json:"years_held"`
	AnnualizedROI domain.Metric   `json:"annualized_roi"`
}

type pointResponse struct {
	Start               string          `json:"start"`
	Count               int             `json:"count"`
	Cost                decimal.Decimal `json:"cost"`
	FairValue           decimal.Decimal `json:"fair_value"`
	CumulativeCost      decimal.Decimal `json:"cumulative_cost"`
	CumulativeFairValue decimal.Decimal `json:"cumulative_fair_value"`
	CumulativeMOIC      domain.Metric   `json:"cumulative_moic"`
}

type cashFlowResponse struct {
	Date   string          `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// ReportResponse is the JSON form of a dashboard report.
// Amounts are decimal strings; undefined metrics are null.
type ReportResponse struct {
	AsOf           string             `json:"as_of"`
	Portfolio      portfolioResponse  `json:"portfolio"`
	Funds          []fundResponse     `json:"funds"`
	Series         []pointResponse    `json:"series"`
	Records        []recordResponse   `json:"records"`
	TopByMOIC      []recordResponse   `json:"top_by_moic"`
	CashFlows      []cashFlowResponse `json:"cash_flows"`
	Rejected       []string           `json:"rejected"`
	AvailableFunds []string           `json:"available_funds"`
	MOICBounds     *domain.Range      `json:"moic_bounds,omitempty"`
	YearBounds     *domain.YearRange  `json:"year_bounds,omitempty"`
}

func newPortfolioResponse(p metrics.PortfolioMetrics) portfolioResponse {
	return portfolioResponse{
		Count:                 p.Count,
		TotalCost:             p.TotalCost,
		TotalFairValue:        p.TotalFairValue,
		TotalProceeds:         p.TotalProceeds,
		MOIC:                  p.MOIC,
		ROI:                   p.ROI,
		WeightedAnnualizedROI: p.WeightedAnnualizedROI,
		DPI:                   p.DPI,
		TVPI:                  p.TVPI,
		IRR:                   p.IRR,
		IRRStatus:             p.IRRStatus,
	}
}

func newRecordResponses(records []metrics.RecordMetrics) []recordResponse {
	out := make([]recordResponse, 0, len(records))
	for _, m := range records {
		out = append(out, recordResponse{
			Name:          m.Record.Name,
			Fund:          m.Record.Fund,
			Date:          m.Record.Date.Format(domain.DateLayout),
			Status:        m.Record.Status,
			Cost:          m.Record.Cost,
			FairValue:     m.Record.FairValue,
			Proceeds:      m.Record.Proceeds,
			MOIC:          m.MOIC,
			ROI:           m.ROI,
			YearsHeld:     m.YearsHeld,
			AnnualizedROI: m.AnnualizedROI,
		})
	}
	return out
}

// NewReportResponse converts a report to its JSON form
func NewReportResponse(report *dashboard.Report) ReportResponse {
	resp := ReportResponse{
		AsOf:           report.AsOf.Format(domain.DateLayout),
		Portfolio:      newPortfolioResponse(report.Portfolio),
		Funds:          make([]fundResponse, 0, len(report.Funds)),
		Series:         make([]pointResponse, 0, len(report.Series)),
		Records:        newRecordResponses(report.Records),
		TopByMOIC:      newRecordResponses(report.TopByMOIC),
		CashFlows:      make([]cashFlowResponse, 0, len(report.CashFlows)),
		Rejected:       []string{},
		AvailableFunds: report.AvailableFunds,
	}

	if report.MOICBounds != nil {
		resp.MOICBounds = &boundsResponse{Min: report.MOICBounds.Lo, Max: report.MOICBounds.Hi}
	}
	if report.YearBounds != nil {
		resp.YearBounds = &yearBoundsResponse{Min: report.YearBounds.Lo, Max: report.YearBounds.Hi}
	}

	for _, f := range report.Funds {
		resp.Funds = append(resp.Funds, fundResponse{Fund: f.Fund, portfolioResponse: newPortfolioResponse(f.PortfolioMetrics)})
	}
	for _, p := range report.Series {
		resp.Series = append(resp.Series, pointResponse{
			Start:               p.Start.Format(domain.DateLayout),
			Count:               p.Count,
			Cost:                p.Cost,
			FairValue:           p.FairValue,
			CumulativeCost:      p.CumulativeCost,
			CumulativeFairValue: p.CumulativeFairValue,
			CumulativeMOIC:      p.CumulativeMOIC,
		})
	}
	for _, e := range report.CashFlows {
		resp.CashFlows = append(resp.CashFlows, cashFlowResponse{Date: e.Date.Format(domain.DateLayout), Amount: e.Amount})
	}
	if report.Normalization != nil {
		resp.Rejected = report.Normalization.Errors()
	}

	return resp
}
