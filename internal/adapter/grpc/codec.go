package grpc

import (
	"fmt"
	"math"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/pemetrics-backend/internal/domain"
	"github.com/simaogato/pemetrics-backend/internal/usecase/dashboard"
	"github.com/simaogato/pemetrics-backend/internal/usecase/metrics"
	"github.com/simaogato/pemetrics-backend/internal/usecase/normalizer"
)

// sheetsFromStruct reads {"sheets": [{"name", "columns", "rows"}]}
func sheetsFromStruct(req *structpb.Struct) ([]normalizer.Sheet, error) {
	raw, ok := req.GetFields()["sheets"]
	if !ok {
		return nil, fmt.Errorf("invalid request: sheets is required")
	}
	list := raw.GetListValue()
	if list == nil {
		return nil, fmt.Errorf("invalid request: sheets must be a list")
	}

	sheets := make([]normalizer.Sheet, 0, len(list.GetValues()))
	for i, value := range list.GetValues() {
		obj := value.GetStructValue()
		if obj == nil {
			return nil, fmt.Errorf("invalid request: sheets[%d] must be an object", i)
		}
		fields := obj.GetFields()

		sheet := normalizer.Sheet{Name: fields["name"].GetStringValue()}
		for _, column := range fields["columns"].GetListValue().GetValues() {
			sheet.Columns = append(sheet.Columns, column.GetStringValue())
		}
		for j, row := range fields["rows"].GetListValue().GetValues() {
			cells := row.GetStructValue()
			if cells == nil {
				return nil, fmt.Errorf("invalid request: sheets[%d].rows[%d] must be an object", i, j)
			}
			sheet.Rows = append(sheet.Rows, cells.AsMap())
		}
		sheets = append(sheets, sheet)
	}
	return sheets, nil
}

// queryParamsFromStruct reads the optional filter fields of a ComputeMetrics request
func queryParamsFromStruct(req *structpb.Struct) dashboard.QueryParams {
	fields := req.GetFields()
	params := dashboard.QueryParams{
		Status: fields["status"].GetStringValue(),
		Text:   fields["text"].GetStringValue(),
		Period: fields["period"].GetStringValue(),
		TopN:   int(fields["top_n"].GetNumberValue()),
	}

	if funds, ok := fields["funds"]; ok {
		params.Funds = make([]string, 0)
		for _, fund := range funds.GetListValue().GetValues() {
			params.Funds = append(params.Funds, fund.GetStringValue())
		}
	}

	params.YearFrom = optionalInt(fields, "year_from")
	params.YearTo = optionalInt(fields, "year_to")
	params.MOICMin = optionalFloat(fields, "moic_min")
	params.MOICMax = optionalFloat(fields, "moic_max")
	return params
}

func optionalFloat(fields map[string]*structpb.Value, key string) *float64 {
	value, ok := fields[key]
	if !ok {
		return nil
	}
	if _, isNumber := value.GetKind().(*structpb.Value_NumberValue); !isNumber {
		return nil
	}
	v := value.GetNumberValue()
	return &v
}

func optionalInt(fields map[string]*structpb.Value, key string) *int {
	v := optionalFloat(fields, key)
	if v == nil {
		return nil
	}
	n := int(math.Round(*v))
	return &n
}

func metricValue(m domain.Metric) any {
	if !m.Defined {
		return nil
	}
	return m.Value
}

func portfolioMap(p metrics.PortfolioMetrics) map[string]any {
	return map[string]any{
		"count":                   p.Count,
		"total_cost":              p.TotalCost.String(),
		"total_fair_value":        p.TotalFairValue.String(),
		"total_proceeds":          p.TotalProceeds.String(),
		"moic":                    metricValue(p.MOIC),
		"roi":                     metricValue(p.ROI),
		"weighted_annualized_roi": metricValue(p.WeightedAnnualizedROI),
		"dpi":                     metricValue(p.DPI),
		"tvpi":                    metricValue(p.TVPI),
		"irr":                     metricValue(p.IRR),
		"irr_status":              p.IRRStatus,
	}
}

func recordMap(m metrics.RecordMetrics) map[string]any {
	r := m.Record
	return map[string]any{
		"name":           r.Name,
		"fund":           r.Fund,
		"date":           r.Date.Format(domain.DateLayout),
		"status":         string(r.Status),
		"cost":           r.Cost.String(),
		"fair_value":     r.FairValue.String(),
		"proceeds":       r.Proceeds.String(),
		"moic":           metricValue(m.MOIC),
		"roi":            metricValue(m.ROI),
		"years_held":     m.YearsHeld,
		"annualized_roi": metricValue(m.AnnualizedROI),
	}
}

func stringList(values []string) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}

// reportToStruct renders a dashboard report as a Struct message
func reportToStruct(report *dashboard.Report) (*structpb.Struct, error) {
	funds := make([]any, 0, len(report.Funds))
	for _, f := range report.Funds {
		fund := portfolioMap(f.PortfolioMetrics)
		fund["fund"] = f.Fund
		funds = append(funds, fund)
	}

	series := make([]any, 0, len(report.Series))
	for _, point := range report.Series {
		series = append(series, map[string]any{
			"start":                 point.Start.Format(domain.DateLayout),
			"count":                 point.Count,
			"cost":                  point.Cost.String(),
			"fair_value":            point.FairValue.String(),
			"cumulative_cost":       point.CumulativeCost.String(),
			"cumulative_fair_value": point.CumulativeFairValue.String(),
			"cumulative_moic":       metricValue(point.CumulativeMOIC),
		})
	}

	records := make([]any, 0, len(report.Records))
	for _, m := range report.Records {
		records = append(records, recordMap(m))
	}

	top := make([]any, 0, len(report.TopByMOIC))
	for _, m := range report.TopByMOIC {
		top = append(top, recordMap(m))
	}

	flows := make([]any, 0, len(report.CashFlows))
	for _, event := range report.CashFlows {
		flows = append(flows, map[string]any{
			"date":   event.Date.Format(domain.DateLayout),
			"amount": event.Amount.String(),
		})
	}

	body := map[string]any{
		"as_of":           report.AsOf.Format(domain.DateLayout),
		"portfolio":       portfolioMap(report.Portfolio),
		"funds":           funds,
		"series":          series,
		"records":         records,
		"top_by_moic":     top,
		"cash_flows":      flows,
		"available_funds": stringList(report.AvailableFunds),
	}
	if report.Normalization != nil {
		body["rejected"] = stringList(report.Normalization.Errors())
	}
	if report.MOICBounds != nil {
		body["moic_bounds"] = map[string]any{"lo": report.MOICBounds.Lo, "hi": report.MOICBounds.Hi}
	}
	if report.YearBounds != nil {
		body["year_bounds"] = map[string]any{"lo": report.YearBounds.Lo, "hi": report.YearBounds.Hi}
	}

	return structpb.NewStruct(body)
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
