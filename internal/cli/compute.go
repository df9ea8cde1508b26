package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/simaogato/pemetrics-backend/internal/domain"
	"github.com/simaogato/pemetrics-backend/internal/usecase/dashboard"
	"github.com/simaogato/pemetrics-backend/internal/usecase/irr"
	"github.com/simaogato/pemetrics-backend/internal/usecase/metrics"
	"github.com/simaogato/pemetrics-backend/internal/usecase/normalizer"
)

type computeOptions struct {
	funds    []string
	status   string
	yearFrom int
	yearTo   int
	moicMin  float64
	moicMax  float64
	search   string
	period   string
	top      int
	format   string
	currency string
	asOf     string
}

func newComputeCommand(a *app) *cobra.Command {
	opts := &computeOptions{}

	cmd := &cobra.Command{
		Use:   "compute <csv file>...",
		Short: "Compute portfolio metrics from one or more CSV schedules",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.compute(cmd, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVar(&opts.funds, "fund", nil, "Restrict to these funds (repeatable)")
	flags.StringVar(&opts.status, "status", "", "Restrict to realized or unrealized investments")
	flags.IntVar(&opts.yearFrom, "year-from", 0, "Earliest investment year")
	flags.IntVar(&opts.yearTo, "year-to", 0, "Latest investment year")
	flags.Float64Var(&opts.moicMin, "moic-min", 0, "Minimum MOIC")
	flags.Float64Var(&opts.moicMax, "moic-max", 0, "Maximum MOIC")
	flags.StringVar(&opts.search, "search", "", "Case-insensitive investment name search")
	flags.StringVar(&opts.period, "period", string(metrics.PeriodMonth), "Series period (month, quarter, year)")
	flags.IntVar(&opts.top, "top", 10, "Number of investments ranked by MOIC, 0 for all")
	flags.StringVar(&opts.format, "format", FormatTable, "Output format (table, csv, json)")
	flags.StringVar(&opts.currency, "currency", "", "Currency used to display amounts (defaults to PEM_CURRENCY)")
	flags.StringVar(&opts.asOf, "as-of", "", "Evaluation date YYYY-MM-DD (defaults to PEM_AS_OF or today)")

	return cmd
}

// params translates the flags into query params; unset flags stay open
func (o *computeOptions) params(cmd *cobra.Command) dashboard.QueryParams {
	flags := cmd.Flags()
	params := dashboard.QueryParams{
		Status: o.status,
		Text:   o.search,
		Period: o.period,
		TopN:   o.top,
	}
	if flags.Changed("fund") {
		params.Funds = make([]string, 0, len(o.funds))
		for _, fund := range o.funds {
			if fund = strings.TrimSpace(fund); fund != "" {
				params.Funds = append(params.Funds, fund)
			}
		}
	}
	if flags.Changed("year-from") {
		params.YearFrom = &o.yearFrom
	}
	if flags.Changed("year-to") {
		params.YearTo = &o.yearTo
	}
	if flags.Changed("moic-min") {
		params.MOICMin = &o.moicMin
	}
	if flags.Changed("moic-max") {
		params.MOICMax = &o.moicMax
	}
	return params
}

// compute handles the compute command
// Logic:
//  1. Read and normalize every file as one import
//  2. Build the query from the flags
//  3. Compute the report over the normalized records and render it
func (a *app) compute(cmd *cobra.Command, opts *computeOptions, paths []string) error {
	sheets := make([]normalizer.Sheet, 0, len(paths))
	for _, path := range paths {
		sheet, err := ReadSheetFile(path)
		if err != nil {
			return err
		}
		sheets = append(sheets, sheet)
	}

	result, err := normalizer.NewNormalizer().Normalize(sheets...)
	if err != nil {
		return fmt.Errorf("failed to normalize import: %w", err)
	}
	for _, rejection := range result.Rejected {
		a.log.Warn().Str("sheet", rejection.Sheet).Int("row", rejection.Row).Msg(rejection.Reason)
	}
	a.log.Info().
		Int("records", len(result.Records)).
		Int("rejected", len(result.Rejected)).
		Strs("profiles", result.Profiles).
		Msg("import normalized")

	query, err := opts.params(cmd).Query()
	if err != nil {
		return err
	}

	asOf := a.cfg.AsOf
	if opts.asOf != "" {
		if asOf, err = time.Parse(domain.DateLayout, opts.asOf); err != nil {
			return fmt.Errorf("invalid --as-of %q: expected YYYY-MM-DD", opts.asOf)
		}
	}

	currency := a.cfg.Currency
	if opts.currency != "" {
		currency = strings.ToUpper(opts.currency)
	}
	amounts, err := newAmountFormatter(currency)
	if err != nil {
		return err
	}

	service := dashboard.NewDashboardService(
		nil,
		metrics.NewCalculator(asOf),
		irr.NewSolver(irr.Options{MaxIterations: a.cfg.IRRMaxIterations}),
		a.log,
	)
	report := service.Build(result.Records, query)
	report.Normalization = result

	return render(cmd.OutOrStdout(), report, opts.format, amounts)
}
