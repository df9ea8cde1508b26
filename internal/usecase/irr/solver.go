package irr

import (
	"math"

	"github.com/simaogato/pemetrics-backend/internal/domain"
)

// DaysPerYear converts elapsed days into the solver's time unit (years)
const DaysPerYear = 365.25

// Status reports how a solve ended
type Status string

const (
	StatusSolved           Status = "solved"
	StatusInsufficientData Status = "insufficient_data"
	StatusNoConvergence    Status = "no_convergence"
	StatusInvalidSeries    Status = "invalid_series"
)

// Flow is one cash flow at Years after the first flow.
// Negative amounts are outflows.
type Flow struct {
	Years  float64
	Amount float64
}

// Options bounds the root search
type Options struct {
	MaxIterations int     // Per phase: Newton-Raphson, then bisection
	Tolerance     float64 // |NPV| below which a rate is accepted
	StepTolerance float64 // Rate change below which a rate is accepted
	Lo, Hi        float64 // Rate bracket
}

// DefaultOptions returns the standard solver bounds
func DefaultOptions() Options {
	return Options{
		MaxIterations: 100,
		Tolerance:     1e-7,
		StepTolerance: 1e-9,
		Lo:            -0.99,
		Hi:            10.0,
	}
}

// Result represents the outcome of a solve.
// Rate is only meaningful when Status is StatusSolved.
type Result struct {
	Rate       float64
	Status     Status
	Iterations int
}

// Metric converts the result to a metric, undefined unless solved
func (r Result) Metric() domain.Metric {
	if r.Status != StatusSolved {
		return domain.Undefined()
	}
	return domain.Defined(r.Rate)
}

// Solver finds the annual rate zeroing the NPV of a cash-flow series
type Solver struct {
	Options Options
}

// NewSolver creates a Solver; zero-valued option fields take their defaults
func NewSolver(opts Options) *Solver {
	def := DefaultOptions()
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = def.MaxIterations
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = def.Tolerance
	}
	if opts.StepTolerance <= 0 {
		opts.StepTolerance = def.StepTolerance
	}
	if opts.Lo == 0 && opts.Hi == 0 {
		opts.Lo, opts.Hi = def.Lo, def.Hi
	}
	return &Solver{Options: opts}
}

// Solve runs the default solver over flows
func Solve(flows []Flow) Result {
	return NewSolver(DefaultOptions()).Solve(flows)
}

// SolveEvents runs the default solver over dated events
func SolveEvents(events []domain.CashFlowEvent) Result {
	return NewSolver(DefaultOptions()).SolveEvents(events)
}

// SolveEvents converts dated events into flows measured in years from the
// first non-zero event and solves them.
// The series must be netted per date and sorted; otherwise the result is
// StatusInvalidSeries.
func (s *Solver) SolveEvents(events []domain.CashFlowEvent) Result {
	if err := domain.ValidateSeries(events); err != nil {
		return Result{Status: StatusInvalidSeries}
	}

	flows := make([]Flow, 0, len(events))
	var first domain.CashFlowEvent
	started := false
	for _, event := range events {
		if !event.IsOutflow() && !event.IsInflow() {
			continue
		}
		if !started {
			first, started = event, true
		}
		days := math.Round(event.Date.Sub(first.Date).Hours() / 24)
		flows = append(flows, Flow{Years: days / DaysPerYear, Amount: event.Amount.InexactFloat64()})
	}
	return s.Solve(flows)
}

// Solve finds r such that Σ amount / (1+r)^years = 0.
// Logic:
//  1. At least two distinct times and both an outflow and an inflow are required
//  2. Newton-Raphson from the simple return, while it stays inside the bracket
//  3. Otherwise scan the bracket for a sign change and bisect it
func (s *Solver) Solve(flows []Flow) Result {
	usable := make([]Flow, 0, len(flows))
	for _, f := range flows {
		if f.Amount != 0 && !math.IsNaN(f.Amount) && !math.IsInf(f.Amount, 0) {
			usable = append(usable, f)
		}
	}
	if !sufficient(usable) {
		return Result{Status: StatusInsufficientData}
	}

	rate, iterations, ok := s.newton(usable)
	if ok {
		return Result{Rate: rate, Status: StatusSolved, Iterations: iterations}
	}

	rate, more, ok := s.bisect(usable)
	iterations += more
	if ok {
		return Result{Rate: rate, Status: StatusSolved, Iterations: iterations}
	}
	return Result{Status: StatusNoConvergence, Iterations: iterations}
}

func sufficient(flows []Flow) bool {
	hasNeg, hasPos, distinct := false, false, false
	for _, f := range flows {
		if f.Amount < 0 {
			hasNeg = true
		} else {
			hasPos = true
		}
		if f.Years != flows[0].Years {
			distinct = true
		}
	}
	return hasNeg && hasPos && distinct
}

// npv returns the net present value and its derivative at rate
func npv(flows []Flow, rate float64) (float64, float64) {
	base := 1 + rate
	value, derivative := 0.0, 0.0
	for _, f := range flows {
		discount := math.Pow(base, f.Years)
		value += f.Amount / discount
		derivative -= f.Years * f.Amount / (discount * base)
	}
	return value, derivative
}

func (s *Solver) newton(flows []Flow) (float64, int, bool) {
	opts := s.Options
	rate := initialGuess(flows, opts)

	for i := 1; i <= opts.MaxIterations; i++ {
		value, derivative := npv(flows, rate)
		if math.Abs(value) < opts.Tolerance {
			return rate, i, true
		}
		if derivative == 0 || math.IsNaN(derivative) || math.IsInf(derivative, 0) {
			return 0, i, false
		}

		next := rate - value/derivative
		if math.IsNaN(next) || next <= opts.Lo || next >= opts.Hi {
			return 0, i, false
		}
		if math.Abs(next-rate) < opts.StepTolerance {
			return next, i, true
		}
		rate = next
	}
	return 0, opts.MaxIterations, false
}

// initialGuess is the simple return, or 10% when it falls outside the bracket
func initialGuess(flows []Flow, opts Options) float64 {
	invested, received := 0.0, 0.0
	for _, f := range flows {
		if f.Amount < 0 {
			invested -= f.Amount
		} else {
			received += f.Amount
		}
	}
	guess := received/invested - 1
	if guess <= opts.Lo || guess >= opts.Hi || math.IsNaN(guess) {
		return 0.1
	}
	return guess
}

// scanSteps is the number of sub-intervals searched for a sign change
const scanSteps = 200

func (s *Solver) bisect(flows []Flow) (float64, int, bool) {
	opts := s.Options

	lo, hi, found := bracket(flows, opts.Lo, opts.Hi)
	if !found {
		return 0, 0, false
	}
	valueLo, _ := npv(flows, lo)

	for i := 1; i <= opts.MaxIterations; i++ {
		mid := (lo + hi) / 2
		value, _ := npv(flows, mid)
		if math.Abs(value) < opts.Tolerance || (hi-lo)/2 < opts.StepTolerance {
			return mid, i, true
		}
		if (value < 0) == (valueLo < 0) {
			lo, valueLo = mid, value
		} else {
			hi = mid
		}
	}
	return 0, opts.MaxIterations, false
}

// bracket returns the first sub-interval of [lo, hi] over which the NPV changes sign
func bracket(flows []Flow, lo, hi float64) (float64, float64, bool) {
	step := (hi - lo) / scanSteps
	prev, _ := npv(flows, lo)
	for i := 1; i <= scanSteps; i++ {
		x := lo + float64(i)*step
		if i == scanSteps {
			x = hi
		}
		value, _ := npv(flows, x)
		if math.IsNaN(value) || math.IsNaN(prev) {
			prev = value
			continue
		}
		if value == 0 || (value < 0) != (prev < 0) {
			return x - step, x, true
		}
		prev = value
	}
	return 0, 0, false
}
