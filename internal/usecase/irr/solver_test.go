package irr

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/pemetrics-backend/internal/domain"
)

func TestSolve_TenPercent(t *testing.T) {
	result := Solve([]Flow{{Years: 0, Amount: -1000}, {Years: 1, Amount: 1100}})

	require.Equal(t, StatusSolved, result.Status)
	assert.InDelta(t, 0.10, result.Rate, 1e-4)
	assert.True(t, result.Metric().Defined)
}

func TestSolve_MultiplePeriods(t *testing.T) {
	result := Solve([]Flow{{Years: 0, Amount: -100}, {Years: 1, Amount: 60}, {Years: 2, Amount: 60}})

	require.Equal(t, StatusSolved, result.Status)
	x := (-1 + math.Sqrt(1+20.0/3)) / 2
	assert.InDelta(t, 1/x-1, result.Rate, 1e-6)
}

func TestSolve_NegativeRate(t *testing.T) {
	result := Solve([]Flow{{Years: 0, Amount: -1000}, {Years: 2, Amount: 640}})

	require.Equal(t, StatusSolved, result.Status)
	assert.InDelta(t, -0.2, result.Rate, 1e-6)
}

func TestSolve_InsufficientData(t *testing.T) {
	tests := []struct {
		name  string
		flows []Flow
	}{
		{"No flows", nil},
		{"Single flow", []Flow{{Years: 0, Amount: -1000}}},
		{"Only outflows", []Flow{{Years: 0, Amount: -1000}, {Years: 1, Amount: -10}}},
		{"Only inflows", []Flow{{Years: 0, Amount: 1000}, {Years: 1, Amount: 10}}},
		{"Single date", []Flow{{Years: 0, Amount: -1000}, {Years: 0, Amount: 1100}}},
		{"Zero amounts ignored", []Flow{{Years: 0, Amount: -1000}, {Years: 1, Amount: 0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Solve(tt.flows)
			assert.Equal(t, StatusInsufficientData, result.Status)
			assert.False(t, result.Metric().Defined)
		})
	}
}

func TestSolve_NoConvergence(t *testing.T) {
	// The root lies far above the search bracket
	result := Solve([]Flow{{Years: 0, Amount: -1}, {Years: 1, Amount: 1e6}})

	assert.Equal(t, StatusNoConvergence, result.Status)
	assert.False(t, result.Metric().Defined)
	assert.NotEqual(t, StatusInsufficientData, result.Status)
}

func TestSolver_BisectionFallback(t *testing.T) {
	s := NewSolver(Options{})
	flows := []Flow{{Years: 0, Amount: -1000}, {Years: 2, Amount: 1210}}

	rate, iterations, ok := s.bisect(flows)
	require.True(t, ok)
	assert.InDelta(t, 0.1, rate, 1e-6)
	assert.Greater(t, iterations, 0)
	assert.LessOrEqual(t, iterations, s.Options.MaxIterations)
}

func TestSolver_BoundedIterations(t *testing.T) {
	s := NewSolver(Options{MaxIterations: 1})
	result := s.Solve([]Flow{{Years: 0, Amount: -100}, {Years: 1, Amount: 60}, {Years: 2, Amount: 60}})

	assert.Equal(t, StatusNoConvergence, result.Status)
	assert.LessOrEqual(t, result.Iterations, 2)
}

func TestNewSolver_Defaults(t *testing.T) {
	s := NewSolver(Options{MaxIterations: 25})
	assert.Equal(t, 25, s.Options.MaxIterations)
	assert.Equal(t, 1e-7, s.Options.Tolerance)
	assert.Equal(t, -0.99, s.Options.Lo)
	assert.Equal(t, 10.0, s.Options.Hi)
}

func TestSolveEvents(t *testing.T) {
	events := []domain.CashFlowEvent{
		{Date: time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC), Amount: decimal.Zero},
		{Date: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(-1000)},
		{Date: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(1100)},
	}

	result := SolveEvents(events)

	require.Equal(t, StatusSolved, result.Status)
	assert.InDelta(t, math.Pow(1.1, DaysPerYear/366)-1, result.Rate, 1e-6)
}

func TestSolveEvents_InvalidSeries(t *testing.T) {
	tests := []struct {
		name   string
		events []domain.CashFlowEvent
	}{
		{
			name: "Two events on the same date",
			events: []domain.CashFlowEvent{
				{Date: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(-500)},
				{Date: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(-500)},
				{Date: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(1100)},
			},
		},
		{
			name: "Unsorted dates",
			events: []domain.CashFlowEvent{
				{Date: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(1100)},
				{Date: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(-1000)},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SolveEvents(tt.events)
			assert.Equal(t, StatusInvalidSeries, result.Status)
			assert.False(t, result.Metric().Defined)
		})
	}
}

func TestSolveEvents_SingleEvent(t *testing.T) {
	result := SolveEvents([]domain.CashFlowEvent{
		{Date: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(50)},
	})
	assert.Equal(t, StatusInsufficientData, result.Status)
}
