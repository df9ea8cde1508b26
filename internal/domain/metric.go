package domain

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// Metric is a derived ratio that may be undefined.
// Undefined metrics (division by zero, non-positive holding period, ...) are
// carried as values and never coerced to zero.
type Metric struct {
	Value   float64
	Defined bool
}

// Defined wraps v as a defined metric
// NaN and infinities are reported as undefined
func Defined(v float64) Metric {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Metric{}
	}
	return Metric{Value: v, Defined: true}
}

// Undefined returns the undefined metric
func Undefined() Metric {
	return Metric{}
}

// Ratio divides num by den, undefined when den is zero
func Ratio(num, den decimal.Decimal) Metric {
	if den.IsZero() {
		return Metric{}
	}
	return Defined(num.InexactFloat64() / den.InexactFloat64())
}

// Format renders the metric with the given precision, or "n/a"
func (m Metric) Format(prec int) string {
	if !m.Defined {
		return "n/a"
	}
	return strconv.FormatFloat(m.Value, 'f', prec, 64)
}

// MarshalJSON encodes undefined metrics as null
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Defined {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}
