package normalizer

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/simaogato/pemetrics-backend/internal/domain"
)

var errBlank = errors.New("value is blank")

// dateLayouts are tried in order; slash dates are read month first
var dateLayouts = []string{
	"2006-01-02",
	"2006-1-2",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"2006/1/2",
	"01/02/2006",
	"1/2/2006",
	"02-Jan-2006",
	"2-Jan-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"20060102",
}

// Spreadsheet serial dates count days from 1899-12-30
var (
	serialEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
	maxSerial   = 2958465.0 // 9999-12-31

	// minDiscoverySerial is 1910-01-01; smaller numbers never identify a date column
	minDiscoverySerial = 3653.0
)

// isBlank reports whether a raw cell carries no value
func isBlank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case float64:
		return math.IsNaN(x)
	}
	return false
}

// coerceText renders a raw cell as trimmed text
func coerceText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		if math.IsNaN(x) {
			return ""
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case fmt.Stringer:
		return strings.TrimSpace(x.String())
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// coerceAmount converts a raw cell to a non-negative finite decimal.
// The result is canonical: its String form parses back to an identical value.
func coerceAmount(v any) (decimal.Decimal, error) {
	d, err := toDecimal(v)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("must not be negative, got %s", d.String())
	}
	return canonical(d), nil
}

// canonical rebuilds d from its String form so equal amounts compare equal
// field by field, whatever their origin
func canonical(d decimal.Decimal) decimal.Decimal {
	return decimal.RequireFromString(d.String())
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case nil:
		return decimal.Zero, errBlank
	case decimal.Decimal:
		return x, nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return decimal.Zero, errors.New("not a finite number")
		}
		return decimal.NewFromFloat(x), nil
	case float32:
		return toDecimal(float64(x))
	case int:
		return decimal.NewFromInt(int64(x)), nil
	case int32:
		return decimal.NewFromInt32(x), nil
	case int64:
		return decimal.NewFromInt(x), nil
	case uint:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(x)), 0), nil
	case uint32:
		return decimal.NewFromInt(int64(x)), nil
	case uint64:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(x), 0), nil
	case json.Number:
		return parseAmountString(x.String())
	case string:
		return parseAmountString(x)
	}
	return decimal.Zero, fmt.Errorf("unsupported value type %T", v)
}

// parseAmountString accepts currency symbols, thousands separators and
// accounting negatives such as "(1,200)"
func parseAmountString(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, errBlank
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	s = strings.Map(func(r rune) rune {
		switch r {
		case '$', '€', '£', '¥', ',', ' ', '\u00a0':
			return -1
		}
		return r
	}, s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("cannot parse %q", raw)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// coerceDate converts a raw cell to a calendar date at UTC midnight
func coerceDate(v any) (time.Time, error) {
	switch x := v.(type) {
	case nil:
		return time.Time{}, errBlank
	case time.Time:
		if x.IsZero() {
			return time.Time{}, errBlank
		}
		return domain.CalendarDate(x), nil
	case *time.Time:
		if x == nil {
			return time.Time{}, errBlank
		}
		return coerceDate(*x)
	case float64:
		return serialDate(x)
	case int:
		return serialDate(float64(x))
	case int64:
		return serialDate(float64(x))
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return time.Time{}, fmt.Errorf("cannot parse date %q", x.String())
		}
		return serialDate(f)
	case string:
		return parseDateString(x)
	}
	return time.Time{}, fmt.Errorf("unsupported date type %T", v)
}

// numericCell returns the value of a numeric cell
func numericCell(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	}
	return 0, false
}

func parseDateString(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, errBlank
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return domain.CalendarDate(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse date %q", raw)
}

func serialDate(days float64) (time.Time, error) {
	if math.IsNaN(days) || days < 1 || days > maxSerial {
		return time.Time{}, fmt.Errorf("serial date %v out of range", days)
	}
	return serialEpoch.AddDate(0, 0, int(days)), nil
}
