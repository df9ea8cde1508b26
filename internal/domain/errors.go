package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoProfileMatched is returned when no schema profile recognizes a sheet header
	ErrNoProfileMatched = errors.New("no schema profile matched")
	// ErrNoDateColumn is returned when no candidate column yields a calendar date
	ErrNoDateColumn = errors.New("no usable date column")
	// ErrInvalidManualEntry is returned when a manually entered record fails validation
	ErrInvalidManualEntry = errors.New("invalid manual entry")
)

// SchemaError reports a sheet whose columns cannot be mapped onto the canonical schema.
// The import that produced it is aborted; no partial record set is returned.
type SchemaError struct {
	Sheet   string   // Sheet name, may be empty
	Profile string   // Closest profile tried, empty when the date column is missing
	Fields  []string // Missing required fields
	Err     error    // ErrNoProfileMatched or ErrNoDateColumn
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	if e.Sheet != "" {
		fmt.Fprintf(&b, "sheet %q: ", e.Sheet)
	}
	b.WriteString(e.Err.Error())
	if e.Profile != "" {
		fmt.Fprintf(&b, " (closest profile %q)", e.Profile)
	}
	if len(e.Fields) > 0 {
		fmt.Fprintf(&b, ": missing required field(s) %s", strings.Join(e.Fields, ", "))
	}
	return b.String()
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// RowRejection records why a single source row was dropped during normalization
type RowRejection struct {
	Sheet  string
	Row    int // 1-based data row index within the sheet
	Reason string
}

func (r RowRejection) String() string {
	if r.Sheet != "" {
		return fmt.Sprintf("sheet %q row %d: %s", r.Sheet, r.Row, r.Reason)
	}
	return fmt.Sprintf("row %d: %s", r.Row, r.Reason)
}
