package normalizer

import (
	"strings"

	"github.com/simaogato/pemetrics-backend/internal/domain"
)

// FieldSpec binds one canonical field to the headers a source may use for it
type FieldSpec struct {
	Field    string   // Canonical column, one of domain.Column*
	Aliases  []string // Accepted headers in preference order
	Required bool
}

// Profile is a named source schema: which headers feed which canonical field.
// A profile without a date field relies on date column discovery.
type Profile struct {
	Name          string
	Fields        []FieldSpec
	DefaultStatus domain.Status
	// StatusAliases extends domain.ParseStatus with source specific spellings,
	// keyed by lower-case value
	StatusAliases map[string]domain.Status
}

// Mapping resolves canonical fields to actual sheet headers
type Mapping map[string]string

// Match resolves the profile against a header set.
// Returns the mapping and the display names of required fields that are missing.
func (p Profile) Match(columns []string) (Mapping, []string) {
	index := make(map[string]string, len(columns))
	for _, column := range columns {
		key := foldHeader(column)
		if _, exists := index[key]; !exists {
			index[key] = column
		}
	}

	mapping := make(Mapping)
	var missing []string
	for _, spec := range p.Fields {
		found := false
		for _, alias := range spec.Aliases {
			if header, ok := index[foldHeader(alias)]; ok {
				mapping[spec.Field] = header
				found = true
				break
			}
		}
		if !found && spec.Required {
			missing = append(missing, spec.Aliases[0])
		}
	}
	return mapping, missing
}

// declares reports whether the profile has an explicit spec for field
func (p Profile) declares(field string) bool {
	for _, spec := range p.Fields {
		if spec.Field == field {
			return true
		}
	}
	return false
}

// parseStatus resolves a raw status with the profile aliases first
func (p Profile) parseStatus(raw string) (domain.Status, bool) {
	if status, ok := p.StatusAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return status, true
	}
	return domain.ParseStatus(raw)
}

// foldHeader makes header matching case, whitespace and separator insensitive
func foldHeader(header string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(header) {
		switch r {
		case ' ', '\t', '\n', '\r', '_', '-', '.':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CanonicalProfile matches rows already expressed in the canonical schema,
// such as InvestmentRecord.Row output and manual entries.
func CanonicalProfile() Profile {
	return Profile{
		Name: "canonical",
		Fields: []FieldSpec{
			{Field: domain.ColumnName, Aliases: []string{domain.ColumnName}, Required: true},
			{Field: domain.ColumnFund, Aliases: []string{domain.ColumnFund}, Required: true},
			{Field: domain.ColumnDate, Aliases: []string{domain.ColumnDate}, Required: true},
			{Field: domain.ColumnCost, Aliases: []string{domain.ColumnCost}, Required: true},
			{Field: domain.ColumnFairValue, Aliases: []string{domain.ColumnFairValue}, Required: true},
			{Field: domain.ColumnProceeds, Aliases: []string{domain.ColumnProceeds}},
			{Field: domain.ColumnStatus, Aliases: []string{domain.ColumnStatus}},
			{Field: domain.ColumnStage, Aliases: []string{domain.ColumnStage}},
			{Field: domain.ColumnSector, Aliases: []string{domain.ColumnSector}},
			{Field: domain.ColumnGeography, Aliases: []string{domain.ColumnGeography}},
			{Field: domain.ColumnNotes, Aliases: []string{domain.ColumnNotes}},
		},
		DefaultStatus: domain.StatusUnrealized,
	}
}

// StandardScheduleProfile matches a fund "Schedule of investments" sheet.
// It declares no date column: the date is discovered from the header set.
func StandardScheduleProfile() Profile {
	return Profile{
		Name: "standard-schedule",
		Fields: []FieldSpec{
			{Field: domain.ColumnName, Aliases: []string{"Investment Name", "Investment", "Portfolio Company", "Company"}, Required: true},
			{Field: domain.ColumnFund, Aliases: []string{"Fund", "Fund Name", "Vehicle"}, Required: true},
			{Field: domain.ColumnCost, Aliases: []string{"Cost", "Total Cost", "Invested Capital"}, Required: true},
			{Field: domain.ColumnFairValue, Aliases: []string{"Fair Value", "Fair Market Value", "FMV"}, Required: true},
			{Field: domain.ColumnProceeds, Aliases: []string{"Proceeds", "Realized Proceeds"}},
			{Field: domain.ColumnStatus, Aliases: []string{"Status"}},
			{Field: domain.ColumnStage, Aliases: []string{"Stage"}},
			{Field: domain.ColumnSector, Aliases: []string{"Sector", "Industry"}},
			{Field: domain.ColumnGeography, Aliases: []string{"Geography", "Country", "Region"}},
			{Field: domain.ColumnNotes, Aliases: []string{"Notes", "Comments"}},
		},
		DefaultStatus: domain.StatusUnrealized,
	}
}

// CRMExportProfile matches an account export from a CRM
func CRMExportProfile() Profile {
	return Profile{
		Name: "crm-export",
		Fields: []FieldSpec{
			{Field: domain.ColumnName, Aliases: []string{"Account Name", "Account"}, Required: true},
			{Field: domain.ColumnFund, Aliases: []string{"Fund", "Fund Name"}, Required: true},
			{Field: domain.ColumnCost, Aliases: []string{"Total Investment", "Amount Invested"}, Required: true},
			{Field: domain.ColumnFairValue, Aliases: []string{"Current Valuation", "Valuation"}, Required: true},
			{Field: domain.ColumnDate, Aliases: []string{"Investment Date", "Close Date", "First Investment Date"}, Required: true},
			{Field: domain.ColumnProceeds, Aliases: []string{"Realized Proceeds", "Distributions"}},
			{Field: domain.ColumnStatus, Aliases: []string{"Deal Status", "Status"}},
			{Field: domain.ColumnStage, Aliases: []string{"Stage", "Round"}},
			{Field: domain.ColumnSector, Aliases: []string{"Industry", "Sector"}},
			{Field: domain.ColumnGeography, Aliases: []string{"Region", "HQ Country"}},
			{Field: domain.ColumnNotes, Aliases: []string{"Description", "Notes"}},
		},
		DefaultStatus: domain.StatusUnrealized,
		StatusAliases: map[string]domain.Status{
			"exited":      domain.StatusRealized,
			"closed":      domain.StatusRealized,
			"written off": domain.StatusRealized,
			"active":      domain.StatusUnrealized,
			"open":        domain.StatusUnrealized,
			"portfolio":   domain.StatusUnrealized,
		},
	}
}

// DefaultProfiles returns the built-in profiles in priority order
func DefaultProfiles() []Profile {
	return []Profile{
		CanonicalProfile(),
		StandardScheduleProfile(),
		CRMExportProfile(),
	}
}
