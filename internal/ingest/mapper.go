package ingest

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Mapped is a statement row normalized into transaction fields
type Mapped struct {
	Date        time.Time
	Amount      decimal.Decimal
	Beneficiary string
	Description string
	Category    string
	Currency    string
}

// Roles a caller-supplied column mapping can bind to source columns.
// Date and amount are mandatory, the rest optional.
const (
	RoleDate        = "date"
	RoleAmount      = "amount"
	RoleBeneficiary = "beneficiary"
	RoleDescription = "description"
	RoleCategory    = "category"
	RoleCurrency    = "currency"
)

var knownRoles = map[string]bool{
	RoleDate:        true,
	RoleAmount:      true,
	RoleBeneficiary: true,
	RoleDescription: true,
	RoleCategory:    true,
	RoleCurrency:    true,
}

// ValidateMapping checks a role-to-column mapping before any row work
// starts: roles must be known and the date and amount roles must be bound.
func ValidateMapping(mapping map[string]string) error {
	for role := range mapping {
		if !knownRoles[role] {
			return fmt.Errorf("unknown column mapping role: %q", role)
		}
	}
	if strings.TrimSpace(mapping[RoleDate]) == "" {
		return fmt.Errorf("column mapping must bind the %q role", RoleDate)
	}
	if strings.TrimSpace(mapping[RoleAmount]) == "" {
		return fmt.Errorf("column mapping must bind the %q role", RoleAmount)
	}
	return nil
}

// MapRowWithMapping converts a parsed row using an explicit role-to-column
// mapping instead of format detection. Column names are matched the way
// Row keys are stored: lowercased and trimmed.
func MapRowWithMapping(row Row, mapping map[string]string) (*Mapped, error) {
	column := func(role string) string {
		return strings.ToLower(strings.TrimSpace(mapping[role]))
	}

	date, err := parseDate(row[column(RoleDate)])
	if err != nil {
		return nil, err
	}

	amount, err := parseAmount(row[column(RoleAmount)])
	if err != nil {
		return nil, err
	}

	beneficiary := strings.TrimSpace(row[column(RoleBeneficiary)])
	if beneficiary == "" {
		beneficiary = strings.TrimSpace(row[column(RoleDescription)])
	}
	if beneficiary == "" {
		beneficiary = "Unknown"
	}

	return &Mapped{
		Date:        date,
		Amount:      amount,
		Beneficiary: beneficiary,
		Description: strings.TrimSpace(row[column(RoleDescription)]),
		Category:    strings.TrimSpace(row[column(RoleCategory)]),
		Currency:    strings.ToUpper(strings.TrimSpace(row[column(RoleCurrency)])),
	}, nil
}

// MapRow converts a parsed row into transaction fields using the
// format-specific column conventions.
func MapRow(row Row, format string) (*Mapped, error) {
	switch format {
	case FormatRevolut:
		return mapRevolut(row)
	case FormatDutchBank:
		return mapDutchBank(row)
	default:
		return mapGeneric(row)
	}
}

func mapRevolut(row Row) (*Mapped, error) {
	date, err := parseDate(firstValue(row, "completed date", "completed_date", "date"))
	if err != nil {
		return nil, err
	}

	amount, err := parseAmount(firstValue(row, "amount"))
	if err != nil {
		return nil, err
	}

	beneficiary := firstValue(row, "description")
	if beneficiary == "" {
		beneficiary = "Unknown"
	}

	return &Mapped{
		Date:        date,
		Amount:      amount,
		Beneficiary: beneficiary,
		Category:    firstValue(row, "type"),
		Currency:    strings.ToUpper(firstValue(row, "currency")),
	}, nil
}

func mapDutchBank(row Row) (*Mapped, error) {
	date, err := parseDate(firstValue(row, "transactiondate", "transaction_date", "datum"))
	if err != nil {
		return nil, err
	}

	amount, err := parseAmount(firstValue(row, "amount", "bedrag"))
	if err != nil {
		return nil, err
	}

	description := firstValue(row, "description", "omschrijving", "mededelingen")

	return &Mapped{
		Date:        date,
		Amount:      amount,
		Beneficiary: extractDutchBeneficiary(description),
		Description: description,
		Category:    firstValue(row, "mutationcode", "mutation_code", "code"),
	}, nil
}

func mapGeneric(row Row) (*Mapped, error) {
	date, err := parseDate(firstValue(row, "date", "transaction_date", "datum", "completed_date"))
	if err != nil {
		return nil, err
	}

	amount, err := parseAmount(firstValue(row, "amount", "value", "bedrag"))
	if err != nil {
		return nil, err
	}

	beneficiary := firstValue(row, "description", "beneficiary", "merchant", "omschrijving")
	if beneficiary == "" {
		beneficiary = "Unknown"
	}

	return &Mapped{
		Date:        date,
		Amount:      amount,
		Beneficiary: beneficiary,
		Category:    firstValue(row, "type", "category", "code"),
		Currency:    strings.ToUpper(firstValue(row, "currency")),
	}, nil
}

// firstValue returns the first non-empty value among the given columns
func firstValue(row Row, columns ...string) string {
	for _, col := range columns {
		if value := strings.TrimSpace(row[col]); value != "" {
			return value
		}
	}
	return ""
}

var dateFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"01/02/2006",
	"20060102",
}

// parseDate tries the date layouts banks actually export
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("date field is required")
	}

	for _, layout := range dateFormats {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.Truncate(24 * time.Hour), nil
		}
	}

	return time.Time{}, fmt.Errorf("could not parse date: %q", value)
}

// currencyJunk strips currency symbols and whitespace from amount strings
var currencyJunk = regexp.MustCompile(`[€$£¥\s]`)

// parseAmount parses an amount, tolerating currency symbols and comma
// decimal separators.
func parseAmount(value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, fmt.Errorf("amount field is required")
	}

	cleaned := currencyJunk.ReplaceAllString(value, "")

	// "1.234,56" style: thousands dots with a comma decimal separator
	if strings.Contains(cleaned, ",") {
		if strings.Contains(cleaned, ".") && strings.LastIndex(cleaned, ",") > strings.LastIndex(cleaned, ".") {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
		}
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("could not parse amount: %q", value)
	}

	return amount, nil
}

var ibanBeneficiary = regexp.MustCompile(`(?i)IBAN:\s*[A-Z]{2}\d{2}[A-Z0-9]+\s+(.+?)(?:,|$)`)

// extractDutchBeneficiary pulls a counterparty name out of the free-text
// description Dutch banks export instead of a beneficiary column.
func extractDutchBeneficiary(description string) string {
	if description == "" {
		return "Unknown"
	}

	if idx := strings.Index(description, ", "); idx >= 0 {
		rest := description[idx+2:]
		if comma := strings.Index(rest, ","); comma >= 0 {
			rest = rest[:comma]
		}
		if name := strings.TrimSpace(rest); name != "" {
			return name
		}
	}

	if match := ibanBeneficiary.FindStringSubmatch(description); match != nil {
		return strings.TrimSpace(match[1])
	}

	cleaned := []rune(strings.Join(strings.Fields(description), " "))
	if len(cleaned) > 50 {
		cleaned = cleaned[:50]
	}
	return string(cleaned)
}
