package ingest

import "strings"

// Statement formats recognized by detection
const (
	FormatRevolut   = "revolut"
	FormatDutchBank = "dutch_bank"
	FormatGeneric   = "generic"
	FormatUnknown   = "unknown"
)

// sampleRows is how many data rows a schema preview carries
const sampleRows = 5

// Schema describes the detected structure of an uploaded file
type Schema struct {
	Format     string   `json:"format"`
	Delimiter  string   `json:"delimiter,omitempty"`
	Encoding   string   `json:"encoding"`
	Columns    []string `json:"columns"`
	RowCount   int      `json:"row_count"`
	SampleData []Row    `json:"sample_data"`
}

// DetectSchema parses a file and summarizes its structure for preview
// before processing commits anything.
func DetectSchema(content []byte, filename string) (*Schema, error) {
	parsed, err := Parse(content, filename)
	if err != nil {
		return nil, err
	}

	schema := &Schema{
		Format:   DetectFormat(parsed.Columns),
		Encoding: parsed.Encoding,
		Columns:  parsed.Columns,
		RowCount: len(parsed.Rows),
	}
	if parsed.Delimiter != 0 {
		schema.Delimiter = string(parsed.Delimiter)
	}

	limit := sampleRows
	if len(parsed.Rows) < limit {
		limit = len(parsed.Rows)
	}
	schema.SampleData = parsed.Rows[:limit]

	return schema, nil
}

// DetectFormat classifies a statement by its column names
func DetectFormat(columns []string) string {
	available := make(map[string]bool, len(columns))
	hasMutation := false
	for _, col := range columns {
		available[col] = true
		if strings.Contains(col, "mutation") {
			hasMutation = true
		}
	}

	switch {
	case available["completed date"] || available["completed_date"]:
		return FormatRevolut
	case available["transactiondate"] && hasMutation:
		return FormatDutchBank
	case (available["date"] || available["datum"]) && available["amount"]:
		return FormatGeneric
	default:
		return FormatUnknown
	}
}
