package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV_CommaDelimited(t *testing.T) {
	content := []byte("Date,Amount,Description\n2026-01-05,-12.50,SPAR Budapest\n2026-01-06,-80.00,MOL\n")

	parsed, err := ParseCSV(content)
	require.NoError(t, err)

	assert.Equal(t, []string{"date", "amount", "description"}, parsed.Columns)
	assert.Equal(t, ',', parsed.Delimiter)
	assert.Equal(t, "utf-8", parsed.Encoding)
	require.Len(t, parsed.Rows, 2)
	assert.Equal(t, "SPAR Budapest", parsed.Rows[0]["description"])
	assert.Equal(t, "-12.50", parsed.Rows[0]["amount"])
}

func TestParseCSV_SemicolonDelimited(t *testing.T) {
	content := []byte("Datum;Amount;Omschrijving\n05-01-2026;-12,50;Albert Heijn\n")

	parsed, err := ParseCSV(content)
	require.NoError(t, err)

	assert.Equal(t, ';', parsed.Delimiter)
	require.Len(t, parsed.Rows, 1)
	assert.Equal(t, "Albert Heijn", parsed.Rows[0]["omschrijving"])
}

func TestParseCSV_TabDelimited(t *testing.T) {
	content := []byte("date\tamount\tdescription\n2026-01-05\t-1.00\tTesco\n")

	parsed, err := ParseCSV(content)
	require.NoError(t, err)
	assert.Equal(t, '\t', parsed.Delimiter)
	require.Len(t, parsed.Rows, 1)
}

func TestParseCSV_UTF8BOM(t *testing.T) {
	content := append([]byte{0xEF, 0xBB, 0xBF}, []byte("date,amount\n2026-01-05,-1.00\n")...)

	parsed, err := ParseCSV(content)
	require.NoError(t, err)
	assert.Equal(t, "utf-8-sig", parsed.Encoding)
	assert.Equal(t, []string{"date", "amount"}, parsed.Columns)
}

func TestParseCSV_Latin1Fallback(t *testing.T) {
	// "Kávézó" in ISO-8859-1: á=0xE1, é=0xE9, ó=0xF3 (invalid as UTF-8)
	content := []byte("date,amount,description\n2026-01-05,-3.50,K\xe1v\xe9z\xf3\n")

	parsed, err := ParseCSV(content)
	require.NoError(t, err)
	require.Len(t, parsed.Rows, 1)
	assert.Contains(t, parsed.Rows[0]["description"], "K")
	assert.NotEqual(t, "utf-8", parsed.Encoding)
}

func TestParseCSV_SkipsBlankLines(t *testing.T) {
	content := []byte("date,amount\n2026-01-05,-1.00\n,\n2026-01-06,-2.00\n")

	parsed, err := ParseCSV(content)
	require.NoError(t, err)
	assert.Len(t, parsed.Rows, 2)
}

func TestParseCSV_Empty(t *testing.T) {
	_, err := ParseCSV([]byte(""))
	assert.Error(t, err)
}

func TestParse_UnsupportedExtension(t *testing.T) {
	_, err := Parse([]byte("x"), "statement.pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDetectSchema(t *testing.T) {
	content := []byte("Date,Amount,Description\n" +
		"2026-01-01,-1.00,A\n" +
		"2026-01-02,-2.00,B\n" +
		"2026-01-03,-3.00,C\n" +
		"2026-01-04,-4.00,D\n" +
		"2026-01-05,-5.00,E\n" +
		"2026-01-06,-6.00,F\n")

	schema, err := DetectSchema(content, "statement.csv")
	require.NoError(t, err)

	assert.Equal(t, FormatGeneric, schema.Format)
	assert.Equal(t, ",", schema.Delimiter)
	assert.Equal(t, 6, schema.RowCount)
	assert.Len(t, schema.SampleData, 5, "sample is capped")
	assert.Equal(t, []string{"date", "amount", "description"}, schema.Columns)
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name     string
		columns  []string
		expected string
	}{
		{"revolut", []string{"type", "completed date", "description", "amount", "currency"}, FormatRevolut},
		{"dutch bank", []string{"transactiondate", "mutationcode", "bedrag", "omschrijving"}, FormatDutchBank},
		{"generic", []string{"date", "amount", "description"}, FormatGeneric},
		{"generic hungarian", []string{"datum", "amount", "beneficiary"}, FormatGeneric},
		{"unknown", []string{"foo", "bar"}, FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectFormat(tt.columns))
		})
	}
}
