// Package ingest parses uploaded bank statement files (CSV and Excel)
// into rows keyed by their column headers.
package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// ErrUnsupportedFormat is returned for file types the parser cannot read
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Row is one parsed statement line, keyed by normalized column header
type Row map[string]string

// Parsed holds the full parse result of one file
type Parsed struct {
	Columns   []string
	Rows      []Row
	Delimiter rune
	Encoding  string
}

// Parse reads a statement file, dispatching on the filename extension.
// CSV handles delimiter sniffing and legacy encodings; .xlsx goes through
// the Excel reader.
func Parse(content []byte, filename string) (*Parsed, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return ParseCSV(content)
	case ".xlsx", ".xls":
		return ParseExcel(content)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// ParseCSV decodes and parses CSV content. The delimiter is sniffed from
// the header line; exports from different banks use commas, semicolons,
// tabs or pipes.
func ParseCSV(content []byte) (*Parsed, error) {
	text, encodingName, err := decodeContent(content)
	if err != nil {
		return nil, err
	}

	delimiter := sniffDelimiter(text)

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("could not parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("file contains no rows")
	}

	columns := normalizeHeaders(records[0])

	parsed := &Parsed{
		Columns:   columns,
		Delimiter: delimiter,
		Encoding:  encodingName,
	}

	for _, record := range records[1:] {
		row := makeRow(columns, record)
		if row != nil {
			parsed.Rows = append(parsed.Rows, row)
		}
	}

	return parsed, nil
}

// ParseExcel parses the first sheet of an .xlsx workbook
func ParseExcel(content []byte) (*Parsed, error) {
	workbook, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("could not open workbook: %w", err)
	}
	defer func() { _ = workbook.Close() }()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	records, err := workbook.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("could not read sheet %q: %w", sheets[0], err)
	}
	if len(records) == 0 {
		return nil, errors.New("sheet contains no rows")
	}

	columns := normalizeHeaders(records[0])

	parsed := &Parsed{
		Columns:  columns,
		Encoding: "utf-8",
	}

	for _, record := range records[1:] {
		row := makeRow(columns, record)
		if row != nil {
			parsed.Rows = append(parsed.Rows, row)
		}
	}

	return parsed, nil
}

// decodeContent tries a chain of encodings until one produces valid text
func decodeContent(content []byte) (string, string, error) {
	// UTF-8 BOM
	if bytes.HasPrefix(content, []byte{0xEF, 0xBB, 0xBF}) {
		return string(content[3:]), "utf-8-sig", nil
	}

	// UTF-16 BOM, either endianness
	if bytes.HasPrefix(content, []byte{0xFF, 0xFE}) || bytes.HasPrefix(content, []byte{0xFE, 0xFF}) {
		decoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		decoded, err := decoder.Bytes(content)
		if err != nil {
			return "", "", fmt.Errorf("could not decode utf-16 file: %w", err)
		}
		return string(decoded), "utf-16", nil
	}

	if utf8.Valid(content) {
		return string(content), "utf-8", nil
	}

	// Windows-1252 has undefined code points and can reject; Latin-1
	// accepts every byte and is the last resort.
	attempts := []struct {
		name    string
		decoder *encoding.Decoder
	}{
		{"windows-1252", charmap.Windows1252.NewDecoder()},
		{"iso-8859-1", charmap.ISO8859_1.NewDecoder()},
	}

	for _, attempt := range attempts {
		decoded, err := attempt.decoder.Bytes(content)
		if err == nil && utf8.Valid(decoded) {
			return string(decoded), attempt.name, nil
		}
	}

	return "", "", errors.New("could not decode file with any known encoding")
}

// sniffDelimiter picks the candidate appearing most often in the header line
func sniffDelimiter(text string) rune {
	header := text
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		header = text[:idx]
	}

	best := ','
	bestCount := strings.Count(header, ",")
	for _, candidate := range []rune{';', '\t', '|'} {
		if count := strings.Count(header, string(candidate)); count > bestCount {
			best = candidate
			bestCount = count
		}
	}

	return best
}

// normalizeHeaders lowercases and trims column names
func normalizeHeaders(header []string) []string {
	columns := make([]string, len(header))
	for i, col := range header {
		columns[i] = strings.ToLower(strings.TrimSpace(col))
	}
	return columns
}

// makeRow builds a Row from one record, or nil for fully blank lines
func makeRow(columns []string, record []string) Row {
	row := make(Row, len(columns))
	empty := true
	for i, col := range columns {
		if i >= len(record) {
			break
		}
		value := strings.TrimSpace(record[i])
		row[col] = value
		if value != "" {
			empty = false
		}
	}
	if empty {
		return nil
	}
	return row
}
