package core

// convert.go turns tokenized CSV records into row objects.
//
// Header mode uses the first record as column names. Rows shorter than the
// header are padded with "" and fields past the last header column are
// dropped, so every row carries exactly the header's keys. Without a header,
// columns are named column_1..column_N after their position.

import (
	"errors"
	"io"
	"strconv"
	"strings"
)

// ColumnPrefix is the stem of synthesized column names in headerless mode.
const ColumnPrefix = "column_"

// ConvertString converts CSV text under the given dialect.
// Empty or whitespace-only content yields an empty result, also when it
// starts with a byte order mark.
func ConvertString(content string, d Dialect) (*ConversionResult, error) {
	content = strings.TrimPrefix(content, "\ufeff")
	if strings.TrimSpace(content) == "" {
		return emptyResult(), nil
	}
	return Convert(strings.NewReader(content), d)
}

// Convert reads CSV from r and converts every record into a Row.
// A leading UTF-8 byte order mark is skipped. Malformed quoting returns a
// *ParseError.
func Convert(r io.Reader, d Dialect) (*ConversionResult, error) {
	reader := NewReader(NewBOMSkippingReader(r), d.Delimiter, d.Quote)

	var header []string
	if d.HasHeader {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return emptyResult(), nil
		}
		if err != nil {
			return nil, err
		}
		header = append([]string(nil), rec...)
	}

	result := emptyResult()
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		var row *Row
		if d.HasHeader {
			row = headerRow(header, rec)
		} else {
			row = positionalRow(rec)
		}
		result.Rows = append(result.Rows, row)
	}

	result.RowCount = len(result.Rows)
	if result.RowCount > 0 {
		result.ColumnCount = result.Rows[0].Len()
	}
	return result, nil
}

func emptyResult() *ConversionResult {
	return &ConversionResult{Rows: []*Row{}}
}

func headerRow(header, rec []string) *Row {
	row := NewRow(len(header))
	for i, name := range header {
		val := ""
		if i < len(rec) {
			val = rec[i]
		}
		row.Set(name, val)
	}
	return row
}

func positionalRow(rec []string) *Row {
	row := NewRow(len(rec))
	for i, val := range rec {
		row.Set(ColumnName(i), val)
	}
	return row
}

// ColumnName returns the synthesized name for the zero-based column index i.
func ColumnName(i int) string {
	return ColumnPrefix + strconv.Itoa(i+1)
}
