package core

import (
	"bytes"
	"encoding/json"
	"unicode/utf8"
)

// Default dialect settings applied when a request leaves an option unset.
const (
	DefaultDelimiter = ","
	DefaultQuoteChar = `"`
	DefaultEncoding  = "utf-8"
)

// ConversionRequest is the wire form of a conversion: the CSV text plus the
// dialect options chosen by the caller.
//
// Delimiter, QuoteChar and HasHeader are pointers so that an absent JSON
// field can be told apart from an explicit "" or false. An explicit empty
// delimiter is rejected; an explicit empty quotechar disables quoting.
type ConversionRequest struct {
	Content   *string `json:"csv_content"`
	Delimiter *string `json:"delimiter,omitempty"`
	QuoteChar *string `json:"quotechar,omitempty"`
	HasHeader *bool   `json:"has_header,omitempty"`
	Encoding  string  `json:"encoding,omitempty"`
}

// NewConversionRequest builds a fully populated request.
func NewConversionRequest(content, delimiter, quoteChar string, hasHeader bool, encoding string) ConversionRequest {
	return ConversionRequest{
		Content:   &content,
		Delimiter: &delimiter,
		QuoteChar: &quoteChar,
		HasHeader: &hasHeader,
		Encoding:  encoding,
	}
}

// Dialect is the validated, rune-level form of the parsing options.
type Dialect struct {
	Delimiter rune
	Quote     rune // 0 disables quoting
	HasHeader bool
	Encoding  Encoding
}

// DefaultDialect returns the dialect used when every option is defaulted.
func DefaultDialect() Dialect {
	enc, _ := LookupEncoding(DefaultEncoding)
	return Dialect{
		Delimiter: ',',
		Quote:     '"',
		HasHeader: true,
		Encoding:  enc,
	}
}

// Dialect applies defaults to the request options and validates them.
// The returned error is always a *ValidationError.
func (r ConversionRequest) Dialect() (Dialect, error) {
	d := Dialect{HasHeader: true}

	delim := DefaultDelimiter
	if r.Delimiter != nil {
		delim = *r.Delimiter
	}
	if utf8.RuneCountInString(delim) != 1 {
		return Dialect{}, &ValidationError{Field: "delimiter", Message: "must be a single character"}
	}
	d.Delimiter, _ = utf8.DecodeRuneInString(delim)

	quote := DefaultQuoteChar
	if r.QuoteChar != nil {
		quote = *r.QuoteChar
	}
	switch utf8.RuneCountInString(quote) {
	case 0:
		d.Quote = 0
	case 1:
		d.Quote, _ = utf8.DecodeRuneInString(quote)
	default:
		return Dialect{}, &ValidationError{Field: "quotechar", Message: "must be a single character or empty"}
	}

	if r.HasHeader != nil {
		d.HasHeader = *r.HasHeader
	}

	if isLineBreak(d.Delimiter) || d.Delimiter == utf8.RuneError {
		return Dialect{}, &ValidationError{Field: "delimiter", Message: "must not be a line break"}
	}
	if isLineBreak(d.Quote) || d.Quote == utf8.RuneError {
		return Dialect{}, &ValidationError{Field: "quotechar", Message: "must not be a line break"}
	}
	if d.Quote != 0 && d.Quote == d.Delimiter {
		return Dialect{}, &ValidationError{Field: "quotechar", Message: "must differ from the delimiter"}
	}

	name := r.Encoding
	if name == "" {
		name = DefaultEncoding
	}
	enc, err := LookupEncoding(name)
	if err != nil {
		return Dialect{}, err
	}
	d.Encoding = enc

	return d, nil
}

func isLineBreak(r rune) bool {
	return r == '\r' || r == '\n'
}

// Row is one converted record: column names mapped to field values.
// Keys keep the order in which the columns appear.
type Row struct {
	keys   []string
	values map[string]string
}

// NewRow returns an empty row with room for n columns.
func NewRow(n int) *Row {
	return &Row{
		keys:   make([]string, 0, n),
		values: make(map[string]string, n),
	}
}

// Set stores value under key. A repeated key overwrites the value but keeps
// its original position.
func (r *Row) Set(key, value string) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value stored under key.
func (r *Row) Get(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the column names in order.
func (r *Row) Keys() []string {
	return r.keys
}

// Len returns the number of distinct columns in the row.
func (r *Row) Len() int {
	return len(r.keys)
}

// Map returns a copy of the row as a plain map.
func (r *Row) Map() map[string]string {
	m := make(map[string]string, len(r.values))
	for k, v := range r.values {
		m[k] = v
	}
	return m
}

// MarshalJSON encodes the row as a JSON object in column order.
func (r *Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ConversionResult is the outcome of converting one CSV document.
type ConversionResult struct {
	Rows        []*Row `json:"json_data"`
	RowCount    int    `json:"row_count"`
	ColumnCount int    `json:"column_count"`
}
