package core

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversionRequest_DialectDefaults(t *testing.T) {
	var req ConversionRequest
	require.NoError(t, json.Unmarshal([]byte(`{"csv_content":"a"}`), &req))

	d, err := req.Dialect()
	require.NoError(t, err)
	assert.Equal(t, ',', d.Delimiter)
	assert.Equal(t, '"', d.Quote)
	assert.True(t, d.HasHeader)
	assert.Equal(t, "utf-8", d.Encoding.Name)
}

func TestConversionRequest_DialectEmptyDelimiterJSON(t *testing.T) {
	var req ConversionRequest
	require.NoError(t, json.Unmarshal([]byte(`{"csv_content":"a,b","delimiter":""}`), &req))
	require.NotNil(t, req.Delimiter)

	_, err := req.Dialect()
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "want *ValidationError, got %v", err)
	assert.Equal(t, "delimiter", ve.Field)
}

func TestConversionRequest_DialectExplicit(t *testing.T) {
	req := NewConversionRequest("a", "\t", "", false, "cp1252")

	d, err := req.Dialect()
	require.NoError(t, err)
	assert.Equal(t, '\t', d.Delimiter)
	assert.Equal(t, rune(0), d.Quote)
	assert.False(t, d.HasHeader)
	assert.Equal(t, "cp1252", d.Encoding.Name)
}

func TestConversionRequest_DialectInvalid(t *testing.T) {
	tests := []struct {
		name      string
		delimiter string
		quote     string
		encoding  string
		wantField string
	}{
		{"empty delimiter", "", `"`, "utf-8", "delimiter"},
		{"two-char delimiter", ",,", `"`, "utf-8", "delimiter"},
		{"newline delimiter", "\n", `"`, "utf-8", "delimiter"},
		{"two-char quote", ",", `""`, "utf-8", "quotechar"},
		{"quote equals delimiter", ";", ";", "utf-8", "quotechar"},
		{"carriage return quote", ",", "\r", "utf-8", "quotechar"},
		{"unknown encoding", ",", `"`, "klingon", "encoding"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConversionRequest("a", tt.delimiter, tt.quote, true, tt.encoding).Dialect()
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "want *ValidationError, got %v", err)
			assert.Equal(t, tt.wantField, ve.Field)
		})
	}
}

func TestConversionRequest_JSONShape(t *testing.T) {
	req := NewConversionRequest("a,b", ";", "", false, "latin-1")
	b, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"csv_content":"a,b","delimiter":";","quotechar":"","has_header":false,"encoding":"latin-1"}`,
		string(b))
}

func TestConversionResult_JSONShape(t *testing.T) {
	result, err := ConvertString("a\n1", DefaultDialect())
	require.NoError(t, err)

	b, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{"json_data":[{"a":"1"}],"row_count":1,"column_count":1}`, string(b))
}
