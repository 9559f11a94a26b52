package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialect(comma, quote rune, header bool) Dialect {
	d := DefaultDialect()
	d.Delimiter = comma
	d.Quote = quote
	d.HasHeader = header
	return d
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestConvertString_HeaderRoundTrip(t *testing.T) {
	result, err := ConvertString("a,b\n1,2\n3,4", dialect(',', '"', true))
	require.NoError(t, err)

	assert.Equal(t, 2, result.RowCount)
	assert.Equal(t, 2, result.ColumnCount)
	assert.JSONEq(t, `[{"a":"1","b":"2"},{"a":"3","b":"4"}]`, mustJSON(t, result.Rows))
}

func TestConvertString_NoHeader(t *testing.T) {
	result, err := ConvertString("a,b\n1,2\n3,4", dialect(',', '"', false))
	require.NoError(t, err)

	assert.Equal(t, 3, result.RowCount)
	assert.Equal(t, 2, result.ColumnCount)
	assert.JSONEq(t,
		`[{"column_1":"a","column_2":"b"},{"column_1":"1","column_2":"2"},{"column_1":"3","column_2":"4"}]`,
		mustJSON(t, result.Rows))
}

func TestConvertString_Empty(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\n", " \t\r\n ", "\ufeff", "\ufeff   ", "\ufeff\r\n"} {
		for _, header := range []bool{true, false} {
			t.Run(fmt.Sprintf("%q/header=%v", input, header), func(t *testing.T) {
				result, err := ConvertString(input, dialect(',', '"', header))
				require.NoError(t, err)
				assert.Equal(t, 0, result.RowCount)
				assert.Equal(t, 0, result.ColumnCount)
				assert.Equal(t, "[]", mustJSON(t, result.Rows))
			})
		}
	}
}

func TestConvertString_HeaderOnly(t *testing.T) {
	result, err := ConvertString("a,b,c\n", dialect(',', '"', true))
	require.NoError(t, err)
	assert.Equal(t, 0, result.RowCount)
	assert.Equal(t, 0, result.ColumnCount)
	assert.Empty(t, result.Rows)
}

func TestConvertString_QuotedDelimiter(t *testing.T) {
	result, err := ConvertString(`"a,b",c`, dialect(',', '"', false))
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)

	assert.Equal(t, map[string]string{"column_1": "a,b", "column_2": "c"}, result.Rows[0].Map())
	assert.Equal(t, 2, result.ColumnCount)
}

func TestConvertString_MismatchedRowLengths(t *testing.T) {
	input := "id,name,city\n1,Ann\n2,Bob,Oslo,extra\n3,Cy,Rome"
	result, err := ConvertString(input, dialect(',', '"', true))
	require.NoError(t, err)

	assert.Equal(t, 3, result.RowCount)
	assert.Equal(t, 3, result.ColumnCount)
	assert.Equal(t,
		`[{"id":"1","name":"Ann","city":""},{"id":"2","name":"Bob","city":"Oslo"},{"id":"3","name":"Cy","city":"Rome"}]`,
		mustJSON(t, result.Rows))

	for i, row := range result.Rows {
		assert.Equal(t, []string{"id", "name", "city"}, row.Keys(), "row %d keys", i)
	}
}

func TestConvertString_HeaderPropertyRowCount(t *testing.T) {
	// For well-formed input, rows == lines - 1 and every key set is the header.
	inputs := []string{
		"x\n1\n2\n3",
		"a;b;c\n1;2;3\n4;5;6\n",
		"h1|h2\r\nv1|v2\r\nv3|v4\r\n",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			comma := ','
			switch {
			case strings.Contains(input, ";"):
				comma = ';'
			case strings.Contains(input, "|"):
				comma = '|'
			}
			lines := strings.Split(strings.TrimRight(strings.ReplaceAll(input, "\r\n", "\n"), "\n"), "\n")
			header := strings.Split(lines[0], string(comma))

			result, err := ConvertString(input, dialect(comma, '"', true))
			require.NoError(t, err)
			assert.Equal(t, len(lines)-1, result.RowCount)
			assert.Equal(t, len(result.Rows), result.RowCount)
			for _, row := range result.Rows {
				assert.ElementsMatch(t, header, row.Keys())
			}
		})
	}
}

func TestConvertString_NoHeaderKeys(t *testing.T) {
	result, err := ConvertString("1,2,3\n4,5,6\n", dialect(',', '"', false))
	require.NoError(t, err)
	for _, row := range result.Rows {
		require.Equal(t, result.ColumnCount, row.Len())
		for i := 0; i < result.ColumnCount; i++ {
			_, ok := row.Get(fmt.Sprintf("column_%d", i+1))
			assert.True(t, ok)
		}
	}
}

func TestConvertString_Dialects(t *testing.T) {
	tests := []struct {
		name  string
		input string
		comma rune
		quote rune
		want  []string
	}{
		{"semicolon", "a;b", ';', '"', []string{"a", "b"}},
		{"tab", "a\tb", '\t', '"', []string{"a", "b"}},
		{"pipe", "a|b", '|', '"', []string{"a", "b"}},
		{"doubled quote", `"say ""hi""",x`, ',', '"', []string{`say "hi"`, "x"}},
		{"single quote", `'a,b','it''s'`, ',', '\'', []string{"a,b", "it's"}},
		{"double quote literal under single-quote dialect", `"a,b"`, ',', '\'', []string{`"a`, `b"`}},
		{"no quoting", `"a,b",c`, ',', 0, []string{`"a`, `b"`, "c"}},
		{"bare quote mid-field", `5" screen,x`, ',', '"', []string{`5" screen`, "x"}},
		{"empty fields", ",,", ',', '"', []string{"", "", ""}},
		{"quoted newline", "\"line1\nline2\",x", ',', '"', []string{"line1\nline2", "x"}},
		{"whitespace kept", " a , b ", ',', '"', []string{" a ", " b "}},
		{"unicode delimiter", "a§b", '§', '"', []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ConvertString(tt.input, dialect(tt.comma, tt.quote, false))
			require.NoError(t, err)
			require.Len(t, result.Rows, 1)

			row := result.Rows[0]
			require.Equal(t, len(tt.want), row.Len())
			for i, want := range tt.want {
				got, _ := row.Get(ColumnName(i))
				assert.Equal(t, want, got, "field %d", i)
			}
		})
	}
}

func TestConvertString_LineEndings(t *testing.T) {
	for name, input := range map[string]string{
		"lf":          "a,b\n1,2\n",
		"crlf":        "a,b\r\n1,2\r\n",
		"cr":          "a,b\r1,2\r",
		"blank lines": "a,b\n\n1,2\n\n",
	} {
		t.Run(name, func(t *testing.T) {
			result, err := ConvertString(input, dialect(',', '"', true))
			require.NoError(t, err)
			assert.Equal(t, `[{"a":"1","b":"2"}]`, mustJSON(t, result.Rows))
		})
	}
}

func TestConvertString_SkipsBOM(t *testing.T) {
	result, err := ConvertString("\ufeffname\nAnn", dialect(',', '"', true))
	require.NoError(t, err)
	assert.Equal(t, `[{"name":"Ann"}]`, mustJSON(t, result.Rows))
}

func TestConvertString_DuplicateHeaders(t *testing.T) {
	result, err := ConvertString("a,b,a\n1,2,3", dialect(',', '"', true))
	require.NoError(t, err)
	assert.Equal(t, `[{"a":"3","b":"2"}]`, mustJSON(t, result.Rows))
	assert.Equal(t, 2, result.ColumnCount)
}

func TestConvertString_ParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
		line    int
	}{
		{"unterminated", "a,b\n1,\"unclosed", ErrUnterminatedQuote, 2},
		{"unterminated multiline", "a\n\"x\ny\nz", ErrUnterminatedQuote, 2},
		{"text after closing quote", "\"a\"b,c", ErrTrailingQuote, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ConvertString(tt.input, dialect(',', '"', true))
			require.Error(t, err)
			assert.Nil(t, result)

			var pe *ParseError
			require.True(t, errors.As(err, &pe), "want *ParseError, got %T", err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.line, pe.Line)
			assert.NotEmpty(t, pe.Error())
		})
	}
}

func TestRow_MarshalJSONKeepsOrder(t *testing.T) {
	row := NewRow(3)
	row.Set("z", "1")
	row.Set("a", "2")
	row.Set("m", `quote " here`)

	b, err := json.Marshal(row)
	require.NoError(t, err)
	assert.Equal(t, `{"z":"1","a":"2","m":"quote \" here"}`, string(b))
}
