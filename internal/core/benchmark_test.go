package core

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"testing"
)

// generateTestCSV builds a header plus rows of five columns, one quoted
// field per row.
func generateTestCSV(rows int) string {
	var sb strings.Builder
	sb.WriteString("id,name,email,amount,note\n")
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&sb, "%d,User %d,user%d@example.com,%d.50,\"note, with comma %d\"\n", i, i, i, i*10, i)
	}
	return sb.String()
}

// ============================================================================
// Conversion Benchmarks
// ============================================================================

// BenchmarkConvertString benchmarks the full CSV to rows conversion.
func BenchmarkConvertString(b *testing.B) {
	for _, rows := range []int{100, 1000, 10000} {
		data := generateTestCSV(rows)
		d := DefaultDialect()

		b.Run(fmt.Sprintf("rows=%d", rows), func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := ConvertString(data, d); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkConvertString_NoHeader benchmarks positional column naming.
func BenchmarkConvertString_NoHeader(b *testing.B) {
	data := generateTestCSV(1000)
	d := DefaultDialect()
	d.HasHeader = false

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		ConvertString(data, d)
	}
}

// ============================================================================
// Tokenizer Benchmarks
// ============================================================================

// BenchmarkReader_Comparison compares the tokenizer with encoding/csv on the
// input both can parse.
func BenchmarkReader_Comparison(b *testing.B) {
	data := generateTestCSV(500)

	b.Run("Reader", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			r := NewReader(strings.NewReader(data), ',', '"')
			for {
				if _, err := r.Read(); err == io.EOF {
					break
				}
			}
		}
	})

	b.Run("encoding/csv", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			r := csv.NewReader(strings.NewReader(data))
			r.FieldsPerRecord = -1
			for {
				if _, err := r.Read(); err == io.EOF {
					break
				}
			}
		}
	})
}

// BenchmarkRow_MarshalJSON benchmarks ordered object encoding.
func BenchmarkRow_MarshalJSON(b *testing.B) {
	row := NewRow(5)
	for i := 0; i < 5; i++ {
		row.Set(ColumnName(i), fmt.Sprintf("value \"%d\"", i))
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		row.MarshalJSON()
	}
}

// ============================================================================
// Decoding Benchmarks
// ============================================================================

// BenchmarkDecode benchmarks charset decoding of a 10KB upload.
func BenchmarkDecode(b *testing.B) {
	data := bytes.Repeat([]byte("Caf\xe9 line with numbers 12345\n"), 300)

	for _, name := range []string{"latin-1", "cp1252"} {
		enc, err := LookupEncoding(name)
		if err != nil {
			b.Fatal(err)
		}
		b.Run(name, func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				Decode(data, enc)
			}
		})
	}

	b.Run("utf-8", func(b *testing.B) {
		utf8Data := bytes.Repeat([]byte("Café line with numbers 12345\n"), 300)
		enc, _ := LookupEncoding("utf-8")
		b.SetBytes(int64(len(utf8Data)))
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			Decode(utf8Data, enc)
		}
	})
}

// BenchmarkBOMSkippingReader_LargeFile benchmarks BOM removal on larger data.
func BenchmarkBOMSkippingReader_LargeFile(b *testing.B) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, bytes.Repeat([]byte("data line\n"), 1000)...)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		io.Copy(io.Discard, NewBOMSkippingReader(bytes.NewReader(data)))
	}
}
