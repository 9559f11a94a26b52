package core

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding is a supported charset for uploaded CSV files.
type Encoding struct {
	Name  string // Canonical name, as offered in the upload form
	Label string // Display label

	enc       encoding.Encoding
	undefined []byte // bytes with no mapping in the charset
}

var encodings = []Encoding{
	{Name: "utf-8", Label: "UTF-8", enc: unicode.UTF8},
	{Name: "latin-1", Label: "Latin-1", enc: charmap.ISO8859_1},
	{
		Name:      "cp1252",
		Label:     "Windows-1252",
		enc:       charmap.Windows1252,
		undefined: []byte{0x81, 0x8D, 0x8F, 0x90, 0x9D},
	},
}

var encodingAliases = map[string]string{
	"utf-8":        "utf-8",
	"utf8":         "utf-8",
	"utf-8-sig":    "utf-8",
	"latin-1":      "latin-1",
	"latin1":       "latin-1",
	"iso-8859-1":   "latin-1",
	"iso8859-1":    "latin-1",
	"cp1252":       "cp1252",
	"windows-1252": "cp1252",
}

// Encodings returns the supported charsets in display order.
func Encodings() []Encoding {
	out := make([]Encoding, len(encodings))
	copy(out, encodings)
	return out
}

// LookupEncoding resolves a charset name or alias, case-insensitively.
func LookupEncoding(name string) (Encoding, error) {
	canonical, ok := encodingAliases[strings.ToLower(strings.TrimSpace(name))]
	if ok {
		for _, e := range encodings {
			if e.Name == canonical {
				return e, nil
			}
		}
	}
	return Encoding{}, &ValidationError{
		Field:   "encoding",
		Message: fmt.Sprintf("unsupported encoding %q", name),
	}
}

// Decode converts raw bytes in the given charset to a UTF-8 string.
// Bytes that are not valid in the charset produce an *EncodingError.
func Decode(data []byte, e Encoding) (string, error) {
	if e.enc == nil {
		return "", &EncodingError{Encoding: "unknown", Offset: -1}
	}

	if e.enc == unicode.UTF8 {
		if off := invalidUTF8Offset(data); off >= 0 {
			return "", &EncodingError{Encoding: e.Name, Offset: off}
		}
		return string(data), nil
	}

	if off := undefinedOffset(data, e.undefined); off >= 0 {
		return "", &EncodingError{Encoding: e.Name, Offset: off}
	}

	out, _, err := transform.Bytes(e.enc.NewDecoder(), data)
	if err != nil {
		return "", &EncodingError{Encoding: e.Name, Offset: -1, Err: err}
	}
	return string(out), nil
}

func invalidUTF8Offset(data []byte) int {
	if utf8.Valid(data) {
		return -1
	}
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return -1
}

// undefinedOffset returns the index of the first byte of data found in set.
func undefinedOffset(data, set []byte) int {
	if len(set) == 0 {
		return -1
	}
	for i, b := range data {
		if bytes.IndexByte(set, b) >= 0 {
			return i
		}
	}
	return -1
}
