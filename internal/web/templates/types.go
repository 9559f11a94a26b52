// Package templates holds the templ components of the upload front end.
//
// Edit the .templ files and run `templ generate` from the module root; the
// *_templ.go files are generated.
package templates

import "strconv"

// Notice categories.
const (
	NoticeSuccess = "success"
	NoticeError   = "error"
)

// Notice is a one-shot message shown above the form.
type Notice struct {
	Category string
	Message  string
}

// Choice is one option of a select field.
type Choice struct {
	Value string
	Label string
}

// Choices lists the options offered by the form's select fields.
type Choices struct {
	Delimiters []Choice
	QuoteChars []Choice
	Encodings  []Choice
}

// FormValues are the options currently selected in the form.
type FormValues struct {
	Delimiter string
	QuoteChar string
	HasHeader bool
	Encoding  string
	CSRFToken string
}

// ConversionView is a successful conversion ready for display.
type ConversionView struct {
	RowCount    int
	ColumnCount int
	JSON        string
}

// ConverterParams holds everything the converter page shows.
type ConverterParams struct {
	AppName     string
	Form        FormValues
	Choices     Choices
	Notices     []Notice
	Result      *ConversionView
	MaxFileSize int64
}

func formatSize(n int64) string {
	const mb = 1024 * 1024
	if n >= mb && n%mb == 0 {
		return strconv.FormatInt(n/mb, 10) + " MB"
	}
	return strconv.FormatInt(n, 10) + " bytes"
}
