package web

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/JonMunkholm/csv2json/internal/core"
	"github.com/JonMunkholm/csv2json/internal/web/templates"
)

// Field names of the upload form.
const (
	fieldFile      = "csv_file"
	fieldDelimiter = "delimiter"
	fieldQuoteChar = "quotechar"
	fieldHasHeader = "has_header"
	fieldEncoding  = "encoding"
	fieldCSRF      = "csrf_token"
)

// multipartMemory is how much of a multipart body is kept in memory before
// spilling to temporary files.
const multipartMemory = 32 << 20

var formChoices = templates.Choices{
	Delimiters: []templates.Choice{
		{Value: ",", Label: "Comma (,)"},
		{Value: ";", Label: "Semicolon (;)"},
		{Value: "\t", Label: "Tab"},
		{Value: "|", Label: "Pipe (|)"},
	},
	QuoteChars: []templates.Choice{
		{Value: `"`, Label: `Double Quote (")`},
		{Value: "'", Label: "Single Quote (')"},
		{Value: "", Label: "None"},
	},
	Encodings: encodingChoices(),
}

// encodingChoices offers every charset core can decode.
func encodingChoices() []templates.Choice {
	encs := core.Encodings()
	choices := make([]templates.Choice, 0, len(encs))
	for _, e := range encs {
		choices = append(choices, templates.Choice{Value: e.Name, Label: e.Label})
	}
	return choices
}

// defaultForm is what GET / shows.
func defaultForm() templates.FormValues {
	return templates.FormValues{
		Delimiter: core.DefaultDelimiter,
		QuoteChar: core.DefaultQuoteChar,
		HasHeader: true,
		Encoding:  core.DefaultEncoding,
	}
}

// FieldError is a problem with one form field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) String() string {
	return e.Field + ": " + e.Message
}

// conversionForm is a submitted form after validation.
type conversionForm struct {
	values   templates.FormValues
	filename string
	data     []byte
	encoding core.Encoding
}

var (
	// errFormTooLarge reports an upload over the size limit.
	errFormTooLarge = errors.New("file too large")

	// errInvalidForm reports a body that is not a readable multipart form.
	errInvalidForm = errors.New("invalid form submission")
)

// parseConversionForm reads and validates a multipart submission. Field
// problems are returned as FieldErrors alongside the values that were
// submitted so the form can be shown again as filled in. A non-nil error
// means the body itself could not be read.
func (s *Server) parseConversionForm(w http.ResponseWriter, r *http.Request) (*conversionForm, []FieldError, error) {
	limit := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var sizeErr *http.MaxBytesError
		if errors.As(err, &sizeErr) || strings.Contains(err.Error(), "request body too large") {
			return nil, nil, errFormTooLarge
		}
		return nil, nil, fmt.Errorf("%w: %v", errInvalidForm, err)
	}

	form := &conversionForm{values: defaultForm()}
	var errs []FieldError

	form.values.Delimiter = choice(r, fieldDelimiter, core.DefaultDelimiter, formChoices.Delimiters, &errs)
	form.values.QuoteChar = choice(r, fieldQuoteChar, core.DefaultQuoteChar, formChoices.QuoteChars, &errs)
	form.values.Encoding = choice(r, fieldEncoding, core.DefaultEncoding, formChoices.Encodings, &errs)
	form.values.HasHeader = checkbox(r, fieldHasHeader)

	if enc, err := core.LookupEncoding(form.values.Encoding); err == nil {
		form.encoding = enc
	}

	file, header, err := r.FormFile(fieldFile)
	switch {
	case errors.Is(err, http.ErrMissingFile):
		errs = append(errs, FieldError{Field: fieldFile, Message: "This field is required."})
	case err != nil:
		return nil, nil, fmt.Errorf("%w: open upload: %v", errInvalidForm, err)
	default:
		defer file.Close()
		if header.Size > limit {
			return nil, nil, errFormTooLarge
		}
		form.filename = header.Filename
		if form.data, err = readUpload(file, limit); err != nil {
			return nil, nil, err
		}
	}

	return form, errs, nil
}

// multipartOverhead is the room left on top of the file limit for the
// other fields and part headers.
const multipartOverhead = 64 * 1024

func readUpload(f multipart.File, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, errFormTooLarge
	}
	return data, nil
}

// choice returns the submitted value of a select field. An absent field
// takes def; a value outside choices records a FieldError and also yields def.
func choice(r *http.Request, name, def string, choices []templates.Choice, errs *[]FieldError) string {
	values, ok := r.MultipartForm.Value[name]
	if !ok || len(values) == 0 {
		return def
	}
	for _, c := range choices {
		if values[0] == c.Value {
			return c.Value
		}
	}
	*errs = append(*errs, FieldError{Field: name, Message: "Not a valid choice."})
	return def
}

// checkbox reports whether a checkbox was ticked. Browsers omit unticked
// checkboxes, so absence means false.
func checkbox(r *http.Request, name string) bool {
	values := r.MultipartForm.Value[name]
	if len(values) == 0 {
		return false
	}
	switch values[0] {
	case "", "false", "0", "off", "n":
		return false
	}
	return true
}
