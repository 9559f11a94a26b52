package core

// reader.go implements a dialect-aware CSV tokenizer.
//
// encoding/csv hard-codes '"' as the quote character and cannot turn quoting
// off, so records are tokenized here under the same rules with a configurable
// quote rune:
//
//   - a field wrapped in the quote rune may contain delimiters and line breaks
//   - a doubled quote rune inside a quoted field is one literal quote
//   - a quote rune inside an unquoted field is literal
//   - \n, \r\n and a bare \r end a record; empty lines are skipped

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// Reader reads records from CSV input under a Dialect.
type Reader struct {
	r     *bufio.Reader
	comma rune
	quote rune

	line int // line of the next rune to read
	col  int // column of the last rune read

	field  strings.Builder
	record []string
}

// NewReader returns a Reader that tokenizes r with the given delimiter and
// quote rune. A zero quote disables quoting.
func NewReader(r io.Reader, comma, quote rune) *Reader {
	return &Reader{
		r:     bufio.NewReader(r),
		comma: comma,
		quote: quote,
		line:  1,
	}
}

// Read returns the next record. It returns io.EOF when the input is exhausted.
// Malformed quoting is reported as a *ParseError.
func (r *Reader) Read() ([]string, error) {
	for {
		record, err := r.readRecord()
		if err != nil {
			return nil, err
		}
		if record != nil {
			return record, nil
		}
	}
}

// ReadAll reads all remaining records.
func (r *Reader) ReadAll() ([][]string, error) {
	var records [][]string
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
}

// readRecord returns nil, nil for an empty line.
func (r *Reader) readRecord() ([]string, error) {
	r.record = nil
	r.col = 0

	c, err := r.next()
	if err != nil {
		return nil, err
	}
	if c == '\r' || c == '\n' {
		r.endLine(c)
		return nil, nil
	}
	r.r.UnreadRune()
	r.col--

	for {
		end, err := r.readField()
		r.record = append(r.record, r.field.String())
		if err != nil {
			if errors.Is(err, io.EOF) {
				return r.record, nil
			}
			return nil, err
		}
		if end {
			return r.record, nil
		}
	}
}

// readField consumes one field into r.field. It reports whether the field
// ended the record. io.EOF means the field ended the input.
func (r *Reader) readField() (bool, error) {
	r.field.Reset()

	c, err := r.next()
	if err != nil {
		return true, err
	}

	if r.quote != 0 && c == r.quote {
		return r.readQuoted()
	}

	for {
		switch {
		case c == r.comma:
			return false, nil
		case c == '\r' || c == '\n':
			r.endLine(c)
			return true, nil
		default:
			r.field.WriteRune(c)
		}
		if c, err = r.next(); err != nil {
			return true, err
		}
	}
}

func (r *Reader) readQuoted() (bool, error) {
	startLine, startCol := r.line, r.col

	for {
		c, err := r.next()
		if errors.Is(err, io.EOF) {
			return true, &ParseError{Line: startLine, Column: startCol, Err: ErrUnterminatedQuote}
		}
		if err != nil {
			return true, err
		}

		switch c {
		case r.quote:
			c, err = r.next()
			if errors.Is(err, io.EOF) {
				return true, io.EOF
			}
			if err != nil {
				return true, err
			}
			switch {
			case c == r.quote:
				r.field.WriteRune(c)
			case c == r.comma:
				return false, nil
			case c == '\r' || c == '\n':
				r.endLine(c)
				return true, nil
			default:
				return true, &ParseError{Line: r.line, Column: r.col, Err: ErrTrailingQuote}
			}
		case '\n':
			r.field.WriteRune(c)
			r.line++
			r.col = 0
		case '\r':
			r.field.WriteRune(c)
			if n, _, err := r.r.ReadRune(); err == nil {
				if n == '\n' {
					r.field.WriteRune(n)
				} else {
					r.r.UnreadRune()
				}
			}
			r.line++
			r.col = 0
		default:
			r.field.WriteRune(c)
		}
	}
}

// endLine advances past a line terminator whose first rune was c.
func (r *Reader) endLine(c rune) {
	if c == '\r' {
		if n, _, err := r.r.ReadRune(); err == nil && n != '\n' {
			r.r.UnreadRune()
		}
	}
	r.line++
	r.col = 0
}

func (r *Reader) next() (rune, error) {
	c, _, err := r.r.ReadRune()
	if err != nil {
		return 0, err
	}
	r.col++
	return c, nil
}
