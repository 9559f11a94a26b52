package core

// errors.go defines the error kinds that cross component boundaries.
//
//   - ValidationError: bad or missing options, caught before parsing
//   - ParseError:      malformed CSV content
//   - EncodingError:   bytes that do not decode under the declared charset
//   - UpstreamError:   the API was unreachable, timed out, or answered non-2xx
//   - ErrInternal:     wraps anything unexpected
//
// Handlers use errors.As to pick a status code and errors are mapped to
// user-facing text with MapError.

import (
	"errors"
	"fmt"
)

// ErrInternal marks failures that must not be described to the caller.
var ErrInternal = errors.New("internal error")

// ValidationError reports an option or input that failed validation.
type ValidationError struct {
	Field   string // Option name, empty for whole-request problems
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid option %s: %s", e.Field, e.Message)
	}
	return "invalid request: " + e.Message
}

// ParseError reports malformed CSV content.
// Line and Column are 1-based and point at the offending character.
type ParseError struct {
	Line   int
	Column int
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("record on line %d, column %d: %v", e.Line, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Tokenizer failure causes, wrapped by ParseError.
var (
	ErrUnterminatedQuote = errors.New("unterminated quoted field")
	ErrTrailingQuote     = errors.New("unexpected character after closing quote")
)

// EncodingError reports content that is not valid in the declared charset.
type EncodingError struct {
	Encoding string
	Offset   int // Byte offset of the first invalid byte, -1 if unknown
	Err      error
}

func (e *EncodingError) Error() string {
	msg := "encoding error: content is not valid " + e.Encoding
	if e.Offset >= 0 {
		msg = fmt.Sprintf("%s (byte %d)", msg, e.Offset)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// UpstreamError reports a failed call from the front end to the conversion API.
type UpstreamError struct {
	Status  int    // HTTP status from the API, 0 if no response arrived
	Detail  string // "detail" from the API error body, if any
	Timeout bool
	Err     error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Timeout:
		return "api request timeout: " + errString(e.Err)
	case e.Status != 0 && e.Detail != "":
		return fmt.Sprintf("api returned status %d: %s", e.Status, e.Detail)
	case e.Status != 0:
		return fmt.Sprintf("api returned status %d", e.Status)
	default:
		return "api unreachable: " + errString(e.Err)
	}
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func errString(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
