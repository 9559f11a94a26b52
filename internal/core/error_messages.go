package core

// error_messages.go maps technical errors to user-facing messages with codes
// for support reference. Typed errors are matched first with errors.As; plain
// errors fall back to case-insensitive substring patterns.
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Invalid request: a required value is missing or malformed
//	VAL002 - Invalid delimiter: delimiter must be exactly one character
//	VAL003 - Invalid quote character: zero or one character, not the delimiter
//	VAL004 - Unsupported encoding: pick utf-8, latin-1 or cp1252
//
// # CSV Errors (CSV001-CSV099)
//
//	CSV001 - Unterminated quote: a quoted field never closes
//	CSV002 - Stray character after closing quote
//	CSV000 - Any other malformed CSV
//
// # Encoding Errors (ENC001)
//
//	ENC001 - File bytes do not match the selected encoding
//
// # API Errors (API001-API099)
//
//	API001 - Conversion API unreachable
//	API002 - Conversion API timed out
//	API003 - Conversion API rejected the request or failed
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large       Patterns: "file too large", "request body too large"
//	FILE002 - No file selected     Patterns: "no file provided"
//
// # Capacity (BUSY001)
//
//	BUSY001 - Too many conversions in flight  Patterns: "too many concurrent"
//
// # Default Error (ERR000)
//
// Fallback when nothing matches; check the server logs for the original error.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns is consulted for untyped errors. First match wins.
var errorPatterns = []errorPattern{
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV file to upload",
			Code:    "FILE002",
		},
	},
	{
		pattern: "too many concurrent",
		msg: UserMessage{
			Message: "The converter is busy",
			Action:  "Please wait a moment and try again",
			Code:    "BUSY001",
		},
	},
}

var (
	msgInvalidRequest = UserMessage{
		Message: "The conversion request is invalid",
		Action:  "Check that a CSV file and all options were provided",
		Code:    "VAL001",
	}
	msgInvalidDelimiter = UserMessage{
		Message: "Invalid delimiter",
		Action:  "Use a single delimiter character",
		Code:    "VAL002",
	}
	msgInvalidQuote = UserMessage{
		Message: "Invalid quote character",
		Action:  "Use one quote character different from the delimiter, or none",
		Code:    "VAL003",
	}
	msgInvalidEncoding = UserMessage{
		Message: "Unsupported encoding",
		Action:  "Choose UTF-8, Latin-1 or Windows-1252",
		Code:    "VAL004",
	}
	msgUnterminatedQuote = UserMessage{
		Message: "A quoted field is never closed",
		Action:  "Check the quote character setting or fix the file",
		Code:    "CSV001",
	}
	msgTrailingQuote = UserMessage{
		Message: "Unexpected text after a closing quote",
		Action:  "Check the quote character setting or fix the file",
		Code:    "CSV002",
	}
	msgMalformedCSV = UserMessage{
		Message: "The file is not valid CSV",
		Action:  "Check the delimiter and quote settings",
		Code:    "CSV000",
	}
	msgEncoding = UserMessage{
		Message: "Error reading file. Please check the encoding setting.",
		Action:  "Choose the encoding the file was saved with",
		Code:    "ENC001",
	}
	msgAPIUnreachable = UserMessage{
		Message: "The conversion service is unreachable",
		Action:  "Please try again in a few moments",
		Code:    "API001",
	}
	msgAPITimeout = UserMessage{
		Message: "The conversion service timed out",
		Action:  "Try a smaller file or try again later",
		Code:    "API002",
	}
	msgAPIFailed = UserMessage{
		Message: "The conversion service returned an error",
		Action:  "Check the file and options, then try again",
		Code:    "API003",
	}
)

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var (
		valErr *ValidationError
		parErr *ParseError
		encErr *EncodingError
		upErr  *UpstreamError
	)
	switch {
	case errors.As(err, &valErr):
		switch valErr.Field {
		case "delimiter":
			return msgInvalidDelimiter
		case "quotechar":
			return msgInvalidQuote
		case "encoding":
			return msgInvalidEncoding
		}
		return msgInvalidRequest
	case errors.As(err, &parErr):
		switch {
		case errors.Is(parErr.Err, ErrUnterminatedQuote):
			return msgUnterminatedQuote
		case errors.Is(parErr.Err, ErrTrailingQuote):
			return msgTrailingQuote
		}
		return msgMalformedCSV
	case errors.As(err, &encErr):
		return msgEncoding
	case errors.As(err, &upErr):
		switch {
		case upErr.Timeout:
			return msgAPITimeout
		case upErr.Status != 0:
			return msgAPIFailed
		}
		return msgAPIUnreachable
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError renders err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}
