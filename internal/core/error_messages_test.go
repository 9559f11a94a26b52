package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"nil error returns empty", nil, ""},
		{"delimiter", &ValidationError{Field: "delimiter", Message: "x"}, "VAL002"},
		{"quotechar", &ValidationError{Field: "quotechar", Message: "x"}, "VAL003"},
		{"encoding", &ValidationError{Field: "encoding", Message: "x"}, "VAL004"},
		{"missing content", &ValidationError{Message: "csv_content is required"}, "VAL001"},
		{"unterminated quote", &ParseError{Line: 1, Column: 1, Err: ErrUnterminatedQuote}, "CSV001"},
		{"trailing quote", &ParseError{Line: 1, Column: 3, Err: ErrTrailingQuote}, "CSV002"},
		{"other parse error", &ParseError{Err: errors.New("boom")}, "CSV000"},
		{"wrapped parse error", fmt.Errorf("convert: %w", &ParseError{Err: ErrUnterminatedQuote}), "CSV001"},
		{"encoding error", &EncodingError{Encoding: "utf-8", Offset: 3}, "ENC001"},
		{"upstream timeout", &UpstreamError{Timeout: true, Err: context.DeadlineExceeded}, "API002"},
		{"upstream status", &UpstreamError{Status: 500, Detail: "Conversion failed"}, "API003"},
		{"upstream unreachable", &UpstreamError{Err: errors.New("dial tcp: connection refused")}, "API001"},
		{"file too large", errors.New("http: request body too large"), "FILE001"},
		{"no file", errors.New("no file provided"), "FILE002"},
		{"busy", ErrTooManyConversions, "BUSY001"},
		{"unknown", errors.New("something odd"), "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if tt.err != nil && got.Message == "" {
				t.Error("MapError() returned empty message")
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	got := FormatUserError(&EncodingError{Encoding: "utf-8", Offset: -1})
	want := "Error reading file. Please check the encoding setting. (Code: ENC001). Choose the encoding the file was saved with"
	if got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}
	if FormatUserError(nil) != "" {
		t.Error("FormatUserError(nil) should be empty")
	}
}
