// Package core provides the CSV to JSON conversion logic.
//
// The package is independent of any transport: the API server, the upload
// front end and tests all use it directly.
//
// # Dialect
//
// A [ConversionRequest] carries the raw options sent over the wire. Calling
// [ConversionRequest.Dialect] applies defaults (comma, double quote, header
// row, UTF-8) and validates them, returning a [ValidationError] on failure.
//
// # Conversion
//
// [Convert] tokenizes CSV with a [Reader] and builds one [Row] per record:
//
//	d, err := req.Dialect()
//	if err != nil {
//	    return err
//	}
//	result, err := core.ConvertString(*req.Content, d)
//
// With a header row, short records are padded with "" and surplus fields are
// dropped. Without one, columns are named column_1, column_2, ...
//
// # Encodings
//
// Uploaded bytes are turned into text with [Decode] before conversion.
// utf-8, latin-1 and cp1252 are supported; see [LookupEncoding].
//
// # Error Handling
//
// Errors crossing component boundaries are typed: [ValidationError],
// [ParseError], [EncodingError] and [UpstreamError]. [MapError] turns any of
// them into a [UserMessage] with a support code.
package core
