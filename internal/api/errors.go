package api

// errors.go turns conversion failures into FastAPI-style {"detail": ...}
// bodies.
//
// Validation and parse problems are the caller's fault and their message is
// returned as-is. Anything else is logged with the request ID and answered
// with a fixed message so internals never leak to clients.

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/csv2json/internal/core"
	"github.com/JonMunkholm/csv2json/internal/logging"
)

// ErrorResponse is the JSON body of every non-2xx API response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

const (
	detailConversionFailed = "Conversion failed"
	detailTooLarge         = "Request body too large"
)

// respondError writes the response for err and returns the metrics outcome
// it corresponds to.
func respondError(w http.ResponseWriter, r *http.Request, err error) string {
	var (
		valErr   *core.ValidationError
		parseErr *core.ParseError
		sizeErr  *http.MaxBytesError
	)

	logger := logging.FromContext(r.Context())

	switch {
	case errors.As(err, &sizeErr):
		writeDetail(w, http.StatusRequestEntityTooLarge, detailTooLarge)
		return outcomeTooLarge
	case errors.As(err, &valErr):
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return outcomeInvalid
	case errors.As(err, &parseErr):
		writeDetail(w, http.StatusBadRequest, "CSV parsing error: "+parseErr.Error())
		return outcomeParseError
	case errors.Is(err, core.ErrTooManyConversions):
		w.Header().Set("Retry-After", "5")
		writeDetail(w, http.StatusServiceUnavailable, core.ErrTooManyConversions.Error())
		return outcomeBusy
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logger.Debug("request ended while waiting for a conversion slot", "error", err)
		writeDetail(w, http.StatusServiceUnavailable, "Request cancelled")
		return outcomeBusy
	}

	logger.Error("conversion failed",
		"error", err,
		"code", core.MapError(err).Code,
	)
	writeDetail(w, http.StatusInternalServerError, detailConversionFailed)
	return outcomeError
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, ErrorResponse{Detail: detail})
}

// writeJSON encodes v as JSON with the given status.
// Encoding errors are only logged since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
