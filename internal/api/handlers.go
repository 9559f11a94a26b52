package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/csv2json/internal/core"
	"github.com/JonMunkholm/csv2json/internal/logging"
)

// ConversionIDHeader carries the ID assigned to each conversion request.
const ConversionIDHeader = "X-Conversion-ID"

// handleHealth reports liveness and limiter usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"limiter": s.limiter.Status(),
	})
}

// handleConvert parses the CSV content of a JSON request and returns the
// rows as JSON objects.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	conversionID := uuid.NewString()
	w.Header().Set(ConversionIDHeader, conversionID)
	logger := logging.WithFields(r.Context(), "conversion_id", conversionID)

	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodySize())
	req, err := s.decodeRequest(r.Body)
	if err != nil {
		s.metrics.observe(respondError(w, r, err))
		return
	}

	d, err := req.Dialect()
	if err != nil {
		s.metrics.observe(respondError(w, r, err))
		return
	}

	if err := s.limiter.Acquire(r.Context()); err != nil {
		s.metrics.observe(respondError(w, r, err))
		return
	}
	defer s.limiter.Release()

	s.metrics.inputBytes.Observe(float64(len(*req.Content)))
	start := time.Now()
	result, err := core.ConvertString(*req.Content, d)
	s.metrics.duration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.observe(respondError(w, r, err))
		return
	}

	s.metrics.observe(outcomeSuccess)
	s.metrics.rows.Add(float64(result.RowCount))
	logger.Debug("conversion completed",
		"rows", result.RowCount,
		"columns", result.ColumnCount,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	writeJSON(w, http.StatusOK, result)
}

// decodeRequest reads one JSON request from body. Size violations come back
// as *http.MaxBytesError, everything else the caller sent wrong as a
// *core.ValidationError.
func (s *Server) decodeRequest(body io.Reader) (*core.ConversionRequest, error) {
	var req core.ConversionRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var sizeErr *http.MaxBytesError
		if errors.As(err, &sizeErr) {
			return nil, err
		}
		return nil, &core.ValidationError{Message: fmt.Sprintf("malformed JSON body: %v", err)}
	}
	if req.Content == nil {
		return nil, &core.ValidationError{Message: "csv_content is required"}
	}
	if limit := s.cfg.Upload.MaxFileSize; int64(len(*req.Content)) > limit {
		return nil, &http.MaxBytesError{Limit: limit}
	}
	return &req, nil
}
