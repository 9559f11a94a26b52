package web

// errors.go turns failures of a form submission into notices.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err, params)
//  3. noticeFor picks the status and the notice text for the error kind
//  4. Technical error + code is logged with request ID for correlation
//  5. The form is rendered again with the notice above it

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/csv2json/internal/core"
	"github.com/JonMunkholm/csv2json/internal/logging"
	"github.com/JonMunkholm/csv2json/internal/web/templates"
)

// encodingNotice is shown whenever the upload does not decode with the
// selected encoding.
const encodingNotice = "Error reading file. Please check the encoding setting."

// respondError re-renders the form in params with a notice for err.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, params templates.ConverterParams) {
	status, notice := noticeFor(err)

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logging.FromContext(r.Context()).Log(r.Context(), level, "conversion error",
		"status", status,
		"error", err.Error(),
		"code", core.MapError(err).Code,
	)

	params.Notices = append(params.Notices, templates.Notice{
		Category: templates.NoticeError,
		Message:  notice,
	})
	s.render(w, r, status, templates.ConverterPage(params))
}

// noticeFor maps an error to the response status and the notice text.
// Unknown errors get the generic catalogue message so internals are only
// ever logged.
func noticeFor(err error) (int, string) {
	var (
		encErr *core.EncodingError
		upErr  *core.UpstreamError
	)

	switch {
	case errors.As(err, &encErr):
		return http.StatusUnprocessableEntity, encodingNotice
	case errors.As(err, &upErr):
		status := http.StatusBadGateway
		if upErr.Timeout {
			status = http.StatusGatewayTimeout
		}
		return status, "API Error: " + upErr.Error()
	case errors.Is(err, errFormTooLarge):
		return http.StatusRequestEntityTooLarge, core.FormatUserError(err)
	case errors.Is(err, errInvalidForm):
		return http.StatusBadRequest, "Error: the form could not be read. Please submit it again."
	}
	return http.StatusInternalServerError, "Error: " + core.FormatUserError(err)
}

// render writes component with the given status.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render failed", "error", err)
	}
}
