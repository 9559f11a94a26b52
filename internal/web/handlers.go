package web

import (
	"fmt"
	"net/http"

	"github.com/JonMunkholm/csv2json/internal/client"
	"github.com/JonMunkholm/csv2json/internal/core"
	"github.com/JonMunkholm/csv2json/internal/logging"
	"github.com/JonMunkholm/csv2json/internal/web/templates"
)

// handleIndex renders the empty conversion form.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, templates.ConverterPage(s.pageParams(w, r)))
}

// handleConvert validates the upload, decodes it, has the API convert it
// and renders the formatted result.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params := s.pageParams(w, r)

	form, fieldErrs, err := s.parseConversionForm(w, r)
	if err != nil {
		s.respondError(w, r, err, params)
		return
	}
	form.values.CSRFToken = params.Form.CSRFToken
	params.Form = form.values

	if fe := s.checkCSRF(r); fe != nil {
		fieldErrs = append([]FieldError{*fe}, fieldErrs...)
	}
	if len(fieldErrs) > 0 {
		for _, fe := range fieldErrs {
			params.Notices = append(params.Notices, templates.Notice{
				Category: templates.NoticeError,
				Message:  fe.String(),
			})
		}
		logging.FromContext(ctx).Info("form rejected", "errors", len(fieldErrs))
		s.render(w, r, http.StatusBadRequest, templates.ConverterPage(params))
		return
	}

	logger := logging.WithFields(ctx,
		"filename", form.filename,
		"size", len(form.data),
		"encoding", form.encoding.Name,
	)

	text, err := core.Decode(form.data, form.encoding)
	if err != nil {
		s.respondError(w, r, err, params)
		return
	}

	v := form.values
	result, err := s.converter.Convert(ctx, core.NewConversionRequest(text, v.Delimiter, v.QuoteChar, v.HasHeader, v.Encoding))
	if err != nil {
		s.respondError(w, r, err, params)
		return
	}

	pretty, err := client.PrettyJSON(result.JSONData)
	if err != nil {
		s.respondError(w, r, &core.UpstreamError{Status: http.StatusOK, Detail: "malformed json_data", Err: err}, params)
		return
	}

	logger.Info("csv converted", "rows", result.RowCount, "columns", result.ColumnCount)

	params.Notices = append(params.Notices, templates.Notice{
		Category: templates.NoticeSuccess,
		Message: fmt.Sprintf("Successfully converted CSV! %d rows, %d columns.",
			result.RowCount, result.ColumnCount),
	})
	params.Result = &templates.ConversionView{
		RowCount:    result.RowCount,
		ColumnCount: result.ColumnCount,
		JSON:        pretty,
	}
	s.render(w, r, http.StatusOK, templates.ConverterPage(params))
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// handleNotFound renders a not-found page.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound,
		templates.ErrorPage(s.cfg.App.Name, "Page not found", "Check the address or go back to the converter", ""))
}

// pageParams returns the converter page with the default form and a CSRF
// token.
func (s *Server) pageParams(w http.ResponseWriter, r *http.Request) templates.ConverterParams {
	form := defaultForm()
	form.CSRFToken = s.csrfToken(w, r)
	return templates.ConverterParams{
		AppName:     s.cfg.App.Name,
		Form:        form,
		Choices:     formChoices,
		MaxFileSize: s.cfg.Upload.MaxFileSize,
	}
}
