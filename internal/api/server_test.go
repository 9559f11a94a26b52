package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/csv2json/internal/config"
	"github.com/JonMunkholm/csv2json/internal/core"
)

func testConfig() *config.Config {
	return &config.Config{
		API: config.APIConfig{
			Port:           5000,
			MaxConcurrent:  2,
			MaxWaitTime:    20 * time.Millisecond,
			MetricsEnabled: true,
		},
		Server: config.ServerConfig{
			ShutdownTimeout: time.Second,
			RequestTimeout:  5 * time.Second,
		},
		Upload:   config.UploadConfig{MaxFileSize: 1 << 20},
		Security: config.SecurityConfig{EnableCSP: true},
	}
}

type convertResponse struct {
	JSONData    json.RawMessage `json:"json_data"`
	RowCount    int             `json:"row_count"`
	ColumnCount int             `json:"column_count"`
}

func post(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, ConvertPath, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), "body: %s", rec.Body.String())
	return body.Detail
}

func TestConvert_Success(t *testing.T) {
	s := NewServer(testConfig())

	rec := post(t, s, `{"csv_content":"name,age\nAnn,30\nBob,25","delimiter":",","quotechar":"\"","has_header":true,"encoding":"utf-8"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	_, err := uuid.Parse(rec.Header().Get(ConversionIDHeader))
	assert.NoError(t, err, "conversion id should be a uuid")

	var resp convertResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.RowCount)
	assert.Equal(t, 2, resp.ColumnCount)
	assert.Equal(t, `[{"name":"Ann","age":"30"},{"name":"Bob","age":"25"}]`, string(resp.JSONData))
}

func TestConvert_Defaults(t *testing.T) {
	s := NewServer(testConfig())

	rec := post(t, s, `{"csv_content":"a,b\n\"x,y\",z"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp convertResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, `[{"a":"x,y","b":"z"}]`, string(resp.JSONData))
}

func TestConvert_Options(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			"no header",
			`{"csv_content":"a;b\n1;2","delimiter":";","has_header":false}`,
			`[{"column_1":"a","column_2":"b"},{"column_1":"1","column_2":"2"}]`,
		},
		{
			"no quoting",
			`{"csv_content":"\"a\",b","quotechar":"","has_header":false}`,
			`[{"column_1":"\"a\"","column_2":"b"}]`,
		},
		{
			"single quote",
			`{"csv_content":"'a,b',c","quotechar":"'","has_header":false}`,
			`[{"column_1":"a,b","column_2":"c"}]`,
		},
		{
			"empty content",
			`{"csv_content":""}`,
			`[]`,
		},
	}

	s := NewServer(testConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, s, tt.body)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var resp convertResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.want, string(resp.JSONData))
		})
	}
}

func TestConvert_ClientErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantDetail string
	}{
		{"malformed json", `{"csv_content":`, http.StatusUnprocessableEntity, "malformed JSON"},
		{"wrong type", `{"csv_content":42}`, http.StatusUnprocessableEntity, "malformed JSON"},
		{"missing content", `{"delimiter":","}`, http.StatusUnprocessableEntity, "csv_content is required"},
		{"long delimiter", `{"csv_content":"a","delimiter":"ab"}`, http.StatusUnprocessableEntity, "delimiter"},
		{"empty delimiter", `{"csv_content":"a,b\n1,2","delimiter":""}`, http.StatusUnprocessableEntity, "delimiter"},
		{"long quote", `{"csv_content":"a","quotechar":"ab"}`, http.StatusUnprocessableEntity, "quotechar"},
		{"quote equals delimiter", `{"csv_content":"a","delimiter":";","quotechar":";"}`, http.StatusUnprocessableEntity, "quotechar"},
		{"unknown encoding", `{"csv_content":"a","encoding":"ebcdic"}`, http.StatusUnprocessableEntity, "encoding"},
		{"unterminated quote", `{"csv_content":"a\n\"open"}`, http.StatusBadRequest, "CSV parsing error:"},
		{"text after quote", `{"csv_content":"a\n\"x\"y"}`, http.StatusBadRequest, "CSV parsing error:"},
	}

	s := NewServer(testConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, s, tt.body)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantDetail != "" {
				assert.Contains(t, detail(t, rec), tt.wantDetail)
			}
			assert.NotEmpty(t, rec.Header().Get(ConversionIDHeader))
		})
	}
}

func TestConvert_TooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.Upload.MaxFileSize = 16
	s := NewServer(cfg)

	rec := post(t, s, `{"csv_content":"`+strings.Repeat("a", 64)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, detailTooLarge, detail(t, rec))

	rec = post(t, s, `{"csv_content":"`+strings.Repeat("a", 1<<17)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestConvert_EscapedContentWithinLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Upload.MaxFileSize = 4096
	s := NewServer(cfg)

	// json.Marshal writes each '<' as \u003c, six bytes per content byte.
	content := "a\n" + strings.Repeat("<", int(cfg.Upload.MaxFileSize)-2)
	body, err := json.Marshal(core.NewConversionRequest(content, ",", `"`, true, "utf-8"))
	require.NoError(t, err)
	require.Greater(t, len(body), 5*int(cfg.Upload.MaxFileSize))

	rec := post(t, s, string(body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		RowCount int `json:"row_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.RowCount)
}

func TestConvert_Busy(t *testing.T) {
	cfg := testConfig()
	cfg.API.MaxConcurrent = 1
	s := NewServer(cfg)

	require.NoError(t, s.limiter.Acquire(context.Background()))
	defer s.limiter.Release()

	rec := post(t, s, `{"csv_content":"a\n1"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, detail(t, rec), "too many concurrent")
}

func TestConvert_ReleasesSlot(t *testing.T) {
	s := NewServer(testConfig())

	post(t, s, `{"csv_content":"a\n1"}`)
	post(t, s, `{"csv_content":"a\n\"bad"}`)

	assert.Equal(t, 0, s.limiter.ActiveCount())
}

func TestConvert_MethodNotAllowed(t *testing.T) {
	s := NewServer(testConfig())

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, ConvertPath, nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "Method Not Allowed", detail(t, rec))
}

func TestNotFound(t *testing.T) {
	s := NewServer(testConfig())

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", detail(t, rec))
}

func TestHealth(t *testing.T) {
	s := NewServer(testConfig())

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status  string `json:"status"`
		Limiter struct {
			MaxConcurrent int `json:"max_concurrent"`
		} `json:"limiter"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, 2, body.Limiter.MaxConcurrent)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestMetrics(t *testing.T) {
	s := NewServer(testConfig())
	post(t, s, `{"csv_content":"a\n1\n2"}`)
	post(t, s, `{"delimiter":","}`)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	out := string(body)
	assert.Contains(t, out, `csv2json_conversions_total{outcome="success"} 1`)
	assert.Contains(t, out, `csv2json_conversions_total{outcome="invalid"} 1`)
	assert.Contains(t, out, "csv2json_rows_converted_total 2")
	assert.Contains(t, out, "csv2json_conversion_duration_seconds_count 1")
	assert.Contains(t, out, "csv2json_conversions_in_flight 0")
}

func TestMetrics_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.API.MetricsEnabled = false
	s := NewServer(cfg)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
