package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samcharles93/matcore/internal/report"
	"github.com/samcharles93/matcore/pkg/csvio"
)

func newTestEcho(t *testing.T) (*echo.Echo, *Server) {
	t.Helper()
	data := fstest.MapFS{
		"m.csv":          {Data: []byte("1,0,0\n0,2,0\n0,0,3\n0,0,0\n")},
		"hdr.csv":        {Data: []byte("a;b\n1;2\n")},
		"bad.csv":        {Data: []byte("1,2\n3\n")},
		"parts/part-0":   {Data: []byte("1,1\n")},
		"parts/part-1":   {Data: []byte("2,2\n")},
		"parts/_SUCCESS": {Data: []byte("")},
	}
	server := NewServer(Options{
		Data:      data,
		CSV:       csvio.DefaultProperties(),
		BlockRows: 2,
		BlockCols: 2,
		Store:     NewResultStore(2),
	})
	e := echo.New()
	server.Register(e)
	return e, server
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}

func errorType(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeBody[map[string]ResponseError](t, rec)
	return body["error"].Type
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, rec.Code, "body: %s", rec.Body.String())
}

func TestReadInfersSize(t *testing.T) {
	t.Parallel()

	e, _ := newTestEcho(t)
	rec := doJSON(t, e, http.MethodPost, "/v1/read", `{"path":"m.csv","block_rows":2,"block_cols":2}`)
	requireStatus(t, rec, http.StatusOK)
	assert.NotEmpty(t, rec.Header().Get(headerRequestID))

	rep := decodeBody[report.Report](t, rec)
	assert.Equal(t, 4, rep.Matrix.Rows)
	assert.Equal(t, 3, rep.Matrix.Cols)
	assert.Equal(t, int64(3), rep.Matrix.NonZeros)
	assert.Len(t, rep.Blocks, 4)
}

func TestReadFormatOverrideAndDirectory(t *testing.T) {
	t.Parallel()

	e, _ := newTestEcho(t)
	rec := doJSON(t, e, http.MethodPost, "/v1/read", `{"path":"hdr.csv","format":{"header":true,"delimiter":";"}}`)
	requireStatus(t, rec, http.StatusOK)
	rep := decodeBody[report.Report](t, rec)
	assert.Equal(t, 1, rep.Matrix.Rows)
	assert.Equal(t, 2, rep.Matrix.Cols)

	rec = doJSON(t, e, http.MethodPost, "/v1/read", `{"path":"parts"}`)
	requireStatus(t, rec, http.StatusOK)
	rep = decodeBody[report.Report](t, rec)
	assert.Equal(t, 2, rep.Matrix.Rows)
	assert.Equal(t, int64(4), rep.Matrix.NonZeros)
}

func TestReadErrors(t *testing.T) {
	t.Parallel()

	e, _ := newTestEcho(t)
	tests := []struct {
		body   string
		status int
		typ    string
	}{
		{`{"path":"missing.csv"}`, http.StatusNotFound, "not_found_error"},
		{`{"path":"bad.csv"}`, http.StatusBadRequest, "format_error"},
		{`{"path":"../etc/passwd"}`, http.StatusBadRequest, "invalid_request_error"},
		{`{"path":""}`, http.StatusBadRequest, "invalid_request_error"},
		{`{"path":"m.csv","format":{"delimiter":""}}`, http.StatusBadRequest, "invalid_request_error"},
		{`{"path":"m.csv","rows":2,"cols":3}`, http.StatusBadRequest, "format_error"},
		{`{"nope":1}`, http.StatusBadRequest, "invalid_request_error"},
	}
	for _, tc := range tests {
		rec := doJSON(t, e, http.MethodPost, "/v1/read", tc.body)
		if !assert.Equal(t, tc.status, rec.Code, "%s: body=%s", tc.body, rec.Body.String()) {
			continue
		}
		assert.Equal(t, tc.typ, errorType(t, rec), tc.body)
	}
}

func TestExecLifecycle(t *testing.T) {
	t.Parallel()

	e, server := newTestEcho(t)
	rec := doJSON(t, e, http.MethodPost, "/v1/exec",
		`{"path":"m.csv","instructions":["*,in,2.0,t","+,t,1,out"],"include_data":true}`)
	requireStatus(t, rec, http.StatusOK)
	res := decodeBody[ExecResult](t, rec)
	require.NotEmpty(t, res.ID)
	assert.Equal(t, res.ID, res.Report.RunID)
	want := "3,1,1\n1,5,1\n1,1,7\n1,1,1\n"
	assert.Equal(t, want, res.Data)
	assert.False(t, res.Report.Matrix.Sparse, "a fully populated result is dense")

	rec = doJSON(t, e, http.MethodGet, "/v1/results/"+res.ID+"/data", "")
	requireStatus(t, rec, http.StatusOK)
	assert.Equal(t, want, rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), "text/csv"))

	rec = doJSON(t, e, http.MethodGet, "/v1/results/"+res.ID, "")
	requireStatus(t, rec, http.StatusOK)
	got := decodeBody[ExecResult](t, rec)
	assert.Equal(t, res.ID, got.ID)
	assert.Empty(t, got.Data, "stored results do not carry data")

	rec = doJSON(t, e, http.MethodDelete, "/v1/results/"+res.ID, "")
	requireStatus(t, rec, http.StatusOK)
	rec = doJSON(t, e, http.MethodGet, "/v1/results/"+res.ID, "")
	requireStatus(t, rec, http.StatusNotFound)
	assert.Zero(t, server.store.Len())
}

func TestResultDataKeepsRequestFormat(t *testing.T) {
	t.Parallel()

	e, _ := newTestEcho(t)
	rec := doJSON(t, e, http.MethodPost, "/v1/exec",
		`{"path":"hdr.csv","format":{"header":true,"delimiter":";"},"instructions":["*,in,2,out"],"include_data":true}`)
	requireStatus(t, rec, http.StatusOK)
	res := decodeBody[ExecResult](t, rec)
	want := "C1;C2\n2;4\n"
	assert.Equal(t, want, res.Data)

	rec = doJSON(t, e, http.MethodGet, "/v1/results/"+res.ID+"/data", "")
	requireStatus(t, rec, http.StatusOK)
	assert.Equal(t, want, rec.Body.String())
}

func TestExecErrors(t *testing.T) {
	t.Parallel()

	e, _ := newTestEcho(t)
	tests := []struct {
		body   string
		status int
		typ    string
	}{
		{`{"path":"m.csv","instructions":[]}`, http.StatusBadRequest, "invalid_request_error"},
		{`{"path":"m.csv","instructions":["*,1,2,out"]}`, http.StatusBadRequest, "invalid_request_error"},
		{`{"path":"m.csv","instructions":["*,x,2,out"]}`, http.StatusUnprocessableEntity, "no_output_error"},
		{`{"path":"missing.csv","instructions":["*,in,2,out"]}`, http.StatusNotFound, "not_found_error"},
	}
	for _, tc := range tests {
		rec := doJSON(t, e, http.MethodPost, "/v1/exec", tc.body)
		if !assert.Equal(t, tc.status, rec.Code, "%s: body=%s", tc.body, rec.Body.String()) {
			continue
		}
		assert.Equal(t, tc.typ, errorType(t, rec), tc.body)
	}
}

func TestResultStoreEvictsOldest(t *testing.T) {
	t.Parallel()

	e, server := newTestEcho(t)
	var ids []string
	for range 3 {
		rec := doJSON(t, e, http.MethodPost, "/v1/exec", `{"path":"m.csv","instructions":["+,in,1,out"]}`)
		requireStatus(t, rec, http.StatusOK)
		ids = append(ids, decodeBody[ExecResult](t, rec).ID)
	}
	assert.Equal(t, 2, server.store.Len())
	_, _, ok := server.store.Get(ids[0])
	assert.False(t, ok, "oldest result is evicted")

	rec := doJSON(t, e, http.MethodGet, "/v1/results", "")
	list := decodeBody[struct {
		Data []report.Report `json:"data"`
	}](t, rec)
	require.Len(t, list.Data, 2)
	assert.Equal(t, ids[1], list.Data[0].RunID)
}

func TestRequestIDIsEchoed(t *testing.T) {
	t.Parallel()

	e, _ := newTestEcho(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/version", nil)
	req.Header.Set(headerRequestID, "abc")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	requireStatus(t, rec, http.StatusOK)
	assert.Equal(t, "abc", rec.Header().Get(headerRequestID))

	v := decodeBody[VersionResponse](t, rec)
	assert.NotEmpty(t, v.Version)
	assert.NotEmpty(t, v.GoVersion)
}
