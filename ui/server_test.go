package ui

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aivaceo/adapters/memory"
	"aivaceo/app"
	"aivaceo/domain/dataset"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	server  *Server
	service *app.ScanService
	id      string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	service := app.NewScanService(memory.NewSnapshotStore(0), app.DefaultServiceConfig())
	day := func(d int) time.Time { return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC) }
	ds := dataset.MustNew(
		dataset.NewNumeric("age", []float64{20, 21, 22, 23, 1000}),
		dataset.NewNumeric("score", []float64{1, 2, 3, 4, 5}),
		dataset.NewText("city", []string{"Oslo", "Oslo", "Rome", "Rome", "Lima"}),
		dataset.NewDatetime("joined", []time.Time{day(1), day(2), day(3), day(4), day(5)}),
	)
	snap, err := service.Register(context.Background(), "people", dataset.SourceUpload, "", ds)
	require.NoError(t, err)
	return &fixture{server: NewServer(service), service: service, id: snap.ID.String()}
}

func (f *fixture) register(t *testing.T, ds *dataset.Dataset) string {
	t.Helper()
	snap, err := f.service.Register(context.Background(), "extra", dataset.SourceUpload, "", ds)
	require.NoError(t, err)
	return snap.ID.String()
}

func (f *fixture) do(method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	f.server.Router().ServeHTTP(rec, req)
	return rec
}

func (f *fixture) get(path string) *httptest.ResponseRecorder {
	return f.do(http.MethodGet, path, nil, "")
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	rec := f.get("/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(1), body["datasets"])
}

func TestListAndGetDataset(t *testing.T) {
	f := newFixture(t)

	rec := f.get("/api/datasets")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode(t, rec)["count"])

	rec = f.get("/api/datasets/" + f.id)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "people", body["name"])
	assert.Equal(t, float64(5), body["rows"])

	rec = f.get("/api/datasets/missing-id")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decode(t, rec)["code"])
}

func TestUploadCSV(t *testing.T) {
	f := newFixture(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "sales.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("region,amount\nnorth,10\nsouth,20\neast,30\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	rec := f.do(http.MethodPost, "/api/datasets", &buf, mw.FormDataContentType())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "sales.csv", body["name"])
	assert.Equal(t, float64(3), body["rows"])
	assert.Equal(t, "numeric", body["dtypes"].(map[string]interface{})["amount"])

	rec = f.get("/api/datasets")
	assert.Equal(t, float64(2), decode(t, rec)["count"])
}

func TestUploadWithoutFile(t *testing.T) {
	f := newFixture(t)
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("sheet", "Sheet1"))
	require.NoError(t, mw.Close())

	rec := f.do(http.MethodPost, "/api/datasets", &buf, mw.FormDataContentType())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoadRecords(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"sku":"A1","qty":3},{"sku":"B2","qty":5},{"sku":"C3","qty":null}]}`))
	}))
	defer upstream.Close()

	f := newFixture(t)
	payload := `{"name":"inventory","url":"` + upstream.URL + `","data_path":"data"}`
	rec := f.do(http.MethodPost, "/api/datasets/records", bytes.NewBufferString(payload), "application/json")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "inventory", body["name"])
	assert.Equal(t, float64(3), body["rows"])

	rec = f.do(http.MethodPost, "/api/datasets/records", bytes.NewBufferString(`{"name":"x"}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode(t, rec)["code"])
}

func TestUploadOverLimit(t *testing.T) {
	f := newFixture(t)
	f.server = NewServer(f.service, WithMaxUpload(512))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "big.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("n\n" + strings.Repeat("12345\n", 400)))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	rec := f.do(http.MethodPost, "/api/datasets", &buf, mw.FormDataContentType())
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "TOO_LARGE", body["code"])
	assert.Contains(t, body["error"], "512 bytes")
	assert.NotContains(t, body["error"], "multipart field")
}

func TestPanicBecomesInternalError(t *testing.T) {
	f := newFixture(t)
	f.server.Router().GET("/boom", func(c *gin.Context) { panic("broken chart") })

	rec := f.get("/boom")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "INTERNAL_ERROR", body["code"])
	assert.Equal(t, "Internal server error", body["error"])
}

func TestDeleteDataset(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodDelete, "/api/datasets/"+f.id, nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.get("/api/datasets/" + f.id)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRefreshNonFileDataset(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPost, "/api/datasets/"+f.id+"/refresh", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOverviewAndColumns(t *testing.T) {
	f := newFixture(t)

	rec := f.get("/api/datasets/" + f.id + "/overview")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(5), body["rows"])
	assert.Equal(t, float64(100), body["data_quality_score"])

	rec = f.get("/api/datasets/" + f.id + "/columns")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(4), decode(t, rec)["count"])

	rec = f.get("/api/datasets/" + f.id + "/columns/age")
	require.Equal(t, http.StatusOK, rec.Code)
	numeric := decode(t, rec)["numeric"].(map[string]interface{})
	assert.Equal(t, float64(1), numeric["outliers"].(map[string]interface{})["count"])

	rec = f.get("/api/datasets/" + f.id + "/columns/height")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "COLUMN_NOT_FOUND", decode(t, rec)["code"])
}

func TestEmptyDatasetIsUnprocessable(t *testing.T) {
	f := newFixture(t)
	id := f.register(t, dataset.MustNew())

	rec := f.get("/api/datasets/" + id + "/overview")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "EMPTY_DATASET", decode(t, rec)["code"])

	rec = f.get("/api/datasets/" + id + "/insights")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode(t, rec)["count"])
}

func TestCorrelations(t *testing.T) {
	f := newFixture(t)

	rec := f.get("/api/datasets/" + f.id + "/correlations?threshold=0")
	require.Equal(t, http.StatusOK, rec.Code)
	pairs := decode(t, rec)["strong_correlations"].([]interface{})
	assert.Len(t, pairs, 1)

	rec = f.get("/api/datasets/" + f.id + "/correlations?threshold=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.get("/api/datasets/" + f.id + "/correlations?threshold=1.5")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	textOnly := f.register(t, dataset.MustNew(dataset.NewText("name", []string{"a", "b"})))
	rec = f.get("/api/datasets/" + textOnly + "/correlations")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "INSUFFICIENT_DATA", decode(t, rec)["code"])
}

func TestPatternsAndInsights(t *testing.T) {
	f := newFixture(t)

	rec := f.get("/api/datasets/" + f.id + "/patterns")
	require.Equal(t, http.StatusOK, rec.Code)
	dups := decode(t, rec)["duplicate_patterns"].(map[string]interface{})
	assert.Contains(t, dups["potential_id_columns"], "age")

	rec = f.get("/api/datasets/" + f.id + "/insights")
	require.Equal(t, http.StatusOK, rec.Code)
	count := decode(t, rec)["count"].(float64)
	assert.LessOrEqual(t, count, float64(10))
}

func TestReportFormats(t *testing.T) {
	f := newFixture(t)
	base := "/api/datasets/" + f.id + "/report"

	rec := f.get(base)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "people", decode(t, rec)["name"])

	rec = f.get(base + "?format=md")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/markdown")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "# Data Scan Report: people"))

	rec = f.get(base + "?format=html")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "<html")

	rec = f.get(base + "?format=pdf")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestColumnChartFormats(t *testing.T) {
	f := newFixture(t)
	base := "/api/datasets/" + f.id + "/charts/column/age"

	rec := f.get(base)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "histogram", decode(t, rec)["kind"])

	rec = f.get(base + "?type=box")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "box", decode(t, rec)["kind"])

	rec = f.get(base + "?format=svg")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<svg")

	rec = f.get(base + "?format=png&width=400&height=300")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	rec = f.get(base + "?format=png&width=-1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.get(base + "?format=gif")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.get(base + "?type=radar")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.get("/api/datasets/" + f.id + "/charts/column/height")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestColumnAnalysisCharts(t *testing.T) {
	f := newFixture(t)
	base := "/api/datasets/" + f.id + "/charts/column/age/analysis"

	rec := f.get(base)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Contains(t, body, "distribution")
	assert.Contains(t, body, "boxplot")

	rec = f.get(base + "?part=boxplot&format=svg")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<svg")

	rec = f.get(base + "?part=pie_chart")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChartGroups(t *testing.T) {
	f := newFixture(t)
	base := "/api/datasets/" + f.id + "/charts/"

	rec := f.get(base + "overview")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Contains(t, body, "data_types")
	assert.NotContains(t, body, "missing_data")

	rec = f.get(base + "overview?format=svg")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.get(base + "overview?format=svg&part=data_types")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<svg")

	rec = f.get(base + "overview?part=missing_data")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.get(base + "analytics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode(t, rec), "data_quality")

	rec = f.get(base + "dashboard")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode(t, rec), "data_shape")

	for _, path := range []string{"correlation", "quality", "shape"} {
		rec = f.get(base + path)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestOverviewDistributionParts(t *testing.T) {
	f := newFixture(t)
	id := f.register(t, dataset.MustNew(
		dataset.NewNumeric("metrics", []float64{1, 2, 3, 4}),
		dataset.NewNumeric("data_types", []float64{4, 3, 2, 1}),
	))
	base := "/api/datasets/" + id + "/charts/overview?part="

	rec := f.get(base + "metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Dataset Metrics", decode(t, rec)["title"], "fixed parts are not shadowed by columns")

	rec = f.get(base + "distribution:metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "histogram", decode(t, rec)["kind"])

	rec = f.get(base + "distribution:data_types&format=svg")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<svg")

	rec = f.get(base + "distribution:missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCorrelationChartNeedsTwoNumericColumns(t *testing.T) {
	f := newFixture(t)
	id := f.register(t, dataset.MustNew(dataset.NewText("name", []string{"a", "b"})))
	rec := f.get("/api/datasets/" + id + "/charts/correlation")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCompareCharts(t *testing.T) {
	f := newFixture(t)
	base := "/api/datasets/" + f.id + "/charts/compare"

	rec := f.get(base + "?x=age&y=score")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "scatter", body["kind"])
	assert.Contains(t, body, "trend")

	rec = f.get(base + "?x=city&y=score")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "box", decode(t, rec)["kind"])

	rec = f.get(base + "?x=age")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.get(base + "?x=age&y=height")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.get(base + "?x=age&y=score&type=bubble")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTimeSeriesAndMultiCharts(t *testing.T) {
	f := newFixture(t)
	base := "/api/datasets/" + f.id + "/charts/"

	rec := f.get(base + "timeseries?date=joined&value=score")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "line", decode(t, rec)["kind"])

	rec = f.get(base + "multi?columns=age,score&type=bar")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "bar", decode(t, rec)["kind"])

	rec = f.get(base + "multi?columns=age")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
