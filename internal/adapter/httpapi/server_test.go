package httpapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapfolk/language-atlas/internal/adapter/httpapi"
	"github.com/mapfolk/language-atlas/internal/domain"
	"github.com/mapfolk/language-atlas/internal/observability"
)

type stubProvider struct {
	snapshot *domain.Snapshot
}

func (p *stubProvider) Snapshot() *domain.Snapshot { return p.snapshot }

type stubReadiness struct {
	err error
}

func (r *stubReadiness) CheckReadiness(_ context.Context) error { return r.err }

func newTestServer(snapshot *domain.Snapshot, readyErr error) *httpapi.Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return httpapi.NewServer(":0",
		&stubProvider{snapshot: snapshot},
		&stubReadiness{err: readyErr},
		observability.NewMetricsForTesting(),
		16,
		logger,
	)
}

func doGet(t *testing.T, srv *httpapi.Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := doGet(t, newTestServer(nil, nil), "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := doGet(t, newTestServer(nil, nil), "/readyz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := doGet(t, newTestServer(nil, errors.New("dataset has not been loaded yet")), "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "dataset has not been loaded yet", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	rec := doGet(t, newTestServer(nil, nil), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestAPIBeforeLoadReturnsPlaceholder(t *testing.T) {
	srv := newTestServer(nil, errors.New("not ready"))

	for _, path := range []string{
		"/api/atlas",
		"/api/languages",
		"/api/languages/coverage",
		"/api/states/California",
		"/api/states/California/shares",
		"/api/nationwide",
		"/api/quartiles",
		"/api/proficiency",
	} {
		rec := doGet(t, srv, path)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, "path %s", path)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), "path %s", path)
		assert.Equal(t, "no data available", body["status"], "path %s", path)
	}
}
