package app

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/pabot/internal/metrics"
	"github.com/deusflow/pabot/internal/ratelimit"
)

func TestMonitoringEndpoints(t *testing.T) {
	metrics.Global.Inc(metrics.DigestBuilt)
	metrics.Global.SetLastRun()

	srv := httptest.NewServer(MonitoringHandler(nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health["status"])

	resp2, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp2.Body.Close()
	body, err := io.ReadAll(resp2.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `pabot_events_total{event="digest_built"}`)

	resp3, err := http.Get(srv.URL + "/stats")
	require.NoError(t, err)
	defer resp3.Body.Close()
	var stats map[string]interface{}
	require.NoError(t, json.NewDecoder(resp3.Body).Decode(&stats))
	assert.Contains(t, stats, "digest_runs")
	assert.Equal(t, float64(-1), stats["ai_requests_remaining"])
}

func TestStatsReportsRemainingBudget(t *testing.T) {
	budget := ratelimit.NewBudget("gemini", 5, time.Hour)
	require.NoError(t, budget.Use())
	require.NoError(t, budget.Use())

	rec := httptest.NewRecorder()
	MonitoringHandler(budget).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var stats map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, float64(3), stats["ai_requests_remaining"])
}

func TestHealthReportsErrors(t *testing.T) {
	metrics.Global.SetError("sheets: quota exceeded")
	defer metrics.Global.SetLastRun()

	rec := httptest.NewRecorder()
	healthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "quota exceeded")
}
