package main

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer builds a fully wired API over a stubbed sampler probe so
// no handler ever touches the real OS.
func newTestServer() (*apiServer, *fiber.App) {
	cfg := DefaultConfig()
	cfg.Metrics.CPUWindow = 0

	store := NewCollectorStore(cfg.Metrics.MaxSamples, cfg.Logging.MaxEntries)
	samplerHB := &Heartbeat{}
	tailerHB := &Heartbeat{}
	stats := NewStatistics(store, samplerHB, tailerHB, cfg.SampleInterval(), cfg.PollInterval())

	sampler := NewMetricSampler(cfg, store, samplerHB, false)
	sampler.probe = func() (MetricSample, error) {
		return MetricSample{Timestamp: time.Now(), CPU: CPUStats{Percent: 55, Count: 8}, Processes: 99}, nil
	}

	srv := &apiServer{cfg: cfg, store: store, sampler: sampler, stats: stats, hub: NewHub(cfg.Stream.MaxClients)}
	return srv, newHTTPApp(srv)
}

func getJSON(t *testing.T, app *fiber.App, url string) (int, map[string]interface{}) {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest("GET", url, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	return resp.StatusCode, payload
}

func TestAPIRootListsEndpoints(t *testing.T) {
	_, app := newTestServer()

	status, payload := getJSON(t, app, "/")
	assert.Equal(t, 200, status)
	assert.Equal(t, "Log & Metrics Collector API", payload["name"])
	assert.Contains(t, payload["endpoints"], "GET /logs")
}

func TestAPIHealthReflectsHeartbeats(t *testing.T) {
	srv, app := newTestServer()

	status, payload := getJSON(t, app, "/health")
	assert.Equal(t, 200, status)
	assert.Equal(t, "healthy", payload["status"])

	components := payload["components"].(map[string]interface{})
	assert.Equal(t, false, components["metrics_collector"])
	assert.Equal(t, false, components["log_monitor"])

	srv.stats.samplerHB.Mark()
	srv.stats.tailerHB.Mark()

	_, payload = getJSON(t, app, "/health")
	components = payload["components"].(map[string]interface{})
	assert.Equal(t, true, components["metrics_collector"])
	assert.Equal(t, true, components["log_monitor"])
}

func TestAPIMetricsHistorical(t *testing.T) {
	srv, app := newTestServer()

	// Empty buffer is a valid non-error state.
	status, payload := getJSON(t, app, "/metrics")
	assert.Equal(t, 200, status)
	assert.Equal(t, float64(0), payload["count"])
	assert.Equal(t, "historical", payload["type"])

	for i := 0; i < 5; i++ {
		srv.store.PushMetric(MetricSample{Timestamp: time.Now(), CPU: CPUStats{Percent: float64(i)}})
	}

	status, payload = getJSON(t, app, "/metrics?limit=2")
	assert.Equal(t, 200, status)
	assert.Equal(t, float64(2), payload["count"])

	metrics := payload["metrics"].([]interface{})
	last := metrics[1].(map[string]interface{})["cpu"].(map[string]interface{})
	assert.Equal(t, float64(4), last["percent"])
}

func TestAPIMetricsCurrent(t *testing.T) {
	_, app := newTestServer()

	status, payload := getJSON(t, app, "/metrics?current=true")
	assert.Equal(t, 200, status)
	assert.Equal(t, "current", payload["type"])
	assert.Equal(t, float64(1), payload["count"])

	metrics := payload["metrics"].([]interface{})
	sample := metrics[0].(map[string]interface{})
	assert.Equal(t, float64(99), sample["processes"])
}

func TestAPILogsFilterAndLimit(t *testing.T) {
	srv, app := newTestServer()

	srv.store.PushLogEntry(testEntry("first error", LevelError))
	srv.store.PushLogEntry(testEntry("some info", LevelInfo))
	srv.store.PushLogEntry(testEntry("second error", LevelError))

	status, payload := getJSON(t, app, "/logs?level=ERROR&limit=1")
	assert.Equal(t, 200, status)
	assert.Equal(t, float64(1), payload["count"])

	logs := payload["logs"].([]interface{})
	entry := logs[0].(map[string]interface{})
	assert.Equal(t, "second error", entry["message"])
	assert.Equal(t, "ERROR", entry["level"])

	filter := payload["filter"].(map[string]interface{})
	assert.Equal(t, "ERROR", filter["level"])
	assert.Equal(t, float64(1), filter["limit"])
}

func TestAPILogStats(t *testing.T) {
	srv, app := newTestServer()

	srv.store.PushLogEntry(testEntry("boom error", LevelError))
	srv.store.PushLogEntry(testEntry("plain", LevelUnknown))

	status, payload := getJSON(t, app, "/logs/stats")
	assert.Equal(t, 200, status)

	statistics := payload["statistics"].(map[string]interface{})
	assert.Equal(t, float64(2), statistics["total_entries"])
	assert.Equal(t, float64(1), statistics["error_count"])
	assert.Equal(t, float64(1), statistics["unknown_count"])
}

func TestAPIStatus(t *testing.T) {
	srv, app := newTestServer()
	srv.store.PushMetric(MetricSample{Timestamp: time.Now()})

	status, payload := getJSON(t, app, "/status")
	assert.Equal(t, 200, status)
	assert.Equal(t, "running", payload["status"])

	components := payload["components"].(map[string]interface{})
	collector := components["metrics_collector"].(map[string]interface{})
	assert.Equal(t, float64(1), collector["samples_collected"])
	assert.Equal(t, float64(srv.cfg.Metrics.MaxSamples), collector["max_samples"])

	monitor := components["log_monitor"].(map[string]interface{})
	assert.Equal(t, float64(srv.cfg.Logging.MaxEntries), monitor["max_entries"])

	stream := payload["stream"].(map[string]interface{})
	assert.Equal(t, float64(0), stream["connected_clients"])
}

func TestAPIConfigEcho(t *testing.T) {
	srv, app := newTestServer()

	status, payload := getJSON(t, app, "/config")
	assert.Equal(t, 200, status)

	configuration := payload["configuration"].(map[string]interface{})
	metrics := configuration["metrics"].(map[string]interface{})
	assert.Equal(t, float64(srv.cfg.Metrics.CollectionInterval), metrics["collection_interval"])

	logging := configuration["logging"].(map[string]interface{})
	assert.Equal(t, ".log", logging["extension"])
}
