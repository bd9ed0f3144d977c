package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"trade-brain/src/logger"
	"trade-brain/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func newTestMonitor(t *testing.T) *MonitorServer {
	t.Helper()

	cfg := testConfig()
	cfg.LogLevel = "ERROR"
	cfg.Monitor = models.MMonitorConfig{
		Enabled:   true,
		Host:      "127.0.0.1",
		Port:      0,
		MarketMIC: "xnys",
	}

	return NewMonitorServer(cfg, logger.NewLogger("ERROR", "test"))
}

func getJSON(t *testing.T, s *MonitorServer, path string) map[string]interface{} {
	t.Helper()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	s.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// -----------------------------------------------------------------------------

func TestMonitorHealth(t *testing.T) {
	s := newTestMonitor(t)

	body := getJSON(t, s, "/api/health")
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(0), body["connections"])
	assert.Contains(t, body, "market_open")
	assert.Contains(t, body, "uptime_seconds")
}

// -----------------------------------------------------------------------------

func TestMonitorConfigEndpoint(t *testing.T) {
	s := newTestMonitor(t)

	body := getJSON(t, s, "/api/config")
	assert.Equal(t, float64(3), body["input_window"])
	assert.Equal(t, float64(2), body["predict_horizon"])
	assert.Equal(t, float64(1), body["predict_stride"])
	assert.Equal(t, float64(2), body["output_steps"])
	assert.Equal(t, false, body["time_features"])
}

// -----------------------------------------------------------------------------

func TestMonitorMetricsReflectHubUpdates(t *testing.T) {
	s := newTestMonitor(t)

	// Before any update the INITIAL snapshot is served
	body := getJSON(t, s, "/api/metrics")
	assert.Equal(t, "INITIAL", body["type"])
	assert.Equal(t, float64(3), body["window_capacity"])

	go s.runHub()
	s.Publish(models.MMonitorState{
		TicksStored:    1200,
		TicksIngested:  300,
		WindowFill:     2,
		WindowCapacity: 3,
		ModelReady:     true,
		Timestamp:      1721000000,
	})

	assert.Eventually(t, func() bool {
		body := getJSON(t, s, "/api/metrics")
		return body["type"] == "UPDATE" && body["ticks_stored"] == float64(1200)
	}, 2*time.Second, 10*time.Millisecond)
}
