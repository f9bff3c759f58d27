package health

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_SetAndGet(t *testing.T) {
	reg := New()
	reg.Set("scheduler", StatusDegraded, "bus timeout streak")

	rep, ok := reg.Get("scheduler")
	require.True(t, ok)
	assert.Equal(t, StatusDegraded, rep.Status)
	assert.Equal(t, "bus timeout streak", rep.Detail)
}

func TestRegistry_GetUnknownComponent(t *testing.T) {
	reg := New()
	_, ok := reg.Get("nonexistent")
	assert.False(t, ok)
}

func TestRegistry_AllReturnsEveryReport(t *testing.T) {
	reg := New()
	reg.Set("scheduler", StatusOK, "")
	reg.Set("fusion", StatusOK, "")
	assert.Len(t, reg.All(), 2)
}

func TestMetrics_ExposesMetricsEndpoint(t *testing.T) {
	reg := New()
	m := NewMetrics(reg.Registerer())
	m.ObserveQuerySuccess("engine_rpm")
	m.ObserveFusionEvent("hard_braking")
	m.ObserveAlertFired("overheating")
	m.SetRingBufferFill("diagnostics", 0.42)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	reg.Handler().ServeHTTP(rr, req)

	assert.Equal(t, 200, rr.Code)
	assert.Contains(t, rr.Body.String(), "telemetry_scheduler_query_success_total")
	assert.Contains(t, rr.Body.String(), "telemetry_ring_buffer_fill_ratio")
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "ok", StatusOK.String())
	assert.Equal(t, "degraded", StatusDegraded.String())
	assert.Equal(t, "down", StatusDown.String())
}
