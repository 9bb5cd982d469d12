package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/painel-admin-api/internal/models"
	"github.com/noah-isme/painel-admin-api/internal/service"
)

func newMetricsRouter(h *MetricsHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
	r.GET("/metrics", h.Prometheus)
	r.GET("/metrics/snapshot", h.Snapshot)
	return r
}

func TestMetricsHandlerReady(t *testing.T) {
	h := NewMetricsHandler(nil,
		ReadinessCheck{Name: "redis", Check: func(context.Context) error { return nil }},
		ReadinessCheck{Name: "postgres", Check: func(context.Context) error { return errors.New("connection refused") }},
	)
	r := newMetricsRouter(h)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"degraded","checks":{"redis":"ok","postgres":"connection refused"}}`, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsHandlerWithoutService(t *testing.T) {
	r := newMetricsRouter(NewMetricsHandler(nil))

	for _, target := range []string{"/metrics", "/metrics/snapshot"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, target)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsHandlerSnapshotAndPrometheus(t *testing.T) {
	metrics := service.NewMetricsService()
	metrics.ObserveUpstreamCall("alunos", "ok", 0)
	r := newMetricsRouter(NewMetricsHandler(metrics))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics/snapshot", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var snapshot models.SystemMetrics
	require.NoError(t, jsonData(rec, &snapshot))
	assert.Equal(t, uint64(1), snapshot.UpstreamCalls)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `upstream_requests_total{endpoint="alunos",outcome="ok"} 1`)
}
