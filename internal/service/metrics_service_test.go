package service

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServiceSnapshot(t *testing.T) {
	m := NewMetricsService()

	m.ObserveHTTPRequest("GET", "/api/v1/dashboard/plataforma", 200, 20*time.Millisecond)
	m.ObserveHTTPRequest("GET", "/api/v1/dashboard/plataforma", 502, 40*time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)
	m.ObserveUpstreamCall("alunos", "ok", 10*time.Millisecond)
	m.ObserveUpstreamCall("usuarios", "403", 30*time.Millisecond)
	m.ObserveStoreOperation("get", nil, time.Millisecond)
	m.ObserveStoreOperation("set", errors.New("down"), time.Millisecond)

	snapshot := m.Snapshot()
	assert.Equal(t, uint64(2), snapshot.RequestsTotal)
	assert.InDelta(t, 30.0, snapshot.AverageRequestDurationMs, 0.001)
	assert.Equal(t, uint64(1), snapshot.CacheHits)
	assert.Equal(t, uint64(2), snapshot.CacheMisses)
	assert.InDelta(t, 1.0/3.0, snapshot.CacheHitRatio, 0.0001)
	assert.Equal(t, uint64(2), snapshot.UpstreamCalls)
	assert.Equal(t, uint64(1), snapshot.UpstreamFailures)
	assert.InDelta(t, 20.0, snapshot.AverageUpstreamMs, 0.001)
	assert.Equal(t, uint64(2), snapshot.StoreOperations)
	assert.Equal(t, uint64(1), snapshot.StoreFailures)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstreamTotal.WithLabelValues("usuarios", "403")))
	series, err := testutil.GatherAndCount(m.Registry(), "upstream_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, series)
}

func TestMetricsServiceNilReceiver(t *testing.T) {
	var m *MetricsService
	assert.NotPanics(t, func() {
		m.ObserveHTTPRequest("GET", "/", 200, time.Millisecond)
		m.ObserveUpstreamCall("alunos", "ok", time.Millisecond)
		m.ObserveStoreOperation("get", nil, time.Millisecond)
		m.RecordCacheOperation(true, time.Millisecond)
		m.ObserveCacheWrite(time.Millisecond)
	})
	assert.Equal(t, uint64(0), m.Snapshot().RequestsTotal)
}
