package models

import "time"

// SystemMetrics is a lightweight snapshot of in-process instrumentation.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	UpstreamCalls            uint64    `json:"upstream_calls"`
	UpstreamFailures         uint64    `json:"upstream_failures"`
	AverageUpstreamMs        float64   `json:"average_upstream_duration_ms"`
	StoreOperations          uint64    `json:"store_operations"`
	StoreFailures            uint64    `json:"store_failures"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
