// Package monitoring exposes Prometheus metrics for feature builds.
package monitoring

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Service name for metrics
	ServiceName = "mapfeatures"
)

var (
	// Pipeline metrics
	PipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mapfeatures_pipeline_runs_total",
			Help: "Total number of feature pipeline runs",
		},
		[]string{"status"},
	)

	PipelineDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mapfeatures_pipeline_duration_seconds",
			Help:    "Feature pipeline duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0, 120.0},
		},
	)

	// Zoom worker metrics
	ZoomBuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mapfeatures_zoom_build_duration_seconds",
			Help:    "Duration of a single zoom level build in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0},
		},
		[]string{"zoom"},
	)

	FeaturesBuilt = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mapfeatures_features_built_total",
			Help: "Total number of features built",
		},
		[]string{"zoom", "kind"},
	)

	RailwaysBuilt = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mapfeatures_railways_built_total",
			Help: "Total number of railway geometries built, including base railways",
		},
		[]string{"zoom"},
	)

	MixedAltitudeRailways = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mapfeatures_mixed_altitude_railways_total",
			Help: "Total number of railways split into underground and overground layers",
		},
		[]string{"zoom"},
	)

	// Cache metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mapfeatures_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mapfeatures_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mapfeatures_cache_size",
			Help: "Current number of items in cache",
		},
		[]string{"cache_type"},
	)

	// MCP request metrics
	MCPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mapfeatures_mcp_requests_total",
			Help: "Total number of MCP requests processed",
		},
		[]string{"tool", "status"},
	)

	// System metrics
	GoRoutines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mapfeatures_goroutines",
			Help: "Number of goroutines",
		},
	)

	MemoryUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mapfeatures_memory_bytes",
			Help: "Allocated heap memory in bytes",
		},
	)

	GCRuns = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mapfeatures_gc_runs",
			Help: "Number of completed GC cycles",
		},
	)

	SystemInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mapfeatures_build_info",
			Help: "Build information of the running binary",
		},
		[]string{"version", "go_version", "commit", "build_date"},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mapfeatures_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)
)

func status(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// Helper functions for common metric updates
func RecordPipelineRun(duration time.Duration, success bool) {
	PipelineRunsTotal.WithLabelValues(status(success)).Inc()
	PipelineDuration.Observe(duration.Seconds())
}

func RecordZoomBuild(zoom int, duration time.Duration, railways int) {
	z := strconv.Itoa(zoom)
	ZoomBuildDuration.WithLabelValues(z).Observe(duration.Seconds())
	RailwaysBuilt.WithLabelValues(z).Add(float64(railways))
}

func RecordFeatures(zoom int, kind string, count int) {
	FeaturesBuilt.WithLabelValues(strconv.Itoa(zoom), kind).Add(float64(count))
}

func RecordMixedAltitude(zoom int) {
	MixedAltitudeRailways.WithLabelValues(strconv.Itoa(zoom)).Inc()
}

func RecordCacheHit(cacheType string) {
	CacheHits.WithLabelValues(cacheType).Inc()
}

func RecordCacheMiss(cacheType string) {
	CacheMisses.WithLabelValues(cacheType).Inc()
}

func UpdateCacheSize(cacheType string, size int) {
	CacheSize.WithLabelValues(cacheType).Set(float64(size))
}

func RecordMCPRequest(tool string, success bool) {
	MCPRequestsTotal.WithLabelValues(tool, status(success)).Inc()
}

func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
