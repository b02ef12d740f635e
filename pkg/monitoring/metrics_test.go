package monitoring

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsInitialization(t *testing.T) {
	// Test that all metrics are properly registered
	metrics := []prometheus.Collector{
		PipelineRunsTotal,
		PipelineDuration,
		ZoomBuildDuration,
		FeaturesBuilt,
		RailwaysBuilt,
		MixedAltitudeRailways,
		CacheHits,
		CacheMisses,
		CacheSize,
		MCPRequestsTotal,
		ErrorsTotal,
	}

	for _, metric := range metrics {
		if metric == nil {
			t.Error("Metric is nil")
		}
	}
}

func TestRecordPipelineRun(t *testing.T) {
	PipelineRunsTotal.Reset()

	RecordPipelineRun(2*time.Second, true)
	RecordPipelineRun(time.Second, false)
	RecordPipelineRun(time.Second, false)

	if got := testutil.ToFloat64(PipelineRunsTotal.WithLabelValues("success")); got != 1 {
		t.Errorf("Expected 1 successful run, got %v", got)
	}
	if got := testutil.ToFloat64(PipelineRunsTotal.WithLabelValues("error")); got != 2 {
		t.Errorf("Expected 2 failed runs, got %v", got)
	}
}

func TestRecordZoomBuild(t *testing.T) {
	RailwaysBuilt.Reset()
	ZoomBuildDuration.Reset()

	RecordZoomBuild(15, 300*time.Millisecond, 12)
	RecordZoomBuild(15, 200*time.Millisecond, 3)

	if got := testutil.ToFloat64(RailwaysBuilt.WithLabelValues("15")); got != 15 {
		t.Errorf("Expected 15 railways, got %v", got)
	}
	if got := testutil.CollectAndCount(ZoomBuildDuration); got != 1 {
		t.Errorf("Expected 1 histogram series, got %d", got)
	}
}

func TestRecordFeatures(t *testing.T) {
	FeaturesBuilt.Reset()
	MixedAltitudeRailways.Reset()

	RecordFeatures(13, "railway", 4)
	RecordFeatures(13, "station", 2)
	RecordMixedAltitude(13)

	if got := testutil.ToFloat64(FeaturesBuilt.WithLabelValues("13", "railway")); got != 4 {
		t.Errorf("Expected 4 railway features, got %v", got)
	}
	if got := testutil.ToFloat64(FeaturesBuilt.WithLabelValues("13", "station")); got != 2 {
		t.Errorf("Expected 2 station features, got %v", got)
	}
	if got := testutil.ToFloat64(MixedAltitudeRailways.WithLabelValues("13")); got != 1 {
		t.Errorf("Expected 1 mixed railway, got %v", got)
	}
}

func TestCacheMetrics(t *testing.T) {
	CacheHits.Reset()
	CacheMisses.Reset()
	CacheSize.Reset()

	RecordCacheHit("projection")
	RecordCacheHit("projection")
	RecordCacheMiss("projection")
	UpdateCacheSize("projection", 42)

	if got := testutil.ToFloat64(CacheHits.WithLabelValues("projection")); got != 2 {
		t.Errorf("Expected 2 cache hits, got %v", got)
	}
	if got := testutil.ToFloat64(CacheMisses.WithLabelValues("projection")); got != 1 {
		t.Errorf("Expected 1 cache miss, got %v", got)
	}
	if got := testutil.ToFloat64(CacheSize.WithLabelValues("projection")); got != 42 {
		t.Errorf("Expected cache size 42, got %v", got)
	}
}

func TestRecordErrorAndMCPRequest(t *testing.T) {
	ErrorsTotal.Reset()
	MCPRequestsTotal.Reset()

	RecordError("railway", "TOPOLOGY_ERROR")
	RecordMCPRequest("railway_feature", true)
	RecordMCPRequest("railway_feature", false)

	if got := testutil.ToFloat64(ErrorsTotal.WithLabelValues("railway", "TOPOLOGY_ERROR")); got != 1 {
		t.Errorf("Expected 1 error, got %v", got)
	}
	if got := testutil.ToFloat64(MCPRequestsTotal.WithLabelValues("railway_feature", "error")); got != 1 {
		t.Errorf("Expected 1 failed request, got %v", got)
	}
}
