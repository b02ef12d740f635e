package cache

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/NERVsystems/mapfeatures/pkg/geo"
	"github.com/NERVsystems/mapfeatures/pkg/monitoring"
)

var testLine = orb.LineString{{139.70, 35.68}, {139.71, 35.68}, {139.72, 35.69}}

func TestProjectionCacheHitMiss(t *testing.T) {
	monitoring.CacheHits.Reset()
	monitoring.CacheMisses.Reset()

	c := NewProjectionCache(8)
	p := orb.Point{139.705, 35.681}

	first := c.Project("JR-East.Yamanote", testLine, p)
	second := c.Project("JR-East.Yamanote", testLine, p)

	if first != second {
		t.Errorf("Cached projection differs: %+v != %+v", first, second)
	}
	if want := geo.NearestPointOnLine(testLine, p); first != want {
		t.Errorf("Expected %+v, got %+v", want, first)
	}
	if got := testutil.ToFloat64(monitoring.CacheHits.WithLabelValues(cacheType)); got != 1 {
		t.Errorf("Expected 1 hit, got %v", got)
	}
	if got := testutil.ToFloat64(monitoring.CacheMisses.WithLabelValues(cacheType)); got != 1 {
		t.Errorf("Expected 1 miss, got %v", got)
	}
	if c.Len() != 1 {
		t.Errorf("Expected 1 cached entry, got %d", c.Len())
	}
}

func TestProjectionCacheKeyedByRailway(t *testing.T) {
	c := NewProjectionCache(8)
	p := orb.Point{139.705, 35.681}
	other := orb.LineString{{139.70, 35.70}, {139.72, 35.70}}

	a := c.Project("A", testLine, p)
	b := c.Project("B", other, p)

	if a.Point == b.Point {
		t.Errorf("Projections onto different railways should differ, both %v", a.Point)
	}
	if c.Len() != 2 {
		t.Errorf("Expected 2 cached entries, got %d", c.Len())
	}

	c.Purge()
	if c.Len() != 0 {
		t.Errorf("Expected empty cache after purge, got %d", c.Len())
	}
}

func TestProjectionCacheEviction(t *testing.T) {
	c := NewProjectionCache(2)
	for i := 0; i < 5; i++ {
		c.Project("A", testLine, orb.Point{139.70 + float64(i)*0.001, 35.68})
	}
	if c.Len() != 2 {
		t.Errorf("Expected 2 cached entries after eviction, got %d", c.Len())
	}
}

func TestNilProjectionCache(t *testing.T) {
	var c *ProjectionCache
	p := orb.Point{139.705, 35.681}

	if got, want := c.Project("A", testLine, p), geo.NearestPointOnLine(testLine, p); got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
	if c.Len() != 0 {
		t.Errorf("Expected 0 length, got %d", c.Len())
	}
	c.Purge()
}

func TestNewProjectionCacheDefaultSize(t *testing.T) {
	c := NewProjectionCache(0)
	if c == nil || c.items == nil {
		t.Fatal("Expected a usable cache")
	}
}
