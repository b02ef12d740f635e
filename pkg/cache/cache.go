// Package cache memoizes nearest point projections of stations onto built
// railway geometry.
package cache

import (
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/paulmach/orb"

	"github.com/NERVsystems/mapfeatures/pkg/geo"
	"github.com/NERVsystems/mapfeatures/pkg/monitoring"
)

const (
	// DefaultProjectionCacheSize is used when a non-positive size is given.
	DefaultProjectionCacheSize = 4096

	cacheType = "projection"
)

// Key identifies a projection. A cache belongs to a single zoom worker, so
// the railway id fully determines the line projected onto.
type Key struct {
	Railway string
	Point   orb.Point
}

// ProjectionCache is a thread-safe LRU cache of nearest point projections.
// A nil *ProjectionCache is valid and projects without caching.
type ProjectionCache struct {
	items *lru.Cache[Key, geo.NearestPoint]
}

// NewProjectionCache creates a cache holding up to size projections.
func NewProjectionCache(size int) *ProjectionCache {
	if size <= 0 {
		size = DefaultProjectionCacheSize
	}
	items, err := lru.New[Key, geo.NearestPoint](size)
	if err != nil {
		slog.Default().Warn("falling back to small projection cache", "size", size, "error", err)
		items, _ = lru.New[Key, geo.NearestPoint](16)
	}
	return &ProjectionCache{items: items}
}

// Project returns the nearest point of line to p, computing it only on a miss.
func (c *ProjectionCache) Project(railway string, line orb.LineString, p orb.Point) geo.NearestPoint {
	if c == nil {
		return geo.NearestPointOnLine(line, p)
	}

	key := Key{Railway: railway, Point: p}
	if np, ok := c.items.Get(key); ok {
		monitoring.RecordCacheHit(cacheType)
		return np
	}

	monitoring.RecordCacheMiss(cacheType)
	np := geo.NearestPointOnLine(line, p)
	c.items.Add(key, np)
	monitoring.UpdateCacheSize(cacheType, c.items.Len())
	return np
}

// Len returns the number of cached projections.
func (c *ProjectionCache) Len() int {
	if c == nil {
		return 0
	}
	return c.items.Len()
}

// Purge removes every cached projection.
func (c *ProjectionCache) Purge() {
	if c == nil {
		return
	}
	c.items.Purge()
	monitoring.UpdateCacheSize(cacheType, 0)
}
