package tracing

import "go.opentelemetry.io/otel/attribute"

// Attribute keys for feature builds
const (
	// Pipeline attributes
	AttrRunID        = "mapfeatures.run.id"
	AttrZoom         = "mapfeatures.zoom"
	AttrZoomCount    = "mapfeatures.zoom.count"
	AttrFeatureCount = "mapfeatures.feature.count"

	// Network attributes
	AttrRailway       = "mapfeatures.railway.id"
	AttrSublineCount  = "mapfeatures.railway.sublines"
	AttrMixedAltitude = "mapfeatures.railway.mixed_altitude"
	AttrSiteGroups    = "mapfeatures.site.groups"
	AttrLayerRuns     = "mapfeatures.layer.runs"

	// Per zoom feature counts
	AttrRailwayFeatures = "mapfeatures.features.railway"
	AttrStationFeatures = "mapfeatures.features.station"

	// MCP tool attributes
	AttrMCPToolName     = "mcp.tool.name"
	AttrMCPToolStatus   = "mcp.tool.status"
	AttrMCPToolDuration = "mcp.tool.duration_ms"
	AttrMCPResultSize   = "mcp.result.size_bytes"

	// Cache attributes
	AttrCacheType = "mapfeatures.cache.type"
	AttrCacheHit  = "mapfeatures.cache.hit"

	// Error attributes
	AttrErrorType    = "error.type"
	AttrErrorMessage = "error.message"
)

// Status values
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Span events
const (
	EventLayersSplit = "railway.layers_split"
)

// Cache types
const (
	CacheTypeProjection = "projection"
)

// Helper functions for common attributes

// ZoomAttributes returns attributes for a zoom level build
func ZoomAttributes(runID string, zoom int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrRunID, runID),
		attribute.Int(AttrZoom, zoom),
	}
}

// RailwayAttributes returns attributes for a railway build
func RailwayAttributes(id string, zoom, sublines int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrRailway, id),
		attribute.Int(AttrZoom, zoom),
		attribute.Int(AttrSublineCount, sublines),
	}
}

// MCPToolAttributes returns attributes for MCP tool execution
func MCPToolAttributes(toolName string, status string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrMCPToolName, toolName),
		attribute.String(AttrMCPToolStatus, status),
	}
}

// ErrorAttributes returns attributes for errors
func ErrorAttributes(err error) []attribute.KeyValue {
	if err == nil {
		return nil
	}
	return []attribute.KeyValue{
		attribute.String(AttrErrorType, "error"),
		attribute.String(AttrErrorMessage, err.Error()),
	}
}
