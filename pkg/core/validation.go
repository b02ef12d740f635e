package core

import (
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
)

// ValidateCoords checks if latitude and longitude are within valid ranges
func ValidateCoords(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return Errorf(ErrInvalidInput, "latitude must be between -90 and 90, got %f", lat).
			WithGuidance("Coordinates are [longitude, latitude] in decimal degrees")
	}
	if lon < -180 || lon > 180 {
		return Errorf(ErrInvalidInput, "longitude must be between -180 and 180, got %f", lon).
			WithGuidance("Coordinates are [longitude, latitude] in decimal degrees")
	}
	return nil
}

// ValidateZoom checks that zoom is one of the built zoom levels
func ValidateZoom(zoom int, zooms []int) error {
	for _, z := range zooms {
		if z == zoom {
			return nil
		}
	}
	return Errorf(ErrInvalidInput, "zoom %d is not built", zoom).
		WithGuidance(fmt.Sprintf("Use one of %v", zooms))
}

// ParseZoom extracts and validates a zoom level from a CallToolRequest
func ParseZoom(req mcp.CallToolRequest, key string, zooms []int) (int, error) {
	if key == "" {
		key = "zoom"
	}

	defaultZoom := 0
	if len(zooms) > 0 {
		defaultZoom = zooms[len(zooms)-1]
	}
	zoom := int(mcp.ParseFloat64(req, key, float64(defaultZoom)))

	if err := ValidateZoom(zoom, zooms); err != nil {
		return 0, err
	}
	return zoom, nil
}

// ParseZoomWithLog parses a zoom level and logs any errors
func ParseZoomWithLog(req mcp.CallToolRequest, logger *slog.Logger, key string, zooms []int) (int, error) {
	zoom, err := ParseZoom(req, key, zooms)
	if err != nil {
		logger.Error("invalid zoom", "error", err)
	}
	return zoom, err
}
