package tools

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	geojson "github.com/paulmach/go.geojson"

	"github.com/NERVsystems/mapfeatures/pkg/core"
	"github.com/NERVsystems/mapfeatures/pkg/geo"
)

const (
	// Station search radius bounds in kilometers
	defaultStationRadius = 1.0
	maxStationRadius     = 20.0

	layerUnderground = "underground"
	layerOverground  = "overground"
)

// StationPolygon describes a station area polygon
type StationPolygon struct {
	Layer    string        `json:"layer"`
	Altitude float64       `json:"altitude"`
	IDs      []string      `json:"ids"`
	Centroid Location      `json:"centroid"`
	Parts    int           `json:"parts"`
	Distance *float64      `json:"distance_km,omitempty"`
	Outline  [][][]float64 `json:"outline,omitempty"`
}

// StationPolygonsOutput is the result of station_polygons
type StationPolygonsOutput struct {
	Station  string           `json:"station"`
	Zoom     int              `json:"zoom"`
	Polygons []StationPolygon `json:"polygons"`
}

// StationsNearInput defines the input parameters for stations_near
type StationsNearInput struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Radius    float64  `json:"radius"`
	Zoom      *float64 `json:"zoom,omitempty"`
}

// StationsNearOutput is the result of stations_near
type StationsNearOutput struct {
	Zoom     int              `json:"zoom"`
	Radius   float64          `json:"radius_km"`
	Polygons []StationPolygon `json:"polygons"`
}

// AirwaySummary describes a flight path feature
type AirwaySummary struct {
	ID       string  `json:"id"`
	Color    string  `json:"color,omitempty"`
	Altitude float64 `json:"altitude"`
	Length   float64 `json:"length_km"`
	Points   int     `json:"points"`
}

// StationPolygonsTool returns a tool definition for station area lookup
func (r *Registry) StationPolygonsTool() mcp.Tool {
	return r.factory.CreateStationTool("station_polygons",
		"Get the station area polygons containing a station at a zoom level, one per underground or overground layer")
}

// StationsNearTool returns a tool definition for finding station areas near a point
func (r *Registry) StationsNearTool() mcp.Tool {
	return r.factory.CreateLocationTool("stations_near",
		"Find station area polygons whose centroid lies within a radius of a location, nearest first",
		defaultStationRadius, maxStationRadius)
}

// ListAirwaysTool returns a tool definition for listing flight paths
func (r *Registry) ListAirwaysTool() mcp.Tool {
	return r.factory.CreateBasicTool("list_airways",
		"List the zoom independent flight path features with their length")
}

func describeStation(f *geojson.Feature, withOutline bool) StationPolygon {
	mp := multiPolygon(f)
	centroid, _ := planar.CentroidArea(mp)

	p := StationPolygon{
		Layer:    layerOverground,
		IDs:      stringsProp(f, "ids"),
		Centroid: Location{Latitude: centroid.Lat(), Longitude: centroid.Lon()},
		Parts:    len(mp),
	}
	if p.IDs == nil {
		p.IDs = []string{}
	}
	p.Altitude, _ = numberProp(f, "altitude")
	if p.Altitude < 0 {
		p.Layer = layerUnderground
	}
	if withOutline {
		for _, poly := range f.Geometry.MultiPolygon {
			if len(poly) > 0 {
				p.Outline = append(p.Outline, poly[0])
			}
		}
	}
	return p
}

// HandleStationPolygons implements station area lookup
func (r *Registry) HandleStationPolygons(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.logger.With("tool", "station_polygons")

	station := mcp.ParseString(req, "station", "")
	if station == "" {
		logger.Error("missing station input")
		return errorResult(core.NewError(core.ErrInvalidInput, "station id is required")), nil
	}

	zoom, err := core.ParseZoomWithLog(req, logger, "zoom", r.store.Zooms())
	if err != nil {
		return errorResult(err), nil
	}

	output := StationPolygonsOutput{Station: station, Zoom: zoom, Polygons: []StationPolygon{}}
	for _, f := range r.store.Stations(zoom) {
		for _, id := range stringsProp(f, "ids") {
			if id == station {
				output.Polygons = append(output.Polygons, describeStation(f, true))
				break
			}
		}
	}
	if len(output.Polygons) == 0 {
		return errorResult(core.NewError(core.ErrNoResults, "no station polygon lists this station").
			WithStation(station).
			WithZoom(zoom).
			WithGuidance("Hidden stations are drawn but not listed; check the station id")), nil
	}

	resultBytes, err := json.Marshal(output)
	if err != nil {
		logger.Error("failed to marshal result", "error", err)
		return ErrorResponse("Failed to generate result"), nil
	}
	return mcp.NewToolResultText(string(resultBytes)), nil
}

// HandleStationsNear implements the station area proximity search
func (r *Registry) HandleStationsNear(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return WithParsedInput(r.logger, "stations_near",
		func(ctx context.Context, input StationsNearInput, logger *slog.Logger) (interface{}, error) {
			if err := core.ValidateCoords(input.Latitude, input.Longitude); err != nil {
				return nil, err
			}
			if input.Radius == 0 {
				input.Radius = defaultStationRadius
			}
			if err := ValidateRadius(input.Radius, maxStationRadius); err != nil {
				return nil, err
			}

			zooms := r.store.Zooms()
			zoom := 0
			if len(zooms) > 0 {
				zoom = zooms[len(zooms)-1]
			}
			if input.Zoom != nil {
				zoom = int(*input.Zoom)
			}
			if err := core.ValidateZoom(zoom, zooms); err != nil {
				return nil, err
			}

			return r.stationsNear(orb.Point{input.Longitude, input.Latitude}, input.Radius, zoom, logger), nil
		})(ctx, req)
}

func (r *Registry) stationsNear(center orb.Point, radius float64, zoom int, logger *slog.Logger) StationsNearOutput {
	output := StationsNearOutput{Zoom: zoom, Radius: radius, Polygons: []StationPolygon{}}
	for _, f := range r.store.Stations(zoom) {
		p := describeStation(f, false)
		d := geo.Distance(center, orb.Point{p.Centroid.Longitude, p.Centroid.Latitude})
		if d > radius {
			continue
		}
		p.Distance = &d
		output.Polygons = append(output.Polygons, p)
	}
	sort.SliceStable(output.Polygons, func(i, j int) bool {
		return *output.Polygons[i].Distance < *output.Polygons[j].Distance
	})

	logger.Debug("station search", "zoom", zoom, "radius_km", radius, "found", len(output.Polygons))
	return output
}

// HandleListAirways implements flight path listing
func (r *Registry) HandleListAirways(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.logger.With("tool", "list_airways")

	airways := r.store.Airways()
	output := make([]AirwaySummary, 0, len(airways))
	for _, f := range airways {
		a := AirwaySummary{Points: len(f.Geometry.LineString)}
		a.ID, _ = f.Properties["id"].(string)
		a.Color, _ = f.Properties["color"].(string)
		a.Altitude, _ = numberProp(f, "altitude")
		a.Length, _ = numberProp(f, "length")
		output = append(output, a)
	}

	resultBytes, err := json.Marshal(map[string]interface{}{"airways": output})
	if err != nil {
		logger.Error("failed to marshal result", "error", err)
		return ErrorResponse("Failed to generate result"), nil
	}
	return mcp.NewToolResultText(string(resultBytes)), nil
}
