package tools

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/mapfeatures/pkg/core"
	"github.com/NERVsystems/mapfeatures/pkg/geo"
)

// RailwaySummary describes a railway in a listing
type RailwaySummary struct {
	ID       string   `json:"id"`
	Color    string   `json:"color,omitempty"`
	Altitude *float64 `json:"altitude,omitempty"`
	Mixed    bool     `json:"mixed"`
	Length   float64  `json:"length_km"`
	Stations int      `json:"stations"`
}

// ListRailwaysOutput is the result of list_railways
type ListRailwaysOutput struct {
	Zoom     int              `json:"zoom"`
	Railways []RailwaySummary `json:"railways"`
}

// RailwayOutput is the result of get_railway
type RailwayOutput struct {
	RailwaySummary
	Zoom           int           `json:"zoom"`
	Width          float64       `json:"width"`
	Coordinates    [][]float64   `json:"coordinates"`
	StationOffsets []float64     `json:"station_offsets,omitempty"`
	Underground    [][][]float64 `json:"underground,omitempty"`
	Overground     [][][]float64 `json:"overground,omitempty"`
}

// RailwayPolylineOutput is the result of railway_polyline
type RailwayPolylineOutput struct {
	ID       string `json:"id"`
	Zoom     int    `json:"zoom"`
	Polyline string `json:"polyline"`
	Points   int    `json:"points"`
}

// ListRailwaysTool returns a tool definition for listing built railways
func (r *Registry) ListRailwaysTool() mcp.Tool {
	return r.factory.CreateZoomTool("list_railways",
		"List the railways built at a zoom level with their color, altitude, length and station count")
}

// GetRailwayTool returns a tool definition for retrieving a railway geometry
func (r *Registry) GetRailwayTool() mcp.Tool {
	return r.factory.CreateRailwayTool("get_railway",
		"Get the 3D line geometry of a railway at a zoom level, including station offsets and underground/overground layers")
}

// RailwayPolylineTool returns a tool definition for encoding a railway as a polyline
func (r *Registry) RailwayPolylineTool() mcp.Tool {
	return r.factory.CreateRailwayTool("railway_polyline",
		"Encode the horizontal path of a railway at a zoom level as a Google polyline string")
}

func summarize(e *RailwayEntry) RailwaySummary {
	s := RailwaySummary{
		ID:       e.ID,
		Mixed:    e.Mixed(),
		Length:   geo.Length(lineString(e.Line)),
		Stations: len(floatsProp(e.Line, "station-offsets")),
	}
	s.Color, _ = e.Line.Properties["color"].(string)
	if alt, ok := numberProp(e.Line, "altitude"); ok {
		s.Altitude = &alt
	}
	return s
}

// HandleListRailways implements railway listing
func (r *Registry) HandleListRailways(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.logger.With("tool", "list_railways")

	zoom, err := core.ParseZoomWithLog(req, logger, "zoom", r.store.Zooms())
	if err != nil {
		return errorResult(err), nil
	}

	entries := r.store.Railways(zoom)
	output := ListRailwaysOutput{
		Zoom:     zoom,
		Railways: make([]RailwaySummary, 0, len(entries)),
	}
	for _, e := range entries {
		output.Railways = append(output.Railways, summarize(e))
	}

	resultBytes, err := json.Marshal(output)
	if err != nil {
		logger.Error("failed to marshal result", "error", err)
		return ErrorResponse("Failed to generate result"), nil
	}
	return mcp.NewToolResultText(string(resultBytes)), nil
}

// railwayRequest resolves the railway and zoom arguments of a request
func (r *Registry) railwayRequest(req mcp.CallToolRequest, tool string) (*RailwayEntry, error) {
	logger := r.logger.With("tool", tool)

	id := mcp.ParseString(req, "railway", "")
	if id == "" {
		logger.Error("missing railway input")
		return nil, core.NewError(core.ErrInvalidInput, "railway id is required")
	}

	zoom, err := core.ParseZoomWithLog(req, logger, "zoom", r.store.Zooms())
	if err != nil {
		return nil, err
	}

	entry, err := r.store.Railway(id, zoom)
	if err != nil {
		logger.Debug("railway lookup failed", "railway", id, "zoom", zoom, "error", err)
		return nil, err
	}
	return entry, nil
}

// HandleGetRailway implements railway geometry retrieval
func (r *Registry) HandleGetRailway(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entry, err := r.railwayRequest(req, "get_railway")
	if err != nil {
		return errorResult(err), nil
	}

	output := RailwayOutput{
		RailwaySummary: summarize(entry),
		Zoom:           entry.Zoom,
		Coordinates:    entry.Line.Geometry.LineString,
		StationOffsets: floatsProp(entry.Line, "station-offsets"),
	}
	output.Width, _ = numberProp(entry.Line, "width")
	if entry.Underground != nil {
		output.Underground = entry.Underground.Geometry.MultiLineString
	}
	if entry.Overground != nil {
		output.Overground = entry.Overground.Geometry.MultiLineString
	}

	resultBytes, err := json.Marshal(output)
	if err != nil {
		r.logger.Error("failed to marshal result", "tool", "get_railway", "error", err)
		return ErrorResponse("Failed to generate result"), nil
	}
	return mcp.NewToolResultText(string(resultBytes)), nil
}

// HandleRailwayPolyline implements railway polyline encoding
func (r *Registry) HandleRailwayPolyline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entry, err := r.railwayRequest(req, "railway_polyline")
	if err != nil {
		return errorResult(err), nil
	}

	ls := lineString(entry.Line)
	output := RailwayPolylineOutput{
		ID:       entry.ID,
		Zoom:     entry.Zoom,
		Polyline: core.EncodePolyline(ls),
		Points:   len(ls),
	}

	resultBytes, err := json.Marshal(output)
	if err != nil {
		r.logger.Error("failed to marshal result", "tool", "railway_polyline", "error", err)
		return ErrorResponse("Failed to generate result"), nil
	}
	return mcp.NewToolResultText(string(resultBytes)), nil
}

// PolylineDecodeInput defines the input parameters for decoding a polyline
type PolylineDecodeInput struct {
	Polyline string `json:"polyline"`
}

// Location is a decoded polyline point
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PolylineDecodeOutput defines the output for decoded polyline points
type PolylineDecodeOutput struct {
	Points []Location `json:"points"`
}

// PolylineDecodeTool returns a tool definition for decoding polylines
func PolylineDecodeTool() mcp.Tool {
	return mcp.NewTool("polyline_decode",
		mcp.WithDescription("Decode an encoded polyline string into a series of geographic coordinates"),
		mcp.WithString("polyline",
			mcp.Required(),
			mcp.Description("The encoded polyline string to decode"),
		),
	)
}

// HandlePolylineDecode implements polyline decoding
func (r *Registry) HandlePolylineDecode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return WithParsedInput(r.logger, "polyline_decode",
		func(ctx context.Context, input PolylineDecodeInput, logger *slog.Logger) (interface{}, error) {
			output, err := decodePolyline(input)
			if err != nil {
				return nil, err
			}
			logger.Debug("decoded polyline", "points", len(output.Points))
			return output, nil
		})(ctx, req)
}

// isPrintableASCII checks if a string contains only printable ASCII characters
func isPrintableASCII(s string) bool {
	for _, c := range s {
		if c < 32 || c > 126 {
			return false
		}
	}
	return true
}

func decodePolyline(input PolylineDecodeInput) (PolylineDecodeOutput, error) {
	if input.Polyline == "" {
		return PolylineDecodeOutput{}, core.NewError(core.ErrInvalidInput, "polyline string is required")
	}
	// Basic validation - ensure the string has at least 2 characters and only printable ASCII
	if len(input.Polyline) < 2 || !isPrintableASCII(input.Polyline) {
		return PolylineDecodeOutput{}, core.NewError(core.ErrInvalidInput, "malformed polyline")
	}

	points, err := core.DecodePolyline(input.Polyline)
	if err != nil {
		return PolylineDecodeOutput{}, core.NewError(core.ErrInvalidInput, "malformed polyline").WithCause(err)
	}

	output := PolylineDecodeOutput{Points: make([]Location, len(points))}
	for i, p := range points {
		output.Points[i] = Location{Latitude: p.Lat(), Longitude: p.Lon()}
	}
	return output, nil
}
