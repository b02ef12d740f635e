package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/NERVsystems/mapfeatures/pkg/core"
	"github.com/NERVsystems/mapfeatures/pkg/monitoring"
	"github.com/NERVsystems/mapfeatures/pkg/tracing"
)

// Registry contains all tool definitions and handlers
type Registry struct {
	logger  *slog.Logger
	store   *Store
	factory *core.ToolFactory
}

// NewRegistry creates a new tool registry serving the features of store
func NewRegistry(logger *slog.Logger, store *Store) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		logger:  logger,
		store:   store,
		factory: core.NewToolFactory(store.Zooms()),
	}
}

// ToolDefinition represents a map features MCP tool definition.
type ToolDefinition struct {
	Name        string
	Description string
	Tool        mcp.Tool
	Handler     func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// GetToolDefinitions returns the list of all available tools.
func (r *Registry) GetToolDefinitions() []ToolDefinition {
	return []ToolDefinition{
		{
			Name:        "get_version",
			Description: "Get the version information and served zoom levels",
			Tool:        GetVersionTool(),
			Handler:     r.HandleGetVersion,
		},

		// Railway tools
		{
			Name:        "list_railways",
			Description: "List railways built at a zoom level. Parameters: zoom (number)",
			Tool:        r.ListRailwaysTool(),
			Handler:     r.HandleListRailways,
		},
		{
			Name:        "get_railway",
			Description: "Get a railway geometry. Parameters: railway (string), zoom (number)",
			Tool:        r.GetRailwayTool(),
			Handler:     r.HandleGetRailway,
		},
		{
			Name:        "railway_polyline",
			Description: "Encode a railway path as a polyline. Parameters: railway (string), zoom (number)",
			Tool:        r.RailwayPolylineTool(),
			Handler:     r.HandleRailwayPolyline,
		},
		{
			Name:        "polyline_decode",
			Description: "Decode a polyline string into a series of coordinates. Parameters: polyline (string)",
			Tool:        PolylineDecodeTool(),
			Handler:     r.HandlePolylineDecode,
		},

		// Station and airway tools
		{
			Name:        "station_polygons",
			Description: "Get the station area polygons of a station. Parameters: station (string), zoom (number)",
			Tool:        r.StationPolygonsTool(),
			Handler:     r.HandleStationPolygons,
		},
		{
			Name:        "stations_near",
			Description: "Find station areas near a location. Parameters: latitude (number), longitude (number), radius (number in km), zoom (number)",
			Tool:        r.StationsNearTool(),
			Handler:     r.HandleStationsNear,
		},
		{
			Name:        "list_airways",
			Description: "List flight path features",
			Tool:        r.ListAirwaysTool(),
			Handler:     r.HandleListAirways,
		},
	}
}

// RegisterTools registers all tools with the MCP server.
func (r *Registry) RegisterTools(mcpServer *server.MCPServer) {
	for _, def := range r.GetToolDefinitions() {
		r.logger.Info("registering tool", "name", def.Name)
		mcpServer.AddTool(def.Tool, r.wrapWithTracing(def.Name, def.Handler))
	}
}

// wrapWithTracing wraps a tool handler with OpenTelemetry tracing and request metrics
func (r *Registry) wrapWithTracing(toolName string, handler func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)) func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		spanName := fmt.Sprintf("mcp.tool.%s", toolName)
		ctx, span := tracing.StartSpan(ctx, spanName,
			trace.WithAttributes(
				attribute.String(tracing.AttrMCPToolName, toolName),
			),
		)
		defer span.End()

		startTime := time.Now()
		result, err := handler(ctx, req)
		durationMs := time.Since(startTime).Milliseconds()

		// Tool level failures come back as error results, not errors
		status := tracing.StatusSuccess
		if err != nil {
			status = tracing.StatusError
			span.RecordError(err)
			span.SetAttributes(tracing.ErrorAttributes(err)...)
			span.SetStatus(codes.Error, err.Error())
		} else if result != nil && result.IsError {
			status = tracing.StatusError
			span.SetStatus(codes.Error, "tool returned an error result")
		} else {
			span.SetStatus(codes.Ok, "")
		}
		monitoring.RecordMCPRequest(toolName, status == tracing.StatusSuccess)

		resultSize := 0
		if result != nil && result.Content != nil {
			if data, marshalErr := json.Marshal(result.Content); marshalErr == nil {
				resultSize = len(data)
			}
		}

		span.SetAttributes(tracing.MCPToolAttributes(toolName, status)...)
		span.SetAttributes(
			attribute.Int64(tracing.AttrMCPToolDuration, durationMs),
			attribute.Int(tracing.AttrMCPResultSize, resultSize),
		)

		r.logger.Debug("tool execution traced",
			"tool", toolName,
			"duration_ms", durationMs,
			"status", status,
			"result_size", resultSize,
		)

		return result, err
	}
}

// GetToolNames returns a list of all tool names.
func (r *Registry) GetToolNames() []string {
	defs := r.GetToolDefinitions()
	names := make([]string, len(defs))
	for i, def := range defs {
		names[i] = def.Name
	}
	return names
}
