package core

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// ToolFactory creates MCP tool definitions with the parameters shared by the
// feature query tools.
type ToolFactory struct {
	zooms []int
}

// NewToolFactory creates a factory for tools querying the given zoom levels.
func NewToolFactory(zooms []int) *ToolFactory {
	return &ToolFactory{zooms: zooms}
}

// CreateBasicTool creates a new tool with the specified name and description
func (f *ToolFactory) CreateBasicTool(name, description string) mcp.Tool {
	return mcp.NewTool(name, mcp.WithDescription(description))
}

func (f *ToolFactory) zoomOption() mcp.ToolOption {
	desc := "Zoom level"
	defaultZoom := 0.0
	if len(f.zooms) > 0 {
		desc = fmt.Sprintf("Zoom level, one of %v", f.zooms)
		defaultZoom = float64(f.zooms[len(f.zooms)-1])
	}
	return mcp.WithNumber("zoom",
		mcp.Description(desc),
		mcp.DefaultNumber(defaultZoom),
	)
}

// CreateZoomTool creates a tool taking only a zoom level
func (f *ToolFactory) CreateZoomTool(name, description string) mcp.Tool {
	return mcp.NewTool(name,
		mcp.WithDescription(description),
		f.zoomOption(),
	)
}

// CreateRailwayTool creates a tool with railway id and zoom parameters
func (f *ToolFactory) CreateRailwayTool(name, description string) mcp.Tool {
	return mcp.NewTool(name,
		mcp.WithDescription(description),
		mcp.WithString("railway",
			mcp.Required(),
			mcp.Description("Railway id, for example JR-East.Yamanote"),
		),
		f.zoomOption(),
	)
}

// CreateStationTool creates a tool with station id and zoom parameters
func (f *ToolFactory) CreateStationTool(name, description string) mcp.Tool {
	return mcp.NewTool(name,
		mcp.WithDescription(description),
		mcp.WithString("station",
			mcp.Required(),
			mcp.Description("Station id, for example JR-East.Yamanote.Tokyo"),
		),
		f.zoomOption(),
	)
}

// CreateLocationTool creates a tool with coordinates, radius and zoom
// parameters
func (f *ToolFactory) CreateLocationTool(name, description string, defaultRadius, maxRadius float64) mcp.Tool {
	radiusDesc := "Search radius in kilometers"
	if maxRadius > 0 {
		radiusDesc += fmt.Sprintf(" (max %.0f)", maxRadius)
	}

	return mcp.NewTool(name,
		mcp.WithDescription(description),
		mcp.WithNumber("latitude",
			mcp.Required(),
			mcp.Description("The latitude coordinate of the center point"),
		),
		mcp.WithNumber("longitude",
			mcp.Required(),
			mcp.Description("The longitude coordinate of the center point"),
		),
		mcp.WithNumber("radius",
			mcp.Description(radiusDesc),
			mcp.DefaultNumber(defaultRadius),
		),
		f.zoomOption(),
	)
}
