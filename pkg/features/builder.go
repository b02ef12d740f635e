package features

import (
	"context"
	"log/slog"
	"time"

	"github.com/paulmach/orb"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/NERVsystems/mapfeatures/pkg/cache"
	"github.com/NERVsystems/mapfeatures/pkg/core"
	"github.com/NERVsystems/mapfeatures/pkg/dataset"
	"github.com/NERVsystems/mapfeatures/pkg/monitoring"
	"github.com/NERVsystems/mapfeatures/pkg/tracing"
)

// Style holds the presentation properties written on synthesized features.
type Style struct {
	LineWidth           float64
	StationWidth        float64
	StationOutlineColor string
	StationFillColor    string
}

// DefaultStyle returns the standard feature presentation.
func DefaultStyle() Style {
	return Style{
		LineWidth:           8,
		StationWidth:        4,
		StationOutlineColor: "#000000",
		StationFillColor:    "#FFFFFF",
	}
}

// Options configures a Builder. The zero value is usable.
type Options struct {
	Hidden *HiddenStations
	Style  Style
	// Cache memoizes station projections; nil disables caching.
	Cache  *cache.ProjectionCache
	Logger *slog.Logger
}

// Builder synthesizes the features of one zoom level. Railways must be built
// after every railway their junctions refer to. A Builder is not safe for
// concurrent use; each zoom level gets its own.
type Builder struct {
	zoom   int
	unit   float64
	opts   Options
	logger *slog.Logger
	built  map[string]orb.LineString
}

// NewBuilder creates a builder for zoom.
func NewBuilder(zoom int, opts Options) *Builder {
	if opts.Style == (Style{}) {
		opts.Style = DefaultStyle()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		zoom:   zoom,
		unit:   Unit(zoom),
		opts:   opts,
		logger: logger.With("zoom", zoom),
		built:  make(map[string]orb.LineString),
	}
}

// Zoom returns the zoom level the builder synthesizes.
func (b *Builder) Zoom() int {
	return b.zoom
}

// Geometry returns the built geometry of a railway, including base railways.
func (b *Builder) Geometry(id string) (orb.LineString, bool) {
	ls, ok := b.built[id]
	return ls, ok
}

// Build synthesizes every railway and station site of ds. Railway features
// come first, most recently built railway first, followed by station
// polygons in site order. Stations owned by a railway but absent from every
// site get a site of their own.
func (b *Builder) Build(ctx context.Context, ds *dataset.Dataset) ([]*Feature, error) {
	start := time.Now()

	var groups [][]*Feature
	railways := 0
	for _, r := range ds.Railways {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fs, err := b.BuildRailway(ctx, r, ds.Stations)
		if err != nil {
			monitoring.RecordError("railway", string(core.CodeOf(err)))
			tracing.RecordError(ctx, err, trace.WithAttributes(attribute.String(tracing.AttrRailway, r.ID)))
			return nil, err
		}
		if fs != nil {
			groups = append(groups, fs)
			railways += len(fs)
		}
	}

	var out []*Feature
	for i := len(groups) - 1; i >= 0; i-- {
		out = append(out, groups[i]...)
	}

	stations := 0
	for _, site := range ds.AllSites() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fs, err := b.BuildSite(ctx, site, ds.Stations)
		if err != nil {
			monitoring.RecordError("station", string(core.CodeOf(err)))
			tracing.RecordError(ctx, err)
			return nil, err
		}
		out = append(out, fs...)
		stations += len(fs)
	}

	monitoring.RecordFeatures(b.zoom, "railway", railways)
	monitoring.RecordFeatures(b.zoom, "station", stations)
	tracing.SetAttributes(ctx,
		attribute.Int(tracing.AttrRailwayFeatures, railways),
		attribute.Int(tracing.AttrStationFeatures, stations))
	b.logger.Debug("zoom features built",
		"railways", railways,
		"stations", stations,
		"duration", time.Since(start))

	return out, nil
}
