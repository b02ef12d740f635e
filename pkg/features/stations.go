package features

import (
	"context"

	"github.com/paulmach/orb"
	"go.opentelemetry.io/otel/attribute"

	"github.com/NERVsystems/mapfeatures/pkg/core"
	"github.com/NERVsystems/mapfeatures/pkg/dataset"
	"github.com/NERVsystems/mapfeatures/pkg/geo"
	"github.com/NERVsystems/mapfeatures/pkg/tracing"
)

// siteLayer accumulates the station shapes of one altitude layer of a site.
type siteLayer struct {
	shapes   []orb.Polygon
	coords   orb.LineString
	ids      []string
	altitude float64
}

// BuildSite builds the station polygons of a site: one for its underground
// groups and one for its overground groups, underground first. Every station
// is projected onto the built geometry of its railway, so the railways must
// be built beforehand.
func (b *Builder) BuildSite(ctx context.Context, site dataset.Site, stations map[string]dataset.Station) (fs []*Feature, err error) {
	_, span := tracing.StartSpan(ctx, "features.BuildSite")
	span.SetAttributes(attribute.Int(tracing.AttrSiteGroups, len(site)))
	defer func() { tracing.EndWithError(span, err) }()

	var ug, og siteLayer
	for _, group := range site {
		if len(group) == 0 {
			continue
		}
		first, ok := stations[group[0]]
		if !ok {
			return nil, core.MissingStationError(group[0]).WithZoom(b.zoom)
		}
		layer := &og
		if first.Altitude < 0 {
			layer = &ug
		}

		coords := make(orb.LineString, 0, len(group))
		for _, id := range group {
			p, err := b.projectStation(id, stations)
			if err != nil {
				return nil, err
			}
			if !b.opts.Hidden.Match(id) {
				layer.ids = append(layer.ids, id)
			}
			coords = append(coords, p)
		}

		var shape orb.Geometry = coords
		if len(coords) == 1 {
			shape = coords[0]
		}
		layer.shapes = append(layer.shapes, geo.Buffer(shape, b.unit)...)
		layer.coords = append(layer.coords, coords...)
		layer.altitude = first.Altitude
	}

	if f := b.layerFeature(&ug, true); f != nil {
		fs = append(fs, f)
	}
	if f := b.layerFeature(&og, false); f != nil {
		fs = append(fs, f)
	}
	return fs, nil
}

func (b *Builder) projectStation(id string, stations map[string]dataset.Station) (orb.Point, error) {
	st, ok := stations[id]
	if !ok {
		return orb.Point{}, core.MissingStationError(id).WithZoom(b.zoom)
	}
	line, ok := b.built[st.Railway]
	if !ok {
		return orb.Point{}, core.Errorf(core.ErrMissingReference, "railway %q of the station has not been built", st.Railway).
			WithStation(id).
			WithRailway(st.Railway).
			WithZoom(b.zoom)
	}
	return b.opts.Cache.Project(st.Railway, line, st.Coord).Point, nil
}

// layerFeature unions the shapes of a layer into a station polygon. Layers
// holding more than one station coordinate get a thin connector along all of
// them.
func (b *Builder) layerFeature(l *siteLayer, underground bool) *Feature {
	if len(l.shapes) == 0 {
		return nil
	}
	if len(l.coords) > 1 {
		l.shapes = append(l.shapes, geo.Buffer(l.coords, b.unit/4)...)
	}

	altitude := 0.0
	if underground {
		altitude = l.altitude * b.unit * metersPerUnit
	}
	ids := l.ids
	if ids == nil {
		ids = []string{}
	}

	return &Feature{
		Type:           TypeStation,
		Kind:           GeometryMultiPolygon,
		Color:          b.opts.Style.StationFillColor,
		OutlineColor:   b.opts.Style.StationOutlineColor,
		Width:          b.opts.Style.StationWidth,
		Zoom:           b.zoom,
		Altitude:       float64Ptr(altitude),
		StationIDs:     ids,
		VertexAltitude: underground,
		Polygon:        geo.Union(l.shapes...),
	}
}
