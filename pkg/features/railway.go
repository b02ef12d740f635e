package features

import (
	"context"
	"fmt"

	"github.com/paulmach/orb"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/NERVsystems/mapfeatures/pkg/core"
	"github.com/NERVsystems/mapfeatures/pkg/dataset"
	"github.com/NERVsystems/mapfeatures/pkg/geo"
	"github.com/NERVsystems/mapfeatures/pkg/monitoring"
	"github.com/NERVsystems/mapfeatures/pkg/tracing"
)

// BuildRailway builds the geometry of r and records it for later junctions
// and station projections. It returns the railway's features: the layer
// features (overground, underground) when its altitude is mixed, then the
// line itself. Base railways return no features.
func (b *Builder) BuildRailway(ctx context.Context, r dataset.Railway, stations map[string]dataset.Station) (fs []*Feature, err error) {
	ctx, span := tracing.StartSpan(ctx, "features.BuildRailway",
		trace.WithAttributes(tracing.RailwayAttributes(r.ID, b.zoom, len(r.Sublines))...))
	defer func() { tracing.EndWithError(span, err) }()

	var line Line
	mixed := false
	for i, s := range r.Sublines {
		coords, m, err := b.buildSubline(r, i, s)
		if err != nil {
			return nil, err
		}
		mixed = mixed || m
		line = appendLine(line, coords)
	}

	b.built[r.ID] = line.LineString()
	span.SetAttributes(attribute.Bool(tracing.AttrMixedAltitude, mixed))
	if r.IsBase() {
		return nil, nil
	}

	offsets, err := b.stationOffsets(r, line.LineString(), stations)
	if err != nil {
		return nil, err
	}

	feature := b.lineFeature(fmt.Sprintf("%s.%d", r.ID, b.zoom), r.Color)
	feature.Line = line
	feature.StationOffsets = offsets
	feature.StationIDs = r.Stations

	if !mixed {
		feature.Altitude = float64Ptr(r.Altitude * b.unit * metersPerUnit)
		return []*Feature{feature}, nil
	}

	monitoring.RecordMixedAltitude(b.zoom)
	ug, og, stripped := splitLayers(line)
	feature.Line = stripped

	overground := b.lineFeature(fmt.Sprintf("%s.og.%d", r.ID, b.zoom), r.Color)
	overground.Kind = GeometryMultiLineString
	overground.Lines = og
	overground.Altitude = float64Ptr(0)

	underground := b.lineFeature(fmt.Sprintf("%s.ug.%d", r.ID, b.zoom), r.Color)
	underground.Kind = GeometryMultiLineString
	underground.Lines = ug
	underground.Altitude = float64Ptr(-b.unit * metersPerUnit)

	tracing.AddEvent(ctx, tracing.EventLayersSplit,
		attribute.String(tracing.AttrRailway, r.ID),
		attribute.Int(tracing.AttrLayerRuns, len(ug)+len(og)))
	b.logger.Debug("railway split into layers",
		"railway", r.ID,
		"underground_runs", len(ug),
		"overground_runs", len(og))

	return []*Feature{overground, underground, feature}, nil
}

func (b *Builder) lineFeature(id, color string) *Feature {
	return &Feature{
		ID:    id,
		Type:  TypeLine,
		Kind:  GeometryLineString,
		Color: color,
		Width: b.opts.Style.LineWidth,
		Zoom:  b.zoom,
	}
}

// buildSubline returns the vertices of the i-th subline of r and whether it
// makes the railway's altitude mixed.
func (b *Builder) buildSubline(r dataset.Railway, i int, s dataset.Subline) (Line, bool, error) {
	var coords Line
	var err error

	if s.UsesMainGeometry(b.zoom) {
		coords, err = b.mainCoords(r, i, s)
	} else {
		coords, err = b.subCoords(r, i, s)
	}
	if err != nil {
		return nil, false, err
	}

	var startExt, endExt float64
	if s.Start.HasAltitude() {
		startExt = altitudeTransition
	}
	if s.End.HasAltitude() {
		endExt = altitudeTransition
	}
	coords = interpolateCoordinates(coords, startExt, endExt)

	altitude := r.Altitude
	if s.Altitude != nil {
		altitude = *s.Altitude
	}
	if altitude != 0 {
		z := altitude * b.unit * metersPerUnit
		for k := range coords {
			coords[k].Z, coords[k].HasZ = z, true
		}
	}

	mixed := false
	if s.Start.HasAltitude() {
		coords = smoothAltitude(coords, *s.Start.Altitude, b.unit, false)
		mixed = true
	}
	if s.End.HasAltitude() {
		coords = smoothAltitude(coords, *s.End.Altitude, b.unit, true)
		mixed = true
	}
	if s.Opacity != nil {
		for k := range coords {
			coords[k].W, coords[k].HasW = *s.Opacity, true
		}
		mixed = true
	}

	return coords, mixed, nil
}

// mainCoords copies the subline's coordinates and blends each end into its
// junction railway where the junction applies at this zoom.
func (b *Builder) mainCoords(r dataset.Railway, i int, s dataset.Subline) (Line, error) {
	coords := LineOf(s.Points())

	if j := s.Start; j != nil && j.Railway != "" && j.ActiveAt(b.zoom) {
		neighbor, err := b.neighbor(r.ID, i, j.Railway)
		if err != nil {
			return nil, err
		}
		coords = smoothCoords(coords, neighbor, j.Offset, b.unit, false)
	}
	if j := s.End; j != nil && j.Railway != "" && j.ActiveAt(b.zoom) {
		neighbor, err := b.neighbor(r.ID, i, j.Railway)
		if err != nil {
			return nil, err
		}
		coords = smoothCoords(coords, neighbor, j.Offset, b.unit, true)
	}
	return coords, nil
}

// subCoords derives the subline from its junction railways: a slice of one
// neighbor when both ends share railway and offset, otherwise a cross-fade
// from the start railway to the end railway. A cross-fade with interpolate
// below 2 is rejected with INVALID_INPUT rather than built as an empty
// subline.
func (b *Builder) subCoords(r dataset.Railway, i int, s dataset.Subline) (Line, error) {
	if s.Start == nil || s.End == nil || s.Start.Railway == "" || s.End.Railway == "" {
		return nil, core.NewError(core.ErrInvalidInput, "derived subline needs a railway at both junctions").
			WithRailway(r.ID).
			WithSubline(i)
	}

	raw := s.Points()
	if len(raw) == 0 {
		return nil, core.NewError(core.ErrInvalidInput, "derived subline has no boundary coordinates").
			WithRailway(r.ID).
			WithSubline(i)
	}

	first, err := b.offsetSlice(r.ID, i, s.Start, raw)
	if err != nil {
		return nil, err
	}
	if s.Start.Railway == s.End.Railway && s.Start.Offset == s.End.Offset {
		return LineOf(first), nil
	}

	if s.Interpolate < 2 {
		return nil, core.Errorf(core.ErrInvalidInput, "cross-fade needs interpolate >= 2, got %d", s.Interpolate).
			WithRailway(r.ID).
			WithSubline(i)
	}
	second, err := b.offsetSlice(r.ID, i, s.End, raw)
	if err != nil {
		return nil, err
	}
	return crossFade(first, second, s.Interpolate), nil
}

// offsetSlice cuts the junction railway between the first and last raw
// coordinates, shifts it by the junction offset and orients it like raw.
func (b *Builder) offsetSlice(railway string, i int, j *dataset.Junction, raw orb.LineString) (orb.LineString, error) {
	neighbor, err := b.neighbor(railway, i, j.Railway)
	if err != nil {
		return nil, err
	}
	slice := geo.LineSlice(raw[0], raw[len(raw)-1], neighbor)
	if j.Offset != 0 {
		slice = geo.LineOffset(slice, j.Offset*b.unit)
	}
	return alignDirection(slice, raw), nil
}

func (b *Builder) neighbor(railway string, subline int, target string) (orb.LineString, error) {
	ls, ok := b.built[target]
	if !ok {
		return nil, core.TopologyError(railway, subline, target).WithZoom(b.zoom)
	}
	return ls, nil
}

// alignDirection returns ls reversed when its start lies closer to the end
// of ref than to its start.
func alignDirection(ls, ref orb.LineString) orb.LineString {
	if len(ls) == 0 || len(ref) == 0 {
		return ls
	}
	if geo.Distance(ref[0], ls[0]) <= geo.Distance(ref[len(ref)-1], ls[0]) {
		return ls
	}
	out := ls.Clone()
	out.Reverse()
	return out
}

// crossFade blends a into b over n steps, sampling both at the same fraction
// of their length. Only the n-1 inner vertices are produced.
func crossFade(a, b orb.LineString, n int) Line {
	lengthA, lengthB := geo.Length(a), geo.Length(b)
	out := make(Line, 0, n-1)
	for i := 1; i < n; i++ {
		t := float64(i) / float64(n)
		p1 := geo.Along(a, lengthA*t)
		p2 := geo.Along(b, lengthB*t)
		f := EaseInOutQuad(t)
		out = append(out, Vertex{Point: orb.Point{
			p1[0]*(1-f) + p2[0]*f,
			p1[1]*(1-f) + p2[1]*f,
		}})
	}
	return out
}

// appendLine appends src to dst, dropping the first vertex of src when it
// repeats the last vertex of dst.
func appendLine(dst, src Line) Line {
	if len(dst) > 0 && len(src) > 0 && dst[len(dst)-1].Point == src[0].Point {
		src = src[1:]
	}
	return append(dst, src...)
}

// stationOffsets locates every station of r along ls. The last station of a
// loop sits at the full length of the line.
func (b *Builder) stationOffsets(r dataset.Railway, ls orb.LineString, stations map[string]dataset.Station) ([]float64, error) {
	offsets := make([]float64, len(r.Stations))
	for i, id := range r.Stations {
		if r.Loop && i == len(r.Stations)-1 {
			offsets[i] = geo.Length(ls)
			continue
		}
		st, ok := stations[id]
		if !ok {
			return nil, core.MissingStationError(id).WithRailway(r.ID).WithZoom(b.zoom)
		}
		offsets[i] = geo.LocationAlongLine(ls, st.Coord)
	}
	return offsets, nil
}
