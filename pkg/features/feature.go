// Package features synthesizes the per-zoom 3D map features of a transit
// network: railway lines blended at their junctions, underground and
// overground layers, and station area polygons.
package features

import (
	"math"

	"github.com/paulmach/orb"
)

// altitudeTransition is the along-line distance over which a subline end
// blends into its junction altitude.
const altitudeTransition = 0.4

// interpolationStep is the spacing of resampled vertices near altitude
// transitions.
const interpolationStep = 0.05

// metersPerUnit converts altitudes expressed in units to meters.
const metersPerUnit = 1000

// Unit returns the zoom-dependent scale applied to offsets, buffer radii and
// altitudes. It halves with every zoom level.
func Unit(zoom int) float64 {
	return math.Pow(2, float64(14-zoom)) * .1
}

// EaseInOutQuad is the blending curve used for every spatial and altitude
// transition.
func EaseInOutQuad(t float64) float64 {
	if t < .5 {
		return 2 * t * t
	}
	return 1 - 2*(1-t)*(1-t)
}

// Vertex is a line vertex with an optional altitude in meters (Z) and an
// optional opacity (W).
type Vertex struct {
	Point orb.Point
	Z     float64
	W     float64
	HasZ  bool
	HasW  bool
}

// Coords returns the vertex as a GeoJSON position.
func (v Vertex) Coords() []float64 {
	switch {
	case v.HasW:
		return []float64{v.Point[0], v.Point[1], v.Z, v.W}
	case v.HasZ:
		return []float64{v.Point[0], v.Point[1], v.Z}
	}
	return []float64{v.Point[0], v.Point[1]}
}

// Line is a sequence of vertices.
type Line []Vertex

// LineOf wraps plain points into a line without altitude or opacity.
func LineOf(ls orb.LineString) Line {
	out := make(Line, len(ls))
	for i, p := range ls {
		out[i] = Vertex{Point: p}
	}
	return out
}

// LineString returns the 2D geometry of the line.
func (l Line) LineString() orb.LineString {
	ls := make(orb.LineString, len(l))
	for i, v := range l {
		ls[i] = v.Point
	}
	return ls
}

// Clone returns a copy of the line that shares no storage with it.
func (l Line) Clone() Line {
	if l == nil {
		return nil
	}
	out := make(Line, len(l))
	copy(out, l)
	return out
}

// FeatureType is the discriminator written to the "type" property.
type FeatureType int

const (
	// TypeLine marks railway and airway lines.
	TypeLine FeatureType = 0
	// TypeStation marks station area polygons.
	TypeStation FeatureType = 1
)

// GeometryKind selects which geometry field of a Feature is populated.
type GeometryKind int

const (
	GeometryLineString GeometryKind = iota
	GeometryMultiLineString
	GeometryMultiPolygon
)

// Feature is one synthesized output feature. It is not modified after being
// appended to a build result.
type Feature struct {
	ID           string
	Type         FeatureType
	Kind         GeometryKind
	Color        string
	OutlineColor string
	Width        float64
	Zoom         int
	Altitude     *float64

	// Static features are drawn at every zoom and carry no zoom property.
	Static bool

	// Length is set on airways, in kilometers.
	Length *float64
	// StationOffsets holds the along-line location of each station of a railway.
	StationOffsets []float64
	// StationIDs lists the stations of a railway in offset order, or the
	// visible stations merged into a station polygon.
	StationIDs []string
	// VertexAltitude is set when polygon vertices carry Altitude as z.
	VertexAltitude bool

	Line    Line
	Lines   []Line
	Polygon orb.MultiPolygon
}

func float64Ptr(v float64) *float64 {
	return &v
}
