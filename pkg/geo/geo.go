// Package geo provides the geometry kernel used to synthesize map features.
//
// Coordinates are longitude/latitude pairs held in orb types. Every length,
// location, offset and radius is expressed in kilometers, matching the unit
// the feature builders scale their zoom-dependent offsets by.
package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// kmPerDegree is the length of one degree of latitude in kilometers.
const kmPerDegree = orb.EarthRadius / 1000 * math.Pi / 180

// Distance returns the great-circle distance between two points in kilometers.
func Distance(a, b orb.Point) float64 {
	return geo.DistanceHaversine(a, b) / 1000
}

// Bearing returns the initial bearing from a to b in degrees.
func Bearing(a, b orb.Point) float64 {
	return geo.Bearing(a, b)
}

// Destination returns the point reached by travelling distance kilometers
// from p along bearing. A negative distance travels the opposite way.
func Destination(p orb.Point, distance, bearing float64) orb.Point {
	if distance == 0 {
		return p
	}
	return geo.PointAtBearingAndDistance(p, bearing, distance*1000)
}

// Length returns the length of a line in kilometers.
func Length(ls orb.LineString) float64 {
	var total float64
	for i := 1; i < len(ls); i++ {
		total += Distance(ls[i-1], ls[i])
	}
	return total
}

// Along returns the point at distance kilometers from the start of the line.
// Distances past either end clamp to the end points.
func Along(ls orb.LineString, distance float64) orb.Point {
	switch len(ls) {
	case 0:
		return orb.Point{}
	case 1:
		return ls[0]
	}
	if distance <= 0 {
		return ls[0]
	}
	p, _ := geo.PointAtDistanceAlongLine(ls, distance*1000)
	return p
}

// Round rounds v to the given number of decimal digits.
func Round(v float64, precision int) float64 {
	f := math.Pow(10, float64(precision))
	return math.Round(v*f) / f
}

// localFrame is an equirectangular projection around an origin, in kilometers.
// It is accurate over the extent of a railway or a station site.
type localFrame struct {
	origin orb.Point
	kx, ky float64
}

func newLocalFrame(origin orb.Point) localFrame {
	kx := kmPerDegree * math.Cos(origin[1]*math.Pi/180)
	if kx < 1e-9 {
		kx = 1e-9
	}
	return localFrame{origin: origin, kx: kx, ky: kmPerDegree}
}

func (f localFrame) project(p orb.Point) orb.Point {
	return orb.Point{(p[0] - f.origin[0]) * f.kx, (p[1] - f.origin[1]) * f.ky}
}

func (f localFrame) unproject(p orb.Point) orb.Point {
	return orb.Point{f.origin[0] + p[0]/f.kx, f.origin[1] + p[1]/f.ky}
}

func cross(a, b orb.Point) float64 {
	return a[0]*b[1] - a[1]*b[0]
}

func dot(a, b orb.Point) float64 {
	return a[0]*b[0] + a[1]*b[1]
}
