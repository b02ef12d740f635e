package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// NearestPoint describes the projection of a point onto a line.
type NearestPoint struct {
	// Point is the closest point on the line.
	Point orb.Point
	// Index is the index of the segment holding Point.
	Index int
	// Location is the distance from the start of the line to Point.
	Location float64
	// Distance is the signed perpendicular offset of the projected point,
	// positive on the right-hand side of the line direction.
	Distance float64
	// Bearing is the direction in which positive offsets point at Point.
	Bearing float64
}

// NearestPointOnLine projects p onto ls. Ties between segments resolve to the
// earliest segment. Degenerate lines yield a zero location.
func NearestPointOnLine(ls orb.LineString, p orb.Point) NearestPoint {
	switch len(ls) {
	case 0:
		return NearestPoint{Point: p, Bearing: 90}
	case 1:
		return NearestPoint{Point: ls[0], Distance: Distance(p, ls[0]), Bearing: 90}
	}

	best := NearestPoint{Distance: math.Inf(1)}
	bestAbs := math.Inf(1)
	var travelled float64

	for i := 0; i < len(ls)-1; i++ {
		a, b := ls[i], ls[i+1]
		frame := newLocalFrame(a)
		d := frame.project(b)
		q := frame.project(p)

		var t float64
		if l2 := dot(d, d); l2 > 0 {
			t = math.Max(0, math.Min(1, dot(q, d)/l2))
		}

		var c orb.Point
		switch {
		case t <= 0:
			c = a
		case t >= 1:
			c = b
		default:
			c = frame.unproject(orb.Point{d[0] * t, d[1] * t})
		}

		dist := Distance(p, c)
		if dist < bestAbs-1e-12 {
			signed := dist
			if cross(d, q) > 0 {
				signed = -dist
			}
			bestAbs = dist
			best = NearestPoint{
				Point:    c,
				Index:    i,
				Location: travelled + Distance(a, c),
				Distance: signed,
				Bearing:  Bearing(a, b) + 90,
			}
		}
		travelled += Distance(a, b)
	}

	return best
}

// LocationAlongLine returns the distance from the start of ls to the
// projection of p onto it.
func LocationAlongLine(ls orb.LineString, p orb.Point) float64 {
	return NearestPointOnLine(ls, p).Location
}
