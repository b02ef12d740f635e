package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// LineSlice returns the part of ls between the projections of start and stop,
// in the direction of ls.
func LineSlice(start, stop orb.Point, ls orb.LineString) orb.LineString {
	if len(ls) == 0 {
		return nil
	}

	from := NearestPointOnLine(ls, start)
	to := NearestPointOnLine(ls, stop)
	if to.Location < from.Location {
		from, to = to, from
	}

	out := orb.LineString{from.Point}
	for j := from.Index + 1; j <= to.Index && j < len(ls); j++ {
		out = appendDistinct(out, ls[j])
	}
	return appendDistinct(out, to.Point)
}

func appendDistinct(ls orb.LineString, p orb.Point) orb.LineString {
	if len(ls) > 0 && ls[len(ls)-1].Equal(p) {
		return ls
	}
	return append(ls, p)
}

// LineOffset shifts ls laterally by distance kilometers, to the right of its
// direction for positive values. Interior vertices are joined with mitres.
// Each vertex is offset in a local frame centred on it.
func LineOffset(ls orb.LineString, distance float64) orb.LineString {
	out := ls.Clone()
	if len(ls) < 2 || distance == 0 {
		return out
	}

	// seg[i] is the segment whose direction segment i uses; zero-length
	// segments borrow the direction of a neighbour
	seg := make([]int, len(ls)-1)
	found := false
	for i := range seg {
		seg[i] = -1
		if !ls[i].Equal(ls[i+1]) {
			seg[i] = i
			found = true
		}
	}
	if !found {
		return out
	}
	for i := 1; i < len(seg); i++ {
		if seg[i] < 0 && seg[i-1] >= 0 {
			seg[i] = seg[i-1]
		}
	}
	for i := len(seg) - 2; i >= 0; i-- {
		if seg[i] < 0 && seg[i+1] >= 0 {
			seg[i] = seg[i+1]
		}
	}

	for k := range ls {
		frame := newLocalFrame(ls[k])
		direction := func(i int) orb.Point {
			a, b := frame.project(ls[seg[i]]), frame.project(ls[seg[i]+1])
			dx, dy := b[0]-a[0], b[1]-a[1]
			l := math.Hypot(dx, dy)
			return orb.Point{dx / l, dy / l}
		}
		normal := func(d orb.Point) orb.Point {
			return orb.Point{d[1] * distance, -d[0] * distance}
		}

		var shifted orb.Point
		switch k {
		case 0:
			shifted = normal(direction(0))
		case len(ls) - 1:
			shifted = normal(direction(len(seg) - 1))
		default:
			r, s := direction(k-1), direction(k)
			n1, n2 := normal(r), normal(s)
			denom := cross(r, s)
			if math.Abs(denom) < 1e-12 {
				shifted = n1
				break
			}
			t := cross(orb.Point{n2[0] - n1[0], n2[1] - n1[1]}, s) / denom
			shifted = orb.Point{n1[0] + r[0]*t, n1[1] + r[1]*t}
		}
		out[k] = frame.unproject(shifted)
	}
	return out
}
