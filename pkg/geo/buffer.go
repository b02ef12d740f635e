package geo

import (
	"math"
	"sort"

	"github.com/ctessum/geom"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// bufferSteps is the number of segments approximating a full circle.
const bufferSteps = 32

// Buffer returns the area within radius kilometers of g. Points, lines,
// polygons and their multi variants are supported; other geometries and
// non-positive radii yield an empty result.
func Buffer(g orb.Geometry, radius float64) orb.MultiPolygon {
	if radius <= 0 || g == nil {
		return nil
	}

	switch g := g.(type) {
	case orb.Point:
		return orb.MultiPolygon{circle(g, radius)}
	case orb.MultiPoint:
		parts := make([]orb.Polygon, 0, len(g))
		for _, p := range g {
			parts = append(parts, circle(p, radius))
		}
		return Union(parts...)
	case orb.LineString:
		return Union(capsules(g, radius)...)
	case orb.MultiLineString:
		var parts []orb.Polygon
		for _, ls := range g {
			parts = append(parts, capsules(ls, radius)...)
		}
		return Union(parts...)
	case orb.Polygon:
		return Union(polygonBuffer(g, radius)...)
	case orb.MultiPolygon:
		var parts []orb.Polygon
		for _, p := range g {
			parts = append(parts, polygonBuffer(p, radius)...)
		}
		return Union(parts...)
	}
	return nil
}

func circle(center orb.Point, radius float64) orb.Polygon {
	frame := newLocalFrame(center)
	ring := make(orb.Ring, 0, bufferSteps+1)
	for i := 0; i < bufferSteps; i++ {
		a := 2 * math.Pi * float64(i) / bufferSteps
		ring = append(ring, frame.unproject(orb.Point{radius * math.Cos(a), radius * math.Sin(a)}))
	}
	ring = append(ring, ring[0])
	return orb.Polygon{ring}
}

// capsules returns one stadium shaped polygon per segment of ls.
func capsules(ls orb.LineString, radius float64) []orb.Polygon {
	switch len(ls) {
	case 0:
		return nil
	case 1:
		return []orb.Polygon{circle(ls[0], radius)}
	}

	frame := newLocalFrame(ls[0])
	var out []orb.Polygon
	for i := 0; i < len(ls)-1; i++ {
		a, b := frame.project(ls[i]), frame.project(ls[i+1])
		if a.Equal(b) {
			out = append(out, circle(ls[i], radius))
			continue
		}

		theta := math.Atan2(b[1]-a[1], b[0]-a[0])
		half := bufferSteps / 2
		ring := make(orb.Ring, 0, bufferSteps+3)
		for j := 0; j <= half; j++ {
			t := theta - math.Pi/2 + math.Pi*float64(j)/float64(half)
			ring = append(ring, frame.unproject(orb.Point{b[0] + radius*math.Cos(t), b[1] + radius*math.Sin(t)}))
		}
		for j := 0; j <= half; j++ {
			t := theta + math.Pi/2 + math.Pi*float64(j)/float64(half)
			ring = append(ring, frame.unproject(orb.Point{a[0] + radius*math.Cos(t), a[1] + radius*math.Sin(t)}))
		}
		ring = append(ring, ring[0])
		out = append(out, orb.Polygon{ring})
	}
	return out
}

func polygonBuffer(p orb.Polygon, radius float64) []orb.Polygon {
	if len(p) == 0 {
		return nil
	}
	parts := []orb.Polygon{{p[0].Clone()}}
	for _, ring := range p {
		parts = append(parts, capsules(orb.LineString(ring), radius)...)
	}
	return parts
}

// Union merges polygons into a single, possibly multi-part, polygon.
// A single input is returned as is.
func Union(polys ...orb.Polygon) orb.MultiPolygon {
	switch len(polys) {
	case 0:
		return nil
	case 1:
		return orb.MultiPolygon{polys[0].Clone()}
	}

	acc := toGeomPolygon(polys[0])
	for _, p := range polys[1:] {
		acc = acc.Union(toGeomPolygon(p)).(geom.Polygon)
	}
	return fromGeomPolygon(acc)
}

func toGeomPolygon(p orb.Polygon) geom.Polygon {
	out := make(geom.Polygon, 0, len(p))
	for _, ring := range p {
		n := len(ring)
		if n > 1 && ring[0].Equal(ring[n-1]) {
			n--
		}
		path := make(geom.Path, n)
		for i := 0; i < n; i++ {
			path[i] = geom.Point{X: ring[i][0], Y: ring[i][1]}
		}
		out = append(out, path)
	}
	return out
}

// fromGeomPolygon rebuilds polygon nesting from the flat ring list produced by
// the clipper. Rings nested an even number of times are shells, the others are
// holes of their smallest enclosing shell.
func fromGeomPolygon(p geom.Polygon) orb.MultiPolygon {
	type ringInfo struct {
		ring  orb.Ring
		area  float64
		depth int
	}

	rings := make([]ringInfo, 0, len(p))
	for _, path := range p {
		if len(path) < 3 {
			continue
		}
		ring := make(orb.Ring, 0, len(path)+1)
		for _, pt := range path {
			ring = append(ring, orb.Point{pt.X, pt.Y})
		}
		ring = append(ring, ring[0])
		rings = append(rings, ringInfo{ring: ring, area: math.Abs(planar.Area(ring))})
	}

	// larger rings first so a shell always precedes its holes
	sort.SliceStable(rings, func(i, j int) bool { return rings[i].area > rings[j].area })

	parent := make([]int, len(rings))
	for i := range rings {
		parent[i] = -1
		probe := rings[i].ring[0]
		for j := i - 1; j >= 0; j-- {
			if planar.RingContains(rings[j].ring, probe) {
				parent[i] = j
				rings[i].depth = rings[j].depth + 1
				break
			}
		}
	}

	var out orb.MultiPolygon
	shellIndex := make(map[int]int)
	for i, r := range rings {
		if r.depth%2 != 0 {
			continue
		}
		if r.ring.Orientation() != orb.CCW {
			r.ring.Reverse()
		}
		shellIndex[i] = len(out)
		out = append(out, orb.Polygon{r.ring})
	}
	for i, r := range rings {
		if r.depth%2 == 0 {
			continue
		}
		k, ok := shellIndex[parent[i]]
		if !ok {
			continue
		}
		if r.ring.Orientation() != orb.CW {
			r.ring.Reverse()
		}
		out[k] = append(out[k], r.ring)
	}
	return out
}
