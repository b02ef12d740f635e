package geo

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

const tolerance = 1e-6

func TestDistance(t *testing.T) {
	tests := []struct {
		name     string
		a, b     orb.Point
		expected float64
	}{
		{"same point", orb.Point{139.7, 35.6}, orb.Point{139.7, 35.6}, 0},
		{"one degree of latitude", orb.Point{0, 0}, orb.Point{0, 1}, kmPerDegree},
		{"one degree of longitude at equator", orb.Point{0, 0}, orb.Point{1, 0}, kmPerDegree},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.a, tt.b)
			if math.Abs(got-tt.expected) > 1e-3 {
				t.Errorf("expected %f, got %f", tt.expected, got)
			}
		})
	}
}

func TestDestinationRoundTrip(t *testing.T) {
	start := orb.Point{139.76, 35.68}
	for _, bearing := range []float64{0, 45, 90, 180, 270} {
		p := Destination(start, 2.5, bearing)
		if d := Distance(start, p); math.Abs(d-2.5) > 1e-5 {
			t.Errorf("bearing %v: expected distance 2.5, got %f", bearing, d)
		}
	}

	if p := Destination(start, 0, 90); !p.Equal(start) {
		t.Errorf("zero distance should return the start point, got %v", p)
	}

	back := Destination(start, -1, 90)
	if d := Distance(back, Destination(start, 1, 270)); d > 1e-3 {
		t.Errorf("negative distance should travel backwards, off by %f km", d)
	}

	dest := Destination(start, 1, 90)
	home := Destination(dest, Distance(dest, start), Bearing(dest, start))
	if d := Distance(start, home); d > 1e-3 {
		t.Errorf("return leg missed the start by %f km", d)
	}
}

func TestLengthAndAlong(t *testing.T) {
	ls := orb.LineString{{0, 0}, {0, 1}, {0, 2}}

	if got := Length(ls); math.Abs(got-2*kmPerDegree) > 1e-3 {
		t.Fatalf("expected length %f, got %f", 2*kmPerDegree, got)
	}

	mid := Along(ls, kmPerDegree*1.5)
	if math.Abs(mid[1]-1.5) > 1e-6 || math.Abs(mid[0]) > 1e-9 {
		t.Errorf("expected point near (0, 1.5), got %v", mid)
	}

	if p := Along(ls, -1); !p.Equal(ls[0]) {
		t.Errorf("negative distance should clamp to start, got %v", p)
	}
	if p := Along(ls, 1e6); !p.Equal(ls[2]) {
		t.Errorf("distance past the end should clamp to end, got %v", p)
	}
	if p := Along(orb.LineString{{5, 5}}, 3); !p.Equal(orb.Point{5, 5}) {
		t.Errorf("single point line should return its point, got %v", p)
	}
	if p := Along(nil, 3); !p.Equal(orb.Point{}) {
		t.Errorf("empty line should return the zero point, got %v", p)
	}
}

func TestNearestPointOnLine(t *testing.T) {
	ls := orb.LineString{{0, 0}, {0, 10}}

	east := NearestPointOnLine(ls, orb.Point{0.01, 5})
	if east.Index != 0 {
		t.Errorf("expected segment 0, got %d", east.Index)
	}
	if math.Abs(east.Point[1]-5) > 1e-6 || math.Abs(east.Point[0]) > 1e-9 {
		t.Errorf("expected projection near (0, 5), got %v", east.Point)
	}
	if math.Abs(east.Location-5*kmPerDegree) > 1e-3 {
		t.Errorf("expected location %f, got %f", 5*kmPerDegree, east.Location)
	}
	if east.Distance <= 0 {
		t.Errorf("point east of a northbound line should have a positive offset, got %f", east.Distance)
	}
	if math.Abs(east.Bearing-90) > 1e-9 {
		t.Errorf("expected bearing 90, got %f", east.Bearing)
	}

	west := NearestPointOnLine(ls, orb.Point{-0.01, 5})
	if west.Distance >= 0 {
		t.Errorf("point west of a northbound line should have a negative offset, got %f", west.Distance)
	}
	if math.Abs(west.Distance+east.Distance) > 1e-9 {
		t.Errorf("mirrored points should have opposite offsets: %f vs %f", west.Distance, east.Distance)
	}

	beyond := NearestPointOnLine(ls, orb.Point{0, 12})
	if !beyond.Point.Equal(orb.Point{0, 10}) {
		t.Errorf("projection past the end should clamp to the end vertex, got %v", beyond.Point)
	}
}

func TestNearestPointOnDegenerateLines(t *testing.T) {
	p := orb.Point{1, 1}

	zero := NearestPointOnLine(orb.LineString{{2, 2}, {2, 2}}, p)
	if zero.Location != 0 {
		t.Errorf("zero-length line should give location 0, got %f", zero.Location)
	}
	if !zero.Point.Equal(orb.Point{2, 2}) {
		t.Errorf("expected the line's only position, got %v", zero.Point)
	}

	single := NearestPointOnLine(orb.LineString{{2, 2}}, p)
	if single.Location != 0 || !single.Point.Equal(orb.Point{2, 2}) {
		t.Errorf("single point line: unexpected projection %+v", single)
	}

	empty := NearestPointOnLine(nil, p)
	if empty.Location != 0 || empty.Distance != 0 {
		t.Errorf("empty line should give a zero projection, got %+v", empty)
	}

	if loc := LocationAlongLine(orb.LineString{{2, 2}, {2, 2}}, orb.Point{2, 2}); loc != 0 {
		t.Errorf("expected location 0, got %f", loc)
	}
}

func TestLineSlice(t *testing.T) {
	line := orb.LineString{{0, 0}, {0, 1}, {0, 2}, {0, 3}}

	tests := []struct {
		name        string
		start, stop orb.Point
		expected    orb.LineString
	}{
		{
			name:     "full line",
			start:    orb.Point{0, 0},
			stop:     orb.Point{0, 3},
			expected: line,
		},
		{
			name:     "interior span",
			start:    orb.Point{0.001, 0.5},
			stop:     orb.Point{-0.001, 2.5},
			expected: orb.LineString{{0, 0.5}, {0, 1}, {0, 2}, {0, 2.5}},
		},
		{
			name:     "reversed boundary keeps line direction",
			start:    orb.Point{0, 2.5},
			stop:     orb.Point{0, 0.5},
			expected: orb.LineString{{0, 0.5}, {0, 1}, {0, 2}, {0, 2.5}},
		},
		{
			name:     "span starting on a vertex",
			start:    orb.Point{0, 1},
			stop:     orb.Point{0, 3},
			expected: orb.LineString{{0, 1}, {0, 2}, {0, 3}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LineSlice(tt.start, tt.stop, line)
			if len(got) != len(tt.expected) {
				t.Fatalf("expected %d vertices, got %d: %v", len(tt.expected), len(got), got)
			}
			for i := range got {
				if math.Abs(got[i][0]-tt.expected[i][0]) > tolerance || math.Abs(got[i][1]-tt.expected[i][1]) > tolerance {
					t.Errorf("vertex %d: expected %v, got %v", i, tt.expected[i], got[i])
				}
			}
			if Length(got) > Length(line)+1e-9 {
				t.Errorf("slice is longer than the line it was cut from")
			}
		})
	}
}

func TestLineOffset(t *testing.T) {
	line := orb.LineString{{0, 0}, {0, 1}, {0, 2}}

	right := LineOffset(line, 1)
	if len(right) != len(line) {
		t.Fatalf("expected %d vertices, got %d", len(line), len(right))
	}
	for i, p := range right {
		nearest := NearestPointOnLine(line, p)
		if math.Abs(nearest.Distance-1) > 1e-3 {
			t.Errorf("vertex %d: expected offset 1 km, got %f", i, nearest.Distance)
		}
		if p[0] <= 0 {
			t.Errorf("vertex %d: positive offset of a northbound line should move east, got %v", i, p)
		}
	}

	left := LineOffset(line, -0.5)
	for i, p := range left {
		if d := NearestPointOnLine(line, p).Distance; math.Abs(d+0.5) > 1e-3 {
			t.Errorf("vertex %d: expected offset -0.5 km, got %f", i, d)
		}
	}

	corner := LineOffset(orb.LineString{{0, 0}, {0, 0.01}, {0.01, 0.01}}, 0.1)
	if d := NearestPointOnLine(orb.LineString{{0, 0}, {0, 0.01}, {0.01, 0.01}}, corner[1]).Distance; d < 0.099 {
		t.Errorf("mitred corner should stay at least the offset away, got %f", d)
	}

	same := LineOffset(orb.LineString{{3, 3}, {3, 3}}, 1)
	if !same[0].Equal(orb.Point{3, 3}) || !same[1].Equal(orb.Point{3, 3}) {
		t.Errorf("zero-length line should be returned unchanged, got %v", same)
	}
}

func TestRound(t *testing.T) {
	if got := Round(139.123456789, 7); got != 139.1234568 {
		t.Errorf("expected 139.1234568, got %v", got)
	}
	if got := Round(-0.000000049, 7); got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
}
