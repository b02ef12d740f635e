package features

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/NERVsystems/mapfeatures/pkg/geo"
)

// walk returns the first index, the stop index and the step used to walk a
// line from one of its ends. The stop index itself is never visited.
func walk(n int, reverse bool) (start, stop, step int) {
	if reverse {
		return n - 1, 0, -1
	}
	return 0, n - 1, 1
}

// smoothCoords displaces the vertices near one end of coords so that the end
// sits offset units beside neighbor, fading out over the transition window.
func smoothCoords(coords Line, neighbor orb.LineString, offset, unit float64, reverse bool) Line {
	out := coords.Clone()
	if len(out) < 2 || len(neighbor) == 0 {
		return out
	}

	start, stop, step := walk(len(out), reverse)
	base := coords.LineString()
	nearest := geo.NearestPointOnLine(neighbor, base[start])
	baseOffset := offset*unit - nearest.Distance
	baseLocation := geo.LocationAlongLine(base, base[start])
	transition := math.Min(math.Abs(offset)*.75+.75, geo.Length(base))
	if transition <= 0 {
		return out
	}

	factors := make([]float64, len(out))
	for i := start; i != stop; i += step {
		distance := math.Abs(geo.LocationAlongLine(base, base[i]) - baseLocation)
		if distance > transition {
			break
		}
		factors[i] = EaseInOutQuad(1 - distance/transition)
	}
	for i := start; i != stop && factors[i] > 0; i += step {
		out[i].Point = geo.Destination(out[i].Point, baseOffset*factors[i], nearest.Bearing)
	}
	return out
}

// smoothAltitude blends the altitude of the vertices near one end of coords
// toward altitude units.
func smoothAltitude(coords Line, altitude, unit float64, reverse bool) Line {
	out := coords.Clone()
	if len(out) == 0 {
		return out
	}

	start, stop, step := walk(len(out), reverse)
	base := coords.LineString()
	baseLocation := geo.LocationAlongLine(base, base[start])
	target := altitude * unit * metersPerUnit

	for i := start; i != stop; i += step {
		distance := math.Abs(geo.LocationAlongLine(base, base[i]) - baseLocation)
		if distance > altitudeTransition {
			break
		}
		out[i].Z = target + (out[i].Z-target)*EaseInOutQuad(distance/altitudeTransition)
		out[i].HasZ = true
	}
	return out
}
