package features

import (
	"math"

	"github.com/NERVsystems/mapfeatures/pkg/geo"
)

// interpolateCoordinates resamples the first start and the last end
// kilometers of coords every interpolationStep, replacing the original
// vertices in those windows. Locations are measured on the original line.
func interpolateCoordinates(coords Line, start, end float64) Line {
	if (start <= 0 && end <= 0) || len(coords) == 0 {
		return coords
	}

	const epsilon = 1e-9
	base := coords.LineString()
	length := geo.Length(base)
	out := coords

	if start > 0 {
		var head Line
		for k := 0; ; k++ {
			d := float64(k) * interpolationStep
			if d > start+epsilon {
				break
			}
			head = append(head, Vertex{Point: geo.Along(base, math.Min(d, length))})
			if d >= length {
				break
			}
		}

		i := 0
		for ; i < len(out); i++ {
			if geo.LocationAlongLine(base, out[i].Point) > start {
				break
			}
		}
		out = concatLines(head, out[i:])
	}

	if end > 0 {
		var tail Line
		for k := 0; ; k++ {
			d := length - float64(k)*interpolationStep
			if d < length-end-epsilon {
				break
			}
			tail = append(tail, Vertex{Point: geo.Along(base, math.Max(d, 0))})
			if d <= 0 {
				break
			}
		}
		for l, r := 0, len(tail)-1; l < r; l, r = l+1, r-1 {
			tail[l], tail[r] = tail[r], tail[l]
		}

		i := len(out)
		for ; i > 0; i-- {
			if geo.LocationAlongLine(base, out[i-1].Point) < length-end {
				break
			}
		}
		out = concatLines(out[:i], tail)
	}

	return out
}

// concatLines returns a new line holding a followed by b.
func concatLines(a, b Line) Line {
	out := make(Line, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
