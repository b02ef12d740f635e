package features

import (
	"github.com/NERVsystems/mapfeatures/pkg/dataset"
	"github.com/NERVsystems/mapfeatures/pkg/geo"
)

// AirwayFeature returns the zoom independent line feature of a flight path.
// Its length is recorded in kilometers.
func AirwayFeature(a dataset.Airway, width, altitude float64) *Feature {
	return &Feature{
		ID:       a.ID,
		Type:     TypeLine,
		Kind:     GeometryLineString,
		Color:    a.Color,
		Width:    width,
		Static:   true,
		Altitude: float64Ptr(altitude),
		Length:   float64Ptr(geo.Length(a.Coords)),
		Line:     LineOf(a.Coords),
	}
}
