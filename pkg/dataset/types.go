// Package dataset holds the transit network description consumed by the
// feature builders: railways and their sublines, stations, station sites and
// airways.
package dataset

import (
	"strings"

	"github.com/paulmach/orb"
)

// SublineType selects how a subline's geometry is constructed.
type SublineType string

const (
	// SublineMain uses the subline's own coordinates.
	SublineMain SublineType = "main"
	// SublineSub derives the geometry from neighbouring railways.
	SublineSub SublineType = "sub"
	// SublineHybrid behaves as main at or above its switch zoom and as sub below it.
	SublineHybrid SublineType = "hybrid"
)

// BaseRailwayPrefix marks railways that only serve as geometry for others.
const BaseRailwayPrefix = "Base."

// Junction describes how a subline end blends into a neighbouring railway.
type Junction struct {
	Railway  string   `json:"railway,omitempty"`
	Offset   float64  `json:"offset,omitempty"`
	Altitude *float64 `json:"altitude,omitempty"`
	Zoom     *int     `json:"zoom,omitempty"`
}

// ActiveAt reports whether blending toward the neighbour applies at zoom.
// A junction without a switch zoom is always active.
func (j *Junction) ActiveAt(zoom int) bool {
	return j.Zoom == nil || zoom < *j.Zoom
}

// HasAltitude reports whether the junction declares a target altitude.
func (j *Junction) HasAltitude() bool {
	return j != nil && j.Altitude != nil
}

// Subline is one segment of a railway with its own construction rule.
type Subline struct {
	Type        SublineType `json:"type"`
	Coords      [][]float64 `json:"coords"`
	Start       *Junction   `json:"start,omitempty"`
	End         *Junction   `json:"end,omitempty"`
	Altitude    *float64    `json:"altitude,omitempty"`
	Opacity     *float64    `json:"opacity,omitempty"`
	Zoom        int         `json:"zoom,omitempty"`
	Interpolate int         `json:"interpolate,omitempty"`
}

// Points returns the subline's raw coordinates as a line.
func (s Subline) Points() orb.LineString {
	ls := make(orb.LineString, 0, len(s.Coords))
	for _, c := range s.Coords {
		if len(c) >= 2 {
			ls = append(ls, orb.Point{c[0], c[1]})
		}
	}
	return ls
}

// UsesMainGeometry reports whether the subline is built from its own
// coordinates at zoom.
func (s Subline) UsesMainGeometry(zoom int) bool {
	return s.Type == SublineMain || (s.Type == SublineHybrid && zoom >= s.Zoom)
}

// Dependencies returns the railways the subline's junctions refer to.
func (s Subline) Dependencies() []string {
	var deps []string
	for _, j := range []*Junction{s.Start, s.End} {
		if j != nil && j.Railway != "" {
			deps = append(deps, j.Railway)
		}
	}
	return deps
}

// Railway is a line of the network.
type Railway struct {
	ID       string    `json:"id"`
	Sublines []Subline `json:"sublines"`
	Color    string    `json:"color"`
	Altitude float64   `json:"altitude,omitempty"`
	Loop     bool      `json:"loop,omitempty"`
	Stations []string  `json:"stations,omitempty"`
}

// IsBase reports whether the railway is geometry-only.
func (r Railway) IsBase() bool {
	return strings.HasPrefix(r.ID, BaseRailwayPrefix)
}

// Station is a stop on a railway.
type Station struct {
	ID       string    `json:"id"`
	Railway  string    `json:"railway"`
	Coord    orb.Point `json:"coord"`
	Altitude float64   `json:"altitude,omitempty"`
}

// Group is a list of stations drawn as one connected platform shape.
type Group []string

// Site is a physical location made of one or more station groups.
type Site []Group

// Airway is a flight path drawn independently of zoom.
type Airway struct {
	ID     string         `json:"id"`
	Coords orb.LineString `json:"coords"`
	Color  string         `json:"color"`
}

// Dataset is the complete, read-only input of a feature build.
type Dataset struct {
	Railways []Railway
	Stations map[string]Station
	Sites    []Site
	Airways  []Airway
}

// Railway returns the railway with the given id.
func (d *Dataset) Railway(id string) (Railway, bool) {
	for _, r := range d.Railways {
		if r.ID == id {
			return r, true
		}
	}
	return Railway{}, false
}
