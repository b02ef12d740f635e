package tools

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/paulmach/orb"
	geojson "github.com/paulmach/go.geojson"

	"github.com/NERVsystems/mapfeatures/pkg/core"
)

// Feature type property values
const (
	typeStation = 1
)

// RailwayEntry holds the features built for one railway at one zoom level.
type RailwayEntry struct {
	ID          string
	Zoom        int
	Line        *geojson.Feature
	Underground *geojson.Feature
	Overground  *geojson.Feature
}

// Mixed reports whether the railway was split into layers.
func (e *RailwayEntry) Mixed() bool {
	return e.Underground != nil || e.Overground != nil
}

// Store indexes a built feature collection for the query tools.
type Store struct {
	mu       sync.RWMutex
	logger   *slog.Logger
	railways map[string]map[int]*RailwayEntry
	stations map[int][]*geojson.Feature
	airways  []*geojson.Feature
	zooms    []int
}

// NewStore creates an empty store.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		logger:   logger,
		railways: make(map[string]map[int]*RailwayEntry),
		stations: make(map[int][]*geojson.Feature),
	}
}

// Load replaces the store contents with the features of fc.
func (s *Store) Load(fc *geojson.FeatureCollection) error {
	if fc == nil {
		return core.NewError(core.ErrInvalidInput, "feature collection is nil")
	}

	railways := make(map[string]map[int]*RailwayEntry)
	stations := make(map[int][]*geojson.Feature)
	var airways []*geojson.Feature
	zoomSet := make(map[int]bool)

	for i, f := range fc.Features {
		typ, _ := numberProp(f, "type")
		zoomValue, hasZoom := numberProp(f, "zoom")
		zoom := int(zoomValue)

		if !hasZoom {
			airways = append(airways, f)
			continue
		}
		zoomSet[zoom] = true

		if int(typ) == typeStation {
			stations[zoom] = append(stations[zoom], f)
			continue
		}

		id, _ := f.Properties["id"].(string)
		railway, layer, err := splitFeatureID(id, zoom)
		if err != nil {
			return core.Errorf(core.ErrParseError, "feature %d: %v", i, err)
		}

		byZoom := railways[railway]
		if byZoom == nil {
			byZoom = make(map[int]*RailwayEntry)
			railways[railway] = byZoom
		}
		entry := byZoom[zoom]
		if entry == nil {
			entry = &RailwayEntry{ID: railway, Zoom: zoom}
			byZoom[zoom] = entry
		}
		switch layer {
		case "ug":
			entry.Underground = f
		case "og":
			entry.Overground = f
		default:
			entry.Line = f
		}
	}

	zooms := make([]int, 0, len(zoomSet))
	for z := range zoomSet {
		zooms = append(zooms, z)
	}
	sort.Ints(zooms)

	s.mu.Lock()
	s.railways = railways
	s.stations = stations
	s.airways = airways
	s.zooms = zooms
	s.mu.Unlock()

	s.logger.Info("feature store loaded",
		"railways", len(railways),
		"airways", len(airways),
		"zooms", zooms)
	return nil
}

// splitFeatureID splits "<railway>[.ug|.og].<zoom>" into its parts.
func splitFeatureID(id string, zoom int) (railway, layer string, err error) {
	suffix := "." + strconv.Itoa(zoom)
	if !strings.HasSuffix(id, suffix) || len(id) == len(suffix) {
		return "", "", fmt.Errorf("feature id %q does not end with zoom %d", id, zoom)
	}
	railway = strings.TrimSuffix(id, suffix)
	for _, l := range []string{"ug", "og"} {
		if strings.HasSuffix(railway, "."+l) {
			return strings.TrimSuffix(railway, "."+l), l, nil
		}
	}
	return railway, "", nil
}

// Zooms returns the zoom levels present in the store.
func (s *Store) Zooms() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]int(nil), s.zooms...)
}

// Railway returns the entry of a railway at a zoom level.
func (s *Store) Railway(id string, zoom int) (*RailwayEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byZoom, ok := s.railways[id]
	if !ok {
		return nil, core.Errorf(core.ErrNoResults, "railway %q is not in the built map", id).
			WithRailway(id).
			WithGuidance("Use list_railways to see the available railways")
	}
	entry, ok := byZoom[zoom]
	if !ok || entry.Line == nil {
		return nil, core.Errorf(core.ErrNoResults, "railway %q has no features", id).
			WithRailway(id).
			WithZoom(zoom)
	}
	return entry, nil
}

// Railways returns the railways built at zoom, sorted by id.
func (s *Store) Railways(zoom int) []*RailwayEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*RailwayEntry
	for _, byZoom := range s.railways {
		if e, ok := byZoom[zoom]; ok && e.Line != nil {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Stations returns the station polygons built at zoom.
func (s *Store) Stations(zoom int) []*geojson.Feature {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*geojson.Feature(nil), s.stations[zoom]...)
}

// Airways returns the airway features.
func (s *Store) Airways() []*geojson.Feature {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*geojson.Feature(nil), s.airways...)
}

// numberProp reads a numeric property. Freshly encoded features hold Go
// numbers while decoded ones hold float64.
func numberProp(f *geojson.Feature, key string) (float64, bool) {
	switch v := f.Properties[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// floatsProp reads a numeric array property.
func floatsProp(f *geojson.Feature, key string) []float64 {
	switch v := f.Properties[key].(type) {
	case []float64:
		return v
	case []interface{}:
		out := make([]float64, 0, len(v))
		for _, x := range v {
			if n, ok := x.(float64); ok {
				out = append(out, n)
			}
		}
		return out
	}
	return nil
}

// stringsProp reads a string array property.
func stringsProp(f *geojson.Feature, key string) []string {
	switch v := f.Properties[key].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, x := range v {
			if s, ok := x.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// lineString returns the horizontal path of a line feature.
func lineString(f *geojson.Feature) orb.LineString {
	if f == nil || f.Geometry == nil {
		return nil
	}
	ls := make(orb.LineString, 0, len(f.Geometry.LineString))
	for _, c := range f.Geometry.LineString {
		if len(c) >= 2 {
			ls = append(ls, orb.Point{c[0], c[1]})
		}
	}
	return ls
}

// multiPolygon returns the horizontal rings of a station polygon.
func multiPolygon(f *geojson.Feature) orb.MultiPolygon {
	if f == nil || f.Geometry == nil {
		return nil
	}
	mp := make(orb.MultiPolygon, 0, len(f.Geometry.MultiPolygon))
	for _, poly := range f.Geometry.MultiPolygon {
		p := make(orb.Polygon, 0, len(poly))
		for _, ring := range poly {
			r := make(orb.Ring, 0, len(ring))
			for _, c := range ring {
				if len(c) >= 2 {
					r = append(r, orb.Point{c[0], c[1]})
				}
			}
			p = append(p, r)
		}
		mp = append(mp, p)
	}
	return mp
}
