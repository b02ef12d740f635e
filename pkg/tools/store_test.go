package tools

import (
	"io"
	"log/slog"
	"testing"

	geojson "github.com/paulmach/go.geojson"

	"github.com/NERVsystems/mapfeatures/pkg/core"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func square(lon, lat, half float64) [][][]float64 {
	return [][][]float64{{
		{lon - half, lat - half},
		{lon + half, lat - half},
		{lon + half, lat + half},
		{lon - half, lat + half},
		{lon - half, lat - half},
	}}
}

// testCollection returns features shaped like a pipeline build at zoom 15:
// a subway, a railway split into layers, two station polygons and an airway.
func testCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	subway := geojson.NewLineStringFeature([][]float64{
		{139.70, 35.68, -50}, {139.71, 35.68, -50}, {139.72, 35.68, -50},
	})
	subway.SetProperty("id", "Tokyo.Subway.15")
	subway.SetProperty("type", 0)
	subway.SetProperty("color", "#F62E36")
	subway.SetProperty("width", 8.0)
	subway.SetProperty("zoom", 15)
	subway.SetProperty("altitude", -50.0)
	subway.SetProperty("station-offsets", []float64{0, 1.81})

	og := geojson.NewMultiLineStringFeature([][]float64{{139.72, 35.69}, {139.73, 35.69}})
	og.SetProperty("id", "Tokyo.Mixed.og.15")
	og.SetProperty("type", 0)
	og.SetProperty("zoom", 15)
	og.SetProperty("altitude", 0.0)

	ug := geojson.NewMultiLineStringFeature([][]float64{{139.73, 35.69, -50}, {139.74, 35.69, -50}})
	ug.SetProperty("id", "Tokyo.Mixed.ug.15")
	ug.SetProperty("type", 0)
	ug.SetProperty("zoom", 15)
	ug.SetProperty("altitude", -50.0)

	mixed := geojson.NewLineStringFeature([][]float64{
		{139.72, 35.69, 0}, {139.73, 35.69, 0}, {139.74, 35.69, -50},
	})
	mixed.SetProperty("id", "Tokyo.Mixed.15")
	mixed.SetProperty("type", 0)
	mixed.SetProperty("color", "#00A7DB")
	mixed.SetProperty("width", 8.0)
	mixed.SetProperty("zoom", 15)
	mixed.SetProperty("station-offsets", []float64{0.4})

	under := geojson.NewMultiPolygonFeature(square(139.70, 35.68, 0.0005))
	under.SetProperty("type", 1)
	under.SetProperty("zoom", 15)
	under.SetProperty("altitude", -50.0)
	under.SetProperty("ids", []string{"Tokyo.Subway.A"})

	over := geojson.NewMultiPolygonFeature(square(139.72, 35.68, 0.0005))
	over.SetProperty("type", 1)
	over.SetProperty("zoom", 15)
	over.SetProperty("altitude", 0.0)
	over.SetProperty("ids", []string{"Tokyo.Subway.B", "Tokyo.Mixed.B"})

	airway := geojson.NewLineStringFeature([][]float64{{140.38, 35.77}, {140.0, 35.70}})
	airway.SetProperty("id", "NRT.Approach")
	airway.SetProperty("type", 0)
	airway.SetProperty("color", "#FFFFFF")
	airway.SetProperty("width", 8.0)
	airway.SetProperty("altitude", 1.0)
	airway.SetProperty("length", 35.1)

	for _, f := range []*geojson.Feature{subway, og, ug, mixed, under, over, airway} {
		fc.AddFeature(f)
	}
	return fc
}

// decodedCollection returns testCollection after a JSON round trip, the
// shape read back from an output file.
func decodedCollection(t *testing.T) *geojson.FeatureCollection {
	t.Helper()
	data, err := testCollection().MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		t.Fatalf("UnmarshalFeatureCollection: %v", err)
	}
	return fc
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(testLogger())
	if err := s.Load(testCollection()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s
}

func TestStoreLoad(t *testing.T) {
	tests := []struct {
		name string
		fc   func(t *testing.T) *geojson.FeatureCollection
	}{
		{"fresh", func(*testing.T) *geojson.FeatureCollection { return testCollection() }},
		{"decoded", decodedCollection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(testLogger())
			if err := s.Load(tt.fc(t)); err != nil {
				t.Fatalf("Load: %v", err)
			}

			if zooms := s.Zooms(); len(zooms) != 1 || zooms[0] != 15 {
				t.Errorf("Zooms() = %v, want [15]", zooms)
			}

			railways := s.Railways(15)
			if len(railways) != 2 {
				t.Fatalf("Railways(15) returned %d entries, want 2", len(railways))
			}
			if railways[0].ID != "Tokyo.Mixed" || railways[1].ID != "Tokyo.Subway" {
				t.Errorf("unexpected railway order: %s, %s", railways[0].ID, railways[1].ID)
			}
			if !railways[0].Mixed() || railways[1].Mixed() {
				t.Error("only Tokyo.Mixed should be split into layers")
			}
			if railways[0].Underground == nil || railways[0].Overground == nil {
				t.Error("layer features not indexed")
			}

			if got := len(s.Stations(15)); got != 2 {
				t.Errorf("Stations(15) returned %d, want 2", got)
			}
			if got := len(s.Airways()); got != 1 {
				t.Errorf("Airways() returned %d, want 1", got)
			}
			if got := floatsProp(railways[1].Line, "station-offsets"); len(got) != 2 || got[1] != 1.81 {
				t.Errorf("station offsets = %v", got)
			}
		})
	}
}

func TestStoreRailwayLookup(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Railway("Tokyo.Subway", 15); err != nil {
		t.Errorf("Railway: unexpected error %v", err)
	}
	if _, err := s.Railway("Tokyo.Unknown", 15); !core.IsCode(err, core.ErrNoResults) {
		t.Errorf("unknown railway: got %v, want NO_RESULTS", err)
	}
	if _, err := s.Railway("Tokyo.Subway", 16); !core.IsCode(err, core.ErrNoResults) {
		t.Errorf("unbuilt zoom: got %v, want NO_RESULTS", err)
	}
}

func TestStoreLoadErrors(t *testing.T) {
	if err := NewStore(nil).Load(nil); !core.IsCode(err, core.ErrInvalidInput) {
		t.Errorf("nil collection: got %v, want INVALID_INPUT", err)
	}

	fc := geojson.NewFeatureCollection()
	f := geojson.NewLineStringFeature([][]float64{{0, 0}, {1, 1}})
	f.SetProperty("id", "Tokyo.Subway.14")
	f.SetProperty("type", 0)
	f.SetProperty("zoom", 15)
	fc.AddFeature(f)

	if err := NewStore(nil).Load(fc); !core.IsCode(err, core.ErrParseError) {
		t.Errorf("zoom mismatch: got %v, want PARSE_ERROR", err)
	}
}

func TestSplitFeatureID(t *testing.T) {
	tests := []struct {
		id      string
		zoom    int
		railway string
		layer   string
		wantErr bool
	}{
		{"JR-East.Yamanote.15", 15, "JR-East.Yamanote", "", false},
		{"JR-East.Yamanote.ug.15", 15, "JR-East.Yamanote", "ug", false},
		{"JR-East.Yamanote.og.13", 13, "JR-East.Yamanote", "og", false},
		{"Tokyu.Toyoko.150", 15, "", "", true},
		{".15", 15, "", "", true},
		{"", 15, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			railway, layer, err := splitFeatureID(tt.id, tt.zoom)
			if (err != nil) != tt.wantErr {
				t.Fatalf("splitFeatureID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
			if railway != tt.railway || layer != tt.layer {
				t.Errorf("splitFeatureID(%q) = %q, %q, want %q, %q", tt.id, railway, layer, tt.railway, tt.layer)
			}
		})
	}
}
