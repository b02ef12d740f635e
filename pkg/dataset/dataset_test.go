package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/NERVsystems/mapfeatures/pkg/core"
)

const coordinatesJSON = `{
  "railways": [
    {
      "id": "Branch",
      "color": "#F68B1E",
      "sublines": [
        {"type": "sub", "coords": [[139.70, 35.68], [139.71, 35.68]],
         "start": {"railway": "Trunk", "offset": 1}, "end": {"railway": "Trunk", "offset": 1}}
      ]
    },
    {
      "id": "Trunk",
      "color": "#80C241",
      "altitude": -1,
      "sublines": [
        {"type": "main", "coords": [[139.70, 35.68], [139.72, 35.68]],
         "end": {"altitude": 0, "zoom": 16}}
      ]
    }
  ],
  "airways": [
    {"id": "HND.NRT", "color": "#E60012", "coords": [[139.78, 35.55], [140.38, 35.77]]}
  ]
}`

const railwaysJSON = `[
  {"id": "Trunk", "stations": ["Trunk.A", "Trunk.B"]},
  {"id": "Branch", "stations": ["Branch.A"], "loop": false},
  {"id": "Unknown", "stations": ["X"]}
]`

const stationsJSON = `[
  {"id": "Trunk.A", "railway": "Trunk", "coord": [139.70, 35.68], "altitude": -1},
  {"id": "Trunk.B", "railway": "Trunk", "coord": [139.72, 35.68], "altitude": -1},
  {"id": "Branch.A", "railway": "Branch", "coord": [139.70, 35.68]}
]`

const groupsJSON = `[[["Trunk.A"], ["Branch.A"]]]`

func writeInputs(t *testing.T) Paths {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"coordinates.json":    coordinatesJSON,
		"railways.json":       railwaysJSON,
		"stations.json":       stationsJSON,
		"station-groups.json": groupsJSON,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	return Paths{
		Coordinates:   filepath.Join(dir, "coordinates.json"),
		Railways:      filepath.Join(dir, "railways.json"),
		Stations:      filepath.Join(dir, "stations.json"),
		StationGroups: filepath.Join(dir, "station-groups.json"),
	}
}

func TestLoad(t *testing.T) {
	ds, err := Load(writeInputs(t))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(ds.Railways) != 2 {
		t.Fatalf("Expected 2 railways, got %d", len(ds.Railways))
	}
	if ds.Railways[0].ID != "Trunk" || ds.Railways[1].ID != "Branch" {
		t.Errorf("Expected junction target first, got %s, %s", ds.Railways[0].ID, ds.Railways[1].ID)
	}

	trunk, ok := ds.Railway("Trunk")
	if !ok {
		t.Fatal("Trunk not found")
	}
	if len(trunk.Stations) != 2 || trunk.Altitude != -1 {
		t.Errorf("Unexpected trunk: %+v", trunk)
	}
	end := trunk.Sublines[0].End
	if !end.HasAltitude() || *end.Altitude != 0 || end.Zoom == nil || *end.Zoom != 16 {
		t.Errorf("Unexpected junction: %+v", end)
	}

	if st := ds.Stations["Trunk.B"]; st.Coord[0] != 139.72 || st.Altitude != -1 {
		t.Errorf("Unexpected station: %+v", st)
	}
	if len(ds.Sites) != 1 || len(ds.Sites[0]) != 2 {
		t.Errorf("Unexpected sites: %v", ds.Sites)
	}
	if len(ds.Airways) != 1 || len(ds.Airways[0].Coords) != 2 {
		t.Errorf("Unexpected airways: %+v", ds.Airways)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		paths := writeInputs(t)
		paths.Stations = filepath.Join(t.TempDir(), "absent.json")
		if _, err := Load(paths); !core.IsCode(err, core.ErrInvalidInput) {
			t.Errorf("Expected INVALID_INPUT, got %v", err)
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		if _, err := LoadStations(strings.NewReader(`[{"id": `)); !core.IsCode(err, core.ErrParseError) {
			t.Errorf("Expected PARSE_ERROR, got %v", err)
		}
	})

	t.Run("duplicate station", func(t *testing.T) {
		_, err := LoadStations(strings.NewReader(`[{"id": "A", "railway": "R"}, {"id": "A", "railway": "R"}]`))
		if !core.IsCode(err, core.ErrInvalidInput) {
			t.Errorf("Expected INVALID_INPUT, got %v", err)
		}
	})
}

func railway(id string, deps ...string) Railway {
	r := Railway{ID: id}
	for _, dep := range deps {
		r.Sublines = append(r.Sublines, Subline{
			Type:  SublineSub,
			Start: &Junction{Railway: dep},
			End:   &Junction{Railway: dep},
		})
	}
	return r
}

func ids(railways []Railway) string {
	var out []string
	for _, r := range railways {
		out = append(out, r.ID)
	}
	return strings.Join(out, ",")
}

func TestOrderRailways(t *testing.T) {
	tests := []struct {
		name     string
		railways []Railway
		want     string
		code     core.ErrorCode
	}{
		{
			name:     "already ordered",
			railways: []Railway{railway("A"), railway("B", "A"), railway("C")},
			want:     "A,B,C",
		},
		{
			name:     "dependency later",
			railways: []Railway{railway("B", "A"), railway("C"), railway("A")},
			want:     "A,B,C",
		},
		{
			name:     "chain",
			railways: []Railway{railway("C", "B"), railway("B", "A"), railway("A")},
			want:     "A,B,C",
		},
		{
			name:     "self reference",
			railways: []Railway{railway("A", "A")},
			want:     "A",
		},
		{
			name:     "cycle",
			railways: []Railway{railway("A", "B"), railway("B", "A")},
			code:     core.ErrTopology,
		},
		{
			name:     "unknown target",
			railways: []Railway{railway("A", "Nowhere")},
			code:     core.ErrTopology,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := OrderRailways(tt.railways)
			if tt.code != "" {
				if !core.IsCode(err, tt.code) {
					t.Errorf("Expected %s, got %v", tt.code, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("OrderRailways failed: %v", err)
			}
			if ids(got) != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, ids(got))
			}
		})
	}
}

func TestValidate(t *testing.T) {
	base := func() *Dataset {
		return &Dataset{
			Railways: []Railway{{
				ID:       "R",
				Sublines: []Subline{{Type: SublineMain, Coords: [][]float64{{0, 0}, {1, 0}}}},
				Stations: []string{"S"},
			}},
			Stations: map[string]Station{"S": {ID: "S", Railway: "R"}},
			Sites:    []Site{{{"S"}}},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Dataset)
		code   core.ErrorCode
	}{
		{"valid", func(*Dataset) {}, ""},
		{"duplicate railway", func(d *Dataset) { d.Railways = append(d.Railways, d.Railways[0]) }, core.ErrInvalidInput},
		{"bad subline type", func(d *Dataset) { d.Railways[0].Sublines[0].Type = "tram" }, core.ErrInvalidInput},
		{"short coordinate", func(d *Dataset) { d.Railways[0].Sublines[0].Coords[1] = []float64{1} }, core.ErrInvalidInput},
		{"unknown railway station", func(d *Dataset) { d.Railways[0].Stations = []string{"Z"} }, core.ErrMissingReference},
		{"station on unknown railway", func(d *Dataset) { d.Stations["S"] = Station{ID: "S", Railway: "Q"} }, core.ErrMissingReference},
		{"unknown site station", func(d *Dataset) { d.Sites = []Site{{{"Z"}}} }, core.ErrMissingReference},
		{"unknown junction", func(d *Dataset) { d.Railways[0].Sublines[0].Start = &Junction{Railway: "Q"} }, core.ErrTopology},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := base()
			tt.mutate(d)
			err := d.Validate()
			if tt.code == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if !core.IsCode(err, tt.code) {
				t.Errorf("Expected %s, got %v", tt.code, err)
			}
		})
	}
}

func TestAllSites(t *testing.T) {
	d := &Dataset{
		Railways: []Railway{
			{ID: "R1", Stations: []string{"A", "B", "C"}},
			{ID: "R2", Stations: []string{"D", "B"}},
		},
		Sites: []Site{{{"A"}, {"B"}}},
	}

	sites := d.AllSites()
	if len(sites) != 3 {
		t.Fatalf("Expected 3 sites, got %d", len(sites))
	}
	if sites[1][0][0] != "C" || sites[2][0][0] != "D" {
		t.Errorf("Expected singleton sites C and D, got %v", sites[1:])
	}
	if len(d.Sites) != 1 {
		t.Error("AllSites modified the dataset")
	}
}

func TestJunctionActiveAt(t *testing.T) {
	zoom := 16
	withZoom := &Junction{Railway: "R", Zoom: &zoom}
	always := &Junction{Railway: "R"}

	if !withZoom.ActiveAt(15) || withZoom.ActiveAt(16) || withZoom.ActiveAt(18) {
		t.Error("Junction with switch zoom 16 should only apply below zoom 16")
	}
	if !always.ActiveAt(18) {
		t.Error("Junction without switch zoom should always apply")
	}
}
