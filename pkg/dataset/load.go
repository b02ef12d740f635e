package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/NERVsystems/mapfeatures/pkg/core"
)

// Paths locates the input files of a build. Railways is optional; when set it
// supplies the station list and loop flag of railways by id.
type Paths struct {
	Coordinates   string
	Railways      string
	Stations      string
	StationGroups string
}

// coordinateFile is the layout of the railway and airway geometry file.
type coordinateFile struct {
	Railways []Railway `json:"railways"`
	Airways  []Airway  `json:"airways"`
}

// railwayInfo is an entry of the railway metadata file.
type railwayInfo struct {
	ID       string   `json:"id"`
	Stations []string `json:"stations"`
	Loop     *bool    `json:"loop,omitempty"`
}

// Load reads every input file, validates the result and orders railways so
// that junction targets come first.
func Load(paths Paths) (*Dataset, error) {
	ds := &Dataset{}

	if err := decodeFile(paths.Coordinates, func(r io.Reader) error {
		railways, airways, err := LoadCoordinates(r)
		ds.Railways, ds.Airways = railways, airways
		return err
	}); err != nil {
		return nil, err
	}

	if paths.Railways != "" {
		if err := decodeFile(paths.Railways, func(r io.Reader) error {
			return MergeRailwayInfo(ds.Railways, r)
		}); err != nil {
			return nil, err
		}
	}

	if err := decodeFile(paths.Stations, func(r io.Reader) error {
		stations, err := LoadStations(r)
		ds.Stations = stations
		return err
	}); err != nil {
		return nil, err
	}

	if err := decodeFile(paths.StationGroups, func(r io.Reader) error {
		sites, err := LoadSites(r)
		ds.Sites = sites
		return err
	}); err != nil {
		return nil, err
	}

	if err := ds.Prepare(); err != nil {
		return nil, err
	}
	return ds, nil
}

func decodeFile(path string, decode func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return core.Errorf(core.ErrInvalidInput, "cannot open input file %s", path).WithCause(err)
	}
	defer f.Close()

	if err := decode(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// LoadCoordinates decodes the railway and airway geometry file.
func LoadCoordinates(r io.Reader) ([]Railway, []Airway, error) {
	var file coordinateFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, nil, core.NewError(core.ErrParseError, "invalid coordinate data").WithCause(err)
	}
	return file.Railways, file.Airways, nil
}

// MergeRailwayInfo decodes the railway metadata file and copies station lists
// and loop flags onto the matching railways. Unknown ids are ignored.
func MergeRailwayInfo(railways []Railway, r io.Reader) error {
	var infos []railwayInfo
	if err := json.NewDecoder(r).Decode(&infos); err != nil {
		return core.NewError(core.ErrParseError, "invalid railway data").WithCause(err)
	}

	index := make(map[string]int, len(railways))
	for i, rw := range railways {
		index[rw.ID] = i
	}
	for _, info := range infos {
		i, ok := index[info.ID]
		if !ok {
			continue
		}
		if info.Stations != nil {
			railways[i].Stations = info.Stations
		}
		if info.Loop != nil {
			railways[i].Loop = *info.Loop
		}
	}
	return nil
}

// LoadStations decodes the station metadata file.
func LoadStations(r io.Reader) (map[string]Station, error) {
	var list []Station
	if err := json.NewDecoder(r).Decode(&list); err != nil {
		return nil, core.NewError(core.ErrParseError, "invalid station data").WithCause(err)
	}

	stations := make(map[string]Station, len(list))
	for _, st := range list {
		if _, dup := stations[st.ID]; dup {
			return nil, core.NewError(core.ErrInvalidInput, "duplicate station id").WithStation(st.ID)
		}
		stations[st.ID] = st
	}
	return stations, nil
}

// LoadSites decodes the station group file.
func LoadSites(r io.Reader) ([]Site, error) {
	var sites []Site
	if err := json.NewDecoder(r).Decode(&sites); err != nil {
		return nil, core.NewError(core.ErrParseError, "invalid station group data").WithCause(err)
	}
	return sites, nil
}
