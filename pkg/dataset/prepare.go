package dataset

import (
	"github.com/NERVsystems/mapfeatures/pkg/core"
)

// Prepare validates the dataset and reorders its railways so that every
// junction target precedes the railways referring to it.
func (d *Dataset) Prepare() error {
	if err := d.Validate(); err != nil {
		return err
	}
	ordered, err := OrderRailways(d.Railways)
	if err != nil {
		return err
	}
	d.Railways = ordered
	return nil
}

// Validate checks the references between railways, stations and sites.
func (d *Dataset) Validate() error {
	ids := make(map[string]bool, len(d.Railways))
	for _, r := range d.Railways {
		if r.ID == "" {
			return core.NewError(core.ErrInvalidInput, "railway without id")
		}
		if ids[r.ID] {
			return core.NewError(core.ErrInvalidInput, "duplicate railway id").WithRailway(r.ID)
		}
		ids[r.ID] = true
	}

	for _, r := range d.Railways {
		for i, s := range r.Sublines {
			if err := validateSubline(r.ID, i, s); err != nil {
				return err
			}
			for _, dep := range s.Dependencies() {
				if !ids[dep] {
					return core.TopologyError(r.ID, i, dep)
				}
			}
		}
		for _, id := range r.Stations {
			if _, ok := d.Stations[id]; !ok {
				return core.MissingStationError(id).WithRailway(r.ID)
			}
		}
	}

	for id, st := range d.Stations {
		if !ids[st.Railway] {
			return core.Errorf(core.ErrMissingReference, "station refers to unknown railway %q", st.Railway).
				WithStation(id)
		}
	}

	for _, site := range d.Sites {
		for _, group := range site {
			for _, id := range group {
				if _, ok := d.Stations[id]; !ok {
					return core.MissingStationError(id)
				}
			}
		}
	}
	return nil
}

func validateSubline(railway string, i int, s Subline) error {
	switch s.Type {
	case SublineMain, SublineSub, SublineHybrid:
	default:
		return core.Errorf(core.ErrInvalidInput, "unknown subline type %q", s.Type).
			WithRailway(railway).
			WithSubline(i)
	}
	for _, c := range s.Coords {
		if len(c) < 2 {
			return core.NewError(core.ErrInvalidInput, "subline coordinate needs longitude and latitude").
				WithRailway(railway).
				WithSubline(i)
		}
	}
	return nil
}

// OrderRailways returns railways sorted so that each railway follows the
// railways its junctions refer to. Railways keep their input order whenever
// that is already valid. Self references are ignored; unknown targets and
// cycles are topology errors.
func OrderRailways(railways []Railway) ([]Railway, error) {
	index := make(map[string]int, len(railways))
	for i, r := range railways {
		index[r.ID] = i
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(railways))
	ordered := make([]Railway, 0, len(railways))

	var visit func(i int) error
	visit = func(i int) error {
		switch state[i] {
		case done:
			return nil
		case visiting:
			return core.Errorf(core.ErrTopology, "railway %q is part of a junction cycle", railways[i].ID).
				WithRailway(railways[i].ID)
		}
		state[i] = visiting

		r := railways[i]
		for si, s := range r.Sublines {
			for _, dep := range s.Dependencies() {
				if dep == r.ID {
					continue
				}
				j, ok := index[dep]
				if !ok {
					return core.TopologyError(r.ID, si, dep)
				}
				if err := visit(j); err != nil {
					return err
				}
			}
		}

		state[i] = done
		ordered = append(ordered, r)
		return nil
	}

	for i := range railways {
		if err := visit(i); err != nil {
			return nil, err
		}
	}
	return ordered, nil
}

// AllSites returns the sites followed by a singleton site for every station
// of a railway that no site mentions.
func (d *Dataset) AllSites() []Site {
	seen := make(map[string]bool)
	for _, site := range d.Sites {
		for _, group := range site {
			for _, id := range group {
				seen[id] = true
			}
		}
	}

	sites := make([]Site, len(d.Sites), len(d.Sites)+len(d.Stations))
	copy(sites, d.Sites)
	for _, r := range d.Railways {
		for _, id := range r.Stations {
			if seen[id] {
				continue
			}
			seen[id] = true
			sites = append(sites, Site{Group{id}})
		}
	}
	return sites
}
