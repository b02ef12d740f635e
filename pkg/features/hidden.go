package features

import (
	"fmt"
	"regexp"
)

// DefaultHiddenStations lists the station id patterns that contribute
// geometry to station polygons without being listed in their ids.
var DefaultHiddenStations = []string{
	`^JR-East\.(YamanoteFreight|Musashino\w+Branch)`,
	`^Keio\.Sagamihara\.Shinjuku`,
	`^Keikyu\.Airport\.Shinagawa`,
	`^Tobu\.THLiner`,
	`^Seibu\.S-`,
}

// HiddenStations matches station ids against a set of regular expressions.
// A nil *HiddenStations hides nothing.
type HiddenStations struct {
	patterns []*regexp.Regexp
}

// CompileHidden compiles patterns into a HiddenStations predicate.
func CompileHidden(patterns []string) (*HiddenStations, error) {
	h := &HiddenStations{}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid hidden station pattern %q: %w", p, err)
		}
		h.patterns = append(h.patterns, re)
	}
	return h, nil
}

// Match reports whether the station id is hidden.
func (h *HiddenStations) Match(id string) bool {
	if h == nil {
		return false
	}
	for _, re := range h.patterns {
		if re.MatchString(id) {
			return true
		}
	}
	return false
}
