// Package config loads the settings of a feature build from an optional YAML
// file and MAPFEATURES_* environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/NERVsystems/mapfeatures/pkg/cache"
	"github.com/NERVsystems/mapfeatures/pkg/core"
	"github.com/NERVsystems/mapfeatures/pkg/features"
)

// envPrefix prefixes every environment override.
const envPrefix = "MAPFEATURES_"

// Config holds all configuration of a feature build
type Config struct {
	// Input files
	CoordinatesPath   string `yaml:"coordinates"`
	RailwaysPath      string `yaml:"railways"`
	StationsPath      string `yaml:"stations"`
	StationGroupsPath string `yaml:"station_groups"`

	// Output
	OutputPath string `yaml:"output"`
	Precision  int    `yaml:"precision"`

	// Build
	Zooms               []int    `yaml:"zooms"`
	HiddenStations      []string `yaml:"hidden_stations"`
	ProjectionCacheSize int      `yaml:"projection_cache_size"`

	// Presentation
	LineWidth           float64 `yaml:"line_width"`
	StationWidth        float64 `yaml:"station_width"`
	StationOutlineColor string  `yaml:"station_outline_color"`
	StationFillColor    string  `yaml:"station_fill_color"`
	AirwayWidth         float64 `yaml:"airway_width"`
	AirwayAltitude      float64 `yaml:"airway_altitude"`
}

// Default returns the standard build configuration.
func Default() *Config {
	style := features.DefaultStyle()
	return &Config{
		CoordinatesPath:     "data/coordinates.json",
		RailwaysPath:        "data/railways.json",
		StationsPath:        "data/stations.json",
		StationGroupsPath:   "data/station-groups.json",
		OutputPath:          "build/data/features.json.gz",
		Precision:           7,
		Zooms:               []int{13, 14, 15, 16, 17, 18},
		HiddenStations:      append([]string(nil), features.DefaultHiddenStations...),
		ProjectionCacheSize: cache.DefaultProjectionCacheSize,
		LineWidth:           style.LineWidth,
		StationWidth:        style.StationWidth,
		StationOutlineColor: style.StationOutlineColor,
		StationFillColor:    style.StationFillColor,
		AirwayWidth:         8,
		AirwayAltitude:      1,
	}
}

// Load builds the configuration: defaults, then the YAML file at path if it
// is not empty, then environment variables. A .env file in the working
// directory is loaded first when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, core.Errorf(core.ErrInvalidInput, "cannot read config file %s", path).WithCause(err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, core.Errorf(core.ErrParseError, "invalid config file %s", path).WithCause(err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.CoordinatesPath = getEnv("COORDINATES", c.CoordinatesPath)
	c.RailwaysPath = getEnv("RAILWAYS", c.RailwaysPath)
	c.StationsPath = getEnv("STATIONS", c.StationsPath)
	c.StationGroupsPath = getEnv("STATION_GROUPS", c.StationGroupsPath)
	c.OutputPath = getEnv("OUTPUT", c.OutputPath)
	c.Precision = getEnvInt("PRECISION", c.Precision)
	c.ProjectionCacheSize = getEnvInt("PROJECTION_CACHE_SIZE", c.ProjectionCacheSize)

	if v := os.Getenv(envPrefix + "ZOOMS"); v != "" {
		zooms, err := ParseZooms(v)
		if err != nil {
			return err
		}
		c.Zooms = zooms
	}
	if v, ok := os.LookupEnv(envPrefix + "HIDDEN_STATIONS"); ok {
		c.HiddenStations = splitList(v)
	}
	return nil
}

// Validate checks that the configuration can drive a build.
func (c *Config) Validate() error {
	if len(c.Zooms) == 0 {
		return core.NewError(core.ErrInvalidInput, "at least one zoom level is required")
	}
	seen := make(map[int]bool, len(c.Zooms))
	for _, z := range c.Zooms {
		if z < 0 || z > 24 {
			return core.Errorf(core.ErrInvalidInput, "zoom %d out of range [0, 24]", z)
		}
		if seen[z] {
			return core.Errorf(core.ErrInvalidInput, "zoom %d listed twice", z)
		}
		seen[z] = true
	}
	if c.Precision < 0 || c.Precision > 15 {
		return core.Errorf(core.ErrInvalidInput, "precision %d out of range [0, 15]", c.Precision)
	}
	if _, err := features.CompileHidden(c.HiddenStations); err != nil {
		return core.NewError(core.ErrInvalidInput, "invalid hidden station pattern").WithCause(err)
	}
	return nil
}

// Hidden compiles the hidden station patterns.
func (c *Config) Hidden() (*features.HiddenStations, error) {
	return features.CompileHidden(c.HiddenStations)
}

// Style returns the presentation settings of railway and station features.
func (c *Config) Style() features.Style {
	return features.Style{
		LineWidth:           c.LineWidth,
		StationWidth:        c.StationWidth,
		StationOutlineColor: c.StationOutlineColor,
		StationFillColor:    c.StationFillColor,
	}
}

// ParseZooms parses a comma separated zoom list such as "13,14,15" or a
// range such as "13-18".
func ParseZooms(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if from, to, ok := strings.Cut(s, "-"); ok {
		lo, err1 := strconv.Atoi(strings.TrimSpace(from))
		hi, err2 := strconv.Atoi(strings.TrimSpace(to))
		if err1 != nil || err2 != nil || lo > hi {
			return nil, core.Errorf(core.ErrInvalidInput, "invalid zoom range %q", s)
		}
		zooms := make([]int, 0, hi-lo+1)
		for z := lo; z <= hi; z++ {
			zooms = append(zooms, z)
		}
		return zooms, nil
	}

	var zooms []int
	for _, part := range splitList(s) {
		z, err := strconv.Atoi(part)
		if err != nil {
			return nil, core.Errorf(core.ErrInvalidInput, "invalid zoom %q", part).WithCause(err)
		}
		zooms = append(zooms, z)
	}
	if len(zooms) == 0 {
		return nil, core.NewError(core.ErrInvalidInput, "empty zoom list")
	}
	return zooms, nil
}

// String summarizes the configuration for logs.
func (c *Config) String() string {
	return fmt.Sprintf("zooms=%v precision=%d output=%s", c.Zooms, c.Precision, c.OutputPath)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(envPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(envPrefix + key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
