package pipeline

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/paulmach/orb"
	geojson "github.com/paulmach/go.geojson"

	"github.com/NERVsystems/mapfeatures/pkg/core"
	"github.com/NERVsystems/mapfeatures/pkg/features"
	"github.com/NERVsystems/mapfeatures/pkg/geo"
)

// DefaultPrecision is the number of decimals kept in output coordinates.
const DefaultPrecision = 7

// Encode converts features to a GeoJSON feature collection, rounding every
// ordinate to precision decimals.
func Encode(fs []*features.Feature, precision int) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, f := range fs {
		fc.AddFeature(EncodeFeature(f, precision))
	}
	return fc
}

// EncodeFeature converts a single feature.
func EncodeFeature(f *features.Feature, precision int) *geojson.Feature {
	var out *geojson.Feature
	switch f.Kind {
	case features.GeometryMultiLineString:
		lines := make([][][]float64, len(f.Lines))
		for i, l := range f.Lines {
			lines[i] = encodeLine(l, precision)
		}
		out = geojson.NewMultiLineStringFeature(lines...)
	case features.GeometryMultiPolygon:
		z := 0.0
		if f.VertexAltitude && f.Altitude != nil {
			z = *f.Altitude
		}
		out = geojson.NewMultiPolygonFeature(encodeMultiPolygon(f.Polygon, f.VertexAltitude, z, precision)...)
	default:
		out = geojson.NewLineStringFeature(encodeLine(f.Line, precision))
	}

	if f.ID != "" {
		out.SetProperty("id", f.ID)
	}
	out.SetProperty("type", int(f.Type))
	out.SetProperty("color", f.Color)
	out.SetProperty("width", f.Width)
	if !f.Static {
		out.SetProperty("zoom", f.Zoom)
	}
	if f.Altitude != nil {
		out.SetProperty("altitude", *f.Altitude)
	}
	if f.Length != nil {
		out.SetProperty("length", *f.Length)
	}

	if f.Type == features.TypeStation {
		out.SetProperty("outlineColor", f.OutlineColor)
		ids := f.StationIDs
		if ids == nil {
			ids = []string{}
		}
		out.SetProperty("ids", ids)
	} else if f.StationOffsets != nil {
		out.SetProperty("station-offsets", f.StationOffsets)
	}
	return out
}

func encodeLine(l features.Line, precision int) [][]float64 {
	coords := make([][]float64, len(l))
	for i, v := range l {
		c := v.Coords()
		for k := range c {
			c[k] = geo.Round(c[k], precision)
		}
		coords[i] = c
	}
	return coords
}

func encodeMultiPolygon(mp orb.MultiPolygon, withZ bool, z float64, precision int) [][][][]float64 {
	polys := make([][][][]float64, len(mp))
	for i, p := range mp {
		rings := make([][][]float64, len(p))
		for j, r := range p {
			ring := make([][]float64, len(r))
			for k, pt := range r {
				c := []float64{geo.Round(pt[0], precision), geo.Round(pt[1], precision)}
				if withZ {
					c = append(c, geo.Round(z, precision))
				}
				ring[k] = c
			}
			rings[j] = ring
		}
		polys[i] = rings
	}
	return polys
}

// WriteGzip writes the feature collection as gzip compressed GeoJSON.
func WriteGzip(w io.Writer, fc *geojson.FeatureCollection) error {
	data, err := fc.MarshalJSON()
	if err != nil {
		return core.NewError(core.ErrInternalError, "cannot encode feature collection").WithCause(err)
	}

	zw, err := gzip.NewWriterLevel(w, gzip.BestCompression)
	if err != nil {
		return err
	}
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

// WriteFile writes the feature collection to path, creating parent
// directories as needed.
func WriteFile(path string, fc *geojson.FeatureCollection) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	var buf bytes.Buffer
	if err := WriteGzip(&buf, fc); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ReadGzip decodes a feature collection written by WriteGzip.
func ReadGzip(r io.Reader) (*geojson.FeatureCollection, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, core.NewError(core.ErrParseError, "output is not gzip compressed").WithCause(err)
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, core.NewError(core.ErrParseError, "cannot decompress features").WithCause(err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, core.NewError(core.ErrParseError, "invalid feature collection").WithCause(err)
	}
	return fc, nil
}

// ReadFile decodes a feature collection file written by WriteFile.
func ReadFile(path string) (*geojson.FeatureCollection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.Errorf(core.ErrInvalidInput, "cannot open features file %s", path).WithCause(err)
	}
	defer f.Close()
	return ReadGzip(f)
}
