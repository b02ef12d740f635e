// Package pipeline builds the features of every zoom level concurrently and
// merges them with the zoom independent airway features.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/NERVsystems/mapfeatures/pkg/cache"
	"github.com/NERVsystems/mapfeatures/pkg/dataset"
	"github.com/NERVsystems/mapfeatures/pkg/features"
	"github.com/NERVsystems/mapfeatures/pkg/monitoring"
	"github.com/NERVsystems/mapfeatures/pkg/tracing"
)

// DefaultZooms are the zoom levels built when none are configured.
var DefaultZooms = []int{13, 14, 15, 16, 17, 18}

// Options configures a pipeline run.
type Options struct {
	Zooms          []int
	Hidden         *features.HiddenStations
	Style          features.Style
	AirwayWidth    float64
	AirwayAltitude float64
	// CacheSize bounds the projection cache of each zoom worker.
	CacheSize int
	Logger    *slog.Logger
}

// ZoomResult holds the features built for one zoom level.
type ZoomResult struct {
	Zoom     int
	Features []*features.Feature
}

// Result is the output of a pipeline run.
type Result struct {
	RunID   string
	Zooms   []ZoomResult
	Airways []*features.Feature
}

// Features returns every feature of the run: zoom levels in configured order,
// then airways.
func (r *Result) Features() []*features.Feature {
	var out []*features.Feature
	for _, z := range r.Zooms {
		out = append(out, z.Features...)
	}
	return append(out, r.Airways...)
}

// Run builds ds at every configured zoom level, one worker per zoom. The
// first failing zoom cancels the others and fails the run.
func Run(ctx context.Context, ds *dataset.Dataset, opts Options) (result *Result, err error) {
	start := time.Now()
	runID := uuid.NewString()

	zooms := opts.Zooms
	if len(zooms) == 0 {
		zooms = DefaultZooms
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("run_id", runID)

	ctx, span := tracing.StartSpan(ctx, "pipeline.Run", trace.WithAttributes(
		attribute.String(tracing.AttrRunID, runID),
		attribute.Int(tracing.AttrZoomCount, len(zooms)),
	))
	defer func() {
		tracing.EndWithError(span, err)
		monitoring.RecordPipelineRun(time.Since(start), err == nil)
	}()

	logger.Info("starting feature build",
		"zooms", zooms,
		"railways", len(ds.Railways),
		"stations", len(ds.Stations),
		"sites", len(ds.Sites))

	results := make([]ZoomResult, len(zooms))
	g, gctx := errgroup.WithContext(ctx)
	for i, zoom := range zooms {
		g.Go(func() error {
			fs, err := buildZoom(gctx, ds, zoom, runID, opts, logger)
			if err != nil {
				logger.Error("zoom build failed", "zoom", zoom, "error", err)
				return fmt.Errorf("zoom %d: %w", zoom, err)
			}
			results[i] = ZoomResult{Zoom: zoom, Features: fs}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	airways := make([]*features.Feature, 0, len(ds.Airways))
	for _, a := range ds.Airways {
		airways = append(airways, features.AirwayFeature(a, opts.AirwayWidth, opts.AirwayAltitude))
	}

	result = &Result{RunID: runID, Zooms: results, Airways: airways}
	total := len(result.Features())
	span.SetAttributes(attribute.Int(tracing.AttrFeatureCount, total))
	logger.Info("feature build finished",
		"features", total,
		"airways", len(airways),
		"duration", time.Since(start))

	return result, nil
}

func buildZoom(ctx context.Context, ds *dataset.Dataset, zoom int, runID string, opts Options, logger *slog.Logger) (fs []*features.Feature, err error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, "pipeline.buildZoom",
		trace.WithAttributes(tracing.ZoomAttributes(runID, zoom)...))
	defer func() { tracing.EndWithError(span, err) }()

	builder := features.NewBuilder(zoom, features.Options{
		Hidden: opts.Hidden,
		Style:  opts.Style,
		Cache:  cache.NewProjectionCache(opts.CacheSize),
		Logger: logger,
	})

	fs, err = builder.Build(ctx, ds)
	if err != nil {
		return nil, err
	}

	duration := time.Since(start)
	monitoring.RecordZoomBuild(zoom, duration, len(ds.Railways))
	span.SetAttributes(attribute.Int(tracing.AttrFeatureCount, len(fs)))
	logger.Info("zoom built",
		"zoom", zoom,
		"railways", len(ds.Railways),
		"features", len(fs),
		"duration", duration)

	return fs, nil
}
