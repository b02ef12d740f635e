package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	geojson "github.com/paulmach/go.geojson"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/NERVsystems/mapfeatures/pkg/config"
	"github.com/NERVsystems/mapfeatures/pkg/dataset"
	"github.com/NERVsystems/mapfeatures/pkg/monitoring"
	"github.com/NERVsystems/mapfeatures/pkg/pipeline"
	"github.com/NERVsystems/mapfeatures/pkg/server"
	"github.com/NERVsystems/mapfeatures/pkg/tools"
	"github.com/NERVsystems/mapfeatures/pkg/tracing"
	ver "github.com/NERVsystems/mapfeatures/pkg/version"
)

// Health components
const (
	componentPipeline = "pipeline"
	componentStore    = "store"
)

var (
	showVersionFlag bool
	debug           bool
	configPath      string
	zoomsFlag       string
	outputPath      string

	// Query server flags
	serve        bool
	featuresPath string

	// Monitoring flags
	monitoringAddr string
)

func init() {
	flag.BoolVar(&showVersionFlag, "version", false, "Display version information")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.StringVar(&configPath, "config", "", "Path to a YAML build configuration")
	flag.StringVar(&zoomsFlag, "zooms", "", "Zoom levels to build, as a list (13,15) or a range (13-18)")
	flag.StringVar(&outputPath, "output", "", "Output path of the gzip compressed GeoJSON features")

	flag.BoolVar(&serve, "serve", false, "Serve the built features over MCP stdio after the build")
	flag.StringVar(&featuresPath, "features", "", "Serve an existing features file instead of building (requires -serve)")

	flag.StringVar(&monitoringAddr, "monitoring-addr", "", "Address of the Prometheus metrics and health server, disabled when empty")
}

func main() {
	flag.Parse()

	// Configure logging
	var logLevel slog.Level
	if debug {
		logLevel = slog.LevelDebug
	} else {
		logLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if showVersionFlag {
		fmt.Println(ver.String())
		return
	}

	// Initialize OpenTelemetry tracing
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.InitTracing(ctx, ver.BuildVersion)
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		// Continue without tracing - it's not critical
	} else {
		defer func() {
			if err := shutdownTracing(context.Background()); err != nil {
				logger.Error("error shutting down tracing", "error", err)
			}
		}()

		if endpoint := os.Getenv("OTLP_ENDPOINT"); endpoint != "" {
			logger.Info("OpenTelemetry tracing enabled", "endpoint", endpoint)
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger.Info("starting feature generator",
		"version", ver.BuildVersion,
		"log_level", logLevel.String(),
		"zooms", cfg.Zooms,
		"output", cfg.OutputPath,
		"serve", serve,
		"monitoring_addr", monitoringAddr)

	var healthChecker *monitoring.HealthChecker
	if monitoringAddr != "" {
		healthChecker = monitoring.NewHealthChecker(monitoring.ServiceName, ver.BuildVersion)
		defer healthChecker.Shutdown()
		startMonitoringServer(ctx, monitoringAddr, healthChecker, logger)
	}

	var fc *geojson.FeatureCollection
	if featuresPath != "" {
		if !serve {
			logger.Error("-features requires -serve")
			os.Exit(2)
		}
		fc, err = pipeline.ReadFile(featuresPath)
		if err != nil {
			logger.Error("failed to read features", "path", featuresPath, "error", err)
			os.Exit(1)
		}
	} else {
		start := time.Now()
		fc, err = build(ctx, cfg, logger)
		if healthChecker != nil {
			healthChecker.UpdateComponent(componentPipeline, time.Since(start), err)
		}
		if err != nil {
			logger.Error("build failed", "error", err)
			os.Exit(1)
		}
	}

	if !serve {
		return
	}

	if err := runServer(ctx, fc, healthChecker, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// loadConfig loads the configuration file and applies command line overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if zoomsFlag != "" {
		zooms, err := config.ParseZooms(zoomsFlag)
		if err != nil {
			return nil, err
		}
		cfg.Zooms = zooms
	}
	if outputPath != "" {
		cfg.OutputPath = outputPath
	}
	return cfg, cfg.Validate()
}

// build loads the inputs named by cfg, builds every zoom level and writes
// the encoded features to cfg.OutputPath.
func build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*geojson.FeatureCollection, error) {
	ds, err := dataset.Load(dataset.Paths{
		Coordinates:   cfg.CoordinatesPath,
		Railways:      cfg.RailwaysPath,
		Stations:      cfg.StationsPath,
		StationGroups: cfg.StationGroupsPath,
	})
	if err != nil {
		return nil, fmt.Errorf("loading inputs: %w", err)
	}

	hidden, err := cfg.Hidden()
	if err != nil {
		return nil, err
	}

	result, err := pipeline.Run(ctx, ds, pipeline.Options{
		Zooms:          cfg.Zooms,
		Hidden:         hidden,
		Style:          cfg.Style(),
		AirwayWidth:    cfg.AirwayWidth,
		AirwayAltitude: cfg.AirwayAltitude,
		CacheSize:      cfg.ProjectionCacheSize,
		Logger:         logger,
	})
	if err != nil {
		return nil, err
	}

	fc := pipeline.Encode(result.Features(), cfg.Precision)
	if err := pipeline.WriteFile(cfg.OutputPath, fc); err != nil {
		return nil, err
	}

	logger.Info("features written",
		"run_id", result.RunID,
		"path", cfg.OutputPath,
		"features", len(fc.Features))
	return fc, nil
}

// runServer serves fc over MCP stdio until the input ends or ctx is done
func runServer(ctx context.Context, fc *geojson.FeatureCollection, hc *monitoring.HealthChecker, logger *slog.Logger) error {
	store, err := loadStore(fc, hc, logger)
	if err != nil {
		return err
	}

	s, err := server.NewServer(store, logger)
	if err != nil {
		return err
	}

	logger.Info("transport_enabled", "type", "stdio", "mode", "blocking")
	return s.RunWithContext(ctx)
}

// loadStore indexes fc for the query tools. The store component reports
// degraded while loading.
func loadStore(fc *geojson.FeatureCollection, hc *monitoring.HealthChecker, logger *slog.Logger) (*tools.Store, error) {
	if hc != nil {
		hc.SetComponentStatus(componentStore, monitoring.StatusDegraded)
	}

	start := time.Now()
	store := tools.NewStore(logger)
	err := store.Load(fc)
	if hc != nil {
		hc.UpdateComponent(componentStore, time.Since(start), err)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}

// startMonitoringServer serves Prometheus metrics and health endpoints until
// ctx is done
func startMonitoringServer(ctx context.Context, addr string, hc *monitoring.HealthChecker, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	hc.Register(mux)

	monitoringServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("starting monitoring server", "addr", addr)
		if err := monitoringServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("monitoring server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := monitoringServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown monitoring server", "error", err)
		}
	}()
}
