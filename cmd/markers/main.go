// Command markers runs the historical marker explorer in a terminal. It
// wires the catalog, filters, search and geolocation into an interactive
// prompt; the terminal renderer stands where a map frontend would.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/pamana/markers/internal/catalog"
	"github.com/pamana/markers/internal/config"
	"github.com/pamana/markers/internal/dataset"
	"github.com/pamana/markers/internal/dispatcher"
	"github.com/pamana/markers/internal/filter"
	"github.com/pamana/markers/internal/geoloc"
	"github.com/pamana/markers/internal/influx"
	"github.com/pamana/markers/internal/logging"
	"github.com/pamana/markers/internal/session"
	"github.com/pamana/markers/internal/storage"
	"github.com/pamana/markers/internal/view"
)

var sessionStartTime = time.Now()

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "markers:", err)
		os.Exit(1)
	}
}

func run() error {
	configDir := "."
	if dir := os.Getenv("MARKERS_CONFIG_DIR"); dir != "" {
		configDir = dir
	}
	if err := config.Load(configDir); err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	graylogCfg := config.GetGraylogConfig()
	logManager := logging.Setup(logging.Options{
		Level:          config.GetString("logLevel"),
		LogsDir:        config.GetString("logsDir"),
		AppName:        "markers",
		GraylogEnabled: graylogCfg.Enabled,
		GraylogAddress: graylogCfg.Address,
		ConsoleWriter:  zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen},
	})
	defer logManager.Close()
	logger := logManager.Logger()

	logger.Info().Str("configDir", configDir).Msg("Starting up")

	store, err := storage.NewStore(config.GetStorageConfig())
	if err != nil {
		return fmt.Errorf("error opening status store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error().Err(err).Msg("Error closing status store")
		}
	}()

	datasetCfg := config.GetDatasetConfig()
	records, err := dataset.Load(datasetCfg.Path, datasetCfg.CRS)
	if err != nil {
		return fmt.Errorf("error loading dataset: %w", err)
	}

	markerCatalog, err := catalog.New(records, store, logger)
	if err != nil {
		return fmt.Errorf("error building catalog: %w", err)
	}

	var metrics session.Metrics = session.NopMetrics{}
	if config.GetBool("influx.enabled") {
		backupPath := filepath.Join(config.GetString("logsDir"),
			fmt.Sprintf("markers.metrics.%s.lp.gz", sessionStartTime.Format("20060102_150405")))
		manager := influx.NewManager(logger, backupPath)
		if err := manager.Connect(); err != nil {
			logger.Warn().Err(err).Msg("Metrics disabled")
		} else {
			metrics = manager
			defer manager.Close()
		}
	}

	loop := session.NewLoop()
	renderer := newTerminalRenderer(os.Stdout, markerCatalog)
	coordinator := view.NewCoordinator(
		markerCatalog, renderer, renderer, renderer, renderer, logger)

	provider := newEnvProvider()
	locator := geoloc.NewController(
		provider, config.GetGeolocationConfig(), loop.Post, logger)

	sess := session.New(session.Options{
		Loop:    loop,
		Store:   markerCatalog,
		Engine:  filter.NewEngine(logger),
		View:    coordinator,
		Locator: locator,
		Prefs:   store,
		Factory: renderer,
		Metrics: metrics,
		Explore: config.GetExploreConfig(),
		Events: session.Events{
			OnInitProgress: func(done, total int) {
				fmt.Fprintf(os.Stdout, "Loading markers... %d/%d\n", done, total)
			},
			OnInitFinished: func() {
				fmt.Fprintln(os.Stdout, "Ready. Type 'help' for commands.")
			},
		},
		Logger: logger,
	})

	eventDispatcher, err := dispatcher.New(logging.NewDispatcherLogger(logger))
	if err != nil {
		return fmt.Errorf("error creating dispatcher: %w", err)
	}
	sess.Bind(eventDispatcher)

	sess.Start()
	go runPrompt(os.Stdin, os.Stdout, eventDispatcher, loop, logger)

	loop.Run()
	logger.Info().Msg("Shutting down")
	return nil
}
