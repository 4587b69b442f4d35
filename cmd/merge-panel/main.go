// merge-panel joins the processed source tables into the final monthly
// analysis panel, validates it, and writes the panel with its summary
// statistics.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"panelcli/internal/config"
	"panelcli/internal/infrastructure"
	"panelcli/internal/pipeline"
)

func main() {
	baseDir := flag.String("base", "", "base data directory (defaults next to the executable)")
	configFile := flag.String("config", "", "config file path (defaults to config.yaml next to the executable)")
	startYear := flag.Int("start", 0, "first panel year (overrides PANEL_RANGE_START_YEAR)")
	endYear := flag.Int("end", 0, "last panel year (overrides PANEL_RANGE_END_YEAR)")
	flag.Parse()

	cfg, paths, logger := bootstrap(*configFile, *baseDir)
	if *startYear != 0 {
		cfg.Range.StartYear = *startYear
	}
	if *endYear != 0 {
		cfg.Range.EndYear = *endYear
	}

	ctx := infrastructure.WithRunID(context.Background(), infrastructure.NewRunID())
	runner := pipeline.NewRunner(cfg, paths, logger)

	if err := runner.MergePanel(ctx); err != nil {
		logger.Error("Panel merge failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Panel merge complete",
		slog.String("panel", paths.PanelCSV),
		slog.String("summary", paths.SummaryCSV))
}

// bootstrap loads config, resolves the data tree, and initializes logging.
func bootstrap(configFile, baseDir string) (*config.Config, *config.Paths, *slog.Logger) {
	var cfg *config.Config
	var err error
	if configFile != "" {
		cfg, err = config.LoadFrom(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if baseDir != "" {
		cfg.Paths.BaseDir = baseDir
	}

	paths, err := config.ResolvePaths(cfg)
	if err != nil {
		slog.Error("Failed to resolve paths", "error", err)
		os.Exit(1)
	}
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create data directories", "error", err)
		os.Exit(1)
	}

	if cfg.Logging.Output != "console" {
		cfg.Logging.FilePath = paths.GetLogPath("pipeline.log")
	}
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	return cfg, paths, logger
}
