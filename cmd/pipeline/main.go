// pipeline runs the complete data pipeline: the three source fetches
// followed by the panel merge. Sentiment fetch failures are tolerated (the
// raw files may need a manual download); the run fails when the factor
// fetch or the merge fails.
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
	flag.Parse()

	cfg, paths, logger := bootstrap(*configFile, *baseDir)

	ctx := infrastructure.WithRunID(context.Background(), infrastructure.NewRunID())
	runner := pipeline.NewRunner(cfg, paths, logger)

	summary := runner.RunAll(ctx)
	if !summary.Ok() {
		logger.Error("Pipeline finished without a usable panel")
		os.Exit(1)
	}
	logger.Info("Pipeline complete", slog.String("panel", paths.PanelCSV))
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
