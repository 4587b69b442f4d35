// Package pipeline runs the fetch and merge steps over the configured data
// tree. Each step reads raw inputs, writes its processed table, and aborts
// on the first error; the master runner executes all four in sequence.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"panelcli/internal/config"
	"panelcli/internal/dataset"
	"panelcli/internal/errors"
	"panelcli/internal/exporter"
	"panelcli/internal/fetch/aaii"
	"panelcli/internal/fetch/fred"
	"panelcli/internal/fetch/french"
	"panelcli/internal/fetch/michigan"
	"panelcli/internal/panel"
)

// Runner executes pipeline steps against one configuration and data tree.
type Runner struct {
	cfg    *config.Config
	paths  *config.Paths
	writer *exporter.CSVWriter
	logger *slog.Logger
}

// NewRunner creates a step runner. The data tree directories are created on
// first use by the CSV writer.
func NewRunner(cfg *config.Config, paths *config.Paths, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		cfg:    cfg,
		paths:  paths,
		writer: exporter.NewCSVWriter(paths),
		logger: logger,
	}
}

// FetchMichigan obtains the consumer sentiment table, preferring the
// statistics API and falling back to a manually supplied raw file, then
// writes the processed monthly table.
func (r *Runner) FetchMichigan(ctx context.Context) error {
	startYear, endYear := r.cfg.Range.StartYear, r.cfg.Range.EndYear

	var table *dataset.Table
	var err error

	if r.cfg.Fred.APIKey != "" {
		client := fred.New(r.cfg.Fred.BaseURL, r.cfg.Fred.APIKey, r.cfg.Fred.RequestsPerSec, r.logger)
		table, err = michigan.NewFetcher(client, r.logger).Fetch(ctx, startYear, endYear)
		if err != nil {
			r.logger.Warn("API fetch failed, trying manual raw file",
				slog.String("error", err.Error()))
		}
	} else {
		r.logger.Info("No FRED API key configured, using manual raw file")
	}

	if table == nil {
		table, err = michigan.LoadManual(r.paths.RawDir, startYear, endYear, r.logger)
		if err != nil {
			fmt.Fprintln(os.Stderr, michigan.ManualDownloadInstructions)
			return err
		}
	}

	return r.writeProcessed(config.ProcessedMichiganCSV, table, "michigan sentiment")
}

// FetchAAII cleans the manually supplied survey file into the weekly
// processed table.
func (r *Runner) FetchAAII(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	table, err := aaii.Load(r.paths.RawDir, r.cfg.Range.StartYear, r.cfg.Range.EndYear, r.logger)
	if err != nil {
		if errors.HasCode(err, errors.CodeMissingFile) {
			fmt.Fprintln(os.Stderr, aaii.ManualDownloadInstructions)
		}
		return err
	}

	return r.writeProcessed(config.ProcessedAAIICSV, table, "aaii sentiment")
}

// FetchFrench downloads and combines the factor archives into the processed
// monthly factor table.
func (r *Runner) FetchFrench(ctx context.Context) error {
	if err := r.paths.EnsureDirectories(); err != nil {
		return err
	}

	client := french.NewClient(r.cfg.French.BaseURL, r.logger)
	table, err := client.Fetch(ctx, r.paths.RawDir, r.cfg.Range.StartYear, r.cfg.Range.EndYear)
	if err != nil {
		return err
	}

	return r.writeProcessed(config.ProcessedFrenchCSV, table, "french factors")
}

// MergePanel joins the processed tables into the final panel, validates it,
// and writes the panel plus its summary statistics.
func (r *Runner) MergePanel(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	inputs := panel.Inputs{
		Michigan: r.loadProcessed(r.paths.MichiganCSV, "michigan sentiment"),
		AAII:     r.loadProcessed(r.paths.AAIICSV, "aaii sentiment"),
		French:   r.loadProcessed(r.paths.FrenchCSV, "french factors"),
	}
	if inputs.Michigan == nil && inputs.AAII == nil && inputs.French == nil {
		return errors.New(errors.CodeMissingFile,
			"no processed datasets found, run the fetch steps first")
	}

	startYear, endYear := r.cfg.Range.StartYear, r.cfg.Range.EndYear
	merged, err := panel.Build(inputs, startYear, endYear, r.logger)
	if err != nil {
		return err
	}

	if err := panel.Validate(merged, inputs, startYear, endYear); err != nil {
		return err
	}
	panel.QualityReport(merged, r.logger)

	if err := r.writer.WriteSimpleCSV("final/"+config.FinalPanelCSV, merged.Header(), merged.Records()); err != nil {
		return err
	}
	r.logger.Info("Wrote final panel",
		slog.String("path", r.paths.PanelCSV),
		slog.Int("rows", merged.NumRows()),
		slog.Int("columns", len(merged.Columns())))

	stats := panel.SummaryStatistics(merged)
	if err := r.writer.WriteSimpleCSV("final/"+config.FinalSummaryCSV, stats[0], stats[1:]); err != nil {
		return err
	}
	r.logger.Info("Wrote summary statistics", slog.String("path", r.paths.SummaryCSV))

	return nil
}

// Summary reports per-step success of a full pipeline run.
type Summary struct {
	Michigan bool
	AAII     bool
	French   bool
	Merge    bool
}

// Ok reports whether the run produced a usable panel. The sentiment fetches
// may fail when their raw files need a manual download; the factor fetch
// and the merge must succeed.
func (s Summary) Ok() bool {
	return s.French && s.Merge
}

// RunAll executes the four steps in order. Sentiment fetch failures are
// logged and the run continues; the merge works with whatever processed
// tables exist.
func (r *Runner) RunAll(ctx context.Context) Summary {
	var s Summary

	s.Michigan = r.runStep(ctx, "fetch-michigan", r.FetchMichigan)
	s.AAII = r.runStep(ctx, "fetch-aaii", r.FetchAAII)
	s.French = r.runStep(ctx, "fetch-french", r.FetchFrench)
	s.Merge = r.runStep(ctx, "merge-panel", r.MergePanel)

	r.logger.Info("Pipeline execution summary",
		slog.Bool("michigan", s.Michigan),
		slog.Bool("aaii", s.AAII),
		slog.Bool("french", s.French),
		slog.Bool("merge", s.Merge),
		slog.Bool("ok", s.Ok()))
	return s
}

func (r *Runner) runStep(ctx context.Context, name string, step func(context.Context) error) bool {
	r.logger.Info("Running step", slog.String("step", name))
	if err := step(ctx); err != nil {
		r.logger.Error("Step failed",
			slog.String("step", name),
			slog.String("error", err.Error()))
		return false
	}
	r.logger.Info("Step complete", slog.String("step", name))
	return true
}

func (r *Runner) writeProcessed(filename string, table *dataset.Table, what string) error {
	if err := r.writer.WriteSimpleCSV(filename, table.Header(), table.Records()); err != nil {
		return err
	}
	r.logger.Info("Wrote processed table",
		slog.String("dataset", what),
		slog.String("path", r.paths.GetProcessedPath(filename)),
		slog.Int("rows", table.NumRows()))
	return nil
}

// loadProcessed reads a processed table, returning nil when the file does
// not exist so the merge can proceed with partial inputs.
func (r *Runner) loadProcessed(path, what string) *dataset.Table {
	f, err := os.Open(path)
	if err != nil {
		r.logger.Warn("Processed table not found",
			slog.String("dataset", what),
			slog.String("path", path))
		return nil
	}
	defer f.Close()

	table, err := dataset.FromCSV(f)
	if err != nil {
		r.logger.Warn("Processed table unreadable",
			slog.String("dataset", what),
			slog.String("path", path),
			slog.String("error", err.Error()))
		return nil
	}
	r.logger.Info("Loaded processed table",
		slog.String("dataset", what),
		slog.Int("rows", table.NumRows()))
	return table
}
