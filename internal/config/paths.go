package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains all the pipeline paths.
// This is the single source of truth for ALL file paths in the pipeline.
type Paths struct {
	BaseDir      string
	DataDir      string
	RawDir       string
	ProcessedDir string
	FinalDir     string
	LogsDir      string

	// Well-known processed tables, keyed by end-of-month date.
	MichiganCSV string
	AAIICSV     string
	FrenchCSV   string

	// Final outputs.
	PanelCSV   string
	SummaryCSV string
}

// GetPaths returns the pipeline paths rooted next to the executable.
// Paths are never relative to the current working directory so the tools
// behave the same wherever they are invoked from.
func GetPaths() (*Paths, error) {
	exeDir, err := executableDir()
	if err != nil {
		return nil, err
	}
	return NewPaths(exeDir), nil
}

// NewPaths builds the directory tree under an explicit base directory.
//
// Layout:
//
//	base/
//	  ├── data/
//	  │   ├── raw/        (downloaded or manually supplied source files)
//	  │   ├── processed/  (cleaned single-source monthly tables)
//	  │   └── final/      (merged panel and summary statistics)
//	  └── logs/
func NewPaths(baseDir string) *Paths {
	dataDir := filepath.Join(baseDir, "data")
	rawDir := filepath.Join(dataDir, "raw")
	processedDir := filepath.Join(dataDir, "processed")
	finalDir := filepath.Join(dataDir, "final")

	return &Paths{
		BaseDir:      baseDir,
		DataDir:      dataDir,
		RawDir:       rawDir,
		ProcessedDir: processedDir,
		FinalDir:     finalDir,
		LogsDir:      filepath.Join(baseDir, "logs"),

		MichiganCSV: filepath.Join(processedDir, ProcessedMichiganCSV),
		AAIICSV:     filepath.Join(processedDir, ProcessedAAIICSV),
		FrenchCSV:   filepath.Join(processedDir, ProcessedFrenchCSV),

		PanelCSV:   filepath.Join(finalDir, FinalPanelCSV),
		SummaryCSV: filepath.Join(finalDir, FinalSummaryCSV),
	}
}

// ResolvePaths returns paths honoring the configured base directory
// override, falling back to the executable directory.
func ResolvePaths(cfg *Config) (*Paths, error) {
	if cfg != nil && cfg.Paths.BaseDir != "" {
		return NewPaths(cfg.Paths.BaseDir), nil
	}
	return GetPaths()
}

// EnsureDirectories creates all required directories if they don't exist.
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.RawDir,
		p.ProcessedDir,
		p.FinalDir,
		p.LogsDir,
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetRawPath returns the path of a file in the raw data directory.
func (p *Paths) GetRawPath(filename string) string {
	return filepath.Join(p.RawDir, filename)
}

// GetProcessedPath returns the path of a file in the processed directory.
func (p *Paths) GetProcessedPath(filename string) string {
	return filepath.Join(p.ProcessedDir, filename)
}

// GetFinalPath returns the path of a file in the final directory.
func (p *Paths) GetFinalPath(filename string) string {
	return filepath.Join(p.FinalDir, filename)
}

// GetLogPath returns the path of a file in the logs directory.
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// executableDir resolves the directory containing the running executable,
// following symlinks.
func executableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}
	return filepath.Dir(exe), nil
}
