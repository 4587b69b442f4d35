// Package french downloads and cleans factor return data from the Kenneth
// French Data Library at Dartmouth.
//
// The library publishes each dataset as a zipped CSV with a descriptive
// preamble, a monthly section, and annual sections the pipeline ignores.
// The 3-factor file is required; momentum and the 5-factor file are merged
// in when their downloads succeed.
package french

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"panelcli/internal/config"
	"panelcli/internal/dataset"
	"panelcli/internal/errors"
)

// requestTimeout bounds each archive download.
const requestTimeout = 30 * time.Second

// Client downloads factor archives from the French library FTP mirror.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a download client rooted at the library's FTP URL.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}
}

// Fetch downloads every configured dataset, keeps a raw CSV copy of each
// under rawDir, and returns the combined monthly factor table. A failed
// optional dataset is logged and skipped; a failed required dataset aborts.
func (c *Client) Fetch(ctx context.Context, rawDir string, startYear, endYear int) (*dataset.Table, error) {
	tables := make(map[string]*dataset.Table, len(config.FrenchDatasets))

	for _, ds := range config.FrenchDatasets {
		table, err := c.fetchDataset(ctx, ds, rawDir)
		if err != nil {
			if ds.Required {
				return nil, err
			}
			c.logger.Warn("Optional factor dataset unavailable, continuing without it",
				slog.String("dataset", ds.Name),
				slog.String("reason", err.Error()))
			continue
		}
		c.logger.Info("Fetched factor dataset",
			slog.String("dataset", ds.Name),
			slog.Int("months", table.NumRows()))
		tables[ds.Key] = table
	}

	combined, err := Combine(tables["ff3"], tables["mom"], tables["5factors"])
	if err != nil {
		return nil, err
	}
	return combined.FilterYears(startYear, endYear), nil
}

func (c *Client) fetchDataset(ctx context.Context, ds config.FrenchDataset, rawDir string) (*dataset.Table, error) {
	archiveURL := c.baseURL + "/" + ds.ZipName

	c.logger.Info("Downloading factor archive",
		slog.String("dataset", ds.Name),
		slog.String("url", archiveURL))

	zipData, err := c.download(ctx, archiveURL)
	if err != nil {
		return nil, err
	}

	content, err := extractCSV(zipData)
	if err != nil {
		return nil, errors.Wrap(errors.CodeSchemaMismatch,
			fmt.Sprintf("archive %s has no usable CSV", ds.ZipName), err)
	}

	// Keep the raw extract for inspection and offline reruns.
	rawPath := filepath.Join(rawDir, fmt.Sprintf("french_%s.csv", ds.Key))
	if err := os.WriteFile(rawPath, content, 0644); err != nil {
		c.logger.Warn("Could not save raw factor data",
			slog.String("path", rawPath),
			slog.String("error", err.Error()))
	}

	return ParseMonthly(string(content))
}

func (c *Client) download(ctx context.Context, archiveURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, archiveURL, nil)
	if err != nil {
		return nil, errors.DownloadFailed(archiveURL, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.DownloadFailed(archiveURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.DownloadFailed(archiveURL,
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.DownloadFailed(archiveURL, err)
	}
	return data, nil
}

// extractCSV returns the contents of the first CSV member of a zip archive.
func extractCSV(zipData []byte) ([]byte, error) {
	reader, err := zip.NewReader(bytes.NewReader(zipData), int64(len(zipData)))
	if err != nil {
		return nil, err
	}
	for _, file := range reader.File {
		if !strings.EqualFold(filepath.Ext(file.Name), ".csv") {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("no CSV member in archive")
}
