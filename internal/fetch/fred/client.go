// Package fred is a minimal client for the FRED (Federal Reserve Economic
// Data) observations API, used to fetch the University of Michigan
// consumer sentiment series.
package fred

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"panelcli/internal/errors"
)

// requestTimeout bounds each API call; the pipeline has no retry policy,
// a timed-out fetch aborts the step.
const requestTimeout = 30 * time.Second

// observationsPath is the series observations endpoint.
const observationsPath = "/fred/series/observations"

// Client calls the FRED observations API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// New creates a FRED client. requestsPerSec throttles API calls to stay
// inside FRED's published limits.
func New(baseURL, apiKey string, requestsPerSec float64, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: requestTimeout},
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSec), 1),
		logger:     logger,
	}
}

// Observation is one dated value of a series.
type Observation struct {
	Date  time.Time
	Value float64
}

// observationsResponse mirrors the JSON payload of the observations
// endpoint. Values arrive as strings; "." marks a missing observation.
type observationsResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

// Observations fetches a series between two dates, inclusive. Missing
// observations ("." values) are skipped.
func (c *Client) Observations(ctx context.Context, seriesID string, start, end time.Time) ([]Observation, error) {
	if c.apiKey == "" {
		return nil, errors.New(errors.CodeBadConfig, "FRED API key is not configured")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := c.baseURL + observationsPath
	params := url.Values{}
	params.Set("series_id", seriesID)
	params.Set("api_key", c.apiKey)
	params.Set("file_type", "json")
	params.Set("observation_start", start.Format("2006-01-02"))
	params.Set("observation_end", end.Format("2006-01-02"))

	reqURL := endpoint + "?" + params.Encode()

	c.logger.Info("Fetching FRED series",
		slog.String("series_id", seriesID),
		slog.String("start", params.Get("observation_start")),
		slog.String("end", params.Get("observation_end")))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.DownloadFailed(endpoint, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.DownloadFailed(endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.DownloadFailed(endpoint,
			fmt.Errorf("series %s: unexpected status %d: %s", seriesID, resp.StatusCode, string(body)))
	}

	var payload observationsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.Wrap(errors.CodeSchemaMismatch, "malformed FRED response", err)
	}

	observations := make([]Observation, 0, len(payload.Observations))
	for _, obs := range payload.Observations {
		if obs.Value == "." {
			continue
		}
		date, err := time.ParseInLocation("2006-01-02", obs.Date, time.UTC)
		if err != nil {
			return nil, errors.Wrap(errors.CodeSchemaMismatch,
				fmt.Sprintf("series %s has invalid observation date %q", seriesID, obs.Date), err)
		}
		value, err := strconv.ParseFloat(obs.Value, 64)
		if err != nil {
			return nil, errors.Wrap(errors.CodeSchemaMismatch,
				fmt.Sprintf("series %s has non-numeric observation %q on %s", seriesID, obs.Value, obs.Date), err)
		}
		observations = append(observations, Observation{Date: date, Value: value})
	}

	if len(observations) == 0 {
		return nil, errors.EmptyDataset("FRED series " + seriesID)
	}

	c.logger.Info("Fetched FRED series",
		slog.String("series_id", seriesID),
		slog.Int("observations", len(observations)))

	return observations, nil
}
