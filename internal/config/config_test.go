package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom("")
	require.NoError(t, err)

	assert.Equal(t, DefaultStartYear, cfg.Range.StartYear)
	assert.Equal(t, DefaultEndYear, cfg.Range.EndYear)
	assert.Equal(t, DefaultFredBaseURL, cfg.Fred.BaseURL)
	assert.Equal(t, DefaultFrenchBaseURL, cfg.French.BaseURL)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadFrom_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PANEL_RANGE_START_YEAR", "2010")
	t.Setenv("PANEL_RANGE_END_YEAR", "2020")
	t.Setenv("PANEL_FRED_API_KEY", "test-key")
	t.Setenv("PANEL_LOGGING_LEVEL", "debug")

	cfg, err := LoadFrom("")
	require.NoError(t, err)

	assert.Equal(t, 2010, cfg.Range.StartYear)
	assert.Equal(t, 2020, cfg.Range.EndYear)
	assert.Equal(t, "test-key", cfg.Fred.APIKey)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFrom_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")

	yamlContent := `
range:
  start_year: 2015
  end_year: 2023
fred:
  api_key: file-key
`
	require.NoError(t, os.WriteFile(configFile, []byte(yamlContent), 0644))

	cfg, err := LoadFrom(configFile)
	require.NoError(t, err)

	assert.Equal(t, 2015, cfg.Range.StartYear)
	assert.Equal(t, 2023, cfg.Range.EndYear)
	assert.Equal(t, "file-key", cfg.Fred.APIKey)
	// Defaults still fill untouched fields.
	assert.Equal(t, DefaultFredBaseURL, cfg.Fred.BaseURL)
}

func TestLoadFrom_EnvWinsOverFile(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("fred:\n  api_key: file-key\n"), 0644))

	t.Setenv("PANEL_FRED_API_KEY", "env-key")

	cfg, err := LoadFrom(configFile)
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Fred.APIKey)
}

func TestLoadFrom_ValidationFailures(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
	}{
		{
			name: "end year before start year",
			env: map[string]string{
				"PANEL_RANGE_START_YEAR": "2020",
				"PANEL_RANGE_END_YEAR":   "2010",
			},
		},
		{
			name: "invalid log level",
			env:  map[string]string{"PANEL_LOGGING_LEVEL": "verbose"},
		},
		{
			name: "invalid log output",
			env:  map[string]string{"PANEL_LOGGING_OUTPUT": "syslog"},
		},
		{
			name: "zero rate limit",
			env:  map[string]string{"PANEL_FRED_REQUESTS_PER_SEC": "0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadFrom("")
			assert.Error(t, err)
		})
	}
}

func TestLoadFrom_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("range: [not a map"), 0644))

	_, err := LoadFrom(configFile)
	assert.Error(t, err)
}
