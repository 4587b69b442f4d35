package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete pipeline configuration.
type Config struct {
	Fred    FredConfig    `yaml:"fred" envconfig:"FRED"`
	French  FrenchConfig  `yaml:"french" envconfig:"FRENCH"`
	Range   RangeConfig   `yaml:"range" envconfig:"RANGE"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Paths   PathsConfig   `yaml:"paths" envconfig:"PATHS"`
}

// FredConfig contains the statistics API settings. The API key is required
// for the automated Michigan fetch; without one the step falls back to a
// manually supplied raw file.
type FredConfig struct {
	APIKey         string  `yaml:"api_key" envconfig:"API_KEY"`
	BaseURL        string  `yaml:"base_url" envconfig:"BASE_URL" default:"https://api.stlouisfed.org"`
	RequestsPerSec float64 `yaml:"requests_per_sec" envconfig:"REQUESTS_PER_SEC" default:"2" validate:"gt=0"`
}

// FrenchConfig contains the factor library settings.
type FrenchConfig struct {
	BaseURL string `yaml:"base_url" envconfig:"BASE_URL" default:"https://mba.tuck.dartmouth.edu/pages/faculty/ken.french/ftp"`
}

// RangeConfig bounds the analysis window in complete calendar years.
type RangeConfig struct {
	StartYear int `yaml:"start_year" envconfig:"START_YEAR" default:"2004" validate:"min=1900,max=2100"`
	EndYear   int `yaml:"end_year" envconfig:"END_YEAR" default:"2024" validate:"min=1900,max=2100,gtefield=StartYear"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/pipeline.log"`
}

// PathsConfig overrides the base data directory. When empty the tree is
// rooted next to the executable.
type PathsConfig struct {
	BaseDir string `yaml:"base_dir" envconfig:"BASE_DIR"`
}

// Load loads configuration from environment variables and an optional
// config file. Environment variables win over file values.
func Load() (*Config, error) {
	return LoadFrom(configFilePath())
}

// LoadFrom is Load with an explicit config file location, used by tests.
func LoadFrom(configFile string) (*Config, error) {
	var cfg Config

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			fileCfg, err := loadFromFile(configFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
			cfg = *fileCfg
		}
	}

	// Environment variables take precedence and fill in defaults.
	if err := envconfig.Process("PANEL", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate checks the struct-level validation tags.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// configFilePath returns the default config file location, next to the
// executable, matching the rest of the path resolution.
func configFilePath() string {
	exeDir, err := executableDir()
	if err != nil {
		return "config.yaml"
	}
	return exeDir + string(os.PathSeparator) + "config.yaml"
}
