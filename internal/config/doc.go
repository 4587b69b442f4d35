// Package config is the single source of truth for pipeline configuration
// and file system paths.
//
// Configuration is loaded from environment variables (prefix PANEL) merged
// over an optional YAML file, then validated. Paths centralizes the
// data/raw, data/processed, data/final and logs directory tree along with
// the well-known input and output file names used by the fetch and merge
// steps.
package config
