package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	EnvConfig         = "VENUEFINDER_CONFIG"
	EnvEmbeddingHost  = "VENUEFINDER_EMBEDDING_HOST"
	EnvSentimentHost  = "VENUEFINDER_SENTIMENT_HOST"
	EnvEmbeddingModel = "VENUEFINDER_EMBEDDING_MODEL"
	EnvSentimentModel = "VENUEFINDER_SENTIMENT_MODEL"
	EnvAPIToken       = "VENUEFINDER_API_TOKEN"
	EnvStore          = "VENUEFINDER_STORE"
	EnvWorkers        = "VENUEFINDER_WORKERS"
)

// DefaultFileName is looked up in the working directory when no path is given.
const DefaultFileName = "venuefinder.yaml"

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, VENUEFINDER_CONFIG env, ./venuefinder.yaml)
//  3. Environment variable overrides
//  4. File reference resolution (_file suffix)
//  5. Validation
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile returns the explicit path, then VENUEFINDER_CONFIG,
// then ./venuefinder.yaml if it exists. Empty means no file.
func discoverConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}
	if envPath := os.Getenv(EnvConfig); envPath != "" {
		return envPath
	}
	if _, err := os.Stat(DefaultFileName); err == nil {
		return DefaultFileName
	}
	return ""
}

// loadYAMLFile parses path over cfg. Fields absent from the file keep
// their current values. Unknown keys are errors so typos surface.
func loadYAMLFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvEmbeddingHost); v != "" {
		cfg.AI.EmbeddingHost = v
	}
	if v := os.Getenv(EnvSentimentHost); v != "" {
		cfg.AI.SentimentHost = v
	}
	if v := os.Getenv(EnvEmbeddingModel); v != "" {
		cfg.AI.EmbeddingModel = v
	}
	if v := os.Getenv(EnvSentimentModel); v != "" {
		cfg.AI.SentimentModel = v
	}
	if v := os.Getenv(EnvAPIToken); v != "" {
		cfg.AI.APIToken = v
	}
	if v := os.Getenv(EnvStore); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Build.Workers = n
		}
	}
}

// resolveFileReferences reads secrets from _file fields. A file value
// overrides the inline one.
func resolveFileReferences(cfg *Config) error {
	if cfg.AI.APITokenFile != "" {
		data, err := os.ReadFile(cfg.AI.APITokenFile)
		if err != nil {
			return fmt.Errorf("reading ai.api_token_file %s: %w", cfg.AI.APITokenFile, err)
		}
		cfg.AI.APIToken = strings.TrimSpace(string(data))
	}
	return nil
}
