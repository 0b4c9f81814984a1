package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// Loader handles loading and merging configurations from multiple sources
type Loader struct {
	userPath    string
	projectPath string
	validator   *Validator
}

// NewLoader creates a configuration loader using the standard search paths.
func NewLoader() *Loader {
	return &Loader{
		userPath:    filepath.Join(xdg.ConfigHome, "neuroai", "config.json"),
		projectPath: filepath.Join(".neuroai", "config.json"),
		validator:   NewValidator(),
	}
}

// UserConfigPath returns the path of the user-level config file.
func (l *Loader) UserConfigPath() string {
	return l.userPath
}

// Load loads configuration from all sources and merges them: defaults, the
// user config, the project config, then environment overrides. keys.env and
// .env files are applied to the process environment first so that provider
// keys stored there behave exactly like exported variables.
func (l *Loader) Load() (*Config, error) {
	LoadEnvFiles()

	config := DefaultConfig()

	for _, path := range []string{l.userPath, l.projectPath} {
		if path == "" {
			continue
		}
		if cfg, err := l.loadFile(path); err == nil {
			config = l.mergeConfigs(config, cfg)
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	l.applyEnvironmentOverrides(config)

	if err := l.validator.Validate(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// LoadFile loads and validates a single configuration file over defaults.
// It is used when the user passes an explicit --config path.
func (l *Loader) LoadFile(path string) (*Config, error) {
	LoadEnvFiles()

	cfg, err := l.loadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	config := l.mergeConfigs(DefaultConfig(), cfg)
	l.applyEnvironmentOverrides(config)

	if err := l.validator.Validate(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

func (l *Loader) loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	return &config, nil
}

// SaveFile saves configuration to a file
func (l *Loader) SaveFile(config *Config, path string) error {
	if err := l.validator.Validate(config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// mergeConfigs merges two configurations with the second taking precedence
func (l *Loader) mergeConfigs(base, override *Config) *Config {
	result := *base

	if override.Version != "" {
		result.Version = override.Version
	}

	if len(override.Providers) > 0 {
		if result.Providers == nil {
			result.Providers = make(map[string]ProviderConfig)
		}
		for name, pc := range override.Providers {
			merged := result.Providers[name]
			if pc.APIKey != "" {
				merged.APIKey = pc.APIKey
			}
			if pc.BaseURL != "" {
				merged.BaseURL = pc.BaseURL
			}
			if pc.Model != "" {
				merged.Model = pc.Model
			}
			if pc.Disabled {
				merged.Disabled = true
			}
			result.Providers[name] = merged
		}
	}

	if override.Agent.Provider != "" {
		result.Agent.Provider = override.Agent.Provider
	}
	if override.Agent.Temperature != nil {
		result.Agent.Temperature = override.Agent.Temperature
	}
	if override.Agent.MaxTokens != nil {
		result.Agent.MaxTokens = override.Agent.MaxTokens
	}
	if override.Agent.SystemPrompt != "" {
		result.Agent.SystemPrompt = override.Agent.SystemPrompt
	}

	if override.Server.Host != "" {
		result.Server.Host = override.Server.Host
	}
	if override.Server.Port != 0 {
		result.Server.Port = override.Server.Port
	}

	if override.Retrieval.TopK != 0 {
		result.Retrieval.TopK = override.Retrieval.TopK
	}
	if override.Retrieval.ChunkSize != 0 {
		result.Retrieval.ChunkSize = override.Retrieval.ChunkSize
	}
	if override.Retrieval.ChunkOverlap != 0 {
		result.Retrieval.ChunkOverlap = override.Retrieval.ChunkOverlap
	}
	if override.Retrieval.EmbeddingModel != "" {
		result.Retrieval.EmbeddingModel = override.Retrieval.EmbeddingModel
	}

	if override.Data.Directory != "" {
		result.Data.Directory = override.Data.Directory
	}

	if override.Logging.Level != "" {
		result.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		result.Logging.Format = override.Logging.Format
	}

	return &result
}

// applyEnvironmentOverrides applies environment variable overrides to config
func (l *Loader) applyEnvironmentOverrides(config *Config) {
	// Provider keys use their conventional variable names.
	keyVars := map[string]string{
		"openai":    "OPENAI_API_KEY",
		"anthropic": "ANTHROPIC_API_KEY",
		"google":    "GOOGLE_API_KEY",
	}
	for name, envVar := range keyVars {
		pc := config.Providers[name]
		if pc.APIKey == "" {
			if key := os.Getenv(envVar); key != "" {
				pc.APIKey = key
				config.Providers[name] = pc
			}
		}
	}

	if provider := os.Getenv("NEUROAI_PROVIDER"); provider != "" {
		config.Agent.Provider = provider
	}
	if host := os.Getenv("NEUROAI_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("NEUROAI_PORT"); port != "" {
		var p int
		if _, err := fmt.Sscanf(port, "%d", &p); err == nil {
			config.Server.Port = p
		}
	}
	if dir := os.Getenv("NEUROAI_DATA_DIR"); dir != "" {
		config.Data.Directory = dir
	}
	if level := os.Getenv("NEUROAI_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}
