package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is the encoding of a configuration file.
type Format string

// Supported configuration encodings.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor guesses the encoding from a file name. Anything that is not
// .yaml or .yml is read as JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load reads, defaults and validates the configuration at path.
func Load(path string) (*Config, error) {
	cfg, err := LoadWithoutValidation(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadWithoutValidation reads and defaults the configuration at path.
func LoadWithoutValidation(path string) (*Config, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data, FormatFor(path))
}

// Parse decodes configuration data and applies defaults.
func Parse(data []byte, format Format) (*Config, error) {
	var cfg Config

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
		cfg.SlaveImage = StringKeys(cfg.SlaveImage)
		cfg.Simulations = StringKeys(cfg.Simulations)
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		// Keep large image IDs inside the opaque specs exact.
		dec.UseNumber()
		if err := dec.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// StringKeys rewrites the mappings inside an opaque spec to string keys.
// YAML mappings with non-string keys, such as {1: a}, decode as
// map[any]any, which JSON cannot encode.
func StringKeys(v any) any {
	switch t := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = StringKeys(val)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = StringKeys(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = StringKeys(val)
		}
		return out
	default:
		return v
	}
}

// Save writes the configuration as indented JSON.
func Save(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Remote.User == "" {
		c.Remote.User = DefaultRemoteUser
	}
	if c.Remote.Port == 0 {
		c.Remote.Port = DefaultRemotePort
	}
	if c.Remote.Repository == "" {
		c.Remote.Repository = DefaultRemoteRepository
	}
	if c.Remote.Directory == "" {
		c.Remote.Directory = DefaultRemoteDirectory
	}
	if c.Remote.Launch == "" {
		c.Remote.Launch = DefaultLaunchCommand
	}
}
