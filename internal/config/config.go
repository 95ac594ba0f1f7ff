// Package config loads the mxc.yml project configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up in the project root
const FileName = "mxc.yml"

// Config represents the mxc.yml configuration
type Config struct {
	// Directory holding component syntax trees (*.ast.json)
	SourceDir string `yaml:"sourceDir,omitempty"`

	// Directory the compiler writes IR artifacts into
	OutDir string `yaml:"outDir,omitempty"`

	// Path allocation configuration
	Paths *PathsConfig `yaml:"paths,omitempty"`

	// Cache configuration
	Cache *CacheConfig `yaml:"cache,omitempty"`

	// Development server configuration
	Dev *DevConfig `yaml:"dev,omitempty"`
}

// PathsConfig controls sibling path allocation
type PathsConfig struct {
	// Gap between consecutive sibling segments; 0 uses the built-in default
	Gap uint32 `yaml:"gap,omitempty"`
}

// CacheConfig controls the persisted assignment store
type CacheConfig struct {
	// Cache directory; empty uses ~/.cache/mxc
	Dir string `yaml:"dir,omitempty"`

	// Whether to skip the cache entirely
	Disabled bool `yaml:"disabled,omitempty"`
}

// DevConfig contains development server configuration
type DevConfig struct {
	// Server port
	Port int `yaml:"port,omitempty"`

	// Server host
	Host string `yaml:"host,omitempty"`
}

// Load loads configuration from mxc.yml in the project directory.
// A missing file yields the default configuration.
func Load(projectPath string) (*Config, error) {
	configPath := filepath.Join(projectPath, FileName)

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse %s: %w", FileName, err)
	}

	applyDefaults(&config)

	return &config, nil
}

// Save writes configuration to mxc.yml in the project directory
func Save(config *Config, projectPath string) error {
	configPath := filepath.Join(projectPath, FileName)

	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		SourceDir: "components",
		OutDir:    "build",
		Paths:     &PathsConfig{},
		Cache:     &CacheConfig{},
		Dev: &DevConfig{
			Port: 7331,
			Host: "localhost",
		},
	}
}

// applyDefaults fills in missing configuration values
func applyDefaults(config *Config) {
	defaults := DefaultConfig()

	if config.SourceDir == "" {
		config.SourceDir = defaults.SourceDir
	}
	if config.OutDir == "" {
		config.OutDir = defaults.OutDir
	}
	if config.Paths == nil {
		config.Paths = defaults.Paths
	}
	if config.Cache == nil {
		config.Cache = defaults.Cache
	}
	if config.Dev == nil {
		config.Dev = defaults.Dev
	} else {
		if config.Dev.Port == 0 {
			config.Dev.Port = defaults.Dev.Port
		}
		if config.Dev.Host == "" {
			config.Dev.Host = defaults.Dev.Host
		}
	}
}

// Addr returns the dev server listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Dev.Host, c.Dev.Port)
}
