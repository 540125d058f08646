// Package config loads and persists whoowns configuration from
// .whoowns/config.json under the repository root.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the complete whoowns configuration
type Config struct {
	Version  int    `json:"version" mapstructure:"version"`
	RepoRoot string `json:"repoRoot" mapstructure:"repoRoot"`

	// ManifestPath overrides manifest discovery. Empty means search the
	// standard locations.
	ManifestPath string `json:"manifestPath" mapstructure:"manifestPath"`

	// IdentityMapPath points at the YAML name-to-handle override table
	IdentityMapPath string `json:"identityMapPath" mapstructure:"identityMapPath"`

	// DefaultOwner is applied when resolution yields no candidate
	DefaultOwner string `json:"defaultOwner" mapstructure:"defaultOwner"`

	History      HistoryConfig      `json:"history" mapstructure:"history"`
	Store        StoreConfig        `json:"store" mapstructure:"store"`
	Ranking      RankingConfig      `json:"ranking" mapstructure:"ranking"`
	Verification VerificationConfig `json:"verification" mapstructure:"verification"`
	Logging      LoggingConfig      `json:"logging" mapstructure:"logging"`
}

// HistoryConfig controls the git-history ownership source
type HistoryConfig struct {
	WindowMonths  int      `json:"windowMonths" mapstructure:"windowMonths"`
	MaxCandidates int      `json:"maxCandidates" mapstructure:"maxCandidates"`
	BotPatterns   []string `json:"botPatterns" mapstructure:"botPatterns"`
}

// StoreConfig controls the persistent rule store
type StoreConfig struct {
	// Path is relative to the repo root unless absolute
	Path       string `json:"path" mapstructure:"path"`
	QueryLimit int    `json:"queryLimit" mapstructure:"queryLimit"`
}

// RankingConfig controls candidate filtering and capping
type RankingConfig struct {
	ScoreThreshold int `json:"scoreThreshold" mapstructure:"scoreThreshold"`
	MaxCandidates  int `json:"maxCandidates" mapstructure:"maxCandidates"`
}

// VerificationConfig controls the remote handle verification client
type VerificationConfig struct {
	BaseURL         string `json:"baseUrl" mapstructure:"baseUrl"`
	CacheTtlSeconds int    `json:"cacheTtlSeconds" mapstructure:"cacheTtlSeconds"`
	MaxConcurrent   int    `json:"maxConcurrent" mapstructure:"maxConcurrent"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

const currentConfigVersion = 1

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:         currentConfigVersion,
		RepoRoot:        ".",
		IdentityMapPath: ".whoowns/identities.yaml",
		History: HistoryConfig{
			WindowMonths:  6,
			MaxCandidates: 3,
		},
		Store: StoreConfig{
			Path:       ".whoowns/whoowns.db",
			QueryLimit: 5,
		},
		Ranking: RankingConfig{
			ScoreThreshold: 50,
			MaxCandidates:  3,
		},
		Verification: VerificationConfig{
			BaseURL:         "https://api.github.com/users",
			CacheTtlSeconds: 3600,
			MaxConcurrent:   4,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from .whoowns/config.json. A missing
// config file yields the defaults; a malformed one is an error.
func LoadConfig(repoRoot string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("version", defaults.Version)
	v.SetDefault("repoRoot", defaults.RepoRoot)
	v.SetDefault("identityMapPath", defaults.IdentityMapPath)
	v.SetDefault("history.windowMonths", defaults.History.WindowMonths)
	v.SetDefault("history.maxCandidates", defaults.History.MaxCandidates)
	v.SetDefault("store.path", defaults.Store.Path)
	v.SetDefault("store.queryLimit", defaults.Store.QueryLimit)
	v.SetDefault("ranking.scoreThreshold", defaults.Ranking.ScoreThreshold)
	v.SetDefault("ranking.maxCandidates", defaults.Ranking.MaxCandidates)
	v.SetDefault("verification.baseUrl", defaults.Verification.BaseURL)
	v.SetDefault("verification.cacheTtlSeconds", defaults.Verification.CacheTtlSeconds)
	v.SetDefault("verification.maxConcurrent", defaults.Verification.MaxConcurrent)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("logging.level", defaults.Logging.Level)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(repoRoot, ".whoowns"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaults, nil
		}
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// StorePath resolves the store path against the repo root
func (c *Config) StorePath(repoRoot string) string {
	if filepath.IsAbs(c.Store.Path) {
		return c.Store.Path
	}
	return filepath.Join(repoRoot, c.Store.Path)
}

// IdentityPath resolves the identity map path against the repo root.
// Empty stays empty.
func (c *Config) IdentityPath(repoRoot string) string {
	if c.IdentityMapPath == "" || filepath.IsAbs(c.IdentityMapPath) {
		return c.IdentityMapPath
	}
	return filepath.Join(repoRoot, c.IdentityMapPath)
}

// Save writes the configuration to .whoowns/config.json
func (c *Config) Save(repoRoot string) error {
	dir := filepath.Join(repoRoot, ".whoowns")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != currentConfigVersion {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.History.WindowMonths < 0 {
		return &ConfigError{Field: "history.windowMonths", Message: "must not be negative"}
	}
	if c.Ranking.ScoreThreshold < 0 || c.Ranking.ScoreThreshold > 100 {
		return &ConfigError{Field: "ranking.scoreThreshold", Message: "must be between 0 and 100"}
	}
	if c.Ranking.MaxCandidates < 1 {
		return &ConfigError{Field: "ranking.maxCandidates", Message: "must be at least 1"}
	}
	if c.Store.QueryLimit < 1 {
		return &ConfigError{Field: "store.queryLimit", Message: "must be at least 1"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in field '%s': %s", e.Field, e.Message)
}
