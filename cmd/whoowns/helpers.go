package main

import (
	"fmt"
	"os"
	"path/filepath"

	"whoowns/internal/config"
	"whoowns/internal/history"
	"whoowns/internal/identity"
	"whoowns/internal/logging"
	"whoowns/internal/manifest"
	"whoowns/internal/resolve"
	"whoowns/internal/storage"
)

// mustGetRepoRoot resolves the --repo-root flag to an absolute path,
// exiting on failure
func mustGetRepoRoot() string {
	root, err := filepath.Abs(repoRootFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving repo root: %v\n", err)
		os.Exit(1)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		fmt.Fprintf(os.Stderr, "Error: repo root %s is not a directory\n", root)
		os.Exit(1)
	}
	return root
}

// mustLoadConfig loads and validates configuration, exiting on failure
func mustLoadConfig(repoRoot string) *config.Config {
	cfg, err := config.LoadConfig(repoRoot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// newLogger builds a logger from config, with JSON forced when the
// command's own output format is json so streams stay machine-readable
func newLogger(cfg *config.Config, outputFormat string) *logging.Logger {
	format := logging.Format(cfg.Logging.Format)
	if outputFormat == "json" {
		format = logging.JSONFormat
	}
	return logging.NewLogger(logging.Config{
		Format: format,
		Level:  logging.ParseLevel(cfg.Logging.Level),
	})
}

// mustOpenStore opens the rule store at the configured path, exiting on
// failure. Opening is fatal; later query failures degrade gracefully.
func mustOpenStore(repoRoot string, cfg *config.Config, logger *logging.Logger) *storage.DB {
	db, err := storage.Open(cfg.StorePath(repoRoot), logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening rule store: %v\n", err)
		os.Exit(1)
	}
	db.SetQueryLimit(cfg.Store.QueryLimit)
	return db
}

// loadManifestSource loads the configured or discovered manifest. A
// missing manifest is not an error: resolution continues without that
// source.
func loadManifestSource(repoRoot string, cfg *config.Config, logger *logging.Logger) *manifest.Source {
	path := cfg.ManifestPath
	if path == "" {
		path = manifest.Discover(repoRoot)
	} else if !filepath.IsAbs(path) {
		path = filepath.Join(repoRoot, path)
	}
	if path == "" {
		logger.Debug("No ownership manifest found", map[string]interface{}{
			"repo_root": repoRoot,
		})
		return nil
	}

	src, err := manifest.Load(path, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return src
}

// mustLoadMapper loads the identity override table, exiting on a
// malformed file
func mustLoadMapper(repoRoot string, cfg *config.Config) *identity.Mapper {
	mapper, err := identity.LoadMapper(cfg.IdentityPath(repoRoot))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return mapper
}

// buildEngine assembles the full precedence chain from config
func buildEngine(repoRoot string, cfg *config.Config, logger *logging.Logger,
	db *storage.DB, withHistory, writeThrough bool) *resolve.Engine {

	opts := resolve.Options{
		Store:        db,
		Identity:     mustLoadMapper(repoRoot, cfg),
		DefaultOwner: cfg.DefaultOwner,
		WriteThrough: writeThrough,
	}
	if mf := loadManifestSource(repoRoot, cfg, logger); mf != nil {
		opts.Manifest = mf
	}
	if withHistory {
		opts.History = history.NewSource(history.Config{
			RepoRoot:      repoRoot,
			WindowMonths:  cfg.History.WindowMonths,
			MaxCandidates: cfg.History.MaxCandidates,
			BotPatterns:   cfg.History.BotPatterns,
		}, logger)
	}

	engine := resolve.NewEngine(opts, logger)
	engine.SetRanker(resolve.NewRankerWith(cfg.Ranking.ScoreThreshold, cfg.Ranking.MaxCandidates))
	return engine
}
