// Package config loads MudContext server configuration.
//
// Values are resolved in three layers, later layers winning:
//
//  1. Built-in defaults (MudBlazor layout on GitHub)
//  2. An optional TOML file (--config flag or MUDCONTEXT_CONFIG)
//  3. MUDCONTEXT_* environment variables
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Environment variable names
const (
	EnvConfigFile      = "MUDCONTEXT_CONFIG"
	EnvRepoURL         = "MUDCONTEXT_REPO_URL"
	EnvRepoBranch      = "MUDCONTEXT_REPO_BRANCH"
	EnvRepoPath        = "MUDCONTEXT_REPO_PATH"
	EnvDataDir         = "MUDCONTEXT_DATA_DIR"
	EnvWorkers         = "MUDCONTEXT_WORKERS"
	EnvRefreshInterval = "MUDCONTEXT_REFRESH_INTERVAL"
)

// Config is the complete server configuration
type Config struct {
	Repository RepositoryConfig `toml:"repository"`
	Layout     LayoutConfig     `toml:"layout"`
	URLs       URLConfig        `toml:"urls"`
	Indexer    IndexerConfig    `toml:"indexer"`
	Search     SearchConfig     `toml:"search"`

	// DataDir holds the sync ledger database and the default checkout
	DataDir string `toml:"data_dir"`
}

// RepositoryConfig describes the upstream source repository
type RepositoryConfig struct {
	// URL is the git remote; empty means LocalPath is used as-is
	URL    string `toml:"url"`
	Branch string `toml:"branch"`
	// LocalPath is the checkout location; defaults to <DataDir>/repository
	LocalPath       string   `toml:"local_path"`
	RefreshInterval Duration `toml:"refresh_interval"`
	FetchTimeout    Duration `toml:"fetch_timeout"`
	MaxRetries      int      `toml:"max_retries"`
}

// LayoutConfig describes where things live inside the repository
type LayoutConfig struct {
	ComponentRoots []string `toml:"component_roots"`
	DocsRoot       string   `toml:"docs_root"`
	NamingPrefix   string   `toml:"naming_prefix"`
}

// URLConfig holds the templates for derived entity URLs
type URLConfig struct {
	DocsBase   string `toml:"docs_base"`
	SourceBase string `toml:"source_base"`
}

// IndexerConfig tunes the build
type IndexerConfig struct {
	// Workers bounds phase-one parse concurrency; 0 means runtime.NumCPU()
	Workers int `toml:"workers"`
}

// SearchConfig tunes the query cache
type SearchConfig struct {
	CacheSize int      `toml:"cache_size"`
	CacheTTL  Duration `toml:"cache_ttl"`
}

// Duration is a time.Duration that reads "15m"-style strings from TOML
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Validation errors
var (
	ErrNoComponentRoots = errors.New("at least one component root is required")
	ErrNoNamingPrefix   = errors.New("naming prefix is required")
	ErrNoRepository     = errors.New("repository url or local path is required")
	ErrInvalidWorkers   = errors.New("workers must be >= 0")
)

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Repository: RepositoryConfig{
			URL:             "https://github.com/MudBlazor/MudBlazor.git",
			Branch:          "dev",
			RefreshInterval: Duration{6 * time.Hour},
			FetchTimeout:    Duration{5 * time.Minute},
			MaxRetries:      3,
		},
		Layout: LayoutConfig{
			ComponentRoots: []string{"src/MudBlazor/Components"},
			DocsRoot:       "src/MudBlazor.Docs/Pages/Components",
			NamingPrefix:   "Mud",
		},
		URLs: URLConfig{
			DocsBase:   "https://mudblazor.com",
			SourceBase: "https://github.com/MudBlazor/MudBlazor/blob/dev",
		},
		Indexer: IndexerConfig{
			Workers: runtime.NumCPU(),
		},
		Search: SearchConfig{
			CacheSize: 1000,
			CacheTTL:  Duration{time.Hour},
		},
		DataDir: "~/.mudcontext",
	}
}

// Load resolves the configuration from defaults, the optional file at path
// (falling back to MUDCONTEXT_CONFIG) and the environment
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.resolvePaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile overlays TOML settings onto cfg
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// applyEnv overlays MUDCONTEXT_* variables onto cfg
func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv(EnvRepoURL); ok {
		c.Repository.URL = v
	}
	if v := os.Getenv(EnvRepoBranch); v != "" {
		c.Repository.Branch = v
	}
	if v := os.Getenv(EnvRepoPath); v != "" {
		c.Repository.LocalPath = v
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvWorkers, err)
		}
		c.Indexer.Workers = n
	}
	if v := os.Getenv(EnvRefreshInterval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvRefreshInterval, err)
		}
		c.Repository.RefreshInterval = Duration{d}
	}
	return nil
}

// resolvePaths expands ~ and fills the default checkout path
func (c *Config) resolvePaths() error {
	dataDir, err := expandHome(c.DataDir)
	if err != nil {
		return err
	}
	c.DataDir = dataDir

	if c.Repository.LocalPath == "" {
		c.Repository.LocalPath = filepath.Join(c.DataDir, "repository")
	}
	localPath, err := expandHome(c.Repository.LocalPath)
	if err != nil {
		return err
	}
	c.Repository.LocalPath = localPath
	return nil
}

// Validate checks the configuration for values the server cannot run with
func (c *Config) Validate() error {
	if len(c.Layout.ComponentRoots) == 0 {
		return ErrNoComponentRoots
	}
	if c.Layout.NamingPrefix == "" {
		return ErrNoNamingPrefix
	}
	if c.Repository.URL == "" && c.Repository.LocalPath == "" {
		return ErrNoRepository
	}
	if c.Indexer.Workers < 0 {
		return ErrInvalidWorkers
	}
	return nil
}

// LedgerPath returns the sync ledger database location
func (c *Config) LedgerPath() string {
	return filepath.Join(c.DataDir, "mudcontext.db")
}

// expandHome replaces a leading ~ with the user's home directory
func expandHome(path string) (string, error) {
	if path == "~" || (len(path) > 1 && path[0] == '~' && (path[1] == '/' || path[1] == filepath.Separator)) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}
